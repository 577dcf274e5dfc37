// Package generated holds the dispatcher generated from the testbed components.
package generated

//go:generate go run ../../cmd/dispatchgen -dir ../components -out . -pkg generated -pkgpath github.com/wippyai/typedispatch/testbed/generated
