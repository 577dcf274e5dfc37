// Package typedispatch routes a value to the one handler registered for its concrete
// type, optionally falling back to a handler registered for an ancestor type.
//
// # Architecture Overview
//
// The library is split between a build-time generator and a runtime resolver:
//
//	typedispatch/        Root package with the Handler and Dispatcher interfaces
//	├── decl/            Handler declarations, grouping and validation
//	├── scan/            Discovery of //dispatch:handler methods in Go source
//	├── manifest/        YAML manifests driving the generator
//	├── gen/             Dispatcher planning and Go source emission
//	├── resolver/        Thread-safe strict/loose type table used at runtime
//	├── errors/          Structured error types for debugging
//	└── cmd/dispatchgen  go:generate entry point
//
// # Declaring handlers
//
// A component is any named type whose methods take exactly one value:
//
//	type AppComponent struct{ db *sql.DB }
//
//	//dispatch:handler
//	func (c *AppComponent) Inject(obj *models.Account) {
//	    obj.DB = c.db
//	}
//
//	//dispatch:handler loose
//	func (c *AppComponent) Audit(obj models.Auditable) error {
//	    return obj.Audit(c.db)
//	}
//
// Running dispatchgen over the component packages writes one dispatcher whose
// Prepare function takes one instance per component, ordered by parameter name:
//
//	d, err := generated.Prepare(resolver.Default(), appComponent, netComponent)
//	if err != nil {
//	    log.Fatal(err) // two components claim the same type
//	}
//
//	err = resolver.Default().Dispatch(account)
//
// # Strict and loose handlers
//
// A strict handler (the default) only receives values whose type is exactly the
// handled type. A loose handler also receives values of types that embed the handled
// type, or that implement it when the handled type is an interface, provided those
// types have no handler of their own. The nearest ancestor wins; equally near
// candidates are reported as ambiguous instead of being picked arbitrarily.
//
// # Thread Safety
//
// Resolver is safe for concurrent use. Handlers run outside the resolver's lock.
package typedispatch
