package resolver

import (
	"reflect"

	"github.com/wippyai/typedispatch"
	"github.com/wippyai/typedispatch/errors"
)

// Func adapts a typed function to a Handler. Values that are not a T fail with a
// type mismatch error instead of panicking.
func Func[T any](fn func(T) error) typedispatch.Handler {
	return typedispatch.HandlerFunc(func(obj any) error {
		v, ok := obj.(T)
		if !ok {
			return errors.TypeMismatch(typeName(obj), reflect.TypeFor[T]().String())
		}
		return fn(v)
	})
}

// Action adapts a typed function without a result to a Handler.
func Action[T any](fn func(T)) typedispatch.Handler {
	return Func(func(v T) error {
		fn(v)
		return nil
	})
}

// RegisterFunc registers fn for T.
func RegisterFunc[T any](r *Resolver, fn func(T) error, strict bool) error {
	return r.Register(reflect.TypeFor[T](), Func(fn), strict)
}

func typeName(obj any) string {
	if obj == nil {
		return "<nil>"
	}
	return reflect.TypeOf(obj).String()
}
