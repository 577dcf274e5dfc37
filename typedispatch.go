package typedispatch

// Handler is the uniform capability behind every registered handled type:
// it accepts a value of its associated type and may fail.
type Handler interface {
	Handle(obj any) error
}

// HandlerFunc is an adapter to use ordinary functions as Handlers.
//
// Example:
//
//	r.Register(reflect.TypeFor[*User](), typedispatch.HandlerFunc(func(obj any) error {
//	    return audit(obj.(*User))
//	}), true)
type HandlerFunc func(obj any) error

// Handle implements Handler.
func (f HandlerFunc) Handle(obj any) error {
	return f(obj)
}

// Dispatcher routes a value to the handler that owns its type.
// Both the runtime resolver and generated dispatchers implement it.
type Dispatcher interface {
	Dispatch(obj any) error
}
