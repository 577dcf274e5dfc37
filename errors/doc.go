// Package errors provides structured error types for typedispatch.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the Go type, owning component, handler method and source
// position involved, plus an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindArity).
//		Component("*components.AppComponent").
//		Method("Inject").
//		Pos("app.go:12:1").
//		Detail("handler takes %d parameters, want 1", n).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Duplicate(errors.PhaseRegister, "*models.User", "")
//	err := errors.NotFound("*models.User")
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when Phase and Kind are equal.
package errors
