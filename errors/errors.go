package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseValidate Phase = "validate" // declaration validation
	PhaseGenerate Phase = "generate" // dispatcher planning and emission
	PhaseWrite    Phase = "write"    // artifact output
	PhaseScan     Phase = "scan"     // source discovery
	PhaseLoad     Phase = "load"     // manifest loading
	PhaseRegister Phase = "register" // resolver registration
	PhaseResolve  Phase = "resolve"  // handler lookup
	PhaseDispatch Phase = "dispatch" // handler invocation
)

// Kind categorizes the error
type Kind string

const (
	KindArity         Kind = "arity"
	KindResult        Kind = "result"
	KindDuplicate     Kind = "duplicate"
	KindNameCollision Kind = "name_collision"
	KindUnexported    Kind = "unexported"
	KindInvalidInput  Kind = "invalid_input"
	KindNilValue      Kind = "nil_value"
	KindNotFound      Kind = "not_found"
	KindAmbiguous     Kind = "ambiguous"
	KindUnsupported   Kind = "unsupported"
	KindTypeMismatch  Kind = "type_mismatch"
	KindWrite         Kind = "write"
	KindParse         Kind = "parse"
)

// Error is the structured error type used throughout typedispatch
type Error struct {
	Cause      error
	Phase      Phase
	Kind       Kind
	Type       string
	Component  string
	Method     string
	Pos        string
	Detail     string
	Candidates []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Pos != "" {
		b.WriteString(" at ")
		b.WriteString(e.Pos)
	}

	if e.Component != "" {
		b.WriteString(": ")
		b.WriteString(e.Component)
		if e.Method != "" {
			b.WriteByte('.')
			b.WriteString(e.Method)
		}
	}

	if e.Type != "" {
		if e.Component != "" {
			b.WriteString(", type ")
		} else {
			b.WriteString(": type ")
		}
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Component != "" || e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if len(e.Candidates) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Candidates, ", "))
		b.WriteByte(']')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return e.Phase == t.Phase && e.Kind == t.Kind
	case kindTarget:
		return e.Kind == Kind(t)
	}
	return false
}

type kindTarget Kind

func (k kindTarget) Error() string { return string(k) }

// IsKind reports whether any error in err's tree is an *Error of the given kind,
// regardless of phase. Joined errors are searched too.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, kindTarget(kind))
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Type sets the Go type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Component sets the owning component type name
func (b *Builder) Component(c string) *Builder {
	b.err.Component = c
	return b
}

// Method sets the handler method name
func (b *Builder) Method(m string) *Builder {
	b.err.Method = m
	return b
}

// Pos sets the source position or artifact name
func (b *Builder) Pos(pos string) *Builder {
	b.err.Pos = pos
	return b
}

// Candidates sets the competing candidates for ambiguity errors
func (b *Builder) Candidates(c ...string) *Builder {
	b.err.Candidates = c
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Arity creates a wrong-parameter-count error for a handler declaration
func Arity(component, method, pos string, got int) *Error {
	return &Error{
		Phase:     PhaseValidate,
		Kind:      KindArity,
		Component: component,
		Method:    method,
		Pos:       pos,
		Detail:    fmt.Sprintf("handler takes %d parameters, want exactly 1", got),
	}
}

// Duplicate creates an error for a second handler claiming the same type.
// owner names the component that already handles the type, if known.
func Duplicate(phase Phase, typeName, owner string) *Error {
	detail := "handler already registered for type"
	if owner != "" {
		detail = fmt.Sprintf("type already handled by %s", owner)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Type:   typeName,
		Detail: detail,
	}
}

// NotFound creates a resolution failure for a type with no eligible handler
func NotFound(typeName string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Type:   typeName,
		Detail: "no handler registered for type",
	}
}

// Unhandled creates the error returned by a generated dispatcher for a type it has no branch for
func Unhandled(typeName string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindNotFound,
		Type:   typeName,
		Detail: "cannot dispatch type",
	}
}

// Ambiguous creates an error for a type matched by several equally near loose ancestors
func Ambiguous(typeName string, candidates []string) *Error {
	return &Error{
		Phase:      PhaseResolve,
		Kind:       KindAmbiguous,
		Type:       typeName,
		Detail:     "several loose handlers match at the same distance",
		Candidates: candidates,
	}
}

// NilValue creates a nil input error
func NilValue(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilValue,
		Detail: what + " cannot be nil",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// TypeMismatch creates an error for a handler invoked with a value of the wrong type
func TypeMismatch(got, want string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindTypeMismatch,
		Type:   got,
		Detail: "handler expects " + want,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
