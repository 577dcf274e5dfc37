package decl

import (
	"go/token"
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/typedispatch/errors"
)

// Declaration is one handler method found at build time.
type Declaration struct {
	Component TypeRef
	Method    string
	Params    []TypeRef
	Results   []TypeRef
	Strict    bool
	// Pos is the source position ("file:line:col") or manifest entry the
	// declaration came from. Optional.
	Pos string
}

// Handled returns the type of the value the handler receives. It is the zero
// TypeRef when the declaration has no parameters.
func (d Declaration) Handled() TypeRef {
	if len(d.Params) == 0 {
		return TypeRef{}
	}
	return d.Params[0]
}

// ReturnsError returns true if the handler reports failure through an error result.
func (d Declaration) ReturnsError() bool {
	return len(d.Results) == 1 && d.Results[0].IsError()
}

// String returns "Component.Method(Handled)".
func (d Declaration) String() string {
	s := d.Component.Short() + "." + d.Method + "("
	for i, p := range d.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Short()
	}
	return s + ")"
}

// Validate checks every declaration and returns all problems combined with
// multierr. Each handler must take exactly one parameter and return nothing or a
// single error.
func Validate(decls []Declaration) error {
	var err error
	for i := range decls {
		err = multierr.Append(err, decls[i].validate(i))
	}
	return err
}

func (d Declaration) validate(index int) error {
	component := d.Component.Short()
	pos := d.Pos
	if pos == "" {
		pos = "declaration " + strconv.Itoa(index)
	}

	if d.Component.IsZero() {
		return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Method(d.Method).
			Pos(pos).
			Detail("handler has no owning component").
			Build()
	}
	if d.Component.IsPredeclared() {
		return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Component(component).
			Method(d.Method).
			Pos(pos).
			Detail("predeclared types cannot own handlers").
			Build()
	}
	if !token.IsIdentifier(d.Method) {
		return errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Component(component).
			Pos(pos).
			Detail("handler method name %q is not an identifier", d.Method).
			Build()
	}

	var err error
	if len(d.Params) != 1 {
		err = multierr.Append(err, errors.Arity(component, d.Method, pos, len(d.Params)))
	} else if d.Params[0].IsZero() {
		err = multierr.Append(err, errors.New(errors.PhaseValidate, errors.KindInvalidInput).
			Component(component).
			Method(d.Method).
			Pos(pos).
			Detail("handled type is empty").
			Build())
	}

	if len(d.Results) > 1 || (len(d.Results) == 1 && !d.Results[0].IsError()) {
		err = multierr.Append(err, errors.New(errors.PhaseValidate, errors.KindResult).
			Component(component).
			Method(d.Method).
			Pos(pos).
			Detail("handler must return nothing or error, got %d results", len(d.Results)).
			Build())
	}
	return err
}

// Group is the declarations owned by one component.
type Group struct {
	Component    TypeRef
	Declarations []Declaration
}

// GroupBy partitions decls by owning component. Groups appear in the order
// their component is first seen; declarations keep their relative order.
func GroupBy(decls []Declaration) []Group {
	index := make(map[TypeRef]int)
	var groups []Group

	for _, d := range decls {
		i, ok := index[d.Component]
		if !ok {
			i = len(groups)
			index[d.Component] = i
			groups = append(groups, Group{Component: d.Component})
		}
		groups[i].Declarations = append(groups[i].Declarations, d)
	}
	return groups
}
