package gen

import (
	"go/token"
	"sort"

	"github.com/iancoleman/strcase"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/typedispatch/decl"
	"github.com/wippyai/typedispatch/errors"
)

// Component is one owning component of the generated dispatcher.
type Component struct {
	Type decl.TypeRef
	// Param is the constructor parameter name, the lowerCamel simple type name.
	// The dispatcher field uses the same name.
	Param string
	// Branches are the handlers this component owns, in declaration order.
	Branches []*Branch
}

// Branch is one handled type and the method it routes to.
type Branch struct {
	Handled      decl.TypeRef
	Component    *Component
	Method       string
	Strict       bool
	ReturnsError bool
	Pos          string
}

// Plan is everything needed to emit a dispatcher.
type Plan struct {
	Config Config
	// Components in the order they were first declared.
	Components []*Component
	// Params is Components sorted by parameter name. It fixes the constructor
	// signature and the field order, so both are independent of discovery order.
	Params []*Component
	// Branches holds one entry per handled type in declaration order.
	Branches []*Branch
}

// identifiers the generated code declares or references inside Prepare and the
// constructor, where a parameter would shadow them
var reserved = map[string]bool{
	"r":          true,
	"d":          true,
	"err":        true,
	"nil":        true,
	"error":      true,
	"errors":     true,
	"any":        true,
	"instance":   true,
	"instanceMu": true,
	"register":   true,
}

// NewPlan validates decls and builds the dispatcher plan. All problems found
// are returned together.
func NewPlan(decls []decl.Declaration, cfg Config) (*Plan, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(decls) == 0 {
		return nil, errors.InvalidInput(errors.PhaseGenerate, "no handler declarations")
	}
	if err := decl.Validate(decls); err != nil {
		return nil, err
	}

	p := &Plan{Config: cfg}
	var errs error

	components := make(map[decl.TypeRef]*Component)
	for _, g := range decl.GroupBy(decls) {
		c := &Component{
			Type:  g.Component,
			Param: strcase.ToLowerCamel(g.Component.Name),
		}
		components[g.Component] = c
		p.Components = append(p.Components, c)
	}

	owners := make(map[decl.TypeRef]*Branch, len(decls))
	for _, d := range decls {
		c := components[d.Component]
		b := &Branch{
			Handled:      d.Handled(),
			Component:    c,
			Method:       d.Method,
			Strict:       d.Strict,
			ReturnsError: d.ReturnsError(),
			Pos:          d.Pos,
		}
		if first, ok := owners[b.Handled]; ok {
			errs = multierr.Append(errs, duplicateError(first, b))
			continue
		}
		owners[b.Handled] = b
		c.Branches = append(c.Branches, b)
		p.Branches = append(p.Branches, b)
	}

	errs = multierr.Append(errs, p.checkNames())
	errs = multierr.Append(errs, p.checkVisibility())
	if errs != nil {
		return nil, errs
	}

	p.Params = append([]*Component(nil), p.Components...)
	sort.SliceStable(p.Params, func(i, j int) bool {
		return p.Params[i].Param < p.Params[j].Param
	})

	Logger().Debug("planned dispatcher",
		zap.String("type", cfg.TypeName),
		zap.Int("components", len(p.Components)),
		zap.Int("handlers", len(p.Branches)))
	return p, nil
}

func duplicateError(first, dup *Branch) error {
	err := errors.Duplicate(errors.PhaseGenerate, dup.Handled.Short(),
		first.Component.Type.Short()+"."+first.Method)
	err.Component = dup.Component.Type.Short()
	err.Method = dup.Method
	err.Pos = dup.Pos
	return err
}

func (p *Plan) checkNames() error {
	var errs error
	seen := make(map[string]*Component, len(p.Components))
	ctor := p.Config.constructorName()

	for _, c := range p.Components {
		name := c.Param
		switch {
		case !token.IsIdentifier(name):
			errs = multierr.Append(errs, nameError(c, "derived parameter name %q is not an identifier", name))
		case token.IsKeyword(name):
			errs = multierr.Append(errs, nameError(c, "derived parameter name %q is a Go keyword", name))
		case reserved[name] || name == ctor:
			errs = multierr.Append(errs, nameError(c, "derived parameter name %q clashes with generated code", name))
		case seen[name] != nil:
			err := nameError(c, "derived parameter name %q is also derived from %s", name, seen[name].Type.Short())
			err.Candidates = []string{seen[name].Type.String(), c.Type.String()}
			errs = multierr.Append(errs, err)
		default:
			seen[name] = c
		}
	}
	return errs
}

func nameError(c *Component, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseGenerate, errors.KindNameCollision).
		Component(c.Type.Short()).
		Pos(firstPos(c)).
		Detail(format, args...).
		Build()
}

func (p *Plan) checkVisibility() error {
	var errs error
	local := func(t decl.TypeRef) bool {
		return p.Config.PackagePath != "" && t.Path == p.Config.PackagePath
	}

	for _, c := range p.Components {
		if !c.Type.IsExported() && !local(c.Type) {
			errs = multierr.Append(errs, errors.New(errors.PhaseGenerate, errors.KindUnexported).
				Component(c.Type.Short()).
				Pos(firstPos(c)).
				Detail("component type is not visible from package %s", p.Config.PackageName).
				Build())
		}
		for _, b := range c.Branches {
			if !token.IsExported(b.Method) && !local(c.Type) {
				errs = multierr.Append(errs, errors.New(errors.PhaseGenerate, errors.KindUnexported).
					Component(c.Type.Short()).
					Method(b.Method).
					Pos(b.Pos).
					Detail("handler method is not visible from package %s", p.Config.PackageName).
					Build())
			}
			if !b.Handled.IsExported() && !local(b.Handled) {
				errs = multierr.Append(errs, errors.New(errors.PhaseGenerate, errors.KindUnexported).
					Type(b.Handled.Short()).
					Component(c.Type.Short()).
					Method(b.Method).
					Pos(b.Pos).
					Detail("handled type is not visible from package %s", p.Config.PackageName).
					Build())
			}
		}
	}
	return errs
}

func firstPos(c *Component) string {
	for _, b := range c.Branches {
		if b.Pos != "" {
			return b.Pos
		}
	}
	return ""
}

// Signature returns the constructor parameter names in order.
func (p *Plan) Signature() []string {
	names := make([]string, len(p.Params))
	for i, c := range p.Params {
		names[i] = c.Param
	}
	return names
}
