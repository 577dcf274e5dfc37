package gen

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/wippyai/typedispatch/decl"
	"github.com/wippyai/typedispatch/errors"
)

const (
	rootPath     = "github.com/wippyai/typedispatch"
	resolverPath = "github.com/wippyai/typedispatch/resolver"
	errorsPath   = "github.com/wippyai/typedispatch/errors"
)

// Emit builds the dispatcher source for p:
//
//   - the dispatcher type, one unexported field per component
//   - a private constructor taking the components in Params order
//   - register, which adds one resolver registration per handled type
//   - Dispatch, a type switch over the handled types in declaration order
//   - Prepare and Instance, managing the package singleton
func Emit(p *Plan) *jen.File {
	cfg := p.Config
	name := cfg.TypeName

	f := jen.NewFilePathName(cfg.PackagePath, cfg.PackageName)
	f.HeaderComment(fmt.Sprintf("Code generated by %s. DO NOT EDIT.", cfg.Generator))

	f.Commentf("%s routes values to the handler methods of its components.", name)
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, c := range p.Params {
			g.Id(c.Param).Add(typeCode(c.Type))
		}
	})

	f.Var().Id("_").Qual(rootPath, "Dispatcher").Op("=").Parens(jen.Op("*").Id(name)).Call(jen.Nil())

	f.Var().Defs(
		jen.Id("instance").Op("*").Id(name),
		jen.Id("instanceMu").Qual("sync", "Mutex"),
	)

	emitConstructor(f, p)
	emitRegister(f, p)
	emitDispatch(f, p)
	emitPrepare(f, p)

	f.Commentf("Instance returns the %s created by the last successful Prepare, or nil.", name)
	f.Func().Id("Instance").Params().Op("*").Id(name).Block(
		jen.Id("instanceMu").Dot("Lock").Call(),
		jen.Defer().Id("instanceMu").Dot("Unlock").Call(),
		jen.Return(jen.Id("instance")),
	)

	return f
}

func emitConstructor(f *jen.File, p *Plan) {
	name := p.Config.TypeName
	f.Func().Id(p.Config.constructorName()).ParamsFunc(componentParams(p)).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.DictFunc(func(d jen.Dict) {
			for _, c := range p.Params {
				d[jen.Id(c.Param)] = jen.Id(c.Param)
			}
		}))),
	)
}

func emitRegister(f *jen.File, p *Plan) {
	regs := jen.Options{Open: "(", Close: ")", Separator: ",", Multi: true}

	f.Func().Params(jen.Id("d").Op("*").Id(p.Config.TypeName)).Id("register").
		Params(jen.Id("r").Op("*").Qual(resolverPath, "Resolver")).Error().
		Block(
			jen.Return(jen.Id("r").Dot("RegisterAll").CustomFunc(regs, func(g *jen.Group) {
				for _, b := range p.Branches {
					adapter := "Action"
					if b.ReturnsError {
						adapter = "Func"
					}
					g.Qual(resolverPath, "Registration").Values(jen.Dict{
						jen.Id("Type"):    jen.Qual("reflect", "TypeFor").Index(typeCode(b.Handled)).Call(),
						jen.Id("Handler"): jen.Qual(resolverPath, adapter).Call(jen.Id("d").Dot(b.Component.Param).Dot(b.Method)),
						jen.Id("Strict"):  jen.Lit(b.Strict),
					})
				}
			})),
		)
}

func emitDispatch(f *jen.File, p *Plan) {
	f.Comment("Dispatch calls the handler whose case matches the dynamic type of obj.")
	f.Func().Params(jen.Id("d").Op("*").Id(p.Config.TypeName)).Id("Dispatch").
		Params(jen.Id("obj").Id("any")).Error().
		Block(
			jen.Switch(jen.Id("v").Op(":=").Id("obj").Assert(jen.Type())).BlockFunc(func(g *jen.Group) {
				for _, b := range p.Branches {
					call := jen.Id("d").Dot(b.Component.Param).Dot(b.Method).Call(jen.Id("v"))
					if b.ReturnsError {
						g.Case(typeCode(b.Handled)).Block(jen.Return(call))
					} else {
						g.Case(typeCode(b.Handled)).Block(call, jen.Return(jen.Nil()))
					}
				}
				g.Case(jen.Nil()).Block(
					jen.Return(jen.Qual(errorsPath, "NilValue").Call(jen.Qual(errorsPath, "PhaseDispatch"), jen.Lit("value"))),
				)
				g.Default().Block(
					jen.Return(jen.Qual(errorsPath, "Unhandled").Call(
						jen.Qual("reflect", "TypeOf").Call(jen.Id("v")).Dot("String").Call(),
					)),
				)
			}),
		)
}

func emitPrepare(f *jen.File, p *Plan) {
	name := p.Config.TypeName

	f.Commentf("Prepare creates the %s, registers its handlers with r and stores it as the", name)
	f.Comment("package instance. A registration conflict leaves r and the instance unchanged.")
	f.Func().Id("Prepare").ParamsFunc(func(g *jen.Group) {
		g.Id("r").Op("*").Qual(resolverPath, "Resolver")
		componentParams(p)(g)
	}).Parens(jen.List(jen.Op("*").Id(name), jen.Error())).BlockFunc(func(g *jen.Group) {
		g.If(jen.Id("r").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual(errorsPath, "NilValue").Call(jen.Qual(errorsPath, "PhaseRegister"), jen.Lit("resolver"))),
		)
		for _, c := range p.Params {
			if !c.Type.Pointer {
				continue
			}
			g.If(jen.Id(c.Param).Op("==").Nil()).Block(
				jen.Return(jen.Nil(), jen.Qual(errorsPath, "NilValue").Call(jen.Qual(errorsPath, "PhaseRegister"), jen.Lit(c.Param))),
			)
		}
		g.Line()
		g.Id("d").Op(":=").Id(p.Config.constructorName()).CallFunc(func(g *jen.Group) {
			for _, c := range p.Params {
				g.Id(c.Param)
			}
		})
		g.If(jen.Err().Op(":=").Id("d").Dot("register").Call(jen.Id("r")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		)
		g.Line()
		g.Id("instanceMu").Dot("Lock").Call()
		g.Id("instance").Op("=").Id("d")
		g.Id("instanceMu").Dot("Unlock").Call()
		g.Return(jen.Id("d"), jen.Nil())
	})
}

func componentParams(p *Plan) func(*jen.Group) {
	return func(g *jen.Group) {
		for _, c := range p.Params {
			g.Id(c.Param).Add(typeCode(c.Type))
		}
	}
}

func typeCode(t decl.TypeRef) *jen.Statement {
	s := &jen.Statement{}
	if t.Pointer {
		s = s.Op("*")
	}
	if t.Path == "" {
		return s.Id(t.Name)
	}
	return s.Qual(t.Path, t.Name)
}

// Render formats the dispatcher source for p.
func Render(p *Plan) ([]byte, error) {
	var buf bytes.Buffer
	if err := Emit(p).Render(&buf); err != nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidInput).
			Pos(p.Config.FileName).
			Cause(err).
			Detail("generated source does not format").
			Build()
	}
	return buf.Bytes(), nil
}
