package scan

import (
	"go/ast"
	"go/build"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/typedispatch/decl"
	"github.com/wippyai/typedispatch/errors"
)

// Directive marks a handler method.
const Directive = "//dispatch:handler"

// Dir scans the non-test Go files of dir that match the current build context.
// importPath is the import path of the package in dir; when empty it is derived
// from the enclosing module. Declarations are returned in file then source order.
func Dir(dir, importPath string) ([]decl.Declaration, error) {
	if importPath == "" {
		p, err := ImportPath(dir)
		if err != nil {
			return nil, err
		}
		importPath = p
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseScan, errors.KindInvalidInput, err, "cannot read "+dir)
	}

	fset := token.NewFileSet()
	var decls []decl.Declaration
	var errs error

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if ok, err := build.Default.MatchFile(dir, name); err != nil || !ok {
			continue
		}

		path := filepath.Join(dir, name)
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			errs = multierr.Append(errs, errors.New(errors.PhaseScan, errors.KindParse).
				Pos(path).
				Cause(err).
				Detail("cannot parse source").
				Build())
			continue
		}

		found, err := scanFile(fset, file, importPath)
		errs = multierr.Append(errs, err)
		decls = append(decls, found...)
	}

	if errs != nil {
		return nil, errs
	}

	Logger().Debug("scanned package",
		zap.String("dir", dir),
		zap.String("import", importPath),
		zap.Int("handlers", len(decls)))
	return decls, nil
}

// Dirs scans each directory, deriving import paths from the enclosing module.
func Dirs(dirs ...string) ([]decl.Declaration, error) {
	var decls []decl.Declaration
	var errs error
	for _, dir := range dirs {
		found, err := Dir(dir, "")
		errs = multierr.Append(errs, err)
		decls = append(decls, found...)
	}
	if errs != nil {
		return nil, errs
	}
	return decls, nil
}

type fileScanner struct {
	fset       *token.FileSet
	importPath string
	imports    map[string]string // local name -> import path
}

func scanFile(fset *token.FileSet, file *ast.File, importPath string) ([]decl.Declaration, error) {
	s := &fileScanner{
		fset:       fset,
		importPath: importPath,
		imports:    make(map[string]string),
	}
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := decl.TypeRef{Path: path}.Package()
		if spec.Name != nil {
			name = spec.Name.Name
		}
		s.imports[name] = path
	}

	var decls []decl.Declaration
	var errs error

	for _, d := range file.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}
		strict, marked, err := s.directive(fn.Doc)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if !marked {
			continue
		}

		found, err := s.declaration(fn, strict)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		decls = append(decls, found)
	}
	return decls, errs
}

func (s *fileScanner) directive(doc *ast.CommentGroup) (strict, marked bool, err error) {
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		switch mode := strings.TrimSpace(rest); mode {
		case "", "strict":
			return true, true, nil
		case "loose":
			return false, true, nil
		default:
			return false, false, errors.New(errors.PhaseScan, errors.KindInvalidInput).
				Pos(s.pos(c.Pos())).
				Detail("unknown handler mode %q, want strict or loose", mode).
				Build()
		}
	}
	return false, false, nil
}

func (s *fileScanner) declaration(fn *ast.FuncDecl, strict bool) (decl.Declaration, error) {
	pos := s.pos(fn.Pos())

	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return decl.Declaration{}, errors.New(errors.PhaseScan, errors.KindInvalidInput).
			Method(fn.Name.Name).
			Pos(pos).
			Detail("handler directive on a function without a receiver").
			Build()
	}

	component, err := s.receiver(fn.Recv.List[0].Type)
	if err != nil {
		return decl.Declaration{}, err
	}

	d := decl.Declaration{
		Component: component,
		Method:    fn.Name.Name,
		Strict:    strict,
		Pos:       pos,
	}

	var errs error
	d.Params, err = s.fields(fn.Type.Params, d)
	errs = multierr.Append(errs, err)
	d.Results, err = s.fields(fn.Type.Results, d)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return decl.Declaration{}, errs
	}
	return d, nil
}

func (s *fileScanner) receiver(expr ast.Expr) (decl.TypeRef, error) {
	var ref decl.TypeRef
	if star, ok := expr.(*ast.StarExpr); ok {
		ref.Pointer = true
		expr = star.X
	}
	id, ok := expr.(*ast.Ident)
	if !ok {
		return decl.TypeRef{}, s.unsupported(expr, "receiver")
	}
	ref.Path = s.importPath
	ref.Name = id.Name
	return ref, nil
}

func (s *fileScanner) fields(list *ast.FieldList, d decl.Declaration) ([]decl.TypeRef, error) {
	if list == nil {
		return nil, nil
	}
	var refs []decl.TypeRef
	var errs error
	for _, f := range list.List {
		ref, err := s.typeRef(f.Type)
		if err != nil {
			if te, ok := err.(*errors.Error); ok {
				te.Component = d.Component.Short()
				te.Method = d.Method
			}
			errs = multierr.Append(errs, err)
			continue
		}
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			refs = append(refs, ref)
		}
	}
	return refs, errs
}

func (s *fileScanner) typeRef(expr ast.Expr) (decl.TypeRef, error) {
	var ref decl.TypeRef
	inner := expr
	if star, ok := inner.(*ast.StarExpr); ok {
		ref.Pointer = true
		inner = star.X
	}

	switch t := inner.(type) {
	case *ast.Ident:
		ref.Name = t.Name
		if !isPredeclaredType(t.Name) {
			ref.Path = s.importPath
		}
		return ref, nil

	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return decl.TypeRef{}, s.unsupported(expr, "type")
		}
		path, ok := s.imports[pkg.Name]
		if !ok {
			return decl.TypeRef{}, errors.New(errors.PhaseScan, errors.KindNotFound).
				Type(pkg.Name+"."+t.Sel.Name).
				Pos(s.pos(expr.Pos())).
				Detail("package %s is not imported", pkg.Name).
				Build()
		}
		ref.Path = path
		ref.Name = t.Sel.Name
		return ref, nil
	}
	return decl.TypeRef{}, s.unsupported(expr, "type")
}

func (s *fileScanner) unsupported(expr ast.Expr, what string) error {
	return errors.New(errors.PhaseScan, errors.KindUnsupported).
		Type(types.ExprString(expr)).
		Pos(s.pos(expr.Pos())).
		Detail("%s must be a named type or a pointer to one", what).
		Build()
}

func (s *fileScanner) pos(p token.Pos) string {
	return s.fset.Position(p).String()
}

func isPredeclaredType(name string) bool {
	_, ok := types.Universe.Lookup(name).(*types.TypeName)
	return ok
}
