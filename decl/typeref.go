package decl

import (
	"go/token"
	"path"
	"strings"

	"github.com/wippyai/typedispatch/errors"
)

// TypeRef names a Go type by import path. An empty Path denotes a predeclared
// type such as string or error.
type TypeRef struct {
	Path    string
	Name    string
	Pointer bool
}

// ParseTypeRef parses "[*]import/path.Name" or a predeclared name.
func ParseTypeRef(s string) (TypeRef, error) {
	raw := strings.TrimSpace(s)
	var ref TypeRef

	if strings.HasPrefix(raw, "*") {
		ref.Pointer = true
		raw = raw[1:]
	}

	dot := strings.LastIndexByte(raw, '.')
	if dot > strings.LastIndexByte(raw, '/') {
		ref.Path, ref.Name = raw[:dot], raw[dot+1:]
		if ref.Path == "" {
			return TypeRef{}, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Detail("type reference %q has an empty import path", s).
				Build()
		}
	} else {
		ref.Name = raw
	}

	if !token.IsIdentifier(ref.Name) {
		return TypeRef{}, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("type reference %q does not end in an identifier", s).
			Build()
	}
	return ref, nil
}

// MustParseTypeRef is like ParseTypeRef but panics on error.
func MustParseTypeRef(s string) TypeRef {
	ref, err := ParseTypeRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// String returns the fully qualified form accepted by ParseTypeRef.
func (t TypeRef) String() string {
	var b strings.Builder
	if t.Pointer {
		b.WriteByte('*')
	}
	if t.Path != "" {
		b.WriteString(t.Path)
		b.WriteByte('.')
	}
	b.WriteString(t.Name)
	return b.String()
}

// Short returns the type as reflect.Type.String would print it, e.g. "*models.Banana".
func (t TypeRef) Short() string {
	var b strings.Builder
	if t.Pointer {
		b.WriteByte('*')
	}
	if pkg := t.Package(); pkg != "" {
		b.WriteString(pkg)
		b.WriteByte('.')
	}
	b.WriteString(t.Name)
	return b.String()
}

// Package guesses the package name from the import path: its last element
// without a major version suffix ("/v2", "yaml.v3").
func (t TypeRef) Package() string {
	if t.Path == "" {
		return ""
	}
	base := path.Base(t.Path)
	if isMajorVersion(base) {
		if parent := path.Dir(t.Path); parent != "." {
			base = path.Base(parent)
		}
	}
	if i := strings.LastIndex(base, ".v"); i > 0 && isMajorVersion(base[i+1:]) {
		base = base[:i]
	}
	return base
}

// Elem returns the type without its pointer.
func (t TypeRef) Elem() TypeRef {
	t.Pointer = false
	return t
}

// IsZero returns true if t names no type.
func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

// IsPredeclared returns true if t is a universe-scope type.
func (t TypeRef) IsPredeclared() bool {
	return t.Path == "" && t.Name != ""
}

// IsError returns true if t is the predeclared error interface.
func (t TypeRef) IsError() bool {
	return t.Path == "" && t.Name == "error" && !t.Pointer
}

// IsExported returns true if t can be named from another package.
func (t TypeRef) IsExported() bool {
	return t.IsPredeclared() || token.IsExported(t.Name)
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
