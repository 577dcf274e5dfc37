package gen

import (
	"go/token"
	"path/filepath"
	"strings"

	"github.com/wippyai/typedispatch/errors"
)

// Config holds generator output options.
type Config struct {
	// PackageName is the package clause of the generated file.
	PackageName string

	// PackagePath is the import path of the generated package. Types from this
	// path are referenced unqualified and may be unexported. Empty means the
	// output package is unknown, so every referenced type must be exported.
	PackagePath string

	// TypeName is the exported name of the generated dispatcher type.
	TypeName string

	// FileName is the name of the single generated file.
	FileName string

	// Dir is the directory the file is written to.
	Dir string

	// Generator is the tool name written into the generated-code header.
	Generator string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PackageName: "generated",
		TypeName:    "Dispatcher",
		FileName:    "dispatcher_gen.go",
		Dir:         ".",
		Generator:   "dispatchgen",
	}
}

// WithPackage returns a copy of the config targeting the given package.
func (c Config) WithPackage(name, importPath string) Config {
	c.PackageName = name
	c.PackagePath = importPath
	return c
}

// WithTypeName returns a copy of the config with the dispatcher type name set.
func (c Config) WithTypeName(name string) Config {
	c.TypeName = name
	return c
}

// WithFileName returns a copy of the config with the output file name set.
func (c Config) WithFileName(name string) Config {
	c.FileName = name
	return c
}

// WithDir returns a copy of the config with the output directory set.
func (c Config) WithDir(dir string) Config {
	c.Dir = dir
	return c
}

// WithGenerator returns a copy of the config with the header tool name set.
func (c Config) WithGenerator(name string) Config {
	c.Generator = name
	return c
}

// Path returns the output file path.
func (c Config) Path() string {
	return filepath.Join(c.Dir, c.FileName)
}

func (c Config) constructorName() string {
	return "new" + c.TypeName
}

func (c Config) validate() error {
	invalid := errors.New(errors.PhaseGenerate, errors.KindInvalidInput)
	switch {
	case !token.IsIdentifier(c.PackageName) || c.PackageName == "_":
		return invalid.Detail("package name %q is not a valid identifier", c.PackageName).Build()
	case !token.IsIdentifier(c.TypeName) || !token.IsExported(c.TypeName):
		return invalid.Detail("dispatcher type name %q must be an exported identifier", c.TypeName).Build()
	case c.FileName == "" || filepath.Base(c.FileName) != c.FileName || !strings.HasSuffix(c.FileName, ".go"):
		return invalid.Detail("output file name %q must be a bare .go file name", c.FileName).Build()
	case strings.HasSuffix(c.FileName, "_test.go"):
		return invalid.Detail("output file %q cannot be a test file", c.FileName).Build()
	case c.Generator == "":
		return invalid.Detail("generator name is empty").Build()
	}
	return nil
}
