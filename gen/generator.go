package gen

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/wippyai/typedispatch/decl"
	"github.com/wippyai/typedispatch/errors"
)

// Generator plans, renders and writes a dispatcher.
type Generator struct {
	config Config
}

// New creates a generator with the given configuration.
func New(cfg Config) *Generator {
	return &Generator{config: cfg}
}

// NewWithDefaults creates a generator with default configuration.
func NewWithDefaults() *Generator {
	return New(DefaultConfig())
}

// Config returns the configuration.
func (g *Generator) Config() Config {
	return g.config
}

// Plan validates decls against the generator configuration.
func (g *Generator) Plan(decls []decl.Declaration) (*Plan, error) {
	return NewPlan(decls, g.config)
}

// Run generates the dispatcher for decls and writes it to Config.Path. It returns
// the written path. Nothing is written when validation fails.
func (g *Generator) Run(decls []decl.Declaration) (string, error) {
	p, err := g.Plan(decls)
	if err != nil {
		return "", err
	}
	src, err := Render(p)
	if err != nil {
		return "", err
	}

	path := g.config.Path()
	if err := write(path, src); err != nil {
		werr := errors.New(errors.PhaseWrite, errors.KindWrite).
			Pos(path).
			Cause(err).
			Detail("failed to generate %s", g.config.TypeName)
		if first := decls[0]; first.Pos != "" {
			werr.Component(first.Component.Short()).Method(first.Method).
				Detail("failed to generate %s for handler at %s", g.config.TypeName, first.Pos)
		}
		return "", werr.Build()
	}

	Logger().Info("generated dispatcher",
		zap.String("file", path),
		zap.String("package", g.config.PackageName),
		zap.Strings("params", p.Signature()),
		zap.Int("handlers", len(p.Branches)))
	return path, nil
}

// write replaces path atomically so a failed run never leaves a truncated file.
func write(path string, src []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(src); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
