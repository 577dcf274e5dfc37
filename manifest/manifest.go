package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/typedispatch/decl"
	"github.com/wippyai/typedispatch/errors"
	"github.com/wippyai/typedispatch/gen"
)

// Manifest is the parsed generator input.
type Manifest struct {
	Output   Output    `yaml:"output"`
	Scan     []string  `yaml:"scan"`
	Handlers []Handler `yaml:"handlers"`

	// Source names where the manifest came from, used in positions.
	Source string `yaml:"-"`
}

// Output overrides gen.DefaultConfig. Empty fields keep the default.
type Output struct {
	Package   string `yaml:"package"`
	Path      string `yaml:"path"`
	Type      string `yaml:"type"`
	File      string `yaml:"file"`
	Dir       string `yaml:"dir"`
	Generator string `yaml:"generator"`
}

// Handler is one explicitly declared handler method.
type Handler struct {
	Component string   `yaml:"component"`
	Method    string   `yaml:"method"`
	Handles   string   `yaml:"handles"`
	Params    []string `yaml:"params"`
	Results   []string `yaml:"results"`
	Strict    *bool    `yaml:"strict"`

	// Pos is "source:line:col" of the entry.
	Pos string `yaml:"-"`
}

// IsStrict reports the handler's strictness; handlers are strict by default.
func (h Handler) IsStrict() bool {
	return h.Strict == nil || *h.Strict
}

// Load reads and parses the manifest at path. Relative output and scan
// directories are resolved against the manifest's directory.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "cannot open manifest "+path)
	}
	defer f.Close()

	m, err := parse(f, path)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	if m.Output.Dir != "" && !filepath.IsAbs(m.Output.Dir) {
		m.Output.Dir = filepath.Join(base, m.Output.Dir)
	}
	for i, dir := range m.Scan {
		if !filepath.IsAbs(dir) {
			m.Scan[i] = filepath.Join(base, dir)
		}
	}
	return m, nil
}

// Parse parses a manifest from r. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	return parse(r, "manifest")
}

func parse(r io.Reader, source string) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "cannot read "+source)
	}

	m := &Manifest{Source: source}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && err != io.EOF {
		return nil, errors.New(errors.PhaseLoad, errors.KindParse).
			Pos(source).
			Cause(err).
			Detail("invalid manifest").
			Build()
	}

	// A second pass over the node tree recovers entry positions.
	var nodes struct {
		Handlers []yaml.Node `yaml:"handlers"`
	}
	if err := yaml.Unmarshal(data, &nodes); err == nil && len(nodes.Handlers) == len(m.Handlers) {
		for i, n := range nodes.Handlers {
			m.Handlers[i].Pos = fmt.Sprintf("%s:%d:%d", source, n.Line, n.Column)
		}
	}
	for i := range m.Handlers {
		if m.Handlers[i].Pos == "" {
			m.Handlers[i].Pos = fmt.Sprintf("%s:handlers[%d]", source, i)
		}
	}
	return m, nil
}

// Config returns the generator configuration the manifest describes.
func (m *Manifest) Config() gen.Config {
	cfg := gen.DefaultConfig()
	o := m.Output
	if o.Package != "" || o.Path != "" {
		name := o.Package
		if name == "" {
			name = decl.TypeRef{Path: o.Path}.Package()
		}
		cfg = cfg.WithPackage(name, o.Path)
	}
	if o.Type != "" {
		cfg = cfg.WithTypeName(o.Type)
	}
	if o.File != "" {
		cfg = cfg.WithFileName(o.File)
	}
	if o.Dir != "" {
		cfg = cfg.WithDir(o.Dir)
	}
	if o.Generator != "" {
		cfg = cfg.WithGenerator(o.Generator)
	}
	return cfg
}

// Declarations converts the explicit handlers. Every malformed type reference
// is reported.
func (m *Manifest) Declarations() ([]decl.Declaration, error) {
	var decls []decl.Declaration
	var errs error

	for _, h := range m.Handlers {
		d, err := h.declaration()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		decls = append(decls, d)
	}
	if errs != nil {
		return nil, errs
	}
	return decls, nil
}

func (h Handler) declaration() (decl.Declaration, error) {
	var errs error
	typeRef := func(field, s string) decl.TypeRef {
		ref, err := decl.ParseTypeRef(s)
		if err != nil {
			errs = multierr.Append(errs, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Method(h.Method).
				Pos(h.Pos).
				Cause(err).
				Detail("bad %s type", field).
				Build())
		}
		return ref
	}

	d := decl.Declaration{
		Component: typeRef("component", h.Component),
		Method:    h.Method,
		Strict:    h.IsStrict(),
		Pos:       h.Pos,
	}

	params := h.Params
	if h.Handles != "" {
		if len(params) > 0 {
			errs = multierr.Append(errs, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Method(h.Method).
				Pos(h.Pos).
				Detail("handles and params are mutually exclusive").
				Build())
		}
		params = []string{h.Handles}
	}
	for _, p := range params {
		d.Params = append(d.Params, typeRef("parameter", p))
	}
	for _, r := range h.Results {
		d.Results = append(d.Results, typeRef("result", r))
	}

	if errs != nil {
		return decl.Declaration{}, errs
	}
	return d, nil
}
