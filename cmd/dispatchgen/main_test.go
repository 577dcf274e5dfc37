package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/typedispatch/errors"
	"github.com/wippyai/typedispatch/gen"
)

const (
	componentsDir = "../../testbed/components"
	generatedPath = "github.com/wippyai/typedispatch/testbed/generated"
)

func testbedOptions() options {
	return options{
		dirs:    componentsDir,
		pkg:     "generated",
		pkgPath: generatedPath,
	}
}

func testbedPlan(t *testing.T) (*gen.Plan, []string) {
	t.Helper()
	cfg, decls, err := load(testbedOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, err := gen.NewPlan(decls, cfg)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	src, err := gen.Render(p)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return p, strings.Split(string(src), "\n")
}

func TestRun_Stdout(t *testing.T) {
	opts := testbedOptions()
	opts.stdout = true

	var out bytes.Buffer
	if err := run(opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	src := out.String()
	for _, want := range []string{
		"// Code generated by dispatchgen. DO NOT EDIT.",
		"package generated",
		"func Prepare(r *resolver.Resolver, appComponent *components.AppComponent, bananaComponent *components.BananaComponent",
		"case *models.ZebraObject:",
		"case models.Labeled:",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRun_List(t *testing.T) {
	opts := testbedOptions()
	opts.list = true

	var out bytes.Buffer
	if err := run(opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Prepare(r, appComponent, bananaComponent, labelComponent, netComponent, zebraComponent)",
		"*models.AppObject1 -> *components.AppComponent.Inject",
		"*models.ZebraObject -> *components.ZebraComponent.Inject",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("listing missing %q:\n%s", want, text)
		}
	}
}

func TestRun_Write(t *testing.T) {
	opts := testbedOptions()
	opts.out = t.TempDir()
	opts.fileName = "table_gen.go"

	var out bytes.Buffer
	if err := run(opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	path := filepath.Join(opts.out, "table_gen.go")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("generated file: %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("output should name the file: %q", out.String())
	}
}

func TestLoad_Manifest(t *testing.T) {
	components, err := filepath.Abs(componentsDir)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.yaml")
	src := `output:
  path: example.com/app/wiring
  type: Table
scan:
  - ` + components + `
handlers:
  - component: "*github.com/wippyai/typedispatch/testbed/components.AppComponent"
    method: Audit
    handles: "*github.com/wippyai/typedispatch/testbed/models.NonHandledObject"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, decls, err := load(options{manifest: path, typeName: "Marinade"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(decls) != 8 {
		t.Errorf("got %d declarations, want 8", len(decls))
	}
	if decls[0].Method != "Audit" {
		t.Errorf("manifest handlers should come first, got %s", decls[0])
	}
	if cfg.PackageName != "wiring" || cfg.PackagePath != "example.com/app/wiring" {
		t.Errorf("package = %s (%s)", cfg.PackageName, cfg.PackagePath)
	}
	if cfg.TypeName != "Marinade" {
		t.Errorf("flag should override the manifest type, got %s", cfg.TypeName)
	}
}

func TestLoad_ImportNeedsOneDir(t *testing.T) {
	_, _, err := load(options{dirs: "a,b", importPath: "example.com/app"})
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestRun_NoDeclarations(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := run(options{dirs: dir, importPath: "example.com/a", stdout: true}, &bytes.Buffer{})
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestFilterBranches(t *testing.T) {
	p, _ := testbedPlan(t)

	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 7},
		{query: "zebra", want: 1},
		{query: "NETCOMPONENT", want: 2},
		{query: "provide", want: 2},
		{query: "labeled", want: 1},
		{query: "nothing", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := filterBranches(p.Branches, tt.query); len(got) != tt.want {
				t.Errorf("filterBranches(%q) = %d branches, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}

func TestCaseLine(t *testing.T) {
	p, lines := testbedPlan(t)

	for _, b := range p.Branches {
		i := caseLine(lines, b, p.Config.PackagePath)
		if i == 0 {
			t.Errorf("no case line for %s", b.Handled.Short())
			continue
		}
		if got := strings.TrimSpace(lines[i]); got != "case "+b.Handled.Short()+":" {
			t.Errorf("case line for %s is %q", b.Handled.Short(), got)
		}
	}
}
