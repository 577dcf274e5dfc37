package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/typedispatch/decl"
	"github.com/wippyai/typedispatch/errors"
	"github.com/wippyai/typedispatch/gen"
	"github.com/wippyai/typedispatch/manifest"
	"github.com/wippyai/typedispatch/resolver"
	"github.com/wippyai/typedispatch/scan"
)

type options struct {
	manifest    string
	dirs        string
	importPath  string
	out         string
	pkg         string
	pkgPath     string
	typeName    string
	fileName    string
	list        bool
	stdout      bool
	interactive bool
}

func main() {
	var (
		manifestFile = flag.String("manifest", "", "YAML manifest with output settings and explicit handlers")
		dirs         = flag.String("dir", "", "Directories to scan for //dispatch:handler methods (comma-separated)")
		importPath   = flag.String("import", "", "Import path of the scanned package (single -dir only)")
		out          = flag.String("out", "", "Output directory")
		pkg          = flag.String("pkg", "", "Package name of the generated file")
		pkgPath      = flag.String("pkgpath", "", "Import path of the generated package")
		typeName     = flag.String("type", "", "Name of the generated dispatcher type")
		fileName     = flag.String("file", "", "Name of the generated file")
		list         = flag.Bool("list", false, "List the dispatch table and exit")
		stdout       = flag.Bool("stdout", false, "Print the generated source instead of writing it")
		verbose      = flag.Bool("v", false, "Verbose logging")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *manifestFile == "" && *dirs == "" {
		fmt.Fprintln(os.Stderr, "Usage: dispatchgen -dir <dir>[,<dir>...] [-out dir] [-pkg name -pkgpath path] [-type Name]")
		fmt.Fprintln(os.Stderr, "       dispatchgen -manifest <dispatch.yaml>")
		fmt.Fprintln(os.Stderr, "       dispatchgen ... -list | -stdout | -i")
		os.Exit(2)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync() //nolint:errcheck
		gen.SetLogger(logger.Named("gen"))
		scan.SetLogger(logger.Named("scan"))
		resolver.SetLogger(logger.Named("resolver"))
	}

	opts := options{
		manifest:    *manifestFile,
		dirs:        *dirs,
		importPath:  *importPath,
		out:         *out,
		pkg:         *pkg,
		pkgPath:     *pkgPath,
		typeName:    *typeName,
		fileName:    *fileName,
		list:        *list,
		stdout:      *stdout,
		interactive: *interactive,
	}
	if err := run(opts, os.Stdout); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", e)
		}
		os.Exit(1)
	}
}

func run(opts options, w io.Writer) error {
	cfg, decls, err := load(opts)
	if err != nil {
		return err
	}

	p, err := gen.NewPlan(decls, cfg)
	if err != nil {
		return err
	}

	switch {
	case opts.interactive:
		return runInteractive(p)
	case opts.list:
		printPlan(w, p)
		return nil
	case opts.stdout:
		src, err := gen.Render(p)
		if err != nil {
			return err
		}
		_, err = w.Write(src)
		return err
	}

	path, err := gen.New(cfg).Run(decls)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Generated %s (%d handlers, %d components)\n", path, len(p.Branches), len(p.Params))
	return nil
}

// load collects declarations from the manifest and the scanned directories and
// applies flag overrides to the manifest configuration.
func load(opts options) (gen.Config, []decl.Declaration, error) {
	cfg := gen.DefaultConfig()
	var decls []decl.Declaration
	var dirs []string

	if opts.manifest != "" {
		m, err := manifest.Load(opts.manifest)
		if err != nil {
			return cfg, nil, err
		}
		cfg = m.Config()
		dirs = append(dirs, m.Scan...)
		explicit, err := m.Declarations()
		if err != nil {
			return cfg, nil, err
		}
		decls = append(decls, explicit...)
	}

	for _, d := range strings.Split(opts.dirs, ",") {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}

	var scanned []decl.Declaration
	var err error
	switch {
	case opts.importPath != "" && len(dirs) != 1:
		return cfg, nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("-import needs exactly one directory, got %d", len(dirs)).
			Build()
	case opts.importPath != "":
		scanned, err = scan.Dir(dirs[0], opts.importPath)
	case len(dirs) > 0:
		scanned, err = scan.Dirs(dirs...)
	}
	if err != nil {
		return cfg, nil, err
	}
	decls = append(decls, scanned...)

	if opts.pkg != "" || opts.pkgPath != "" {
		name := opts.pkg
		if name == "" {
			name = decl.TypeRef{Path: opts.pkgPath}.Package()
		}
		cfg = cfg.WithPackage(name, opts.pkgPath)
	}
	if opts.typeName != "" {
		cfg = cfg.WithTypeName(opts.typeName)
	}
	if opts.fileName != "" {
		cfg = cfg.WithFileName(opts.fileName)
	}
	if opts.out != "" {
		cfg = cfg.WithDir(opts.out)
	}
	return cfg, decls, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	strictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	looseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD580"))
)

func printPlan(w io.Writer, p *gen.Plan) {
	fmt.Fprintf(w, "%s %s.%s\n", headerStyle.Render("Dispatcher"), p.Config.PackageName, p.Config.TypeName)
	fmt.Fprintf(w, "Prepare(r, %s)\n\n", strings.Join(p.Signature(), ", "))
	for _, b := range p.Branches {
		fmt.Fprintln(w, describe(b))
	}
}

// describe renders one branch as "mode type -> component.method".
func describe(b *gen.Branch) string {
	mode := strictStyle.Render("strict")
	if !b.Strict {
		mode = looseStyle.Render("loose ")
	}
	return fmt.Sprintf("%s %s -> %s.%s", mode, b.Handled.Short(), b.Component.Type.Short(), b.Method)
}
