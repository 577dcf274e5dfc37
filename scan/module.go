package scan

import (
	"os"
	"path"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/wippyai/typedispatch/errors"
)

// ImportPath derives the import path of the package in dir from the nearest
// enclosing go.mod.
func ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(errors.PhaseScan, errors.KindInvalidInput, err, "cannot resolve "+dir)
	}

	for root := abs; ; {
		gomod := filepath.Join(root, "go.mod")
		data, err := os.ReadFile(gomod)
		if err == nil {
			module := modfile.ModulePath(data)
			if module == "" {
				return "", errors.New(errors.PhaseScan, errors.KindParse).
					Pos(gomod).
					Detail("no module directive").
					Build()
			}
			rel, err := filepath.Rel(root, abs)
			if err != nil {
				return "", errors.Wrap(errors.PhaseScan, errors.KindInvalidInput, err, "cannot relate "+dir+" to its module")
			}
			if rel == "." {
				return module, nil
			}
			return path.Join(module, filepath.ToSlash(rel)), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrap(errors.PhaseScan, errors.KindInvalidInput, err, "cannot read "+gomod)
		}

		parent := filepath.Dir(root)
		if parent == root {
			return "", errors.New(errors.PhaseScan, errors.KindNotFound).
				Pos(dir).
				Detail("no go.mod found in any parent directory").
				Build()
		}
		root = parent
	}
}
