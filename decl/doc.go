// Package decl holds the build-time model shared by the scanner, the manifest
// loader and the generator.
//
// A Declaration is one handler method: the component type that owns it, the
// method name, its parameter and result types, and whether its registration is
// strict. Declarations are validated as a batch; every problem is reported, not
// just the first:
//
//	if err := decl.Validate(decls); err != nil {
//	    for _, e := range multierr.Errors(err) {
//	        log.Println(e)
//	    }
//	}
//
// Types are referenced by import path and name, never by reflect.Type, since the
// generator runs before the code it describes is compiled.
package decl
