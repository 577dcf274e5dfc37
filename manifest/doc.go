// Package manifest loads generator input from a YAML file.
//
// A manifest names the output package, the directories to scan for
// //dispatch:handler methods, and handlers declared explicitly:
//
//	output:
//	  package: generated
//	  path: example.com/app/generated
//	  dir: ./generated
//	scan:
//	  - ./components
//	handlers:
//	  - component: "*example.com/app/legacy.Registry"
//	    method: Inject
//	    handles: "*example.com/app/models.Account"
//	    results: [error]
//	    strict: false
//
// Handlers are strict unless strict: false is given. Relative directories are
// resolved against the manifest's own directory.
package manifest
