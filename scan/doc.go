// Package scan discovers handler declarations in Go source.
//
// A handler is a method whose doc comment carries the dispatch directive:
//
//	//dispatch:handler
//	func (c *AppComponent) Inject(obj *models.AppObject1) { ... }
//
//	//dispatch:handler loose
//	func (c *ZebraComponent) Inject(obj *models.ZebraObject) { ... }
//
// Handlers are strict unless the directive says loose. Parameter and result
// types are resolved through the file's imports; only named types and pointers
// to named types can be expressed. The directive is read syntactically, so
// packages do not need to type check to be scanned.
package scan
