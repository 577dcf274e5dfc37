// Package gen turns handler declarations into a single generated dispatcher.
//
// Generation is a pure function of the declarations and the Config:
//
//	decls := []decl.Declaration{...} // from scan.Dir or manifest.Load
//	g := gen.New(gen.DefaultConfig().WithPackage("generated", "example.com/app/generated"))
//	path, err := g.Run(decls)
//
// NewPlan validates the declarations as a batch and rejects, at build time,
// handled types claimed twice, parameter names that collide, and types the
// output package cannot reach. The constructor takes one component per owning
// type, ordered by parameter name, so the signature does not depend on the
// order the declarations were discovered in.
//
// The generated file exposes:
//
//	func Prepare(r *resolver.Resolver, appComponent *components.AppComponent, ...) (*Dispatcher, error)
//	func Instance() *Dispatcher
//	func (d *Dispatcher) Dispatch(obj any) error
//
// Prepare registers every handler with the resolver in one atomic batch.
package gen
