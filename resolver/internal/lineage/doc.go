// Package lineage computes the ancestors of a Go type for loose handler matching.
//
// Go has no inheritance, so two relations stand in for it:
//
//   - Embedding: a struct type descends from every type it embeds, directly or
//     through other embedded structs. The distance is the embedding depth, and the
//     ancestor value is the embedded field itself.
//   - Interfaces: a type descends from every interface it implements. An interface
//     that embeds another is the nearer of the two.
//
// This package is internal to the resolver.
package lineage
