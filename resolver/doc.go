// Package resolver maps Go types to the handlers that own them.
//
// A Resolver holds two tables. Every registration lands in the exact table; loose
// registrations are also eligible for ancestor fallback:
//
//	r := resolver.NewWithDefaults()
//	err := r.Register(reflect.TypeFor[*Order](), orderHandler, true)  // strict
//	err = r.Register(reflect.TypeFor[Auditable](), auditHandler, false) // loose
//
//	err = r.Dispatch(order) // orderHandler
//	err = r.Dispatch(refund) // auditHandler, if *Refund implements Auditable
//
// # Resolution order
//
//  1. The exact runtime type of the value.
//  2. The nearest loose embedded ancestor. A *Refund that embeds Order reaches a
//     loose *Order handler at depth 1, which receives &refund.Order.
//  3. The most specific loose interface the type implements.
//
// Two ancestors at the same distance, or implemented interfaces that do not refine
// one another, make the lookup fail with an ambiguity error naming both.
//
// Registering the same type twice fails and leaves the first registration intact.
// RegisterAll applies a batch atomically.
//
// # Thread Safety
//
// All table access is serialized on one mutex. Handlers are resolved under the
// lock and invoked after it is released.
package resolver
