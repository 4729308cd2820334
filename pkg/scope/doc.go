// Package scope implements lexically chained environments binding names
// to values, with reference counting and copy-on-modify semantics.
//
// A binding associates a name to a value inside one environment. Name
// resolution walks the chain of parent environments up to the root.
// Values can be shared between bindings (Alias), which raises their
// reference count; a shared value is copied before any modification, so
// writers never observe each other through shared structure. Bound
// values are immutable: Modify rebinds the mutated result, it never
// writes through an existing binding.
//
// The reference count is an approximation: it reports 1 (single binding)
// or 2 ("more than one"), and never decays once a value has been shared.
package scope
