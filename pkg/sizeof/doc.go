// Package sizeof computes the retained size of arbitrary Go values.
//
// A scan walks the value graph with reflection and accounts for every
// reachable block of memory exactly once, so structures sharing memory
// (slices over the same backing array, strings over the same data,
// several pointers to one struct) are not double counted. Scanning
// several roots together shares a single visited set: the combined
// report tells how much memory the roots retain together, which is in
// general less than the sum of their individual sizes.
//
// Sizes are computed from type layouts, not from the allocator, and are
// estimates for maps (bucket geometry is approximated) and for values
// boxed in interfaces.
package sizeof
