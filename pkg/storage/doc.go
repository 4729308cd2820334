// Package storage abstracts the K/V stores archiving refscope
// descriptors (memory snapshots, size reports).
//
// Implementations are assumed to be fairly simple file system-like
// stores. Two backends are provided: a local file system store built on
// afero, and a badger store for larger snapshot collections.
package storage
