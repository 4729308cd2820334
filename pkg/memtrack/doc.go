// Package memtrack snapshots process memory and reports deltas.
//
// A snapshot is taken after a garbage collection pass, so figures reflect
// live data rather than collector lag. Change brackets an operation with
// two snapshots and reports the signed difference: heap figures may
// shrink across an operation.
//
// The Watcher polls memory in the background, logs heap growth and can
// dump pprof heap and allocation profiles when configured thresholds are
// crossed.
package memtrack
