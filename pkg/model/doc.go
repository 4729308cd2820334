// Package model describes the descriptors handled by refscope:
// size reports, memory snapshots and deltas, scope scenarios and dumps.
//
// Descriptors are serializable to both JSON and YAML and are the only
// types persisted to storage. The archive path helpers define where each
// descriptor lives in a store.
package model
