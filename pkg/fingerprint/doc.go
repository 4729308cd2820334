// Package fingerprint computes stable identities for measured values.
//
// A fingerprint is a blake2b tree hash over the canonical serialization
// of a value. Two values with the same canonical form share a
// fingerprint, which makes fingerprints usable as archive keys for
// size reports.
package fingerprint
