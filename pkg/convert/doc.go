// Package convert provides zero-copy conversions between strings,
// byte slices and fixed-size integers, plus access to the data pointer
// backing a string.
//
// These helpers trade safety for speed and are reserved to hot paths
// (store keys, size accounting). Callers must not mutate the result of
// a zero-copy conversion.
package convert
