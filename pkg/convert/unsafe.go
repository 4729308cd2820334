//go:build !appengine
// +build !appengine

package convert

import (
	"reflect"
	"unsafe"
)

// UnsafeStringToBytes converts strings to []byte without memcopy
func UnsafeStringToBytes(s string) []byte {
	ln := len(s)
	// nolint:  govet
	return *(*[]byte)(unsafe.Pointer(&reflect.SliceHeader{
		Len:  ln,
		Cap:  ln,
		Data: (*reflect.StringHeader)(unsafe.Pointer(&s)).Data,
	}))
}

// UnsafeBytesToString converts []byte to string without a memcopy
func UnsafeBytesToString(b []byte) string {
	// nolint:  govet
	return *(*string)(unsafe.Pointer(&reflect.StringHeader{Data: uintptr(unsafe.Pointer(&b[0])), Len: len(b)}))
}

// StringData returns the address of the backing array of a string.
//
// Two strings sharing a backing array (e.g. a string and a slice of it
// starting at index 0) report the same address.
func StringData(s string) uintptr {
	return (*reflect.StringHeader)(unsafe.Pointer(&s)).Data
}
