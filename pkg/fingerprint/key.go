package fingerprint

import (
	"encoding/hex"
	"fmt"
)

const (
	// KeySize for blake2b digests
	KeySize = 64
)

// NewKey creates a new key from a raw digest
func NewKey(data []byte) (Key, error) {
	var k Key
	n := copy(k[:], data)
	if n != KeySize {
		return Key{}, &BadKeySize{Key: data}
	}
	return k, nil
}

// MustNewKey creates a new key from a raw digest but panics if there is an error
func MustNewKey(data []byte) Key {
	k, e := NewKey(data)
	if e != nil {
		panic(e.Error())
	}
	return k
}

// KeyFromString parses the hex representation of a key
func KeyFromString(s string) (Key, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, err
	}
	return NewKey(data)
}

// Key identifies a fingerprinted value
type Key [KeySize]byte

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// BadKeySize is an error that's returned when the key to create has an invalid size.
type BadKeySize struct {
	Key []byte
}

func (b *BadKeySize) Error() string {
	return fmt.Sprintf("%x has invalid size of %d, expected %d", b.Key, len(b.Key), KeySize)
}
