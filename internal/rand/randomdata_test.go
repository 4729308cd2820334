package rand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandBytes(t *testing.T) {
	b := Bytes(1024)
	assert.Len(t, b, 1024)
	assert.NotEqual(t, b, Bytes(1024))
}

func TestRandLetterString(t *testing.T) {
	s := LetterString(512)
	assert.Len(t, s, 512)
	for _, r := range s {
		assert.True(t, r >= '0' && r <= '9' || r >= 'a' && r <= 'z')
	}
}
