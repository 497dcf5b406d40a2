package dbg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	type key uint64
	first := Name(key(1))
	assert.NotEmpty(t, first)
	assert.Equal(t, first, Name(key(1)))
	assert.Equal(t, "Ø", Name(nil))

	var missing *int
	assert.Equal(t, "Ø", Name(missing))
}
