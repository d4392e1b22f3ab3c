package wasmrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampMemoryClampsLow(t *testing.T) {
	assert.Equal(t, MinMemoryBytes, ClampMemory(1024))
}

func TestClampMemoryClampsHigh(t *testing.T) {
	assert.Equal(t, MaxMemoryBytes, ClampMemory(200<<20))
}

func TestClampMemoryPassesThroughInRange(t *testing.T) {
	assert.Equal(t, uint32(20<<20), ClampMemory(20<<20))
}

func TestConfigMemoryBytesDefaultsWhenZero(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultMemoryBytes, cfg.memoryBytes())
}

func TestConfigMemoryBytesClampsConfigured(t *testing.T) {
	cfg := Config{MaxMemoryBytes: 1}
	assert.Equal(t, MinMemoryBytes, cfg.memoryBytes())
}

func TestUnpackPtrLen(t *testing.T) {
	packed := uint64(42)<<32 | uint64(17)
	ptr, length := unpackPtrLen(packed)
	assert.Equal(t, uint32(42), ptr)
	assert.Equal(t, uint32(17), length)
}

func TestTrapErrorUnwrap(t *testing.T) {
	cause := assertError("boom")
	err := &TrapError{Phase: "global", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "global")
}

type assertError string

func (e assertError) Error() string { return string(e) }
