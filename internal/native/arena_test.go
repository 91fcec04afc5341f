package native

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAllocator struct {
	GoAllocator
	freed int
}

func (c *countingAllocator) Free(p unsafe.Pointer) { c.freed++ }

func TestArena_AllocAndClose(t *testing.T) {
	alloc := &countingAllocator{}
	tracker := &Tracker{}
	a := NewArena(alloc, tracker)

	buf := a.Alloc(16)
	require.Len(t, buf, 16)
	assert.Equal(t, make([]byte, 16), buf)

	ints := a.AllocInt32(4)
	require.Len(t, ints, 4)
	ints[3] = -1

	units := a.AllocUint16(UserNameBufferLen)
	require.Len(t, units, UserNameBufferLen)

	assert.Equal(t, int64(3), tracker.Live())
	assert.Equal(t, int64(3), tracker.Total())

	a.Close()
	assert.Zero(t, tracker.Live())
	assert.Equal(t, 3, alloc.freed)

	// Close is idempotent and the arena refuses new blocks.
	a.Close()
	assert.Equal(t, 3, alloc.freed)
	assert.Nil(t, a.Alloc(8))
	assert.Zero(t, tracker.Live())
}

func TestArena_NonPositiveSizes(t *testing.T) {
	tracker := &Tracker{}
	a := NewArena(nil, tracker)
	defer a.Close()

	assert.Nil(t, a.Alloc(0))
	assert.Nil(t, a.Alloc(-1))
	assert.Nil(t, a.AllocInt32(0))
	assert.Nil(t, a.AllocUint16(0))
	assert.Zero(t, tracker.Total())
}

func TestTokenClass_String(t *testing.T) {
	assert.Equal(t, "TokenUser", TokenUser.String())
	assert.Equal(t, "TokenGroups", TokenGroups.String())
	assert.Equal(t, "TokenPrimaryGroup", TokenPrimaryGroup.String())
	assert.Equal(t, "TokenClass(?)", TokenClass(99).String())
}
