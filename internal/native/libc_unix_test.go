//go:build unix

package native

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osident/internal/domain"
)

func TestLibc_GetgroupsCountThenFill(t *testing.T) {
	libc := NewLibc()

	n, err := libc.Getgroups(nil)
	require.NoError(t, err)

	want, err := os.Getgroups()
	require.NoError(t, err)
	assert.Equal(t, len(want), n)

	a := NewArena(libc.Allocator(), nil)
	defer a.Close()
	if n == 0 {
		return
	}
	list := a.AllocInt32(n)
	got, err := libc.Getgroups(list)
	require.NoError(t, err)
	assert.Equal(t, n, got)
	for i, g := range want {
		assert.Equal(t, uint32(g), uint32(list[i]))
	}
}

func TestLibc_Getuid(t *testing.T) {
	assert.Equal(t, uint32(os.Getuid()), uint32(NewLibc().Getuid()))
}

func TestLibc_GetpwuidR(t *testing.T) {
	libc := NewLibc()
	a := NewArena(libc.Allocator(), nil)
	defer a.Close()

	uid := uint32(libc.Getuid())
	entry, found, err := libc.GetpwuidR(uid, a.Alloc(libc.PasswdSize()), a.Alloc(PasswdScratchSize))
	require.NoError(t, err)
	if !found {
		t.Skipf("uid %d has no password entry on this host", uid)
	}
	assert.Equal(t, uid, uint32(entry.UID))
	assert.NotEmpty(t, entry.Name)
}

func TestLibc_GetpwuidR_Unknown(t *testing.T) {
	libc := NewLibc()
	a := NewArena(libc.Allocator(), nil)
	defer a.Close()

	_, found, err := libc.GetpwuidR(3999999999, a.Alloc(libc.PasswdSize()), a.Alloc(PasswdScratchSize))
	if err != nil {
		var nce *domain.NativeCallError
		require.True(t, errors.As(err, &nce), "unexpected error type %T", err)
		return
	}
	assert.False(t, found)
}
