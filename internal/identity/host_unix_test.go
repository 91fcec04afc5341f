//go:build unix

package identity

import (
	"errors"
	"os"
	"os/user"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osident/internal/domain"
	"osident/internal/native"
)

func TestHostResolve(t *testing.T) {
	tracker := &native.Tracker{}
	r, err := New(Options{Tracker: tracker})
	require.NoError(t, err)

	id, err := r.Resolve()
	var notFound *domain.UserNotFoundError
	if errors.As(err, &notFound) {
		t.Skipf("uid %d has no password entry on this host", notFound.UID)
	}
	require.NoError(t, err)
	assert.Zero(t, tracker.Live())

	uid, ok := id.PrimaryID().Numeric()
	require.True(t, ok)
	assert.Equal(t, uint32(os.Getuid()), uid)

	want, err := os.Getgroups()
	require.NoError(t, err)
	got := numericIDs(id.GroupIDs())
	for _, g := range want {
		assert.True(t, slices.Contains(got, uint32(g)), "missing group %d", g)
	}

	if u, err := user.Current(); err == nil {
		name, _ := id.Username()
		assert.Equal(t, u.Username, name)
		assert.Equal(t, u.Gid, id.PrimaryGroupID().String())
	}
}

func TestCurrent_Stable(t *testing.T) {
	first, err1 := Current()
	second, err2 := Current()
	assert.Same(t, first, second)
	assert.Equal(t, err1, err2)
}
