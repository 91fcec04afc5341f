//go:build windows

package native

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenAPI_Host(t *testing.T) {
	api := NewTokenAPI()
	a := NewArena(GoAllocator{}, nil)
	defer a.Close()

	size, err := api.UserName(a.AllocUint16(UserNameBufferLen))
	require.NoError(t, err)
	assert.Greater(t, size, 1)

	tok, err := api.OpenProcessToken()
	require.NoError(t, err)
	defer func() { require.NoError(t, api.CloseToken(tok)) }()

	for _, class := range []TokenClass{TokenUser, TokenPrimaryGroup, TokenGroups} {
		t.Run(class.String(), func(t *testing.T) {
			need, _ := api.TokenInformation(tok, class, nil)
			require.Positive(t, need)

			buf := a.Alloc(int(need))
			_, err := api.TokenInformation(tok, class, buf)
			require.NoError(t, err)

			refs := api.TokenSIDs(class, buf)
			require.NotEmpty(t, refs)
			for _, ref := range refs {
				s, err := api.SIDString(ref)
				require.NoError(t, err)
				assert.True(t, strings.HasPrefix(s, "S-1-"), s)
			}
		})
	}
}

func TestTokenAPI_SIDStringNil(t *testing.T) {
	_, err := NewTokenAPI().SIDString(nil)
	require.Error(t, err)
}
