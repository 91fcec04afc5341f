package identity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osident/internal/domain"
	"osident/internal/native"
	"osident/internal/testutil"
)

const (
	aliceSID = "S-1-5-21-1004336348-1177238915-682003330-1001"
	noneSID  = "S-1-5-21-1004336348-1177238915-682003330-513"
)

var groupSIDs = []string{"S-1-1-0", "S-1-5-32-545", "S-1-5-4", "S-1-5-11"}

func newWindowsResolver(t *testing.T, api *testutil.MockTokenAPI, policy domain.TokenPolicy) (*Resolver, *native.Tracker) {
	t.Helper()
	tracker := &native.Tracker{}
	r, err := New(Options{Backend: NewWindowsBackend(api, policy, nil), Tracker: tracker})
	require.NoError(t, err)
	return r, tracker
}

func sidStrings(ids []domain.PrincipalID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := id.SID(); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestWindowsResolve_Full(t *testing.T) {
	api := testutil.NewMockToken("alice", aliceSID, noneSID, groupSIDs...)
	r, tracker := newWindowsResolver(t, api, "")

	id, err := r.Resolve()
	require.NoError(t, err)

	name, ok := id.Username()
	assert.True(t, ok)
	assert.Equal(t, "alice", name)
	assert.Equal(t, domain.SIDPrincipal(aliceSID), id.PrimaryID())
	assert.Equal(t, domain.SIDPrincipal(noneSID), id.PrimaryGroupID())
	assert.Equal(t, groupSIDs, sidStrings(id.GroupIDs()))
	assert.False(t, id.Partial())

	assert.Zero(t, api.OpenTokens())
	assert.Zero(t, tracker.Live())
	// name buffer plus one buffer per information class
	assert.Equal(t, int64(4), tracker.Total())
}

func TestWindowsResolve_CallOrder(t *testing.T) {
	api := testutil.NewMockToken("alice", aliceSID, noneSID, "S-1-1-0")
	r, _ := newWindowsResolver(t, api, "")

	_, err := r.Resolve()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GetUserNameW",
		"OpenProcessToken",
		"GetTokenInformation", "GetTokenInformation", "ConvertSidToStringSidW",
		"GetTokenInformation", "GetTokenInformation", "ConvertSidToStringSidW",
		"GetTokenInformation", "GetTokenInformation", "ConvertSidToStringSidW",
		"CloseHandle",
	}, api.Calls())
}

func TestWindowsResolve_UsernameFails(t *testing.T) {
	api := testutil.NewMockToken("alice", aliceSID, noneSID, groupSIDs...)
	api.UserNameFn = func([]uint16) (int, error) {
		return 0, domain.ErrNativeCall("GetUserNameW", 5, errors.New("access is denied"))
	}
	r, _ := newWindowsResolver(t, api, "")

	id, err := r.Resolve()
	require.NoError(t, err)

	_, ok := id.Username()
	assert.False(t, ok)
	assert.Equal(t, domain.SIDPrincipal(aliceSID), id.PrimaryID())
	assert.Equal(t, domain.SIDPrincipal(noneSID), id.PrimaryGroupID())
	assert.Equal(t, groupSIDs, sidStrings(id.GroupIDs()))
}

func TestWindowsResolve_EmptyUsername(t *testing.T) {
	api := testutil.NewMockToken("", aliceSID, noneSID)
	r, _ := newWindowsResolver(t, api, "")

	id, err := r.Resolve()
	require.NoError(t, err)
	_, ok := id.Username()
	assert.False(t, ok)
}

func TestWindowsResolve_TokenOpenFails(t *testing.T) {
	openErr := domain.ErrNativeCall("OpenProcessToken", 5, errors.New("access is denied"))

	t.Run("degrade", func(t *testing.T) {
		api := testutil.NewMockToken("alice", aliceSID, noneSID, groupSIDs...)
		api.OpenProcessTokenFn = func() (native.Token, error) { return 0, openErr }
		r, tracker := newWindowsResolver(t, api, domain.TokenPolicyDegrade)

		id, err := r.Resolve()
		require.NoError(t, err)

		name, ok := id.Username()
		assert.True(t, ok)
		assert.Equal(t, "alice", name)
		assert.True(t, id.PrimaryID().IsZero())
		assert.True(t, id.PrimaryGroupID().IsZero())
		assert.Empty(t, id.GroupIDs())
		assert.True(t, id.Partial())
		assert.Equal(t, []string{"GetUserNameW", "OpenProcessToken"}, api.Calls())
		assert.Zero(t, tracker.Live())
	})

	t.Run("strict", func(t *testing.T) {
		api := testutil.NewMockToken("alice", aliceSID, noneSID, groupSIDs...)
		api.OpenProcessTokenFn = func() (native.Token, error) { return 0, openErr }
		r, tracker := newWindowsResolver(t, api, domain.TokenPolicyStrict)

		id, err := r.Resolve()
		require.Error(t, err)
		assert.Nil(t, id)

		var denied *domain.AccessDeniedError
		require.ErrorAs(t, err, &denied)
		var nce *domain.NativeCallError
		require.ErrorAs(t, err, &nce)
		assert.Equal(t, "OpenProcessToken", nce.Call)
		assert.Zero(t, tracker.Live())
	})
}

func TestWindowsResolve_FieldFailuresAreNotFatal(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(api *testutil.MockTokenAPI)
		wantUser   domain.PrincipalID
		wantGroup  domain.PrincipalID
		wantGroups []string
	}{
		{
			name: "zero size for user class",
			mutate: func(api *testutil.MockTokenAPI) {
				inner := api.TokenInformationFn
				api.TokenInformationFn = func(tok native.Token, class native.TokenClass, buf []byte) (uint32, error) {
					if class == native.TokenUser {
						return 0, testutil.ErrInsufficientBuffer
					}
					return inner(tok, class, buf)
				}
			},
			wantGroup:  domain.SIDPrincipal(noneSID),
			wantGroups: groupSIDs,
		},
		{
			name: "negative size for groups class",
			mutate: func(api *testutil.MockTokenAPI) {
				inner := api.TokenInformationFn
				api.TokenInformationFn = func(tok native.Token, class native.TokenClass, buf []byte) (uint32, error) {
					if class == native.TokenGroups {
						return 0xFFFFFFFF, nil
					}
					return inner(tok, class, buf)
				}
			},
			wantUser:   domain.SIDPrincipal(aliceSID),
			wantGroup:  domain.SIDPrincipal(noneSID),
			wantGroups: []string{},
		},
		{
			name: "second query fails for primary group",
			mutate: func(api *testutil.MockTokenAPI) {
				inner := api.TokenInformationFn
				api.TokenInformationFn = func(tok native.Token, class native.TokenClass, buf []byte) (uint32, error) {
					if class == native.TokenPrimaryGroup && len(buf) > 0 {
						return 0, domain.ErrNativeCall("GetTokenInformation", 87, errors.New("the parameter is incorrect"))
					}
					return inner(tok, class, buf)
				}
			},
			wantUser:   domain.SIDPrincipal(aliceSID),
			wantGroups: groupSIDs,
		},
		{
			name: "one group SID fails conversion",
			mutate: func(api *testutil.MockTokenAPI) {
				inner := api.SIDStringFn
				api.SIDStringFn = func(sid native.SIDRef) (string, error) {
					s, err := inner(sid)
					if s == "S-1-5-4" {
						return "", domain.ErrNativeCall("ConvertSidToStringSidW", 1337, errors.New("the security ID structure is invalid"))
					}
					return s, err
				}
			},
			wantUser:   domain.SIDPrincipal(aliceSID),
			wantGroup:  domain.SIDPrincipal(noneSID),
			wantGroups: []string{"S-1-1-0", "S-1-5-32-545", "S-1-5-11"},
		},
		{
			name: "null SID pointer",
			mutate: func(api *testutil.MockTokenAPI) {
				inner := api.TokenSIDsFn
				api.TokenSIDsFn = func(class native.TokenClass, buf []byte) []native.SIDRef {
					if class == native.TokenUser {
						return []native.SIDRef{nil}
					}
					return inner(class, buf)
				}
			},
			wantGroup:  domain.SIDPrincipal(noneSID),
			wantGroups: groupSIDs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.NewMockToken("alice", aliceSID, noneSID, groupSIDs...)
			tt.mutate(api)
			r, tracker := newWindowsResolver(t, api, "")

			id, err := r.Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, id.PrimaryID())
			assert.Equal(t, tt.wantGroup, id.PrimaryGroupID())
			assert.Equal(t, tt.wantGroups, sidStrings(id.GroupIDs()))
			assert.False(t, id.Partial())
			assert.Zero(t, api.OpenTokens(), "token left open")
			assert.Zero(t, tracker.Live())
		})
	}
}

func TestWindowsResolve_CloseErrorIgnored(t *testing.T) {
	api := testutil.NewMockToken("alice", aliceSID, noneSID)
	api.CloseTokenFn = func(native.Token) error {
		return domain.ErrNativeCall("CloseHandle", 6, errors.New("the handle is invalid"))
	}
	r, _ := newWindowsResolver(t, api, "")

	id, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, domain.SIDPrincipal(aliceSID), id.PrimaryID())
	assert.Zero(t, api.OpenTokens())
}

func TestWindowsResolve_Idempotent(t *testing.T) {
	api := testutil.NewMockToken("alice", aliceSID, noneSID, groupSIDs...)
	r, _ := newWindowsResolver(t, api, "")

	first, err := r.Resolve()
	require.NoError(t, err)
	second, err := r.Resolve()
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}
