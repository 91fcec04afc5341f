package identity

import (
	"log/slog"
	"unicode/utf16"

	"osident/internal/domain"
	"osident/internal/native"
)

// WindowsBackend resolves identities through the process security token.
type WindowsBackend struct {
	api    native.TokenAPI
	policy domain.TokenPolicy
	logger *slog.Logger
}

// NewWindowsBackend creates a WindowsBackend over api.
func NewWindowsBackend(api native.TokenAPI, policy domain.TokenPolicy, logger *slog.Logger) *WindowsBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if policy == "" {
		policy = domain.TokenPolicyDegrade
	}
	return &WindowsBackend{api: api, policy: policy, logger: logger}
}

// Name implements Backend.
func (b *WindowsBackend) Name() string { return "windows" }

// Allocator implements Backend.
func (b *WindowsBackend) Allocator() native.Allocator { return native.GoAllocator{} }

// Resolve implements Backend. Once the token is open no single field can fail
// the resolution; fields that do not resolve are left absent.
func (b *WindowsBackend) Resolve(arena *native.Arena) (*domain.UserIdentity, error) {
	username := b.userName(arena)

	tok, err := b.api.OpenProcessToken()
	if err != nil {
		if b.policy == domain.TokenPolicyStrict {
			return nil, domain.ErrAccessDenied(err, "open process token: %v", err)
		}
		b.logger.Warn("process token unavailable, returning partial identity", "error", err)
		return domain.NewWindowsIdentity(username, "", "", nil, true), nil
	}
	defer func() {
		if err := b.api.CloseToken(tok); err != nil {
			b.logger.Debug("close token", "error", err)
		}
	}()

	userSID := b.firstSID(arena, tok, native.TokenUser)
	groupSID := b.firstSID(arena, tok, native.TokenPrimaryGroup)
	groups := b.groupSIDs(arena, tok)

	return domain.NewWindowsIdentity(username, userSID, groupSID, groups, false), nil
}

// userName returns nil when GetUserNameW fails or reports an empty name.
func (b *WindowsBackend) userName(arena *native.Arena) *string {
	buf := arena.AllocUint16(native.UserNameBufferLen)
	size, err := b.api.UserName(buf)
	if err != nil {
		b.logger.Debug("GetUserNameW", "error", err)
		return nil
	}
	n := min(size-1, len(buf))
	if n <= 0 {
		return nil
	}
	name := string(utf16.Decode(buf[:n]))
	return &name
}

// tokenInfo sizes the information class with a nil buffer, then fills it.
func (b *WindowsBackend) tokenInfo(arena *native.Arena, tok native.Token, class native.TokenClass) []byte {
	size, _ := b.api.TokenInformation(tok, class, nil)
	if int32(size) <= 0 {
		b.logger.Debug("token information size", "class", class.String(), "size", int32(size))
		return nil
	}
	buf := arena.Alloc(int(size))
	if _, err := b.api.TokenInformation(tok, class, buf); err != nil {
		b.logger.Debug("token information", "class", class.String(), "error", err)
		return nil
	}
	return buf
}

func (b *WindowsBackend) firstSID(arena *native.Arena, tok native.Token, class native.TokenClass) string {
	buf := b.tokenInfo(arena, tok, class)
	if buf == nil {
		return ""
	}
	refs := b.api.TokenSIDs(class, buf)
	if len(refs) == 0 {
		return ""
	}
	return b.sidString(refs[0])
}

func (b *WindowsBackend) groupSIDs(arena *native.Arena, tok native.Token) []string {
	buf := b.tokenInfo(arena, tok, native.TokenGroups)
	if buf == nil {
		return nil
	}
	refs := b.api.TokenSIDs(native.TokenGroups, buf)
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if s := b.sidString(ref); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (b *WindowsBackend) sidString(ref native.SIDRef) string {
	if ref == nil {
		return ""
	}
	s, err := b.api.SIDString(ref)
	if err != nil {
		b.logger.Debug("ConvertSidToStringSidW", "error", err)
		return ""
	}
	return s
}
