package identity

import (
	"log/slog"

	"osident/internal/domain"
	"osident/internal/native"
)

// PosixBackend resolves identities through getgroups, getuid and getpwuid_r.
type PosixBackend struct {
	libc   native.Libc
	logger *slog.Logger
}

// NewPosixBackend creates a PosixBackend over libc.
func NewPosixBackend(libc native.Libc, logger *slog.Logger) *PosixBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PosixBackend{libc: libc, logger: logger}
}

// Name implements Backend.
func (b *PosixBackend) Name() string { return "posix" }

// Allocator implements Backend.
func (b *PosixBackend) Allocator() native.Allocator { return b.libc.Allocator() }

// Resolve implements Backend.
func (b *PosixBackend) Resolve(arena *native.Arena) (*domain.UserIdentity, error) {
	groups, err := b.groups(arena)
	if err != nil {
		return nil, err
	}

	uid := uint32(b.libc.Getuid())

	pwd := arena.Alloc(b.libc.PasswdSize())
	scratch := arena.Alloc(native.PasswdScratchSize)
	entry, found, err := b.libc.GetpwuidR(uid, pwd, scratch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrUserNotFound(uid)
	}

	b.logger.Debug("password entry", "uid", uint32(entry.UID), "gid", uint32(entry.GID), "name", entry.Name)
	return domain.NewPosixIdentity(entry.Name, uint32(entry.UID), uint32(entry.GID), groups), nil
}

// groups reads the supplementary groups: one call for the count, one to fill.
func (b *PosixBackend) groups(arena *native.Arena) ([]uint32, error) {
	n, err := b.libc.Getgroups(nil)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("getgroups count", "n", n)
	if n == 0 {
		return []uint32{}, nil
	}

	raw := arena.AllocInt32(n)
	n, err = b.libc.Getgroups(raw)
	if err != nil {
		return nil, err
	}
	n = min(n, len(raw))

	// getgroups reports gid_t through a signed buffer; IDs above 2^31-1
	// must come back unsigned.
	out := make([]uint32, n)
	for i, g := range raw[:n] {
		out[i] = uint32(g)
	}
	return out, nil
}
