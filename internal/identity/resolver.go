// Package identity resolves the identity of the process's current user from
// the host operating system.
package identity

import (
	"log/slog"

	"osident/internal/domain"
	"osident/internal/native"
)

// Source produces identity snapshots.
type Source interface {
	Resolve() (*domain.UserIdentity, error)
}

// Backend queries one operating system family.
type Backend interface {
	// Name identifies the backend in logs and diagnostics.
	Name() string
	// Allocator returns the allocator the backend's native calls require.
	Allocator() native.Allocator
	// Resolve performs the native calls. Every scratch buffer comes from arena.
	Resolve(arena *native.Arena) (*domain.UserIdentity, error)
}

// Options configures a Resolver.
type Options struct {
	Logger      *slog.Logger
	TokenPolicy domain.TokenPolicy
	// Tracker, when set, counts the arena blocks of every resolution.
	Tracker *native.Tracker
	// Backend overrides the host backend.
	Backend Backend
}

// Resolver resolves the current user. It holds no mutable state, so one
// Resolver may serve concurrent callers.
type Resolver struct {
	backend Backend
	tracker *native.Tracker
	logger  *slog.Logger
}

// New creates a Resolver for the host, or for opts.Backend when set.
func New(opts Options) (*Resolver, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	policy := opts.TokenPolicy
	if policy == "" {
		policy = domain.TokenPolicyDegrade
	}

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = newHostBackend(logger, policy)
		if err != nil {
			return nil, err
		}
	}

	return &Resolver{
		backend: backend,
		tracker: opts.Tracker,
		logger:  logger,
	}, nil
}

// Backend returns the backend name.
func (r *Resolver) Backend() string { return r.backend.Name() }

// Resolve queries the operating system for the current user. Failed native
// calls are returned as typed domain errors and never retried.
func (r *Resolver) Resolve() (*domain.UserIdentity, error) {
	arena := native.NewArena(r.backend.Allocator(), r.tracker)
	defer arena.Close()

	id, err := r.backend.Resolve(arena)
	if err != nil {
		r.logger.Debug("identity resolution failed", "backend", r.backend.Name(), "error", err)
		return nil, err
	}

	name, _ := id.Username()
	r.logger.Debug("identity resolved",
		"backend", r.backend.Name(),
		"username", name,
		"primary_id", id.PrimaryID().String(),
		"groups", len(id.GroupIDs()),
		"partial", id.Partial())
	return id, nil
}
