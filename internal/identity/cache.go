package identity

import (
	"sync"

	"osident/internal/domain"
)

// Cached resolves once and returns the same snapshot, or the same error, to
// every later caller. Reads after the first resolution take no lock.
type Cached struct {
	src Source

	once     sync.Once
	identity *domain.UserIdentity
	err      error
}

// NewCached wraps src.
func NewCached(src Source) *Cached {
	return &Cached{src: src}
}

// Resolve implements Source.
func (c *Cached) Resolve() (*domain.UserIdentity, error) {
	c.once.Do(func() {
		c.identity, c.err = c.src.Resolve()
	})
	return c.identity, c.err
}

var current = sync.OnceValues(func() (*domain.UserIdentity, error) {
	r, err := New(Options{})
	if err != nil {
		return nil, err
	}
	return r.Resolve()
})

// Current returns the process-wide snapshot of the current user, resolved on
// first use with the default options.
func Current() (*domain.UserIdentity, error) {
	return current()
}
