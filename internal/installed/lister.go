package installed

import (
	"sync"
	"time"

	"github.com/pailkit/pail/internal/paths"
)

// DefaultListTTL is how long a listing stays memoized. Safe only because
// the host process is short-lived per invocation; a long-running variant
// would need explicit invalidation instead of a timer.
const DefaultListTTL = 30 * time.Second

// Lister memoizes ListAll for a short TTL to avoid repeated directory
// scans within one invocation's lifetime
type Lister struct {
	resolver *paths.Resolver
	ttl      time.Duration
	nowFunc  func() time.Time

	mu       sync.Mutex
	cached   []Package
	cachedAt time.Time
}

// ListerOption is a functional option for configuring Lister
type ListerOption func(*Lister)

// WithTTL sets a custom memoization TTL
func WithTTL(ttl time.Duration) ListerOption {
	return func(l *Lister) {
		l.ttl = ttl
	}
}

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) ListerOption {
	return func(l *Lister) {
		l.nowFunc = fn
	}
}

// NewLister creates a memoizing lister over the given path resolver
func NewLister(r *paths.Resolver, opts ...ListerOption) *Lister {
	l := &Lister{
		resolver: r,
		ttl:      DefaultListTTL,
		nowFunc:  time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// List returns the installed packages of both scopes, rescanning only when
// the memoized listing has aged past the TTL
func (l *Lister) List() ([]Package, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	if l.cached != nil && now.Sub(l.cachedAt) < l.ttl {
		return l.cached, nil
	}

	pkgs, err := ListAll(l.resolver)
	if err != nil {
		return nil, err
	}

	l.cached = pkgs
	l.cachedAt = now
	return pkgs, nil
}

// Invalidate drops the memoized listing
func (l *Lister) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}
