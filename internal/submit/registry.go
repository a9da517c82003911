package submit

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Registry remembers when each key was last submitted. It is safe for use by
// several capture loops at once.
type Registry struct {
	mu       sync.Mutex
	last     *cache.Cache
	cooldown time.Duration
}

// NewRegistry creates a Registry enforcing cooldown between submissions of
// the same key. Entries are evicted once they can no longer suppress anything.
func NewRegistry(cooldown time.Duration) *Registry {
	retain := 2 * cooldown
	if retain <= 0 {
		retain = time.Second
	}
	return &Registry{
		last:     cache.New(retain, 2*retain),
		cooldown: cooldown,
	}
}

// Reserve records now for key and returns true, unless key was recorded less
// than the cooldown before now, in which case nothing changes and it returns
// false. Check and record happen under one lock.
func (r *Registry) Reserve(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.last.Get(key); ok {
		if now.Sub(v.(time.Time)) < r.cooldown {
			return false
		}
	}
	r.last.SetDefault(key, now)
	return true
}

// Cooldown returns the configured window.
func (r *Registry) Cooldown() time.Duration {
	return r.cooldown
}
