package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// StreamRegistry tracks chat sessions with a streaming exchange in
// flight, so a second stream cannot interleave with the first on the
// same transcript. Entries expire on their own in case a stream never
// reports completion.
type StreamRegistry struct {
	cache *cache.Cache
}

func NewStreamRegistry() *StreamRegistry {
	c := cache.New(5*time.Minute, 1*time.Minute)
	return &StreamRegistry{
		cache: c,
	}
}

// TryAcquire claims the session for a stream. Returns false when a
// stream is already active on it.
func (r *StreamRegistry) TryAcquire(sessionID uuid.UUID) bool {
	return r.cache.Add(sessionID.String(), time.Now(), cache.DefaultExpiration) == nil
}

func (r *StreamRegistry) Release(sessionID uuid.UUID) {
	r.cache.Delete(sessionID.String())
}

func (r *StreamRegistry) Active(sessionID uuid.UUID) bool {
	_, found := r.cache.Get(sessionID.String())
	return found
}
