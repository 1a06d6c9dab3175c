package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Classification is the cached subject/topic/title triple of a session.
type Classification struct {
	Subject string
	Topic   string
	Title   string
}

// ClassificationCache keeps recently committed classifications in process so
// a request that loses the conditional first-turn race can still answer with
// the persisted values without an extra round trip.
type ClassificationCache struct {
	cache *cache.Cache
}

func NewClassificationCache() *ClassificationCache {
	// Default expiration of 1 hour, purge of expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ClassificationCache{
		cache: c,
	}
}

func (r *ClassificationCache) Save(sessionID string, cl Classification) {
	r.cache.Set(sessionID, cl, cache.DefaultExpiration)
}

func (r *ClassificationCache) Get(sessionID string) (Classification, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(Classification), true
	}
	return Classification{}, false
}

func (r *ClassificationCache) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
