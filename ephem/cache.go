package ephem

import (
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/echoflaresat/eclipses/eclipse"
)

// Cached memoizes another provider's states by instant. The candidate
// search evaluates the same instants the engine later classifies.
type Cached struct {
	provider Provider
	cache    *lru.Cache // unix nanos -> eclipse.BodySet
}

func NewCached(p Provider, size int) (*Cached, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cached{provider: p, cache: cache}, nil
}

func (c *Cached) Name() string { return c.provider.Name() + " (cached)" }

func (c *Cached) State(t time.Time) (eclipse.BodySet, error) {
	key := t.UnixNano()
	if val, ok := c.cache.Get(key); ok {
		set := val.(eclipse.BodySet)
		set.Instant = t
		return set, nil
	}

	set, err := c.provider.State(t)
	if err != nil {
		return eclipse.BodySet{}, err
	}
	c.cache.Add(key, set)
	return set, nil
}

// Len returns the number of cached states.
func (c *Cached) Len() int {
	return c.cache.Len()
}
