// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package memory

import (
	"context"
	"time"

	"github.com/domreg/domreg.go/core"
	gocache "github.com/patrickmn/go-cache"
)

const cleanupInterval = 30 * time.Minute

// Cache is the in-process fallback when no Redis address is configured.
type Cache struct {
	cache *gocache.Cache
}

func New(defaultTTL time.Duration) *Cache {
	return &Cache{cache: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.cache.Set(key, value, ttl)
}

var _ core.Cache = (*Cache)(nil)
