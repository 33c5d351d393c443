// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package redis

import (
	"context"
	"time"

	"github.com/domreg/domreg.go/core"
	"github.com/redis/rueidis"
)

const keyPrefix = "domreg:"

// Cache fronts registry reads with Redis so repeated availability and listing
// queries do not hammer the hosting API.
type Cache struct {
	Client rueidis.Client
}

// New connects to Redis and verifies the connection before returning.
func New(ctx context.Context, addr string, db int) (*Cache, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
		SelectDB:    db,
	})
	if err != nil {
		return nil, err
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, err
	}

	return &Cache{Client: client}, nil
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.Client.Do(ctx, c.Client.B().Get().Key(keyPrefix+key).Build()).AsBytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	_ = c.Client.Do(ctx, c.Client.B().Set().Key(keyPrefix+key).Value(rueidis.BinaryString(value)).ExSeconds(seconds).Build()).Error()
}

func (c *Cache) Close() { c.Client.Close() }

var _ core.Cache = (*Cache)(nil)
