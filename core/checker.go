// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrSubdomainTaken is returned by CheckRegistrable for names that
	// already have a registry file.
	ErrSubdomainTaken = errors.New("subdomain is already registered")

	// ErrParentNotOwned gates nested registrations: child.parent requires
	// owning parent.
	ErrParentNotOwned = errors.New("parent subdomain is not owned by the caller")
)

const defaultCheckerTTL = 5 * time.Minute

// Checker answers read-only questions about the registry: availability,
// ownership and listings. Reads may use a shared credential, unlike the
// workflow engine which always acts as the submitting user.
type Checker struct {
	Hosting Hosting
	Config  RegistryConfig

	// Cache, when set, fronts registry file and listing reads. Availability
	// checks always hit the registry; a stale positive would let a user walk
	// through the whole workflow just to collide on the pull request.
	Cache    Cache
	CacheTTL time.Duration

	// Zone, when set, enables the advisory live-zone cross-check.
	Zone ZoneChecker
}

func NewChecker(hosting Hosting, cfg RegistryConfig) *Checker {
	return &Checker{Hosting: hosting, Config: cfg, CacheTTL: defaultCheckerTTL}
}

// CheckAvailability reports whether subdomain has no registry file yet.
// Not-found is the positive answer; any other remote failure propagates.
func (c *Checker) CheckAvailability(ctx context.Context, subdomain string) (bool, error) {
	subdomain, err := NormalizeSubdomain(subdomain)
	if err != nil {
		return false, err
	}

	_, err = c.Hosting.GetFileContent(ctx, c.Config.UpstreamOwner, c.Config.UpstreamRepo, c.Config.FilePath(subdomain), "")
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrNotFound):
		return true, nil
	default:
		return false, errors.Wrapf(err, "checking availability of %s", subdomain)
	}
}

// CheckOwnership reports whether the stored record for subdomain belongs to
// handle. The handle comparison is case-insensitive; not-found is false, not
// an error.
func (c *Checker) CheckOwnership(ctx context.Context, subdomain, handle string) (bool, error) {
	if handle == "" {
		return false, nil
	}

	subdomain, err := NormalizeSubdomain(subdomain)
	if err != nil {
		return false, err
	}

	data, err := c.domainData(ctx, subdomain)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, errors.Wrapf(err, "checking ownership of %s", subdomain)
	}

	return strings.EqualFold(data.Owner.Username, handle), nil
}

// CheckRegistrable combines the availability and nested-ownership gates for
// one registration attempt by handle.
func (c *Checker) CheckRegistrable(ctx context.Context, subdomain, handle string) error {
	subdomain, err := NormalizeSubdomain(subdomain)
	if err != nil {
		return err
	}

	available, err := c.CheckAvailability(ctx, subdomain)
	if err != nil {
		return err
	}
	if !available {
		return errors.Wrap(ErrSubdomainTaken, subdomain)
	}

	if parent, nested := ParentOf(subdomain); nested {
		owned, err := c.CheckOwnership(ctx, parent, handle)
		if err != nil {
			return err
		}
		if !owned {
			return errors.Wrap(ErrParentNotOwned, parent)
		}
	}

	return nil
}

// CheckZone asks the zone provider whether live records already exist for
// subdomain. Returns false when no provider is configured.
func (c *Checker) CheckZone(ctx context.Context, subdomain string) (bool, error) {
	if c.Zone == nil {
		return false, nil
	}

	subdomain, err := NormalizeSubdomain(subdomain)
	if err != nil {
		return false, err
	}

	return c.Zone.HasRecords(ctx, c.Config.FQDN(subdomain))
}

// ListDomains returns every registered subdomain, sorted.
func (c *Checker) ListDomains(ctx context.Context) ([]string, error) {
	const key = "domains:index"

	if b, ok := c.cacheGet(ctx, key); ok {
		var cached []string
		if json.Unmarshal(b, &cached) == nil {
			return cached, nil
		}
	}

	names, err := c.Hosting.ListDirectory(ctx, c.Config.UpstreamOwner, c.Config.UpstreamRepo, c.Config.DomainsDir)
	if err != nil {
		return nil, errors.Wrap(err, "listing registry domains")
	}

	var subdomains []string
	for _, name := range names {
		if strings.HasSuffix(name, ".json") {
			subdomains = append(subdomains, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(subdomains)

	c.cacheSet(ctx, key, mustJSON(subdomains))
	return subdomains, nil
}

// ListUserDomains returns the subdomains whose stored owner matches handle.
func (c *Checker) ListUserDomains(ctx context.Context, handle string) ([]string, error) {
	if handle == "" {
		return nil, nil
	}

	all, err := c.ListDomains(ctx)
	if err != nil {
		return nil, err
	}

	var owned []string
	for _, subdomain := range all {
		data, err := c.domainData(ctx, subdomain)
		if err != nil {
			// Skip unreadable entries; one malformed file must not sink the
			// whole listing.
			continue
		}
		if strings.EqualFold(data.Owner.Username, handle) {
			owned = append(owned, subdomain)
		}
	}
	return owned, nil
}

// domainData reads and decodes one registry file, through the cache when
// available.
func (c *Checker) domainData(ctx context.Context, subdomain string) (*DomainData, error) {
	key := "domain:" + subdomain

	raw, ok := c.cacheGet(ctx, key)
	if !ok {
		fc, err := c.Hosting.GetFileContent(ctx, c.Config.UpstreamOwner, c.Config.UpstreamRepo, c.Config.FilePath(subdomain), "")
		if err != nil {
			return nil, err
		}
		raw = fc.Content
		c.cacheSet(ctx, key, raw)
	}

	var data DomainData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrapf(err, "decoding registry file for %s", subdomain)
	}
	return &data, nil
}

func (c *Checker) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.Cache == nil {
		return nil, false
	}
	return c.Cache.Get(ctx, key)
}

func (c *Checker) cacheSet(ctx context.Context, key string, value []byte) {
	if c.Cache == nil {
		return
	}
	ttl := c.CacheTTL
	if ttl <= 0 {
		ttl = defaultCheckerTTL
	}
	c.Cache.Set(ctx, key, value, ttl)
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
