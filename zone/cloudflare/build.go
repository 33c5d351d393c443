// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package cloudflare

import (
	"context"
	"fmt"

	"github.com/cloudflare/cloudflare-go"
	"github.com/domreg/domreg.go/core"
)

// Checker answers live-zone queries against the parent domain's Cloudflare
// zone. It backs the advisory cross-check that warns when a name already has
// records in DNS even though the registry has no file for it.
type Checker struct {
	API *cloudflare.API
	RC  *cloudflare.ResourceContainer
}

func (c *Checker) HasRecords(ctx context.Context, fqdn string) (bool, error) {
	records, _, err := c.API.ListDNSRecords(ctx, c.RC, cloudflare.ListDNSRecordsParams{Name: fqdn})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

func (c *Checker) Close() error { return nil }

func Build(config map[string]string) (core.ZoneChecker, error) {
	var (
		apiToken = config["api_token"]
		zone     = config["zone"]
	)
	if apiToken == "" || zone == "" {
		return nil, fmt.Errorf("cloudflare: require [api_token, zone]")
	}

	api, err := cloudflare.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, err
	}

	zoneID, err := api.ZoneIDByName(zone)
	if err != nil {
		return nil, err
	}

	return &Checker{
		API: api,
		RC:  cloudflare.ZoneIdentifier(zoneID),
	}, nil
}

func init() {
	core.ZoneCheckerBuilders["cloudflare"] = Build
}
