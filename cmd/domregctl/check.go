// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"

	"github.com/domreg/domreg.go/core"
)

func _check(ctx context.Context) error {
	if *subdomain == "" {
		return fmt.Errorf("check: require -subdomain")
	}

	hosting, err := buildHosting(false)
	if err != nil {
		return err
	}

	checker := core.NewChecker(hosting, registryConfig())
	checker.Cache = buildCache(ctx)
	checker.Zone = buildZoneChecker()
	if checker.Zone != nil {
		defer checker.Zone.Close()
	}

	available, err := checker.CheckAvailability(ctx, *subdomain)
	if err != nil {
		return err
	}
	fmt.Println("Available:", available)

	if *handle != "" {
		if err := checker.CheckRegistrable(ctx, *subdomain, *handle); err != nil {
			return err
		}
		fmt.Println("Registrable by", *handle)
	}

	if checker.Zone != nil {
		live, err := checker.CheckZone(ctx, *subdomain)
		if err != nil {
			fmt.Println("Live-zone check unavailable:", err)
		} else if live {
			fmt.Println("Warning: DNS records already exist for", registryConfig().FQDN(*subdomain))
		}
	}

	return nil
}
