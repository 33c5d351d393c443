// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"

	"github.com/domreg/domreg.go/core"
)

func _list(ctx context.Context) error {
	hosting, err := buildHosting(false)
	if err != nil {
		return err
	}

	checker := core.NewChecker(hosting, registryConfig())
	checker.Cache = buildCache(ctx)

	var subdomains []string
	if *handle != "" {
		subdomains, err = checker.ListUserDomains(ctx, *handle)
	} else {
		subdomains, err = checker.ListDomains(ctx)
	}
	if err != nil {
		return err
	}

	cfg := registryConfig()
	for _, sub := range subdomains {
		marker := " "
		if core.ShouldWarn(sub) {
			// External content; links route through the warning interstitial.
			marker = "!"
		}
		fmt.Printf("%s %s\n", marker, core.DomainURL(cfg, sub))
	}

	return nil
}
