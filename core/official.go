// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"fmt"
	"strings"
)

// OfficialSubdomains are operated by the registry itself and are linked
// without an interstitial warning.
var OfficialSubdomains = []string{
	"www",
	"docs",
	"raw",
	"api",
	"data",
	"team",
	"all",
	"@",
	"owl",
}

var trustedPrefixes = []string{
	// Service endpoints.
	"api.", "analytics.", "server.", "tunnel.", "playeranalytics.",
	// Hosted auth.
	"clerk.", "clkmail.",
}

// ShouldWarn reports whether a link to subdomain should pass through a
// warning interstitial first. Official, system (underscore-prefixed) and
// known service subdomains are linked directly.
func ShouldWarn(subdomain string) bool {
	for _, official := range OfficialSubdomains {
		if subdomain == official {
			return false
		}
	}

	if strings.HasPrefix(subdomain, "_") {
		return false
	}

	for _, prefix := range trustedPrefixes {
		if strings.HasPrefix(subdomain, prefix) {
			return false
		}
	}

	return true
}

// DomainURL returns the link for subdomain: direct for trusted names, through
// the registry's warning interstitial for everything else.
func DomainURL(cfg RegistryConfig, subdomain string) string {
	fqdn := cfg.FQDN(subdomain)
	if !ShouldWarn(subdomain) {
		return "https://" + fqdn
	}
	return fmt.Sprintf("https://%s/redirect?domain=%s", cfg.ParentDomain, fqdn)
}
