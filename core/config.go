// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// RegistryConfig locates the upstream registry repository and the parent
// domain it serves. Core code receives it explicitly; nothing here reads
// ambient state.
type RegistryConfig struct {
	UpstreamOwner string
	UpstreamRepo  string
	ParentDomain  string
	DomainsDir    string
}

// DefaultRegistryConfig points at the public is-a.dev registry.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		UpstreamOwner: "is-a-dev",
		UpstreamRepo:  "register",
		ParentDomain:  "is-a.dev",
		DomainsDir:    "domains",
	}
}

// FilePath is the registry path of one subdomain's record file.
func (c RegistryConfig) FilePath(subdomain string) string {
	return c.DomainsDir + "/" + subdomain + ".json"
}

// FQDN is the fully qualified name a subdomain registers.
func (c RegistryConfig) FQDN(subdomain string) string {
	return subdomain + "." + c.ParentDomain
}

// NormalizeSubdomain lowercases, trims and IDNA-encodes a user-supplied
// subdomain so registry paths and comparisons always use the ASCII form.
func NormalizeSubdomain(subdomain string) (string, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return "", fmt.Errorf("subdomain must not be empty")
	}

	ascii, err := idna.ToASCII(subdomain)
	if err != nil {
		return "", fmt.Errorf("subdomain %q is not a valid name: %v", subdomain, err)
	}
	return ascii, nil
}

// ParentOf splits a nested subdomain into its immediate parent, returning
// ok=false for single-label names.
func ParentOf(subdomain string) (string, bool) {
	i := strings.Index(subdomain, ".")
	if i < 0 {
		return "", false
	}
	return subdomain[i+1:], true
}
