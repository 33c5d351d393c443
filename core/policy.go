// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"fmt"
	"sort"
	"strings"
)

// Policy holds the cross-record rules that depend on registry configuration.
// The reserved mirror host serves the canonical unproxied data feed and must
// never sit behind the proxy.
type Policy struct {
	ReservedMirrorHost string
}

// DefaultPolicy returns the policy for the default registry.
func DefaultPolicy() Policy {
	return Policy{ReservedMirrorHost: "raw.is-a.dev"}
}

// CombinationErrors enforces the structural rules that no single-type check
// can see. All rules run; nothing short-circuits, so callers get the full set.
func (p Policy) CombinationErrors(rec *DomainRecord, proxied bool) []string {
	var errs []string
	types := rec.Types()

	has := func(t string) bool {
		for _, present := range types {
			if present == t {
				return true
			}
		}
		return false
	}

	if has("CNAME") && !proxied && len(types) > 1 {
		errs = append(errs, "CNAME records cannot be combined with other records unless proxied")
	}

	if has("NS") && !(len(types) == 1 || (len(types) == 2 && has("DS"))) {
		errs = append(errs, "NS records cannot be combined with other records, except for DS records")
	}

	if has("DS") && !has("NS") {
		errs = append(errs, "DS records must be combined with NS records")
	}

	if has("URL") && (has("A") || has("AAAA") || has("CNAME")) {
		errs = append(errs, "URL records cannot be combined with A, AAAA, or CNAME records")
	}

	return errs
}

// RedirectConfigErrors checks the redirect configuration against the record
// set it accompanies.
func (p Policy) RedirectConfigErrors(rec *DomainRecord, rc *RedirectConfig, proxied bool) []string {
	if rc == nil {
		return nil
	}

	var errs []string

	if rec.URL == "" && !proxied {
		errs = append(errs, "Redirect config must be combined with a URL record or the domain must be proxied")
	}

	if rc.RedirectPaths && rec.URL == "" {
		errs = append(errs, "redirect_config.redirect_paths requires a URL record")
	}

	for _, path := range sortedKeys(rc.CustomPaths) {
		target := rc.CustomPaths[path]
		if !IsValidCustomPath(path) {
			errs = append(errs, fmt.Sprintf("Custom path %q is invalid - must start with a slash, contain only alphanumeric characters, hyphens, underscores, periods, and slashes, and cannot end with a slash", path))
		}
		if !IsValidURL(target) {
			errs = append(errs, fmt.Sprintf("Target URL for custom path %q is invalid", path))
		}
	}

	return errs
}

// sortedKeys keeps custom-path error order stable across runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MirrorGuardError rejects a proxied CNAME pointing at the reserved mirror
// host or any of its subdomains. Returns "" when the rule does not apply.
func (p Policy) MirrorGuardError(rec *DomainRecord, proxied bool) string {
	if !proxied || rec.CNAME == "" || p.ReservedMirrorHost == "" {
		return ""
	}
	if rec.CNAME == p.ReservedMirrorHost || strings.HasSuffix(rec.CNAME, "."+p.ReservedMirrorHost) {
		return fmt.Sprintf("%s cannot be proxied", p.ReservedMirrorHost)
	}
	return ""
}

// ProxyAnchorError requires a proxied record set to carry at least one
// pointer record for the proxy to attach to. Returns "" when satisfied.
func (p Policy) ProxyAnchorError(rec *DomainRecord, proxied bool) string {
	if !proxied {
		return ""
	}
	if len(rec.A) == 0 && len(rec.AAAA) == 0 && rec.CNAME == "" {
		return "Proxied domains must have at least one A, AAAA, or CNAME record"
	}
	return ""
}
