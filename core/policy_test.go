// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombinationCnameExclusivity(t *testing.T) {
	p := DefaultPolicy()
	rec := &DomainRecord{CNAME: "app.pages.dev", A: []string{"9.9.9.9"}}

	errs := p.CombinationErrors(rec, false)
	require.Contains(t, errs, "CNAME records cannot be combined with other records unless proxied")

	// Proxied lifts the exclusivity rule.
	errs = p.CombinationErrors(rec, true)
	require.NotContains(t, errs, "CNAME records cannot be combined with other records unless proxied")

	// A lone CNAME is always fine.
	require.Empty(t, p.CombinationErrors(&DomainRecord{CNAME: "app.pages.dev"}, false))
}

func TestCombinationNsDsPairing(t *testing.T) {
	p := DefaultPolicy()

	require.Empty(t, p.CombinationErrors(&DomainRecord{NS: []string{"ns1.example.com"}}, false))
	require.Empty(t, p.CombinationErrors(&DomainRecord{
		NS: []string{"ns1.example.com"},
		DS: []DsRecord{{KeyTag: 1, Algorithm: 13, DigestType: 2, Digest: "ab"}},
	}, false))

	errs := p.CombinationErrors(&DomainRecord{
		NS:  []string{"ns1.example.com"},
		TXT: TxtRecord{"v"},
	}, false)
	require.Contains(t, errs, "NS records cannot be combined with other records, except for DS records")

	errs = p.CombinationErrors(&DomainRecord{
		DS: []DsRecord{{KeyTag: 1, Algorithm: 13, DigestType: 2, Digest: "ab"}},
	}, false)
	require.Contains(t, errs, "DS records must be combined with NS records")
}

func TestCombinationUrlExcludesPointers(t *testing.T) {
	p := DefaultPolicy()

	for _, rec := range []*DomainRecord{
		{URL: "https://example.com", A: []string{"9.9.9.9"}},
		{URL: "https://example.com", AAAA: []string{"2606:4700::1"}},
		{URL: "https://example.com", CNAME: "app.pages.dev"},
	} {
		errs := p.CombinationErrors(rec, false)
		require.Contains(t, errs, "URL records cannot be combined with A, AAAA, or CNAME records")
	}

	// URL with TXT is fine.
	require.NotContains(t,
		p.CombinationErrors(&DomainRecord{URL: "https://example.com", TXT: TxtRecord{"v"}}, false),
		"URL records cannot be combined with A, AAAA, or CNAME records")
}

func TestCombinationErrorsAccumulate(t *testing.T) {
	// Two independent violations in one record set; both must surface.
	rec := &DomainRecord{
		CNAME: "app.pages.dev",
		URL:   "https://example.com",
	}
	errs := DefaultPolicy().CombinationErrors(rec, false)
	require.Len(t, errs, 2)
}

func TestRedirectConfigErrors(t *testing.T) {
	p := DefaultPolicy()

	require.Nil(t, p.RedirectConfigErrors(&DomainRecord{URL: "https://example.com"}, nil, false))

	// Redirect config needs a URL record or a proxied domain.
	errs := p.RedirectConfigErrors(&DomainRecord{A: []string{"9.9.9.9"}}, &RedirectConfig{}, false)
	require.Contains(t, errs, "Redirect config must be combined with a URL record or the domain must be proxied")
	require.Empty(t, p.RedirectConfigErrors(&DomainRecord{A: []string{"9.9.9.9"}}, &RedirectConfig{}, true))

	// redirect_paths additionally requires the URL record even when proxied.
	errs = p.RedirectConfigErrors(&DomainRecord{A: []string{"9.9.9.9"}}, &RedirectConfig{RedirectPaths: true}, true)
	require.Contains(t, errs, "redirect_config.redirect_paths requires a URL record")

	rec := &DomainRecord{URL: "https://example.com"}
	errs = p.RedirectConfigErrors(rec, &RedirectConfig{CustomPaths: map[string]string{
		"/good":  "https://example.com/landing",
		"/bad/":  "https://example.com/landing",
		"/other": "not-a-url",
	}}, false)
	require.Len(t, errs, 2)
	require.Contains(t, errs[0], `Custom path "/bad/" is invalid`)
	require.Contains(t, errs[1], `Target URL for custom path "/other" is invalid`)
}

func TestMirrorGuard(t *testing.T) {
	p := DefaultPolicy()

	require.Equal(t, "raw.is-a.dev cannot be proxied",
		p.MirrorGuardError(&DomainRecord{CNAME: "raw.is-a.dev"}, true))
	require.Equal(t, "raw.is-a.dev cannot be proxied",
		p.MirrorGuardError(&DomainRecord{CNAME: "deep.raw.is-a.dev"}, true))

	// Unproxied mirror CNAMEs are the whole point of the mirror host.
	require.Empty(t, p.MirrorGuardError(&DomainRecord{CNAME: "raw.is-a.dev"}, false))
	require.Empty(t, p.MirrorGuardError(&DomainRecord{CNAME: "app.pages.dev"}, true))

	// Suffix match must respect label boundaries.
	require.Empty(t, p.MirrorGuardError(&DomainRecord{CNAME: "notraw.is-a.dev"}, true))

	none := Policy{}
	require.Empty(t, none.MirrorGuardError(&DomainRecord{CNAME: "raw.is-a.dev"}, true))
}

func TestProxyAnchor(t *testing.T) {
	p := DefaultPolicy()

	require.Equal(t, "Proxied domains must have at least one A, AAAA, or CNAME record",
		p.ProxyAnchorError(&DomainRecord{TXT: TxtRecord{"v"}}, true))

	require.Empty(t, p.ProxyAnchorError(&DomainRecord{A: []string{"9.9.9.9"}}, true))
	require.Empty(t, p.ProxyAnchorError(&DomainRecord{AAAA: []string{"2606:4700::1"}}, true))
	require.Empty(t, p.ProxyAnchorError(&DomainRecord{CNAME: "app.pages.dev"}, true))
	require.Empty(t, p.ProxyAnchorError(&DomainRecord{TXT: TxtRecord{"v"}}, false))
}
