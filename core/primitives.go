// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ProxyPlaceholderIPv4 is the conventional placeholder address for domains
// that exist only behind the proxy. It sits in a documentation range and is
// rejected everywhere else.
const ProxyPlaceholderIPv4 = "192.0.2.1"

var (
	ipv4Pattern = regexp.MustCompile(`^((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)

	// Four alternatives: full form, leading ::, trailing ::, middle elision.
	ipv6Pattern = regexp.MustCompile(`^(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$|^::(?:[0-9a-fA-F]{1,4}:){0,6}[0-9a-fA-F]{1,4}$|^(?:[0-9a-fA-F]{1,4}:){1,7}:$|^(?:[0-9a-fA-F]{1,4}:){1,6}:(?:[0-9a-fA-F]{1,4}:){0,5}[0-9a-fA-F]{1,4}$`)

	// Leading underscores are allowed per label for service records such as
	// _dmarc and _domainkey.
	hostnameLabels = regexp.MustCompile(`^(?:[_a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,63}$`)

	schemePrefix = regexp.MustCompile(`(?i)^https?://`)

	hexPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

	customPathChars = regexp.MustCompile(`^/[a-zA-Z0-9\-_./]+$`)

	ipv6Loopback = "0000:0000:0000:0000:0000:0000:0000:0001"
)

// IsValidIPv4 reports whether ip is a dotted-quad IPv4 address with every
// octet in 0-255.
func IsValidIPv4(ip string) bool {
	return ipv4Pattern.MatchString(strings.TrimSpace(ip))
}

// IsPublicIPv4 reports whether ip is a valid IPv4 address outside the private
// and reserved ranges. The proxy placeholder 192.0.2.1 passes when proxied is
// set.
func IsPublicIPv4(ip string, proxied bool) bool {
	if !IsValidIPv4(ip) {
		return false
	}
	ip = strings.TrimSpace(ip)
	if ip == ProxyPlaceholderIPv4 && proxied {
		return true
	}

	var parts [4]int
	for i, s := range strings.Split(ip, ".") {
		parts[i], _ = strconv.Atoi(s)
	}

	return !(parts[0] == 10 ||
		(parts[0] == 172 && parts[1] >= 16 && parts[1] <= 31) ||
		(parts[0] == 192 && parts[1] == 168) ||
		(parts[0] == 100 && parts[1] >= 64 && parts[1] <= 127) ||
		(parts[0] == 169 && parts[1] == 254) ||
		(parts[0] == 192 && parts[1] == 0 && parts[2] == 0) ||
		(parts[0] == 192 && parts[1] == 0 && parts[2] == 2) ||
		(parts[0] == 198 && parts[1] == 18) ||
		(parts[0] == 198 && parts[1] == 51 && parts[2] == 100) ||
		(parts[0] == 203 && parts[1] == 0 && parts[2] == 113) ||
		parts[0] >= 224)
}

// IsValidIPv6 reports whether ip is an IPv6 address in full, ::-elided, or
// trailing-:: form.
func IsValidIPv6(ip string) bool {
	return ipv6Pattern.MatchString(strings.TrimSpace(ip))
}

// IsPublicIPv6 reports whether ip is a valid IPv6 address that is not
// unique-local, link-local, loopback, or in the documentation prefix. Range
// checks run on the expanded form.
func IsPublicIPv6(ip string) bool {
	if !IsValidIPv6(ip) {
		return false
	}

	expanded := ExpandIPv6(strings.ToLower(strings.TrimSpace(ip)))

	return !(strings.HasPrefix(expanded, "fc") ||
		strings.HasPrefix(expanded, "fd") ||
		strings.HasPrefix(expanded, "fe80") ||
		strings.HasPrefix(expanded, "2001:0db8") ||
		expanded == ipv6Loopback)
}

// ExpandIPv6 expands a ::-elided address to 8 zero-padded groups. It assumes
// syntactically plausible input and does not validate.
func ExpandIPv6(ip string) string {
	segments := strings.Split(ip, ":")

	elided := -1
	var groups []string
	for _, seg := range segments {
		if seg == "" {
			if elided == -1 {
				// Index into the non-empty groups where zeros get inserted.
				elided = len(groups)
			}
			continue
		}
		groups = append(groups, seg)
	}

	if elided != -1 {
		missing := 8 - len(groups)
		expanded := make([]string, 0, 8)
		expanded = append(expanded, groups[:elided]...)
		for i := 0; i < missing; i++ {
			expanded = append(expanded, "0000")
		}
		expanded = append(expanded, groups[elided:]...)
		groups = expanded
	}

	for i, g := range groups {
		for len(g) < 4 {
			g = "0" + g
		}
		groups[i] = g
	}
	return strings.Join(groups, ":")
}

// IsValidHostname reports whether hostname is a bare label-dot-label hostname.
// Anything carrying an http:// or https:// scheme is rejected outright; CNAME,
// NS, MX and SRV targets are hostnames, not URLs.
func IsValidHostname(hostname string) bool {
	if schemePrefix.MatchString(hostname) {
		return false
	}
	hostname = strings.TrimSpace(hostname)
	if len(hostname) < 1 || len(hostname) > 253 {
		return false
	}
	return hostnameLabels.MatchString(hostname)
}

// IsValidURL reports whether raw is a well-formed URL carrying an explicit
// http:// or https:// scheme. The asymmetry with IsValidHostname is
// deliberate: URL and redirect targets are full URLs.
func IsValidURL(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && u.Host != ""
}

// IsValidHexadecimal reports whether value is a non-empty hex string.
func IsValidHexadecimal(value string) bool {
	return hexPattern.MatchString(value)
}

// IsValidCustomPath reports whether path is acceptable as a redirect source
// path: absolute, 2-255 chars, restricted charset, no trailing slash.
func IsValidCustomPath(path string) bool {
	if len(path) < 2 || len(path) > 255 {
		return false
	}
	if strings.HasSuffix(path, "/") {
		return false
	}
	return customPathChars.MatchString(path)
}
