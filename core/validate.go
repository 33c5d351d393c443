// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import "fmt"

// Error buckets that are not record types.
const (
	ErrorsGeneral  = "general"
	ErrorsRedirect = "redirect"
)

// ValidationResult is the outcome of validating one record set. Errors is
// keyed by record type name plus the general and redirect buckets; messages
// keep their emission order and refer to array entries by 1-based position.
type ValidationResult struct {
	IsValid bool                `json:"isValid"`
	Errors  map[string][]string `json:"errors"`
}

func (r *ValidationResult) add(bucket, msg string) {
	r.Errors[bucket] = append(r.Errors[bucket], msg)
}

func (r *ValidationResult) finish() *ValidationResult {
	r.IsValid = len(r.Errors) == 0
	return r
}

// ValidateRecords validates rec under the default policy. See Policy.Validate.
func ValidateRecords(rec *DomainRecord, proxied bool, rc *RedirectConfig) *ValidationResult {
	return DefaultPolicy().Validate(rec, proxied, rc)
}

// Validate runs every structural, per-type and cross-record check over rec and
// returns the accumulated error map. It is a pure function: no I/O, no hidden
// state, identical output for identical input.
func (p Policy) Validate(rec *DomainRecord, proxied bool, rc *RedirectConfig) *ValidationResult {
	result := &ValidationResult{Errors: map[string][]string{}}

	if rec == nil || rec.IsEmpty() {
		result.add(ErrorsGeneral, "At least one DNS record is required")
		return result.finish()
	}

	for _, msg := range p.CombinationErrors(rec, proxied) {
		result.add(ErrorsGeneral, msg)
	}

	for _, msg := range p.RedirectConfigErrors(rec, rc, proxied) {
		result.add(ErrorsRedirect, msg)
	}

	for i, ip := range rec.A {
		switch {
		case !IsValidIPv4(ip):
			result.add("A", fmt.Sprintf("Invalid IPv4 address at position %d", i+1))
		case !IsPublicIPv4(ip, proxied):
			result.add("A", fmt.Sprintf("IPv4 address at position %d is a private or reserved range", i+1))
		}
	}

	for i, ip := range rec.AAAA {
		switch {
		case !IsValidIPv6(ip):
			result.add("AAAA", fmt.Sprintf("Invalid IPv6 address at position %d", i+1))
		case !IsPublicIPv6(ip):
			result.add("AAAA", fmt.Sprintf("IPv6 address at position %d is a private or reserved range", i+1))
		}
	}

	if rec.CNAME != "" && !IsValidHostname(rec.CNAME) {
		result.add("CNAME", "Invalid hostname format. Do not include http:// or https://")
	}

	for i, mx := range rec.MX {
		if !IsValidMxRecord(mx) {
			result.add("MX", fmt.Sprintf("Invalid MX record at position %d", i+1))
		}
	}

	for i, ns := range rec.NS {
		if !IsValidHostname(ns) {
			result.add("NS", fmt.Sprintf("Invalid hostname at position %d", i+1))
		}
	}

	if rec.URL != "" && !IsValidURL(rec.URL) {
		result.add("URL", "Invalid URL format. Include http:// or https://")
	}

	for i, srv := range rec.SRV {
		if !IsValidSrvRecord(srv) {
			result.add("SRV", fmt.Sprintf("Invalid SRV record at position %d", i+1))
		}
	}

	for i, caa := range rec.CAA {
		if !IsValidCaaRecord(caa) {
			result.add("CAA", fmt.Sprintf("Invalid CAA record at position %d", i+1))
		}
	}

	for i, ds := range rec.DS {
		if !IsValidDsRecord(ds) {
			result.add("DS", fmt.Sprintf("Invalid DS record at position %d", i+1))
		}
	}

	for i, tlsa := range rec.TLSA {
		if !IsValidTlsaRecord(tlsa) {
			result.add("TLSA", fmt.Sprintf("Invalid TLSA record at position %d", i+1))
		}
	}

	for i, txt := range rec.TXT {
		if txt == "" {
			result.add("TXT", fmt.Sprintf("TXT record must not be empty at position %d", i+1))
		}
	}

	if msg := p.MirrorGuardError(rec, proxied); msg != "" {
		result.add("CNAME", msg)
	}

	if msg := p.ProxyAnchorError(rec, proxied); msg != "" {
		result.add(ErrorsGeneral, msg)
	}

	return result.finish()
}
