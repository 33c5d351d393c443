// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

const (
	maxUint16 = 65535
	maxUint8  = 255
)

func inUint16Range(v int) bool { return v >= 0 && v <= maxUint16 }

func inUint8Range(v int) bool { return v >= 0 && v <= maxUint8 }

// IsValidMxRecord checks one normalized MX entry. A bare-hostname entry has
// already picked up the default priority during decoding.
func IsValidMxRecord(r MxRecord) bool {
	return IsValidHostname(r.Target) && inUint16Range(r.Priority)
}

func IsValidSrvRecord(r SrvRecord) bool {
	return IsValidHostname(r.Target) &&
		inUint16Range(r.Priority) &&
		inUint16Range(r.Weight) &&
		inUint16Range(r.Port)
}

// IsValidCaaRecord checks one CAA entry. The literal ";" value is the
// explicit empty-CAA convention and is accepted alongside hostnames.
func IsValidCaaRecord(r CaaRecord) bool {
	switch r.Tag {
	case "issue", "issuewild", "iodef":
	default:
		return false
	}
	return IsValidHostname(r.Value) || r.Value == ";"
}

func IsValidDsRecord(r DsRecord) bool {
	return inUint16Range(r.KeyTag) &&
		inUint8Range(r.Algorithm) &&
		inUint8Range(r.DigestType) &&
		IsValidHexadecimal(r.Digest)
}

func IsValidTlsaRecord(r TlsaRecord) bool {
	return inUint8Range(r.Usage) &&
		inUint8Range(r.Selector) &&
		inUint8Range(r.MatchingType) &&
		IsValidHexadecimal(r.Certificate)
}
