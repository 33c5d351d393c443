// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"encoding/json"
	"fmt"
)

// DefaultMxPriority is assumed when an MX entry is given as a bare hostname.
const DefaultMxPriority = 10

// MxRecord is the normalized form of an MX entry. The registry accepts both a
// bare hostname and a {target, priority} object on the wire; both decode into
// this shape so nothing downstream has to care.
type MxRecord struct {
	Target   string `json:"target"`
	Priority int    `json:"priority"`
}

// MxHost returns the normalized form of a bare-hostname MX entry.
func MxHost(target string) MxRecord {
	return MxRecord{Target: target, Priority: DefaultMxPriority}
}

func (m *MxRecord) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var target string
		if err := json.Unmarshal(data, &target); err != nil {
			return err
		}
		*m = MxHost(target)
		return nil
	}

	var full struct {
		Target   string `json:"target"`
		Priority int    `json:"priority"`
	}
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	m.Target = full.Target
	m.Priority = full.Priority
	return nil
}

type SrvRecord struct {
	Priority int    `json:"priority"`
	Weight   int    `json:"weight"`
	Port     int    `json:"port"`
	Target   string `json:"target"`
}

type CaaRecord struct {
	Flags int    `json:"flags"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type DsRecord struct {
	KeyTag     int    `json:"key_tag"`
	Algorithm  int    `json:"algorithm"`
	DigestType int    `json:"digest_type"`
	Digest     string `json:"digest"`
}

type TlsaRecord struct {
	Usage        int    `json:"usage"`
	Selector     int    `json:"selector"`
	MatchingType int    `json:"matchingType"`
	Certificate  string `json:"certificate"`
}

// TxtRecord holds TXT values. The wire form is either a single string or an
// array of strings; a single value marshals back to the bare string form.
type TxtRecord []string

func (t *TxtRecord) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*t = TxtRecord{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = many
	return nil
}

func (t TxtRecord) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// RedirectConfig configures path redirects for URL or proxied domains.
type RedirectConfig struct {
	CustomPaths   map[string]string `json:"custom_paths,omitempty"`
	RedirectPaths bool              `json:"redirect_paths,omitempty"`
}

// DomainRecord is the sparse record set of one registration. Field names match
// the registry file format.
type DomainRecord struct {
	A     []string     `json:"A,omitempty"`
	AAAA  []string     `json:"AAAA,omitempty"`
	CNAME string       `json:"CNAME,omitempty"`
	MX    []MxRecord   `json:"MX,omitempty"`
	TXT   TxtRecord    `json:"TXT,omitempty"`
	URL   string       `json:"URL,omitempty"`
	NS    []string     `json:"NS,omitempty"`
	SRV   []SrvRecord  `json:"SRV,omitempty"`
	CAA   []CaaRecord  `json:"CAA,omitempty"`
	DS    []DsRecord   `json:"DS,omitempty"`
	TLSA  []TlsaRecord `json:"TLSA,omitempty"`
}

// Types lists the record types present, in canonical order.
func (r *DomainRecord) Types() []string {
	var types []string
	if len(r.A) > 0 {
		types = append(types, "A")
	}
	if len(r.AAAA) > 0 {
		types = append(types, "AAAA")
	}
	if r.CNAME != "" {
		types = append(types, "CNAME")
	}
	if len(r.MX) > 0 {
		types = append(types, "MX")
	}
	if len(r.TXT) > 0 {
		types = append(types, "TXT")
	}
	if r.URL != "" {
		types = append(types, "URL")
	}
	if len(r.NS) > 0 {
		types = append(types, "NS")
	}
	if len(r.SRV) > 0 {
		types = append(types, "SRV")
	}
	if len(r.CAA) > 0 {
		types = append(types, "CAA")
	}
	if len(r.DS) > 0 {
		types = append(types, "DS")
	}
	if len(r.TLSA) > 0 {
		types = append(types, "TLSA")
	}
	return types
}

func (r *DomainRecord) IsEmpty() bool {
	return len(r.Types()) == 0
}

// EmailOnly reports whether the record set consists of exactly one type and it
// is MX. Email-only registrations have no website to screenshot.
func (r *DomainRecord) EmailOnly() bool {
	types := r.Types()
	return len(types) == 1 && types[0] == "MX"
}

// DomainOwner identifies the registrant. Username is always overwritten with
// the authenticated handle before submission; any other keys found in an
// existing registry file are preserved as-is.
type DomainOwner struct {
	Username string
	Email    string
	Extra    map[string]any
}

func (o *DomainOwner) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.Extra = nil
	for k, v := range raw {
		switch k {
		case "username":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("owner: username must be a string")
			}
			o.Username = s
		case "email":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("owner: email must be a string")
			}
			o.Email = s
		default:
			if o.Extra == nil {
				o.Extra = map[string]any{}
			}
			o.Extra[k] = v
		}
	}
	return nil
}

func (o DomainOwner) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(o.Extra)+2)
	for k, v := range o.Extra {
		raw[k] = v
	}
	raw["username"] = o.Username
	if o.Email != "" {
		raw["email"] = o.Email
	}
	return json.Marshal(raw)
}

// DomainData is the unit of registration, persisted verbatim as
// domains/<subdomain>.json in the registry repository.
type DomainData struct {
	Description    string          `json:"description,omitempty"`
	Repo           string          `json:"repo,omitempty"`
	Owner          DomainOwner     `json:"owner"`
	Record         DomainRecord    `json:"record"`
	Proxied        bool            `json:"proxied,omitempty"`
	RedirectConfig *RedirectConfig `json:"redirect_config,omitempty"`
}

// MarshalRegistryFile renders the registry file content: pretty-printed JSON
// with a trailing newline, the format the upstream repository expects.
func (d *DomainData) MarshalRegistryFile() ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
