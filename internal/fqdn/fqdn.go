// Package fqdn splits fully qualified names into the registrable domain and
// the record name beneath it, using the public suffix list compiled into
// golang.org/x/net/publicsuffix.
package fqdn

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Apex is the record name used for the registrable domain itself.
const Apex = "@"

// ParsedDomain is a name split at its registrable domain.
type ParsedDomain struct {
	// RegistrableDomain is the label plus public suffix (e.g. "example.com").
	RegistrableDomain string

	// RecordName is what precedes the registrable domain ("app", "a.b"),
	// or Apex when nothing does.
	RecordName string
}

// FQDN joins the parts back into a name.
func (p ParsedDomain) FQDN() string {
	if p.RecordName == "" || p.RecordName == Apex {
		return p.RegistrableDomain
	}
	return p.RecordName + "." + p.RegistrableDomain
}

// Resolve splits name. It lowercases and trims surrounding space and a
// trailing dot first. Only the ICANN section of the suffix list is used, so
// "app.mysite.github.io" splits as {github.io, app.mysite}.
//
// Names with no registrable part (a bare public suffix, a single label, the
// empty string) come back whole with RecordName Apex. Callers that check
// the domain against an account's domain list reject them there.
func Resolve(name string) ParsedDomain {
	name = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	whole := ParsedDomain{RegistrableDomain: name, RecordName: Apex}
	if name == "" || strings.HasPrefix(name, ".") || strings.Contains(name, "..") {
		return whole
	}

	suffix := icannSuffix(name)
	if suffix == name {
		return whole
	}
	rest := strings.TrimSuffix(name, "."+suffix)
	registrable := rest[strings.LastIndexByte(rest, '.')+1:] + "." + suffix

	record := strings.TrimSuffix(strings.TrimSuffix(name, registrable), ".")
	if record == "" {
		record = Apex
	}
	return ParsedDomain{RegistrableDomain: registrable, RecordName: record}
}

// icannSuffix returns the public suffix of name, skipping privately
// registered suffixes such as github.io.
func icannSuffix(name string) string {
	suffix, icann := publicsuffix.PublicSuffix(name)
	for !icann {
		i := strings.IndexByte(suffix, '.')
		if i < 0 {
			break
		}
		suffix, icann = publicsuffix.PublicSuffix(suffix[i+1:])
	}
	return suffix
}
