package services

import (
	"fmt"
	"net"
	"strings"

	"nathanbeddoewebdev/dropproxy/internal/dns/domain"
)

// DefaultTTL is the TTL applied when none is specified.
const DefaultTTL = 600

// validRecordTypes is the set of supported DNS record types.
var validRecordTypes = map[domain.RecordType]bool{
	domain.RecordTypeA:     true,
	domain.RecordTypeAAAA:  true,
	domain.RecordTypeCNAME: true,
	domain.RecordTypeAlias: true,
	domain.RecordTypeTXT:   true,
	domain.RecordTypeNS:    true,
	domain.RecordTypeMX:    true,
	domain.RecordTypeSRV:   true,
	domain.RecordTypeTLSA:  true,
	domain.RecordTypeCAA:   true,
	domain.RecordTypeHTTPS: true,
	domain.RecordTypeSVCB:  true,
	domain.RecordTypeSSHFP: true,
}

// normalizeDomain lowercases and strips any trailing dot from a domain name.
func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(d), "."))
}

// normalizeSubdomain strips the root domain suffix from a subdomain if the
// user accidentally passes a fully-qualified name (e.g. "www.example.com"
// when the domain is "example.com"), and lowercases the result.
func normalizeSubdomain(sub, domainName string) string {
	sub = strings.TrimSpace(sub)
	sub = strings.TrimRight(sub, ".")
	sub = strings.ToLower(sub)

	// Strip ".domainName" suffix if present.
	suffix := "." + domainName
	if strings.HasSuffix(sub, suffix) {
		sub = sub[:len(sub)-len(suffix)]
	}
	// Also strip if the caller passed the bare domain as the subdomain.
	if sub == domainName {
		sub = ""
	}

	return sub
}

// relativeName maps a provider-returned record name onto the form
// normalizeSubdomain produces: "" for the apex, "www" for www.<domain>.
// Providers report the apex as "@", as the bare domain, or as the domain
// with a trailing dot.
func relativeName(name, domainName string) string {
	name = normalizeSubdomain(name, domainName)
	if name == "@" {
		return ""
	}
	return name
}

// validateRecordType returns an error if t is not a supported record type.
func validateRecordType(t domain.RecordType) error {
	if !validRecordTypes[t] {
		return fmt.Errorf("%w: unsupported record type %q", domain.ErrInvalidRecord, t)
	}
	return nil
}

// validateContent checks that the content value is appropriate for the record type.
// It catches obvious mismatches such as a non-IP value for an A record;
// anything subtler is left to the provider.
func validateContent(t domain.RecordType, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: record content cannot be empty", domain.ErrInvalidRecord)
	}

	switch t {
	case domain.RecordTypeA:
		ip := net.ParseIP(content)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("%w: A record content must be a valid IPv4 address, got %q", domain.ErrInvalidRecord, content)
		}
	case domain.RecordTypeAAAA:
		ip := net.ParseIP(content)
		if ip == nil || ip.To4() != nil {
			return fmt.Errorf("%w: AAAA record content must be a valid IPv6 address, got %q", domain.ErrInvalidRecord, content)
		}
	}

	return nil
}
