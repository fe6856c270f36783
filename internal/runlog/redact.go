package runlog

import "strings"

const redacted = "<redacted>"

// Redact replaces every occurrence of the given secrets in detail. Empty
// secrets are ignored.
func Redact(detail string, secrets ...string) string {
	for _, s := range secrets {
		if s == "" {
			continue
		}
		detail = strings.ReplaceAll(detail, s, redacted)
	}
	return detail
}
