package util

import (
	"fmt"
	"regexp"
)

// validNameChars matches alphanumerics, hyphens, periods and underscores.
var validNameChars = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)

// ValidateDropletName checks that a droplet name is usable as a provider
// resource name:
//   - At least 2 characters
//   - Only a-z, A-Z, 0-9, hyphens (-), periods (.) and underscores (_)
//   - First character must be alphanumeric
//   - Last character must not be a hyphen or period
//
// Underscores are allowed because derived names take the form
// "ubuntu_<server name without dots>".
func ValidateDropletName(name string) error {
	if len(name) < 2 {
		return fmt.Errorf("droplet name must be at least 2 characters, got %d", len(name))
	}

	if !validNameChars.MatchString(name) {
		return fmt.Errorf("droplet name %q contains invalid characters (only a-z, A-Z, 0-9, hyphens, periods, and underscores are allowed)", name)
	}

	first := name[0]
	if !isAlphanumeric(first) {
		return fmt.Errorf("droplet name must start with an alphanumeric character, got %q", string(first))
	}

	last := name[len(name)-1]
	if last == '-' || last == '.' {
		return fmt.Errorf("droplet name must not end with a hyphen or period, got %q", string(last))
	}

	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
