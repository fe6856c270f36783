// Package argfile reads and writes the provisioning argument file: one
// "name value" pair per line naming the domain, the droplet and the nginx
// config file to push.
package argfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nathanbeddoewebdev/dropproxy/internal/util"
)

// DefaultFile is the argument file written by nginx config generation.
const DefaultFile = "arguments.txt"

// Keys recognised in an argument file.
const (
	KeyDomainName    = "domain_name"
	KeyDropletName   = "droplet_name"
	KeyNginxConfFile = "nginx_conf_file"
)

var (
	// ErrMissingConfiguration means the argument file did not exist. A
	// placeholder file has been written in its place.
	ErrMissingConfiguration = errors.New("argument file missing")

	// ErrInvalidRequest means the argument file lacks a required value.
	ErrInvalidRequest = errors.New("invalid provisioning request")
)

// Request is the content of an argument file.
type Request struct {
	DomainName    string `json:"domain_name"`
	DropletName   string `json:"droplet_name"`
	NginxConfFile string `json:"nginx_conf_file"`
}

// ConfPath returns the nginx config path named by r. A relative path is
// taken relative to the directory of the argument file at argsPath.
func (r Request) ConfPath(argsPath string) string {
	if filepath.IsAbs(r.NginxConfFile) {
		return r.NginxConfFile
	}
	return filepath.Join(filepath.Dir(argsPath), r.NginxConfFile)
}

// Placeholder is written when an argument file is missing.
var Placeholder = Request{
	DropletName:   "ubuntu_domain",
	DomainName:    "sub.exampledomain.com",
	NginxConfFile: "sub.exampledomain.com.conf",
}

// Load reads the argument file at path. A missing file is replaced by the
// placeholder and reported as ErrMissingConfiguration.
func Load(path string) (Request, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		if werr := Write(path, Placeholder); werr != nil {
			return Request{}, fmt.Errorf("failed to create argument file %s: %w", path, werr)
		}
		return Request{}, fmt.Errorf("%s did not exist, a template was written; edit it first: %w", path, ErrMissingConfiguration)
	}
	if err != nil {
		return Request{}, fmt.Errorf("failed to open argument file: %w", err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, value, _ := strings.Cut(line, " ")
		values[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return Request{}, fmt.Errorf("failed to read argument file: %w", err)
	}

	req := Request{
		DomainName:    values[KeyDomainName],
		DropletName:   values[KeyDropletName],
		NginxConfFile: values[KeyNginxConfFile],
	}
	if err := req.Validate(); err != nil {
		return Request{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// Validate reports every missing field in one error wrapping
// ErrInvalidRequest, and rejects unusable droplet names.
func (r Request) Validate() error {
	var missing []string
	if r.DomainName == "" {
		missing = append(missing, KeyDomainName)
	}
	if r.DropletName == "" {
		missing = append(missing, KeyDropletName)
	}
	if r.NginxConfFile == "" {
		missing = append(missing, KeyNginxConfFile)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if err := util.ValidateDropletName(r.DropletName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// EnsureExists writes the placeholder to path when nothing is there. It
// returns ErrMissingConfiguration after creating the file and nil when the
// file already existed.
func EnsureExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat argument file: %w", err)
	}

	if err := Write(path, Placeholder); err != nil {
		return fmt.Errorf("failed to create argument file %s: %w", path, err)
	}
	return fmt.Errorf("%s created with placeholder values: %w", path, ErrMissingConfiguration)
}

// Write overwrites path with req.
func Write(path string, req Request) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", KeyDropletName, req.DropletName)
	fmt.Fprintf(&b, "%s %s\n", KeyDomainName, req.DomainName)
	fmt.Fprintf(&b, "%s %s\n", KeyNginxConfFile, req.NginxConfFile)
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// DeriveFromServerName builds the request for a freshly generated nginx
// config: "app.example.com" gives droplet "ubuntu_appexamplecom" and config
// file "app.example.com.conf".
func DeriveFromServerName(serverName string) Request {
	return Request{
		DropletName:   "ubuntu_" + strings.ReplaceAll(serverName, ".", ""),
		DomainName:    serverName,
		NginxConfFile: serverName + ".conf",
	}
}
