package argfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arguments.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoad_HappyPath(t *testing.T) {
	path := writeFile(t, "droplet_name d1\n\ndomain_name app.test.com\nnginx_conf_file d1.conf\n")

	req, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := Request{DomainName: "app.test.com", DropletName: "d1", NginxConfFile: "d1.conf"}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_SplitsOnFirstSpace(t *testing.T) {
	path := writeFile(t, "droplet_name d1\r\ndomain_name app.test.com\r\nnginx_conf_file my conf.conf\r\n")

	req, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if req.NginxConfFile != "my conf.conf" {
		t.Errorf("NginxConfFile = %q, want %q", req.NginxConfFile, "my conf.conf")
	}
}

func TestLoad_MissingKeys(t *testing.T) {
	path := writeFile(t, "droplet_name d1\nunrelated value\n")

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	for _, key := range []string{KeyDomainName, KeyNginxConfFile} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err.Error(), key)
		}
	}
}

func TestLoad_EmptyValueIsMissing(t *testing.T) {
	path := writeFile(t, "droplet_name d1\ndomain_name\nnginx_conf_file d1.conf\n")

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestLoad_BadDropletName(t *testing.T) {
	path := writeFile(t, "droplet_name -bad\ndomain_name app.test.com\nnginx_conf_file d1.conf\n")

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestLoad_MissingFileWritesPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.txt")

	_, err := Load(path)
	if !errors.Is(err, ErrMissingConfiguration) {
		t.Fatalf("expected ErrMissingConfiguration, got %v", err)
	}

	req, err := Load(path)
	if err != nil {
		t.Fatalf("placeholder should load, got %v", err)
	}
	if diff := cmp.Diff(Placeholder, req); diff != "" {
		t.Errorf("placeholder mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "args.txt")

	if err := EnsureExists(path); !errors.Is(err, ErrMissingConfiguration) {
		t.Fatalf("first call: expected ErrMissingConfiguration, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	want := "droplet_name ubuntu_domain\ndomain_name sub.exampledomain.com\nnginx_conf_file sub.exampledomain.com.conf\n"
	if string(data) != want {
		t.Errorf("placeholder content = %q, want %q", data, want)
	}

	if err := EnsureExists(path); err != nil {
		t.Errorf("second call: expected nil, got %v", err)
	}
}

func TestDeriveFromServerName(t *testing.T) {
	got := DeriveFromServerName("app.example.com")
	want := Request{
		DropletName:   "ubuntu_appexamplecom",
		DomainName:    "app.example.com",
		NginxConfFile: "app.example.com.conf",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DeriveFromServerName mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arguments.txt")
	req := DeriveFromServerName("s.example.com")

	if err := Write(path, req); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(req, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConfPath(t *testing.T) {
	tests := []struct {
		argsPath, conf, want string
	}{
		{"arguments.txt", "app.conf", "app.conf"},
		{"/srv/site/arguments.txt", "app.conf", "/srv/site/app.conf"},
		{"/srv/site/arguments.txt", "sites/app.conf", "/srv/site/sites/app.conf"},
		{"/srv/site/arguments.txt", "/etc/app.conf", "/etc/app.conf"},
	}
	for _, tt := range tests {
		got := Request{NginxConfFile: tt.conf}.ConfPath(tt.argsPath)
		if got != filepath.FromSlash(tt.want) {
			t.Errorf("ConfPath(%q, %q) = %q, want %q", tt.argsPath, tt.conf, got, tt.want)
		}
	}
}
