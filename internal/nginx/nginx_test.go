package nginx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nathanbeddoewebdev/dropproxy/internal/argfile"

	"github.com/google/go-cmp/cmp"
)

func TestBuild_ListensAndProxiesFirstPort(t *testing.T) {
	cfg, err := Build("s.example.com", "10.0.0.5", []int{80, 8080}, "/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff([]int{80, 8080}, cfg.Listen); diff != "" {
		t.Errorf("Listen mismatch (-want +got):\n%s", diff)
	}
	first := cfg.Location.Directives[0]
	if first.Name != "proxy_pass" || first.Value != "http://10.0.0.5:80" {
		t.Errorf("first directive = %+v, want proxy_pass http://10.0.0.5:80", first)
	}
}

func TestBuild_KeepsDuplicatePorts(t *testing.T) {
	cfg, err := Build("s.example.com", "10.0.0.5", []int{80, 80}, "/")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cfg.Listen) != 2 {
		t.Errorf("Listen = %v, want both entries", cfg.Listen)
	}
}

func TestBuild_NoPorts(t *testing.T) {
	_, err := Build("s.example.com", "10.0.0.5", nil, "/")
	if !errors.Is(err, ErrNoPorts) {
		t.Errorf("expected ErrNoPorts, got %v", err)
	}
}

func TestRender_Golden(t *testing.T) {
	cfg, err := Build("s.example.com", "10.0.0.5", []int{80, 8080}, "/app")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := `server {
    listen 80;
    listen 8080;
    server_name s.example.com;

    location /app {
        proxy_pass http://10.0.0.5:80;
        proxy_http_version 1.1;
        proxy_cache_bypass $http_upgrade;
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection upgrade;
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
        proxy_set_header X-Forwarded-Host $host;
        proxy_set_header X-Forwarded-Port $server_port;
        proxy_set_header X-Real-IP $http_upgrade;
        log_not_found off;
        access_log off;
    }
}
`
	if diff := cmp.Diff(want, cfg.String()); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePorts(t *testing.T) {
	ports, err := ParsePorts("80, 8000,8080")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff([]int{80, 8000, 8080}, ports); diff != "" {
		t.Errorf("ParsePorts mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"", "80,http", "0", "70000"} {
		if _, err := ParsePorts(bad); err == nil {
			t.Errorf("ParsePorts(%q): expected error", bad)
		}
	}
}

func TestMake_WritesConfAndArgs(t *testing.T) {
	dir := t.TempDir()
	argsPath := filepath.Join(dir, argfile.DefaultFile)

	res, err := Make(dir, "app.example.com", "10.0.0.5", "80,8080", "/", argsPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	conf, err := os.ReadFile(filepath.Join(dir, "app.example.com.conf"))
	if err != nil {
		t.Fatalf("conf not written: %v", err)
	}
	if !strings.Contains(string(conf), "server_name app.example.com;") {
		t.Errorf("conf missing server_name:\n%s", conf)
	}

	req, err := argfile.Load(argsPath)
	if err != nil {
		t.Fatalf("argument file not loadable: %v", err)
	}
	if diff := cmp.Diff(res.Request, req); diff != "" {
		t.Errorf("argument file mismatch (-want +got):\n%s", diff)
	}
	if req.DropletName != "ubuntu_appexamplecom" {
		t.Errorf("DropletName = %q", req.DropletName)
	}
}

func TestMake_BadPortsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	argsPath := filepath.Join(dir, argfile.DefaultFile)

	if _, err := Make(dir, "app.example.com", "10.0.0.5", "nope", "/", argsPath); err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, err := os.Stat(argsPath); !os.IsNotExist(err) {
		t.Errorf("argument file should not exist, stat err = %v", err)
	}
}

func TestMake_SubdirIsNamedRelativeToArgs(t *testing.T) {
	base := t.TempDir()
	sites := filepath.Join(base, "sites")
	if err := os.Mkdir(sites, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	argsPath := filepath.Join(base, argfile.DefaultFile)

	if _, err := Make(sites, "app.example.com", "10.0.0.5", "80", "/", argsPath); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req, err := argfile.Load(argsPath)
	if err != nil {
		t.Fatalf("argument file not loadable: %v", err)
	}
	want := filepath.Join("sites", "app.example.com.conf")
	if req.NginxConfFile != want {
		t.Errorf("NginxConfFile = %q, want %q", req.NginxConfFile, want)
	}
	if _, err := os.Stat(req.ConfPath(argsPath)); err != nil {
		t.Errorf("named config not found from the argument file: %v", err)
	}
}
