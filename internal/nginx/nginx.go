// Package nginx generates the reverse-proxy virtual host pushed to new
// droplets.
package nginx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"nathanbeddoewebdev/dropproxy/internal/argfile"
)

// ErrNoPorts is returned when a server has nothing to listen on.
var ErrNoPorts = errors.New("at least one port is required")

// Directive is a single "name value;" line.
type Directive struct {
	Name  string
	Value string
}

// Location is a location block and its directives, in order.
type Location struct {
	Path       string
	Directives []Directive
}

// ServerConfig is one server block.
type ServerConfig struct {
	ServerName string
	Listen     []int
	Location   Location
}

// Build returns the server block for serverName. It listens on every port in
// order, duplicates included, and proxies appLocation to the upstream on the
// first port.
func Build(serverName, upstreamIP string, ports []int, appLocation string) (*ServerConfig, error) {
	if len(ports) == 0 {
		return nil, ErrNoPorts
	}
	if serverName == "" {
		serverName = "_"
	}
	if appLocation == "" {
		appLocation = "/"
	}

	return &ServerConfig{
		ServerName: serverName,
		Listen:     append([]int(nil), ports...),
		Location: Location{
			Path: appLocation,
			Directives: []Directive{
				{"proxy_pass", fmt.Sprintf("http://%s:%d", upstreamIP, ports[0])},
				{"proxy_http_version", "1.1"},
				{"proxy_cache_bypass", "$http_upgrade"},
				{"proxy_set_header Upgrade", "$http_upgrade"},
				{"proxy_set_header Connection", "upgrade"},
				{"proxy_set_header Host", "$host"},
				{"proxy_set_header X-Real-IP", "$remote_addr"},
				{"proxy_set_header X-Forwarded-For", "$proxy_add_x_forwarded_for"},
				{"proxy_set_header X-Forwarded-Proto", "$scheme"},
				{"proxy_set_header X-Forwarded-Host", "$host"},
				{"proxy_set_header X-Forwarded-Port", "$server_port"},
				// Overrides the X-Real-IP above; existing deployments rely on it.
				{"proxy_set_header X-Real-IP", "$http_upgrade"},
				{"log_not_found", "off"},
				{"access_log", "off"},
			},
		},
	}, nil
}

var serverTemplate = template.Must(template.New("server").Parse(`server {
{{- range .Listen}}
    listen {{.}};
{{- end}}
    server_name {{.ServerName}};

    location {{.Location.Path}} {
{{- range .Location.Directives}}
        {{.Name}} {{.Value}};
{{- end}}
    }
}
`))

// Render writes cfg in nginx configuration syntax.
func Render(w io.Writer, cfg *ServerConfig) error {
	return serverTemplate.Execute(w, cfg)
}

// String renders cfg, for display.
func (cfg *ServerConfig) String() string {
	var buf bytes.Buffer
	if err := Render(&buf, cfg); err != nil {
		return ""
	}
	return buf.String()
}

// WriteFile renders cfg to path, replacing any existing file.
func WriteFile(cfg *ServerConfig, path string) error {
	var buf bytes.Buffer
	if err := Render(&buf, cfg); err != nil {
		return fmt.Errorf("failed to render nginx config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write nginx config: %w", err)
	}
	return nil
}

// FileName is the config file name generated for serverName.
func FileName(serverName string) string {
	return serverName + ".conf"
}

// ParsePorts parses a comma-separated port list such as "80,8080".
func ParsePorts(csv string) ([]int, error) {
	var ports []int
	for _, field := range strings.Split(csv, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		port, err := strconv.Atoi(field)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid port %q", field)
		}
		ports = append(ports, port)
	}
	if len(ports) == 0 {
		return nil, ErrNoPorts
	}
	return ports, nil
}

// relativeTo returns path relative to base, or absolute when no relative
// form exists.
func relativeTo(base, path string) (string, error) {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// MakeResult reports the files Make wrote.
type MakeResult struct {
	Config   *ServerConfig
	ConfPath string
	ArgsPath string
	Request  argfile.Request
}

// Make generates <serverName>.conf in dir and rewrites the argument file at
// argsPath to provision it. The argument file names the config relative to
// its own directory.
func Make(dir, serverName, upstreamIP, portsCSV, appLocation, argsPath string) (*MakeResult, error) {
	ports, err := ParsePorts(portsCSV)
	if err != nil {
		return nil, err
	}
	cfg, err := Build(serverName, upstreamIP, ports, appLocation)
	if err != nil {
		return nil, err
	}

	confPath := filepath.Join(dir, FileName(serverName))
	if err := WriteFile(cfg, confPath); err != nil {
		return nil, err
	}

	req := argfile.DeriveFromServerName(serverName)
	req.NginxConfFile, err = relativeTo(filepath.Dir(argsPath), confPath)
	if err != nil {
		return nil, err
	}
	if err := argfile.Write(argsPath, req); err != nil {
		return nil, fmt.Errorf("failed to write argument file: %w", err)
	}

	return &MakeResult{Config: cfg, ConfPath: confPath, ArgsPath: argsPath, Request: req}, nil
}
