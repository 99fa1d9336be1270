package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	rc := `
# comment
savedirectory = ~/designs
startmenu = false
confirmations=FALSE
health_interval = 2s
health_timeout = 30
server = Fonts, http://localhost:3002
server = http://api.local
port = 4000
garbage line
`
	cfg := defaultConfig()
	parseConfig(strings.NewReader(rc), cfg, "/home/ada")

	if cfg.SaveDirectory != filepath.Join("/home/ada", "designs") {
		t.Errorf("expected expanded save dir, got %q", cfg.SaveDirectory)
	}
	if cfg.StartMenu || cfg.Confirmations {
		t.Errorf("expected startmenu and confirmations off, got %v %v", cfg.StartMenu, cfg.Confirmations)
	}
	if cfg.HealthInterval != 2*time.Second {
		t.Errorf("expected 2s interval, got %v", cfg.HealthInterval)
	}
	if cfg.HealthTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.HealthTimeout)
	}
	if cfg.Server.Port != "4000" {
		t.Errorf("expected port 4000, got %q", cfg.Server.Port)
	}

	want := []ServerEndpoint{
		{Name: "Fonts", URL: "http://localhost:3002"},
		{Name: "http://api.local", URL: "http://api.local"},
	}
	if len(cfg.Servers) != len(want) {
		t.Fatalf("expected %d servers, got %+v", len(want), cfg.Servers)
	}
	for i := range want {
		if cfg.Servers[i] != want[i] {
			t.Errorf("server %d: expected %+v, got %+v", i, want[i], cfg.Servers[i])
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"500ms", 500 * time.Millisecond},
		{"3", 3 * time.Second},
		{"-1s", time.Minute},
		{"soon", time.Minute},
		{"0", time.Minute},
	}
	for _, tt := range tests {
		if got := parseDuration(tt.in, time.Minute); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("READ_TIMEOUT", "nope")
	t.Setenv("WRITE_TIMEOUT", "42")
	t.Setenv("SHAPETERM_SERVERS", "Fonts=http://a, API=http://b,Broken=")

	cfg := defaultConfig()
	applyEnv(cfg)

	if cfg.Server.Port != "9999" {
		t.Errorf("expected port from env, got %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10 {
		t.Errorf("bad int should keep default, got %d", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 42 {
		t.Errorf("expected 42, got %d", cfg.Server.WriteTimeout)
	}
	if len(cfg.Servers) != 2 || cfg.Servers[1].Name != "API" || cfg.Servers[1].URL != "http://b" {
		t.Errorf("unexpected servers %+v", cfg.Servers)
	}
}

func TestGetSavePath(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.GetSavePath("a.json"); got != "a.json" {
		t.Errorf("expected bare filename, got %q", got)
	}

	dir := filepath.Join(t.TempDir(), "saves")
	cfg.SaveDirectory = dir
	if got := cfg.GetSavePath("a.json"); got != filepath.Join(dir, "a.json") {
		t.Errorf("expected path in save dir, got %q", got)
	}
}

func TestDefaultServers(t *testing.T) {
	cfg := defaultConfig()
	want := ServerEndpoint{Name: "API", URL: "http://localhost:3002"}
	if len(cfg.Servers) != 1 || cfg.Servers[0] != want {
		t.Fatalf("expected default %+v, got %+v", want, cfg.Servers)
	}

	cfg = defaultConfig()
	parseConfig(strings.NewReader("port = 4100\n"), cfg, "")
	if cfg.Servers[0].URL != "http://localhost:4100" {
		t.Errorf("default server should follow the port, got %+v", cfg.Servers)
	}

	cfg = defaultConfig()
	parseConfig(strings.NewReader("server = none\n"), cfg, "")
	if len(cfg.Servers) != 0 {
		t.Errorf("server = none should disable checks, got %+v", cfg.Servers)
	}
}

func TestApplyEnvDefaultServers(t *testing.T) {
	t.Setenv("PORT", "5000")
	cfg := defaultConfig()
	applyEnv(cfg)
	if len(cfg.Servers) != 1 || cfg.Servers[0].URL != "http://localhost:5000" {
		t.Errorf("default server should follow PORT, got %+v", cfg.Servers)
	}

	t.Setenv("SHAPETERM_SERVERS", "none")
	cfg = defaultConfig()
	applyEnv(cfg)
	if len(cfg.Servers) != 0 {
		t.Errorf("SHAPETERM_SERVERS=none should disable checks, got %+v", cfg.Servers)
	}
}
