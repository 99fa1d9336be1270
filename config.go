package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SaveDirectory  string
	StartMenu      bool
	Confirmations  bool
	FontDirectory  string
	HealthInterval time.Duration
	HealthTimeout  time.Duration
	Servers        []ServerEndpoint
	Server         ServerConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	DBPath       string
	CORSOrigin   string
	ReadTimeout  int
	WriteTimeout int
}

// defaultServers is the companion service this binary runs with `serve`.
func defaultServers(port string) []ServerEndpoint {
	return []ServerEndpoint{{Name: "API", URL: "http://localhost:" + port}}
}

func isDefaultServers(servers []ServerEndpoint, port string) bool {
	return len(servers) == 1 && servers[0] == defaultServers(port)[0]
}

// disablesServers reports whether a server setting turns health checks off.
func disablesServers(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "none", "off", "false":
		return true
	}
	return false
}

func defaultConfig() *Config {
	return &Config{
		SaveDirectory:  "",
		StartMenu:      true,
		Confirmations:  true,
		HealthInterval: 5 * time.Second,
		HealthTimeout:  15 * time.Second,
		Servers:        defaultServers("3002"),
		Server: ServerConfig{
			Port:         "3002",
			Environment:  "development",
			DBPath:       "data/designs.db",
			CORSOrigin:   "*",
			ReadTimeout:  10,
			WriteTimeout: 10,
		},
	}
}

// loadConfig reads ~/.shapetermrc and then applies environment overrides.
// A missing or unreadable file leaves the defaults in place.
func loadConfig() *Config {
	config := defaultConfig()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		if file, err := os.Open(filepath.Join(homeDir, ".shapetermrc")); err == nil {
			parseConfig(file, config, homeDir)
			file.Close()
		}
	}

	applyEnv(config)
	return config
}

func expandPath(value, homeDir string) string {
	if strings.HasPrefix(value, "~") && homeDir != "" {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// parseConfig applies rc settings. The first server line replaces the
// default server list; "server = none" disables health checks.
func parseConfig(r io.Reader, config *Config, homeDir string) {
	serversSet := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "savedirectory", "save_directory", "savedir":
			config.SaveDirectory = expandPath(value, homeDir)
		case "fontdirectory", "font_directory", "fontdir":
			config.FontDirectory = expandPath(value, homeDir)
		case "startmenu", "start_menu":
			config.StartMenu = strings.ToLower(value) == "true"
		case "confirmations", "confirm":
			config.Confirmations = strings.ToLower(value) == "true"
		case "healthinterval", "health_interval":
			config.HealthInterval = parseDuration(value, config.HealthInterval)
		case "healthtimeout", "health_timeout":
			config.HealthTimeout = parseDuration(value, config.HealthTimeout)
		case "server", "healthcheck":
			if !serversSet {
				config.Servers = nil
				serversSet = true
			}
			if disablesServers(value) {
				continue
			}
			// server = Name,http://host:port
			name, url, ok := strings.Cut(value, ",")
			if !ok {
				name, url = value, value
			}
			config.Servers = append(config.Servers, ServerEndpoint{
				Name: strings.TrimSpace(name),
				URL:  strings.TrimSpace(url),
			})
		case "port":
			if !serversSet && isDefaultServers(config.Servers, config.Server.Port) {
				config.Servers = defaultServers(value)
			}
			config.Server.Port = value
		case "dbpath", "db_path":
			config.Server.DBPath = expandPath(value, homeDir)
		case "corsorigin", "cors_origin":
			config.Server.CORSOrigin = value
		}
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func applyEnv(config *Config) {
	port := getEnv("PORT", config.Server.Port)
	if isDefaultServers(config.Servers, config.Server.Port) {
		config.Servers = defaultServers(port)
	}
	config.Server.Port = port
	config.Server.Environment = getEnv("ENV", config.Server.Environment)
	config.Server.DBPath = getEnv("SHAPETERM_DB_PATH", config.Server.DBPath)
	config.Server.CORSOrigin = getEnv("CORS_ORIGIN", config.Server.CORSOrigin)
	config.Server.ReadTimeout = getEnvAsInt("READ_TIMEOUT", config.Server.ReadTimeout)
	config.Server.WriteTimeout = getEnvAsInt("WRITE_TIMEOUT", config.Server.WriteTimeout)
	config.FontDirectory = getEnv("SHAPETERM_FONT_DIR", config.FontDirectory)

	if v := os.Getenv("SHAPETERM_SERVERS"); v != "" {
		// SHAPETERM_SERVERS=Fonts=http://a,API=http://b or none
		config.Servers = nil
		if disablesServers(v) {
			return
		}
		for _, entry := range strings.Split(v, ",") {
			name, url, ok := strings.Cut(strings.TrimSpace(entry), "=")
			if !ok {
				name, url = entry, entry
			}
			if url == "" {
				continue
			}
			config.Servers = append(config.Servers, ServerEndpoint{Name: name, URL: url})
		}
	}
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
