package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultOllamaPort = "11434"

// Config holds the client configuration.
type Config struct {
	OllamaHost string        `env:"OLLAMA_HOST" envDefault:"http://127.0.0.1:11434"`
	Timeout    time.Duration `env:"MODELINSPECT_TIMEOUT" envDefault:"0s"` // 0 = wait for the daemon indefinitely
	Listen     string        `env:"MODELINSPECT_LISTEN" envDefault:"127.0.0.1:8090"`
	LogFile    string        `env:"MODELINSPECT_LOG_FILE"`
	Debug      bool          `env:"MODELINSPECT_DEBUG"`
}

// Load reads the given dotenv files (missing files are skipped), then the
// process environment, on top of the defaults.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	return cfg, nil
}

// OllamaURL returns OllamaHost as a base URL. Bare "host", "host:port" and
// full URLs are accepted.
func (c *Config) OllamaURL() (string, error) {
	return NormalizeHost(c.OllamaHost)
}

// NormalizeHost turns an OLLAMA_HOST style value into a base URL with scheme
// and port.
func NormalizeHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "http://127.0.0.1:" + defaultOllamaPort, nil
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid ollama host %q: missing hostname", host)
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), defaultOllamaPort)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
