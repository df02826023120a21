package partner

import (
	"errors"
	"net/url"
	"time"
)

// Config describes the partner API endpoints.
type Config struct {
	BaseURL     string
	LoginPath   string
	RefreshPath string
	Timeout     time.Duration
	UserAgent   string
}

// DefaultConfig returns partner defaults with an empty BaseURL.
func DefaultConfig() Config {
	return Config{
		LoginPath:   "/auth/login",
		RefreshPath: "/auth/refresh",
		Timeout:     15 * time.Second,
		UserAgent:   "authclient/1",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("partner BaseURL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("partner BaseURL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("partner BaseURL scheme must be http or https")
	}
	if c.LoginPath == "" {
		return errors.New("partner LoginPath is required")
	}
	if c.RefreshPath == "" {
		return errors.New("partner RefreshPath is required")
	}
	if c.Timeout < 0 {
		return errors.New("partner Timeout must be >= 0")
	}
	return nil
}

func withDefaults(c Config) Config {
	d := DefaultConfig()
	if c.LoginPath == "" {
		c.LoginPath = d.LoginPath
	}
	if c.RefreshPath == "" {
		c.RefreshPath = d.RefreshPath
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}
