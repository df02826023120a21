package authclient

import (
	"errors"
	"strings"
	"time"

	"github.com/simstudio/authclient/partner"
	"github.com/simstudio/authclient/tokens"
)

// Config is the complete client configuration. Start from DefaultConfig and override.
type Config struct {
	Partner   partner.Config
	Primary   PrimaryConfig
	Storage   StorageConfig
	Routes    RoutesConfig
	Throttle  ThrottleConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
	Transform TransformConfig
}

// PrimaryConfig holds primary sign-in parameters.
type PrimaryConfig struct {
	// CallbackURL is passed to the provider with each sign-in.
	CallbackURL string
}

// StorageConfig names the keys the client writes. Namespace prefixes every key.
type StorageConfig struct {
	Namespace            string
	TokenKey             string
	LegacyAccessKey      string
	ReturningUserKey     string
	VerificationEmailKey string
	// VerificationEmailTTL bounds the pending verification email when the session store is
	// Redis backed. Informational for other stores.
	VerificationEmailTTL time.Duration
}

// RoutesConfig holds navigation targets.
type RoutesConfig struct {
	Workspace string
	Verify    string
}

// ThrottleConfig controls the local failed-attempt throttle. Requires a Redis client.
type ThrottleConfig struct {
	Enabled          bool
	MaxAttempts      int
	Window           time.Duration
	EnableIPThrottle bool
	RedisPrefix      string
}

// AuditConfig controls audit dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// TransformConfig configures the built-in cipher.Box transform. An empty Passphrase leaves
// SubmitEncrypted unavailable unless a Transform is supplied to the Builder.
type TransformConfig struct {
	Passphrase  string
	Memory      uint32
	Time        uint32
	Parallelism uint8
}

// DefaultConfig returns defaults. Partner.BaseURL must still be set.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Partner: partner.DefaultConfig(),
		Storage: StorageConfig{
			TokenKey:             tokens.DefaultKey,
			ReturningUserKey:     "has_logged_in_before",
			VerificationEmailKey: "verificationEmail",
			VerificationEmailTTL: 30 * time.Minute,
		},
		Routes: RoutesConfig{
			Workspace: "/workspace",
			Verify:    "/verify",
		},
		Throttle: ThrottleConfig{
			MaxAttempts: 5,
			Window:      15 * time.Minute,
			RedisPrefix: "authclient:attempts",
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Transform: TransformConfig{
			Memory:      64 * 1024,
			Time:        1,
			Parallelism: 2,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate checks cfg for internal consistency.
func (c *Config) Validate() error {
	if err := c.Partner.Validate(); err != nil {
		return err
	}
	if c.Partner.Timeout == 0 {
		return errors.New("partner Timeout must be > 0")
	}

	// Storage
	if c.Storage.TokenKey == "" {
		return errors.New("Storage TokenKey is required")
	}
	if c.Storage.ReturningUserKey == "" {
		return errors.New("Storage ReturningUserKey is required")
	}
	if c.Storage.VerificationEmailKey == "" {
		return errors.New("Storage VerificationEmailKey is required")
	}
	if c.Storage.TokenKey == c.Storage.ReturningUserKey || c.Storage.TokenKey == c.Storage.VerificationEmailKey ||
		(c.Storage.LegacyAccessKey != "" && c.Storage.LegacyAccessKey == c.Storage.TokenKey) {
		return errors.New("Storage keys must be distinct")
	}
	if c.Storage.VerificationEmailTTL < 0 {
		return errors.New("Storage VerificationEmailTTL must be >= 0")
	}

	// Routes
	if !strings.HasPrefix(c.Routes.Workspace, "/") {
		return errors.New("Routes Workspace must start with /")
	}
	if !strings.HasPrefix(c.Routes.Verify, "/") {
		return errors.New("Routes Verify must start with /")
	}

	// Throttle
	if c.Throttle.Enabled {
		if c.Throttle.MaxAttempts <= 0 {
			return errors.New("Throttle MaxAttempts must be > 0")
		}
		if c.Throttle.Window <= 0 {
			return errors.New("Throttle Window must be > 0")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}

	// Transform
	if c.Transform.Passphrase != "" {
		if len(c.Transform.Passphrase) < 12 {
			return errors.New("Transform Passphrase must be at least 12 bytes")
		}
		if c.Transform.Memory < 8*1024 {
			return errors.New("Transform Memory must be >= 8192 KB")
		}
		if c.Transform.Time < 1 || c.Transform.Parallelism < 1 {
			return errors.New("Transform Time and Parallelism must be >= 1")
		}
	}

	return nil
}
