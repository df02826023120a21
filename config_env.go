package authclient

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type envConfig struct {
	PartnerBaseURL     string        `env:"AUTHCLIENT_PARTNER_BASE_URL"`
	PartnerLoginPath   string        `env:"AUTHCLIENT_PARTNER_LOGIN_PATH" default:"/auth/login"`
	PartnerRefreshPath string        `env:"AUTHCLIENT_PARTNER_REFRESH_PATH" default:"/auth/refresh"`
	PartnerTimeout     time.Duration `env:"AUTHCLIENT_PARTNER_TIMEOUT" default:"15s"`
	CallbackURL        string        `env:"AUTHCLIENT_CALLBACK_URL"`

	StorageNamespace string `env:"AUTHCLIENT_STORAGE_NAMESPACE"`
	LegacyAccessKey  string `env:"AUTHCLIENT_LEGACY_ACCESS_KEY"`

	RouteWorkspace string `env:"AUTHCLIENT_ROUTE_WORKSPACE" default:"/workspace"`
	RouteVerify    string `env:"AUTHCLIENT_ROUTE_VERIFY" default:"/verify"`

	ThrottleEnabled     bool          `env:"AUTHCLIENT_THROTTLE_ENABLED" default:"false"`
	ThrottleMaxAttempts int           `env:"AUTHCLIENT_THROTTLE_MAX_ATTEMPTS" default:"5"`
	ThrottleWindow      time.Duration `env:"AUTHCLIENT_THROTTLE_WINDOW" default:"15m"`
	ThrottleByIP        bool          `env:"AUTHCLIENT_THROTTLE_BY_IP" default:"false"`

	AuditEnabled   bool `env:"AUTHCLIENT_AUDIT_ENABLED" default:"false"`
	MetricsEnabled bool `env:"AUTHCLIENT_METRICS_ENABLED" default:"true"`

	TransformPassphrase string `env:"AUTHCLIENT_TRANSFORM_PASSPHRASE"`
}

// LoadConfigFromEnv builds a Config from AUTHCLIENT_* environment variables on top of
// DefaultConfig. Files in dotenv are loaded first when present; missing files are ignored
// and existing environment variables win.
func LoadConfigFromEnv(dotenv ...string) (Config, error) {
	for _, path := range dotenv {
		_ = godotenv.Load(path)
	}

	var e envConfig
	if err := env.Load(&e, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := defaultConfig()
	cfg.Partner.BaseURL = e.PartnerBaseURL
	cfg.Partner.LoginPath = e.PartnerLoginPath
	cfg.Partner.RefreshPath = e.PartnerRefreshPath
	cfg.Partner.Timeout = e.PartnerTimeout
	cfg.Primary.CallbackURL = e.CallbackURL
	cfg.Storage.Namespace = e.StorageNamespace
	cfg.Storage.LegacyAccessKey = e.LegacyAccessKey
	cfg.Routes.Workspace = e.RouteWorkspace
	cfg.Routes.Verify = e.RouteVerify
	cfg.Throttle.Enabled = e.ThrottleEnabled
	cfg.Throttle.MaxAttempts = e.ThrottleMaxAttempts
	cfg.Throttle.Window = e.ThrottleWindow
	cfg.Throttle.EnableIPThrottle = e.ThrottleByIP
	cfg.Audit.Enabled = e.AuditEnabled
	cfg.Metrics.Enabled = e.MetricsEnabled
	cfg.Transform.Passphrase = e.TransformPassphrase

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
