package cookie

import (
	"net/http"
	"strings"
)

// Config holds cookie manager configuration.
type Config struct {
	Secrets  string `env:"COOKIE_SECRETS,required"`
	Path     string `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string `env:"COOKIE_DOMAIN" envDefault:""`
	Secure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	SameSite int    `env:"COOKIE_SAME_SITE" envDefault:"3"` // 3 = SameSiteStrictMode
}

// parseSecrets splits the comma-separated secrets string into a slice.
func (c Config) parseSecrets() []string {
	if c.Secrets == "" {
		return nil
	}

	parts := strings.Split(c.Secrets, ",")
	secrets := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// NewFromConfig creates a Manager from environment-driven configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	configOpts := []Option{
		WithPath(cfg.Path),
		WithDomain(cfg.Domain),
		WithSecure(cfg.Secure),
		WithHttpOnly(cfg.HttpOnly),
		WithSameSite(http.SameSite(cfg.SameSite)),
	}
	return New(cfg.parseSecrets(), append(configOpts, opts...)...)
}
