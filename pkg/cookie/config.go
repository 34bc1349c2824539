package cookie

import "strings"

// Config holds cookie manager configuration. Secrets has no default on
// purpose: an application that cannot provide a key must fail to start
// rather than fall back to a published one.
type Config struct {
	Secrets string `env:"COOKIE_SECRETS,required"`
	Domain  string `env:"COOKIE_DOMAIN" envDefault:""`
	Secure  bool   `env:"COOKIE_SECURE" envDefault:"true"`
}

// NewFromConfig creates a Manager from the provided Config. Secrets is a
// comma-separated list; the first entry is the active key, the rest are
// rotation candidates kept readable.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	var secrets []string
	for _, s := range strings.Split(cfg.Secrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}

	configOpts := make([]Option, 0, 3)
	if cfg.Domain != "" {
		configOpts = append(configOpts, WithDomain(cfg.Domain))
	}
	configOpts = append(configOpts, WithSecure(cfg.Secure))
	configOpts = append(configOpts, opts...)

	return New(secrets, configOpts...)
}
