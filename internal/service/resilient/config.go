package resilient

import "time"

// ServiceConfig is the per-service request policy. It is bound from the
// environment with the service name as prefix, e.g. WEATHER_CACHE_TTL.
type ServiceConfig struct {
	CacheEnabled  bool          `split_words:"true" default:"true"`
	CacheTTL      time.Duration `split_words:"true" default:"10m"`
	RetryAttempts int           `split_words:"true" default:"3"`
	RetryDelay    time.Duration `split_words:"true" default:"1s"`
	Timeout       time.Duration `default:"10s"`
	// RateLimit caps outbound attempts per second; zero disables limiting.
	RateLimit float64 `split_words:"true" default:"0"`
}

// DefaultServiceConfig mirrors the envconfig defaults for code that builds clients directly.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CacheEnabled:  true,
		CacheTTL:      10 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
		Timeout:       defaultTimeout,
	}
}

const defaultTimeout = 10 * time.Second

// Normalize enforces RetryAttempts >= 1 and clamps negative values to zero.
// Timeout is always positive afterwards; zero or negative becomes 10s.
func (c ServiceConfig) Normalize() ServiceConfig {
	if c.RetryAttempts < 1 {
		c.RetryAttempts = 1
	}
	if c.CacheTTL < 0 {
		c.CacheTTL = 0
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	return c
}
