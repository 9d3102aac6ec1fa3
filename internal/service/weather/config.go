package weather

import "github.com/Chative-core-poc-v1/intent-gateway/internal/service/resilient"

// Config is bound from WEATHER_* environment variables.
type Config struct {
	resilient.ServiceConfig

	GeocodeURL   string `split_words:"true" default:"https://geocoding-api.open-meteo.com/v1/search"`
	ForecastURL  string `split_words:"true" default:"https://api.open-meteo.com/v1/forecast"`
	Language     string `default:"en"`
	ForecastDays int    `split_words:"true" default:"7"`
}

// DefaultConfig returns the production endpoints with the default request policy.
func DefaultConfig() Config {
	return Config{
		ServiceConfig: resilient.DefaultServiceConfig(),
		GeocodeURL:    "https://geocoding-api.open-meteo.com/v1/search",
		ForecastURL:   "https://api.open-meteo.com/v1/forecast",
		Language:      "en",
		ForecastDays:  7,
	}
}
