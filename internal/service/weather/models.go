package weather

import "time"

// Sources reported in Report.Source.
const (
	SourceOpenMeteo = "open-meteo"
	SourceMock      = "mock"
)

// Report is the normalized weather payload returned by the service.
type Report struct {
	Location      string      `json:"location"`
	Country       string      `json:"country"`
	Timezone      string      `json:"timezone,omitempty"`
	Date          string      `json:"date"`
	Temperature   Temperature `json:"temperature"`
	Conditions    string      `json:"conditions"`
	Icon          string      `json:"icon"`
	Humidity      float64     `json:"humidity"`
	WindSpeed     float64     `json:"windSpeed"`
	Precipitation float64     `json:"precipitation"`
	Clouds        float64     `json:"clouds"`
	Units         string      `json:"units"`
	Source        string      `json:"source"`
	Timestamp     time.Time   `json:"timestamp"`
}

type Temperature struct {
	Current   float64 `json:"current"`
	FeelsLike float64 `json:"feelsLike"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// Place is a geocoding match.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// Forecast is the normalized forecast response: the current reading plus one
// entry per forecast day.
type Forecast struct {
	Timezone string     `json:"timezone"`
	Current  Reading    `json:"current"`
	Daily    []DayEntry `json:"daily"`
}

type Reading struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            float64 `json:"humidity"`
	Precipitation       float64 `json:"precipitation"`
	WeatherCode         int     `json:"weather_code"`
	CloudCover          float64 `json:"cloud_cover"`
	WindSpeed           float64 `json:"wind_speed"`
}

type DayEntry struct {
	Date          string  `json:"date"`
	Max           float64 `json:"max"`
	Min           float64 `json:"min"`
	WeatherCode   int     `json:"weather_code"`
	Precipitation float64 `json:"precipitation"`
	Humidity      float64 `json:"humidity"`
	CloudCover    float64 `json:"cloud_cover"`
	WindSpeed     float64 `json:"wind_speed"`
}
