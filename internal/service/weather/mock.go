package weather

import (
	"math"
	"time"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
)

// Synthetic reading in metric units. Imperial values are converted from these.
const (
	mockCurrentC   = 20.0
	mockFeelsLikeC = 18.0
	mockMinC       = 15.0
	mockMaxC       = 24.0
	mockWindKmh    = 10.0
	mockHumidity   = 65.0
	mockClouds     = 40.0
	mockCode       = 2
	kmhToMph       = 0.621371
)

func mockReport(location, units string, day dayQuery, now time.Time) Report {
	temp := func(c float64) float64 { return c }
	wind := mockWindKmh
	if units == service.UnitsImperial {
		temp = func(c float64) float64 { return round1(c*9/5 + 32) }
		wind = round1(mockWindKmh * kmhToMph)
	}

	return Report{
		Location: location,
		Date:     day.resolve(now),
		Temperature: Temperature{
			Current:   temp(mockCurrentC),
			FeelsLike: temp(mockFeelsLikeC),
			Min:       temp(mockMinC),
			Max:       temp(mockMaxC),
		},
		Conditions:    Describe(mockCode),
		Icon:          Icon(mockCode),
		Humidity:      mockHumidity,
		WindSpeed:     wind,
		Precipitation: 0,
		Clouds:        mockClouds,
		Units:         units,
		Source:        SourceMock,
		Timestamp:     now,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
