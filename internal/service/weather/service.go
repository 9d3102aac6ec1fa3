// Package weather is the Open-Meteo weather provider: it geocodes the requested
// location, fetches the forecast for its coordinates and reshapes both into a Report.
package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	errx "github.com/Chative-core-poc-v1/intent-gateway/internal/core/error"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service/resilient"
	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
)

// Name is the service name used for registration and cache keys.
const Name = "weather"

// SlotDate selects the forecast day: "today", "tomorrow" or YYYY-MM-DD.
const SlotDate = "date"

const (
	minForecastDays = 2
	maxForecastDays = 16
	dateLayout      = "2006-01-02"
)

type Service struct {
	cfg    Config
	client *resilient.Client
}

// New builds the service. Options are passed to the underlying request client.
func New(cfg Config, opts ...resilient.Option) *Service {
	if cfg.ForecastDays < minForecastDays {
		cfg.ForecastDays = minForecastDays
	}
	if cfg.ForecastDays > maxForecastDays {
		cfg.ForecastDays = maxForecastDays
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Service{
		cfg:    cfg,
		client: resilient.New(Name, cfg.ServiceConfig, opts...),
	}
}

func (s *Service) Name() string {
	return Name
}

// Query returns a Report for the location slot.
//
// Missing or invalid input and an unknown location are returned as errors. Any
// other failure of the live lookup degrades to a synthetic reading tagged
// SourceMock, so callers always get a well-formed Report otherwise.
func (s *Service) Query(ctx context.Context, params service.Slots) (any, error) {
	location, _ := params.String(service.SlotLocation)
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errx.MissingParameter(service.SlotLocation)
	}
	units := unitsFrom(params)
	day, err := parseDay(params)
	if err != nil {
		return nil, err
	}

	report, err := s.live(ctx, location, units, day)
	if err == nil {
		return report, nil
	}
	if errors.Is(err, errx.ErrLocationNotFound) || errors.Is(err, errx.ErrInvalidParameter) {
		return nil, err
	}

	logx.Warn().Err(err).
		Str("service", Name).
		Str("location", location).
		Msg("live weather lookup failed, serving mock reading")
	return mockReport(location, units, day, s.client.Now()), nil
}

func (s *Service) live(ctx context.Context, location, units string, day dayQuery) (Report, error) {
	places, err := resilient.Get[[]Place](ctx, s.client, s.cfg.GeocodeURL,
		resilient.RequestOptions{Params: geocodeParams(location, s.cfg.Language)}, transformGeocode)
	if err != nil {
		return Report{}, fmt.Errorf("geocode %q: %w", location, err)
	}
	if len(places) == 0 {
		return Report{}, errx.LocationNotFound(location)
	}
	place := places[0]

	fc, err := resilient.Get[Forecast](ctx, s.client, s.cfg.ForecastURL,
		resilient.RequestOptions{Params: forecastParams(place, units, s.cfg.ForecastDays)}, transformForecast)
	if err != nil {
		return Report{}, fmt.Errorf("forecast for %s: %w", place.Name, err)
	}
	return buildReport(place, fc, units, day, s.client.Now())
}

func buildReport(place Place, fc Forecast, units string, day dayQuery, now time.Time) (Report, error) {
	if len(fc.Daily) == 0 {
		return Report{}, errors.New("forecast has no daily entries")
	}
	idx := day.index(fc.Daily)
	if idx < 0 {
		return Report{}, errx.InvalidParameter(SlotDate, "outside the forecast window")
	}
	d := fc.Daily[idx]

	tz := fc.Timezone
	if tz == "" {
		tz = place.Timezone
	}
	r := Report{
		Location:    place.Name,
		Country:     place.Country,
		Timezone:    tz,
		Date:        d.Date,
		Temperature: Temperature{Min: d.Min, Max: d.Max},
		Units:       units,
		Source:      SourceOpenMeteo,
		Timestamp:   now,
	}

	// Only the first day has a live current reading.
	code := d.WeatherCode
	if idx == 0 {
		c := fc.Current
		code = c.WeatherCode
		r.Temperature.Current = c.Temperature
		r.Temperature.FeelsLike = c.ApparentTemperature
		r.Humidity = c.Humidity
		r.WindSpeed = c.WindSpeed
		r.Precipitation = c.Precipitation
		r.Clouds = c.CloudCover
	} else {
		mid := round1((d.Min + d.Max) / 2)
		r.Temperature.Current = mid
		r.Temperature.FeelsLike = mid
		r.Humidity = d.Humidity
		r.WindSpeed = d.WindSpeed
		r.Precipitation = d.Precipitation
		r.Clouds = d.CloudCover
	}
	r.Conditions = Describe(code)
	r.Icon = Icon(code)
	return r, nil
}

// unitsFrom reads the units slot; anything but imperial is metric.
func unitsFrom(params service.Slots) string {
	u, _ := params.String(service.SlotUnits)
	switch strings.ToLower(strings.TrimSpace(u)) {
	case service.UnitsImperial, "fahrenheit", "us":
		return service.UnitsImperial
	default:
		return service.UnitsMetric
	}
}

// dayQuery is either an offset from the first forecast day or an explicit date.
type dayQuery struct {
	offset int
	date   string
}

func parseDay(params service.Slots) (dayQuery, error) {
	v, _ := params.String(SlotDate)
	switch v = strings.ToLower(strings.TrimSpace(v)); v {
	case "", "today", "now":
		return dayQuery{}, nil
	case "tomorrow":
		return dayQuery{offset: 1}, nil
	}
	if _, err := time.Parse(dateLayout, v); err != nil {
		return dayQuery{}, errx.InvalidParameter(SlotDate, "expected today, tomorrow or YYYY-MM-DD")
	}
	return dayQuery{date: v}, nil
}

func (q dayQuery) index(days []DayEntry) int {
	if q.date == "" {
		if q.offset < len(days) {
			return q.offset
		}
		return -1
	}
	for i, d := range days {
		if d.Date == q.date {
			return i
		}
	}
	return -1
}

func (q dayQuery) resolve(now time.Time) string {
	if q.date != "" {
		return q.date
	}
	return now.AddDate(0, 0, q.offset).Format(dateLayout)
}
