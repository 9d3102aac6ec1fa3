package weather

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
)

const (
	currentFields = "temperature_2m,apparent_temperature,relative_humidity_2m,precipitation,weather_code,cloud_cover,wind_speed_10m"
	dailyFields   = "temperature_2m_max,temperature_2m_min,weather_code,precipitation_sum,relative_humidity_2m_mean,cloud_cover_mean,wind_speed_10m_max"
)

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

type forecastResponse struct {
	Timezone string `json:"timezone"`
	Current  struct {
		Time                string  `json:"time"`
		Temperature2m       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity2m  float64 `json:"relative_humidity_2m"`
		Precipitation       float64 `json:"precipitation"`
		WeatherCode         int     `json:"weather_code"`
		CloudCover          float64 `json:"cloud_cover"`
		WindSpeed10m        float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		Time                   []string  `json:"time"`
		Temperature2mMax       []float64 `json:"temperature_2m_max"`
		Temperature2mMin       []float64 `json:"temperature_2m_min"`
		WeatherCode            []int     `json:"weather_code"`
		PrecipitationSum       []float64 `json:"precipitation_sum"`
		RelativeHumidity2mMean []float64 `json:"relative_humidity_2m_mean"`
		CloudCoverMean         []float64 `json:"cloud_cover_mean"`
		WindSpeed10mMax        []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

func geocodeParams(name, language string) url.Values {
	p := url.Values{}
	p.Set("name", name)
	p.Set("count", "1")
	p.Set("language", language)
	p.Set("format", "json")
	return p
}

func forecastParams(place Place, units string, days int) url.Values {
	p := url.Values{}
	p.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', 4, 64))
	p.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', 4, 64))
	p.Set("current", currentFields)
	p.Set("daily", dailyFields)
	p.Set("timezone", "auto")
	p.Set("forecast_days", strconv.Itoa(days))
	if units == service.UnitsImperial {
		p.Set("temperature_unit", "fahrenheit")
		p.Set("wind_speed_unit", "mph")
		p.Set("precipitation_unit", "inch")
	}
	return p
}

// transformGeocode keeps at most the first match. An empty slice means no match.
func transformGeocode(raw []byte) ([]Place, error) {
	var resp geocodeResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(resp.Results) == 0 {
		return []Place{}, nil
	}
	r := resp.Results[0]
	return []Place{{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timezone:  r.Timezone,
	}}, nil
}

func transformForecast(raw []byte) (Forecast, error) {
	var resp forecastResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Forecast{}, fmt.Errorf("decode forecast response: %w", err)
	}

	d := resp.Daily
	n := len(d.Time)
	if len(d.Temperature2mMax) != n || len(d.Temperature2mMin) != n || len(d.WeatherCode) != n {
		return Forecast{}, fmt.Errorf("forecast daily series have mismatched lengths")
	}

	f := Forecast{
		Timezone: resp.Timezone,
		Current: Reading{
			Time:                resp.Current.Time,
			Temperature:         resp.Current.Temperature2m,
			ApparentTemperature: resp.Current.ApparentTemperature,
			Humidity:            resp.Current.RelativeHumidity2m,
			Precipitation:       resp.Current.Precipitation,
			WeatherCode:         resp.Current.WeatherCode,
			CloudCover:          resp.Current.CloudCover,
			WindSpeed:           resp.Current.WindSpeed10m,
		},
		Daily: make([]DayEntry, 0, n),
	}
	for i := 0; i < n; i++ {
		f.Daily = append(f.Daily, DayEntry{
			Date:          d.Time[i],
			Max:           d.Temperature2mMax[i],
			Min:           d.Temperature2mMin[i],
			WeatherCode:   d.WeatherCode[i],
			Precipitation: at(d.PrecipitationSum, i),
			Humidity:      at(d.RelativeHumidity2mMean, i),
			CloudCover:    at(d.CloudCoverMean, i),
			WindSpeed:     at(d.WindSpeed10mMax, i),
		})
	}
	return f, nil
}

// at returns s[i], or zero for optional series the provider omitted.
func at(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}
