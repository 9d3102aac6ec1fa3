package responder

import (
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service/weather"
)

// Summarize writes a fixed-format reply for result.
func Summarize(result *service.IntentExecutionResult) string {
	if result == nil {
		return ""
	}
	if !result.Success {
		if result.Error == "" {
			return "Sorry, I couldn't complete that request."
		}
		return fmt.Sprintf("Sorry, I couldn't complete that request: %s.", strings.TrimSuffix(result.Error, "."))
	}

	switch d := result.Data.(type) {
	case weather.Report:
		return summarizeWeather(d)
	case *weather.Report:
		if d != nil {
			return summarizeWeather(*d)
		}
	}
	return fmt.Sprintf("Done: %s via %s.", result.Intent, result.Service)
}

func summarizeWeather(r weather.Report) string {
	deg, speed := "°C", "km/h"
	if r.Units == service.UnitsImperial {
		deg, speed = "°F", "mph"
	}

	place := r.Location
	if r.Country != "" {
		place += ", " + r.Country
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s on %s: %s, %g%s (feels like %g%s), high %g%s, low %g%s, wind %g %s.",
		place, r.Date, strings.ToLower(r.Conditions),
		r.Temperature.Current, deg, r.Temperature.FeelsLike, deg,
		r.Temperature.Max, deg, r.Temperature.Min, deg,
		r.WindSpeed, speed)
	if r.Source == weather.SourceMock {
		b.WriteString(" Live data is unavailable, so these figures are an estimate.")
	}
	return b.String()
}
