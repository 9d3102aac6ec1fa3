package service

import "context"

// Temperature unit preferences.
const (
	Celsius    = "celsius"
	Fahrenheit = "fahrenheit"
)

// UserProfile holds the per-user defaults used for slot enrichment.
type UserProfile struct {
	Location    ProfileLocation `json:"location"`
	Timezone    string          `json:"timezone,omitempty"`
	Preferences Preferences     `json:"preferences"`
}

type ProfileLocation struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

type Preferences struct {
	TemperatureUnit string `json:"temperature_unit,omitempty"`
}

type profileKey struct{}

// WithProfile attaches a profile to ctx for callers that cannot pass it directly, such as tool invocations.
func WithProfile(ctx context.Context, p *UserProfile) context.Context {
	return context.WithValue(ctx, profileKey{}, p)
}

// ProfileFrom returns the profile attached by WithProfile, or nil.
func ProfileFrom(ctx context.Context) *UserProfile {
	p, _ := ctx.Value(profileKey{}).(*UserProfile)
	return p
}

// Enrich returns a copy of slots with location, timezone and units filled from
// the profile where the caller did not supply them. Caller values are never
// overwritten and the input map is not modified.
func Enrich(slots Slots, profile *UserProfile) Slots {
	out := slots.Clone()
	if profile == nil {
		return out
	}

	if !out.has(SlotLocation) && profile.Location.City != "" {
		out[SlotLocation] = profile.Location.City
	}
	if !out.has(SlotTimezone) && profile.Timezone != "" {
		out[SlotTimezone] = profile.Timezone
	}
	if !out.has(SlotUnits) {
		if profile.Preferences.TemperatureUnit == Celsius {
			out[SlotUnits] = UnitsMetric
		} else {
			out[SlotUnits] = UnitsImperial
		}
	}
	return out
}
