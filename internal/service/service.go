// Package service routes intents to provider services and normalizes slot
// values before the provider is called.
package service

import "context"

// Slots are the named parameter values extracted for an intent.
type Slots map[string]any

// Slot names back-filled from a user profile.
const (
	SlotLocation = "location"
	SlotTimezone = "timezone"
	SlotUnits    = "units"
)

// Unit systems accepted in the units slot.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Service is a provider reachable from the registry.
type Service interface {
	Name() string
	Query(ctx context.Context, params Slots) (any, error)
}

// String returns the slot as a string when it holds one.
func (s Slots) String(name string) (string, bool) {
	v, ok := s[name]
	if !ok || v == nil {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// has reports whether name is present with a non-nil value.
func (s Slots) has(name string) bool {
	v, ok := s[name]
	return ok && v != nil
}

// Clone returns a shallow copy; nil stays empty but non-nil.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s)+3)
	for k, v := range s {
		out[k] = v
	}
	return out
}
