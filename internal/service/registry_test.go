package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	errx "github.com/Chative-core-poc-v1/intent-gateway/internal/core/error"
)

type fakeService struct {
	name  string
	calls int
	got   Slots
	data  any
	err   error
	panic bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Query(_ context.Context, params Slots) (any, error) {
	f.calls++
	f.got = params
	if f.panic {
		panic("boom")
	}
	return f.data, f.err
}

func TestEnrich(t *testing.T) {
	profile := &UserProfile{
		Location:    ProfileLocation{City: "Paris"},
		Timezone:    "Europe/Paris",
		Preferences: Preferences{TemperatureUnit: Celsius},
	}

	tests := []struct {
		name    string
		slots   Slots
		profile *UserProfile
		want    Slots
	}{
		{
			name:    "no profile leaves slots alone",
			slots:   Slots{"date": "today"},
			profile: nil,
			want:    Slots{"date": "today"},
		},
		{
			name:    "fills every absent slot",
			slots:   Slots{},
			profile: profile,
			want:    Slots{SlotLocation: "Paris", SlotTimezone: "Europe/Paris", SlotUnits: UnitsMetric},
		},
		{
			name:    "caller values win",
			slots:   Slots{SlotLocation: "Tokyo", SlotTimezone: "Asia/Tokyo", SlotUnits: UnitsImperial},
			profile: profile,
			want:    Slots{SlotLocation: "Tokyo", SlotTimezone: "Asia/Tokyo", SlotUnits: UnitsImperial},
		},
		{
			name:    "fahrenheit maps to imperial",
			slots:   Slots{SlotLocation: "Austin"},
			profile: &UserProfile{Preferences: Preferences{TemperatureUnit: Fahrenheit}},
			want:    Slots{SlotLocation: "Austin", SlotUnits: UnitsImperial},
		},
		{
			name:    "missing preference maps to imperial",
			slots:   Slots{},
			profile: &UserProfile{Location: ProfileLocation{City: "Lima"}},
			want:    Slots{SlotLocation: "Lima", SlotUnits: UnitsImperial},
		},
		{
			name:    "empty string location is caller supplied",
			slots:   Slots{SlotLocation: ""},
			profile: profile,
			want:    Slots{SlotLocation: "", SlotTimezone: "Europe/Paris", SlotUnits: UnitsMetric},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Enrich(tt.slots, tt.profile)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	in := Slots{"date": "tomorrow"}
	out := Enrich(in, &UserProfile{Location: ProfileLocation{City: "Oslo"}})
	if len(in) != 1 {
		t.Fatalf("input mutated: %v", in)
	}
	if out[SlotLocation] != "Oslo" {
		t.Fatalf("location not enriched: %v", out)
	}
	if Enrich(nil, nil) == nil {
		t.Fatal("nil slots should enrich to an empty map")
	}
}

func TestEnrichNeverClobbersLocation(t *testing.T) {
	profiles := []*UserProfile{
		nil,
		{},
		{Location: ProfileLocation{City: "Paris"}},
		{Location: ProfileLocation{City: "Paris"}, Timezone: "UTC", Preferences: Preferences{TemperatureUnit: Celsius}},
	}
	locations := []any{"Berlin", "", 42, map[string]any{"lat": 1.0}}

	for _, p := range profiles {
		for _, loc := range locations {
			got := Enrich(Slots{SlotLocation: loc}, p)
			if !reflect.DeepEqual(got[SlotLocation], loc) {
				t.Errorf("profile %+v changed location %v to %v", p, loc, got[SlotLocation])
			}
		}
	}
}

func TestExecuteIntentUnmappedIntent(t *testing.T) {
	svc := &fakeService{name: "weather"}
	r := NewRegistry()
	if err := r.RegisterService("weather", svc); err != nil {
		t.Fatal(err)
	}

	if res := r.ExecuteIntent(context.Background(), "book_flight", Slots{}, &UserProfile{}); res != nil {
		t.Fatalf("expected nil for unmapped intent, got %+v", res)
	}
	if svc.calls != 0 {
		t.Fatal("service called for unmapped intent")
	}
}

func TestExecuteIntentMappedToUnregisteredService(t *testing.T) {
	r := NewRegistry()
	r.MapIntentToService("news_query", "news")

	if res := r.ExecuteIntent(context.Background(), "news_query", Slots{}, nil); res != nil {
		t.Fatalf("expected nil, got %+v", res)
	}
}

func TestExecuteIntentScenarioParis(t *testing.T) {
	svc := &fakeService{name: "weather", data: map[string]any{"location": "Paris"}}
	r := NewRegistry()
	_ = r.RegisterService("weather", svc)
	r.MapIntentToService("weather_query", "weather")

	res := r.ExecuteIntent(context.Background(), "weather_query", Slots{}, &UserProfile{Location: ProfileLocation{City: "Paris"}})
	if res == nil {
		t.Fatal("expected envelope")
	}
	if svc.got[SlotLocation] != "Paris" {
		t.Errorf("enriched location: got %v", svc.got[SlotLocation])
	}
	want := &IntentExecutionResult{
		Success: true,
		Data:    map[string]any{"location": "Paris"},
		Service: "weather",
		Intent:  "weather_query",
	}
	if !reflect.DeepEqual(res, want) {
		t.Fatalf("got %+v, want %+v", res, want)
	}
}

func TestExecuteIntentFailureEnvelope(t *testing.T) {
	svc := &fakeService{name: "weather", err: errors.New("upstream down")}
	r := NewRegistry()
	_ = r.RegisterService("weather", svc)
	r.MapIntentToService("weather_query", "weather")

	res := r.ExecuteIntent(context.Background(), "weather_query", Slots{SlotLocation: "Rome"}, nil)
	if res == nil || res.Success {
		t.Fatalf("expected failure envelope, got %+v", res)
	}
	if res.Error != "upstream down" || res.Service != "weather" || res.Intent != "weather_query" || res.Data != nil {
		t.Fatalf("unexpected envelope: %+v", res)
	}
}

func TestExecuteIntentRecoversPanic(t *testing.T) {
	svc := &fakeService{name: "weather", panic: true}
	r := NewRegistry()
	_ = r.RegisterService("weather", svc)
	r.MapIntentToService("weather_query", "weather")

	res := r.ExecuteIntent(context.Background(), "weather_query", nil, nil)
	if res == nil || res.Success || res.Error == "" {
		t.Fatalf("expected failure envelope, got %+v", res)
	}
	if !strings.HasPrefix(res.Error, errx.SystemErrorMessage) || !strings.Contains(res.Error, "boom") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestRegisterService(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterService("", &fakeService{}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := r.RegisterService("x", nil); err == nil {
		t.Error("expected error for nil service")
	}

	first := &fakeService{name: "first"}
	second := &fakeService{name: "second"}
	_ = r.RegisterService("weather", first)
	_ = r.RegisterService("weather", second)
	got, ok := r.Service("weather")
	if !ok || got != second {
		t.Fatalf("expected overwrite, got %v", got)
	}

	r.MapIntentToService("b", "weather")
	r.MapIntentToService("a", "weather")
	if got := r.Intents(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Intents: got %v", got)
	}
	if svc, ok := r.Resolve("a"); !ok || svc != second {
		t.Fatalf("Resolve: got %v, %v", svc, ok)
	}
}

func TestProfileContext(t *testing.T) {
	if ProfileFrom(context.Background()) != nil {
		t.Fatal("expected nil profile")
	}
	p := &UserProfile{Timezone: "UTC"}
	if got := ProfileFrom(WithProfile(context.Background(), p)); got != p {
		t.Fatalf("got %v", got)
	}
}
