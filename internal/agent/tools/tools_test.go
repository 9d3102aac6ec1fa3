package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
)

type echoService struct{}

func (echoService) Name() string { return "echo" }

func (echoService) Query(ctx context.Context, slots service.Slots) (any, error) {
	return map[string]any(slots), nil
}

func newTestRegistry(t *testing.T) *service.Registry {
	t.Helper()
	reg := service.NewRegistry()
	if err := reg.RegisterService("echo", echoService{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.MapIntentToService(IntentWeatherQuery, "echo")
	return reg
}

func invoke(t *testing.T, bt tool.BaseTool, ctx context.Context, args string) map[string]any {
	t.Helper()
	it, ok := bt.(tool.InvokableTool)
	if !ok {
		t.Fatalf("tool is not invokable")
	}
	out, err := it.InvokableRun(ctx, args)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return m
}

func TestForIntentsInfo(t *testing.T) {
	ts, err := ForIntents(newTestRegistry(t), WeatherSpecs())
	if err != nil {
		t.Fatalf("ForIntents: %v", err)
	}
	infos, err := GetToolInfos(context.Background(), ts)
	if err != nil {
		t.Fatalf("GetToolInfos: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d tools, want 2", len(infos))
	}
	if infos[0].Name != IntentWeatherQuery || infos[1].Name != IntentWeatherForecast {
		t.Fatalf("names = %q, %q", infos[0].Name, infos[1].Name)
	}
	if infos[0].Desc == "" {
		t.Fatal("expected a description")
	}
}

func TestForIntentsRejectsBadSpecs(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := ForIntents(nil, WeatherSpecs()); err == nil {
		t.Fatal("expected error for nil registry")
	}
	if _, err := ForIntents(reg, []Spec{{Intent: ""}}); err == nil {
		t.Fatal("expected error for empty intent")
	}
	if _, err := ForIntents(reg, []Spec{{Intent: "a"}, {Intent: "a"}}); err == nil {
		t.Fatal("expected error for duplicate intent")
	}
}

func TestToolDispatchesWithProfile(t *testing.T) {
	ts, err := ForIntents(newTestRegistry(t), WeatherSpecs())
	if err != nil {
		t.Fatalf("ForIntents: %v", err)
	}
	ctx := service.WithProfile(context.Background(), &service.UserProfile{
		Location:    service.ProfileLocation{City: "Paris"},
		Preferences: service.Preferences{TemperatureUnit: service.Celsius},
	})

	got := invoke(t, ts[0], ctx, `{"date":"tomorrow"}`)
	if got["success"] != true {
		t.Fatalf("success = %v, want true (%v)", got["success"], got)
	}
	if got["intent"] != IntentWeatherQuery || got["service"] != "echo" {
		t.Fatalf("envelope = %v", got)
	}
	data, _ := got["data"].(map[string]any)
	if data[service.SlotLocation] != "Paris" {
		t.Errorf("location = %v, want Paris", data[service.SlotLocation])
	}
	if data[service.SlotUnits] != service.UnitsMetric {
		t.Errorf("units = %v, want metric", data[service.SlotUnits])
	}
	if data["date"] != "tomorrow" {
		t.Errorf("date = %v, want tomorrow", data["date"])
	}
}

func TestToolWithoutService(t *testing.T) {
	ts, err := ForIntents(newTestRegistry(t), WeatherSpecs())
	if err != nil {
		t.Fatalf("ForIntents: %v", err)
	}
	got := invoke(t, ts[1], context.Background(), `{"location":"Oslo"}`)
	if got["error"] != ErrorNoService {
		t.Fatalf("error = %v, want %q", got["error"], ErrorNoService)
	}
}

func TestNodeExecutesToolCalls(t *testing.T) {
	ctx := context.Background()
	ts, err := ForIntents(newTestRegistry(t), WeatherSpecs())
	if err != nil {
		t.Fatalf("ForIntents: %v", err)
	}
	node, err := NewNode(ctx, ts)
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	msg := schema.AssistantMessage("", []schema.ToolCall{
		{ID: "call-1", Function: schema.FunctionCall{Name: IntentWeatherQuery, Arguments: `{"location":"  Rome "}`}},
		{ID: "call-2", Function: schema.FunctionCall{Name: "book_flight", Arguments: `{}`}},
	})
	out, err := node.Invoke(ctx, msg)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d results, want 2", len(out))
	}

	byID := map[string]string{}
	for _, m := range out {
		byID[m.ToolCallID] = m.Content
	}
	if !strings.Contains(byID["call-1"], `"location":"Rome"`) {
		t.Errorf("call-1 content = %s", byID["call-1"])
	}
	if !strings.Contains(byID["call-2"], "unknown_tool") {
		t.Errorf("call-2 content = %s", byID["call-2"])
	}
}

func TestSanitizeArguments(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "{}"},
		{"not json", "not json"},
		{`{"location":" Paris ","units":null}`, `{"location":"Paris"}`},
		{`{"days":3}`, `{"days":3}`},
	}
	for _, c := range cases {
		if got := sanitizeArguments(c.in); got != c.want {
			t.Errorf("sanitizeArguments(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRunnerExecutesToolCalls(t *testing.T) {
	ctx := context.Background()
	ts, err := ForIntents(newTestRegistry(t), WeatherSpecs())
	if err != nil {
		t.Fatalf("ForIntents: %v", err)
	}
	runner, err := NewRunner(ctx, ts)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	out, err := runner.Invoke(ctx, schema.AssistantMessage("", []schema.ToolCall{
		{ID: "call-1", Function: schema.FunctionCall{Name: IntentWeatherForecast, Arguments: `{"location":"Oslo"}`}},
	}))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(out) != 1 || out[0].ToolCallID != "call-1" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if !strings.Contains(out[0].Content, ErrorNoService) {
		t.Errorf("content = %s, want %s", out[0].Content, ErrorNoService)
	}
}
