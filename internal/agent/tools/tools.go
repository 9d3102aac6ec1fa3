// Package tools exposes registry intents as eino tools so a tool-calling
// model, or any engine speaking the same protocol, can dispatch them.
package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service/weather"
	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
)

// Intent names served by the weather provider.
const (
	IntentWeatherQuery    = "weather_query"
	IntentWeatherForecast = "weather_forecast"
)

// ErrorNoService is the tool output error code for an intent without a live service.
const ErrorNoService = "no_service"

// Spec describes one intent tool. Params become the tool's JSON schema; the
// arguments the caller sends are passed to the registry as slots.
type Spec struct {
	Intent string
	Desc   string
	Params map[string]*schema.ParameterInfo
}

// Miss is the tool output for an intent without a live service.
type Miss struct {
	Error string `json:"error"`
}

// ForIntents builds one invokable tool per spec, dispatching through reg.
// The user profile, if any, is read from the call context (service.WithProfile).
func ForIntents(reg *service.Registry, specs []Spec) ([]tool.BaseTool, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	out := make([]tool.BaseTool, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if s.Intent == "" {
			return nil, fmt.Errorf("tool spec without intent")
		}
		if _, dup := seen[s.Intent]; dup {
			return nil, fmt.Errorf("duplicate tool spec %q", s.Intent)
		}
		seen[s.Intent] = struct{}{}
		out = append(out, newIntentTool(reg, s))
	}
	return out, nil
}

func newIntentTool(reg *service.Registry, s Spec) tool.InvokableTool {
	intent := s.Intent
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        intent,
			Desc:        s.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(s.Params),
		},
		func(ctx context.Context, in map[string]any) (any, error) {
			res := reg.ExecuteIntent(ctx, intent, service.Slots(in), service.ProfileFrom(ctx))
			if res == nil {
				logx.Warn().Str("intent", intent).Msg("tool call for intent without service")
				return Miss{Error: ErrorNoService}, nil
			}
			return res, nil
		},
	)
}

// GetToolInfos collects the schema of every tool, e.g. for BindTools.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// WeatherSpecs returns the tool specs for the weather intents.
func WeatherSpecs() []Spec {
	params := func() map[string]*schema.ParameterInfo {
		return map[string]*schema.ParameterInfo{
			service.SlotLocation: {
				Type: schema.String,
				Desc: "City or place name, e.g. Paris or San Francisco. Defaults to the user's profile city.",
			},
			service.SlotUnits: {
				Type: schema.String,
				Desc: "Measurement system for temperatures and wind speed.",
				Enum: []string{service.UnitsMetric, service.UnitsImperial},
			},
			weather.SlotDate: {
				Type: schema.String,
				Desc: "today, tomorrow, or a YYYY-MM-DD date within the next week.",
			},
		}
	}
	return []Spec{
		{
			Intent: IntentWeatherQuery,
			Desc:   "Current weather conditions for a location.",
			Params: params(),
		},
		{
			Intent: IntentWeatherForecast,
			Desc:   "Daily weather forecast for a location on a given day.",
			Params: params(),
		},
	}
}
