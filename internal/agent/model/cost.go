package model

import (
	"github.com/cloudwego/eino/schema"
)

// Pricing defines USD cost per 1M tokens for input/output.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// Cost is the USD cost of one model invocation.
type Cost struct {
	Input  float64
	Output float64
	Total  float64
}

// defaultPricing is USD per 1M text tokens.
var defaultPricing = map[string]Pricing{
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
}

// ResolvePricing returns the pricing for a model; unknown models are free.
func ResolvePricing(model string) Pricing {
	return defaultPricing[model]
}

// ComputeCost converts token usage to USD cost using per-1M Pricing.
func ComputeCost(usage *schema.TokenUsage, p Pricing) Cost {
	if usage == nil {
		return Cost{}
	}
	c := Cost{
		Input:  p.InputPerM * float64(usage.PromptTokens) / 1_000_000.0,
		Output: p.OutputPerM * float64(usage.CompletionTokens) / 1_000_000.0,
	}
	c.Total = c.Input + c.Output
	return c
}
