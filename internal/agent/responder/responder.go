// Package responder turns an intent execution envelope into a short reply.
// With a chat model it runs a prompt -> model chain; without one it writes a
// deterministic summary.
package responder

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/agent/model"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/agent/observers"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
)

//go:embed template/response_prompt.txt
var systemPrompt string

const nodeInputConverter = "input_converter"

// Responder phrases intent results. It is safe for concurrent use.
type Responder struct {
	runnable  compose.Runnable[model.ResponseInput, *schema.Message]
	modelName string
}

// New compiles the response chain around cm. A nil cm yields a Responder that
// only produces deterministic summaries.
func New(ctx context.Context, cm einomodel.BaseChatModel, modelName string, cfg model.ResponsePromptConfig) (*Responder, error) {
	r := &Responder{modelName: modelName}
	if cm == nil {
		return r, nil
	}

	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{{.Query}}"),
	)

	chain := compose.NewChain[model.ResponseInput, *schema.Message]()
	chain.
		AppendLambda(compose.InvokableLambda(func(ctx context.Context, in model.ResponseInput) (map[string]any, error) {
			return promptVariables(cfg, in)
		}), compose.WithNodeName(nodeInputConverter)).
		AppendChatTemplate(tpl).
		AppendChatModel(cm)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to compile response chain")
		return nil, fmt.Errorf("compile response chain: %w", err)
	}
	r.runnable = runnable
	logx.Debug().Str("model", modelName).Msg("Response chain compiled")
	return r, nil
}

// UsesModel reports whether replies come from a chat model.
func (r *Responder) UsesModel() bool {
	return r.runnable != nil
}

// Render returns the reply for result. Model failures degrade to the
// deterministic summary rather than failing the request.
func (r *Responder) Render(ctx context.Context, query string, result *service.IntentExecutionResult) (string, error) {
	if result == nil {
		return "", fmt.Errorf("render: nil result")
	}
	if r.runnable == nil {
		return Summarize(result), nil
	}

	out, err := r.runnable.Invoke(ctx, model.ResponseInput{Query: query, Result: result},
		compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Warn().Err(err).Str("intent", result.Intent).Msg("response model failed, using summary")
		return Summarize(result), nil
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return Summarize(result), nil
	}

	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		cost := model.ComputeCost(out.ResponseMeta.Usage, model.ResolvePricing(r.modelName))
		logx.Info().
			Str("model", r.modelName).
			Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
			Float64("usage_cost_usd", cost.Total).
			Msg("response generated")
	}
	return strings.TrimSpace(out.Content), nil
}

func promptVariables(cfg model.ResponsePromptConfig, in model.ResponseInput) (map[string]any, error) {
	if in.Result == nil {
		return nil, fmt.Errorf("response input without result")
	}
	b, err := json.MarshalIndent(in.Result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	query := strings.TrimSpace(in.Query)
	if query == "" {
		query = "Summarize the result."
	}
	return map[string]any{
		"AssistantName": cfg.AssistantName,
		"Language":      cfg.Language,
		"Intent":        in.Result.Intent,
		"Result":        string(b),
		"Query":         query,
	}, nil
}
