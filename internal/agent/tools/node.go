package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
)

const nodeToolExecutor = "tool_executor"

// NewNode wraps intent tools in a tools node that executes the tool calls of
// one assistant message. Unknown tool names yield a structured error result
// instead of failing the whole batch.
func NewNode(ctx context.Context, ts []tool.BaseTool) (*compose.ToolsNode, error) {
	node, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               ts,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("unknown tool call; returning fallback result")
			return fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q}", name), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			return sanitizeArguments(arguments), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("failed to create tools node")
		return nil, fmt.Errorf("create tools node: %w", err)
	}
	return node, nil
}

// sanitizeArguments trims string slot values and drops nulls. Arguments that
// are not a JSON object pass through unchanged.
func sanitizeArguments(arguments string) string {
	if strings.TrimSpace(arguments) == "" {
		return "{}"
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		return arguments
	}
	for k, v := range m {
		switch vv := v.(type) {
		case nil:
			delete(m, k)
		case string:
			m[k] = strings.TrimSpace(vv)
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return arguments
	}
	return string(b)
}

// Runner executes the tool calls carried by an assistant message and returns
// one tool message per call.
type Runner = compose.Runnable[*schema.Message, []*schema.Message]

// NewRunner compiles the tools node into a runnable so callbacks passed with
// compose.WithCallbacks observe every tool execution.
func NewRunner(ctx context.Context, ts []tool.BaseTool) (Runner, error) {
	node, err := NewNode(ctx, ts)
	if err != nil {
		return nil, err
	}
	chain := compose.NewChain[*schema.Message, []*schema.Message]()
	chain.AppendToolsNode(node, compose.WithNodeName(nodeToolExecutor))
	runner, err := chain.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("failed to compile tools runner")
		return nil, fmt.Errorf("compile tools runner: %w", err)
	}
	return runner, nil
}
