package model

// ================ Config ================

// ResponseModelConfig selects the Gemini model that phrases replies.
// Without an API key the responder falls back to a deterministic summary.
type ResponseModelConfig struct {
	APIKey      string  `envconfig:"GEMINI_API_KEY"`
	BaseURL     string  `envconfig:"GEMINI_BASE_URL"`
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

// Enabled reports whether a chat model should be built.
func (c ResponseModelConfig) Enabled() bool {
	return c.APIKey != ""
}

type ResponsePromptConfig struct {
	AssistantName string `envconfig:"PROMPT_ASSISTANT_NAME" default:"Atlas"`
	Language      string `envconfig:"PROMPT_LANGUAGE" default:"English"`
}
