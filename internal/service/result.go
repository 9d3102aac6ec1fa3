package service

// IntentExecutionResult is the envelope returned for every routed intent.
// Data is set on success, Error on failure.
type IntentExecutionResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Service string `json:"service"`
	Intent  string `json:"intent"`
}
