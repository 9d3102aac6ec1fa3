package model

import (
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
)

// ResponseInput is what the responder phrases: the user's words and the
// envelope the registry produced for them.
type ResponseInput struct {
	Query  string                         `json:"query"`
	Result *service.IntentExecutionResult `json:"result"`
}
