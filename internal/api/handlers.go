package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/agent/observers"
	errx "github.com/Chative-core-poc-v1/intent-gateway/internal/core/error"
	"github.com/Chative-core-poc-v1/intent-gateway/internal/service"
	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestBody  = 1 << 20
)

type executeRequest struct {
	Slots   service.Slots        `json:"slots"`
	Profile *service.UserProfile `json:"profile,omitempty"`
	// Query is the user's utterance; with Reply set it is passed to the responder.
	Query string `json:"query,omitempty"`
	Reply bool   `json:"reply,omitempty"`
}

type executeResponse struct {
	RequestID string `json:"request_id"`
	*service.IntentExecutionResult
	Reply string `json:"reply,omitempty"`
}

type toolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type toolCallsRequest struct {
	ToolCalls []toolCall           `json:"tool_calls"`
	Profile   *service.UserProfile `json:"profile,omitempty"`
}

type toolResult struct {
	ID      string          `json:"id"`
	Name    string          `json:"name,omitempty"`
	Content json.RawMessage `json:"content"`
}

func (s *Server) listIntents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"intents": s.deps.Registry.Intents()})
}

type toolDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters,omitempty"`
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	out := make([]toolDescription, 0, len(s.deps.ToolInfos))
	for _, info := range s.deps.ToolInfos {
		if info == nil {
			continue
		}
		d := toolDescription{Name: info.Name, Description: info.Desc}
		if info.ParamsOneOf != nil {
			params, err := info.ParamsOneOf.ToJSONSchema()
			if err != nil {
				logx.Warn().Err(err).Str("tool", info.Name).Msg("tool parameters not convertible to JSON schema")
			} else if params != nil {
				d.Parameters = params
			}
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (s *Server) executeIntent(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(w, r)
	intent := chi.URLParam(r, "intent")

	var body executeRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, reqID, "invalid request body: "+err.Error())
		return
	}

	res := s.deps.Registry.ExecuteIntent(r.Context(), intent, body.Slots, body.Profile)
	if res == nil {
		writeError(w, http.StatusNotFound, reqID, errx.ErrNoService.Error())
		return
	}

	resp := executeResponse{RequestID: reqID, IntentExecutionResult: res}
	if body.Reply && s.deps.Responder != nil {
		reply, err := s.deps.Responder.Render(r.Context(), body.Query, res)
		if err != nil {
			logx.Warn().Err(err).Str("intent", intent).Str("request_id", reqID).Msg("reply rendering failed")
		}
		resp.Reply = reply
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) executeToolCalls(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(w, r)
	if s.deps.Tools == nil {
		writeError(w, http.StatusNotImplemented, reqID, "tool calls are not enabled")
		return
	}

	var body toolCallsRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, reqID, "invalid request body: "+err.Error())
		return
	}
	if len(body.ToolCalls) == 0 {
		writeError(w, http.StatusBadRequest, reqID, "tool_calls is empty")
		return
	}

	calls := make([]schema.ToolCall, 0, len(body.ToolCalls))
	names := make(map[string]string, len(body.ToolCalls))
	for i, tc := range body.ToolCalls {
		if tc.ID == "" {
			tc.ID = uuid.NewString()
			body.ToolCalls[i].ID = tc.ID
		}
		names[tc.ID] = tc.Name
		calls = append(calls, schema.ToolCall{
			ID:       tc.ID,
			Function: schema.FunctionCall{Name: tc.Name, Arguments: argumentsString(tc.Arguments)},
		})
	}

	ctx := service.WithProfile(r.Context(), body.Profile)
	msgs, err := s.deps.Tools.Invoke(ctx, schema.AssistantMessage("", calls),
		compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		logx.Error().Err(err).Str("request_id", reqID).Msg("tool calls failed")
		writeError(w, http.StatusInternalServerError, reqID, "tool calls failed")
		return
	}

	results := make([]toolResult, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		results = append(results, toolResult{
			ID:      m.ToolCallID,
			Name:    names[m.ToolCallID],
			Content: rawContent(m.Content),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"request_id": reqID, "results": results})
}

// requestID honors a caller-supplied X-Request-Id and otherwise mints a UUID.
func requestID(w http.ResponseWriter, r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, id)
	return id
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

// argumentsString accepts arguments either as a JSON object or as a string
// holding one, the way model providers emit them.
func argumentsString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "{}"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func rawContent(content string) json.RawMessage {
	if json.Valid([]byte(content)) {
		return json.RawMessage(content)
	}
	b, _ := json.Marshal(content)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reqID, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "request_id": reqID})
}
