package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	errx "github.com/Chative-core-poc-v1/intent-gateway/internal/core/error"
	logx "github.com/Chative-core-poc-v1/intent-gateway/pkg/logger"
)

// Registry maps intents to services and executes them.
// Registration is expected at startup; lookups dominate afterwards.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
	intents  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]Service),
		intents:  make(map[string]string),
	}
}

// RegisterService stores svc under name, replacing any previous registration.
func (r *Registry) RegisterService(name string, svc Service) error {
	if name == "" {
		return errors.New("service name is empty")
	}
	if svc == nil {
		return fmt.Errorf("service %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[name] = svc
	return nil
}

// MapIntentToService routes intent to serviceName. The service does not need to
// be registered yet; the mapping is checked when the intent is executed.
func (r *Registry) MapIntentToService(intent, serviceName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents[intent] = serviceName
}

// Resolve returns the service an intent is routed to.
func (r *Registry) Resolve(intent string) (Service, bool) {
	r.mu.RLock()
	name, ok := r.intents[intent]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return r.Service(name)
}

// Service returns a registered service by name.
func (r *Registry) Service(name string) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[name]
	return svc, ok
}

// Intents lists mapped intents in sorted order.
func (r *Registry) Intents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.intents))
	for intent := range r.intents {
		out = append(out, intent)
	}
	sort.Strings(out)
	return out
}

// ExecuteIntent runs the service routed to intent with profile-enriched slots.
//
// It returns nil when no registered service handles the intent; nothing else
// happens in that case. Otherwise every outcome, including a panic inside the
// service, is reported in the returned envelope.
func (r *Registry) ExecuteIntent(ctx context.Context, intent string, slots Slots, profile *UserProfile) *IntentExecutionResult {
	svc, ok := r.Resolve(intent)
	if !ok {
		logx.Warn().Str("intent", intent).Msg("no service registered for intent")
		return nil
	}

	enriched := Enrich(slots, profile)
	data, err := safeQuery(ctx, svc, enriched)
	if err != nil {
		logx.Warn().Err(err).
			Str("intent", intent).
			Str("service", svc.Name()).
			Int("status", errx.StatusOf(err)).
			Msg("intent execution failed")
		return &IntentExecutionResult{
			Success: false,
			Error:   err.Error(),
			Service: svc.Name(),
			Intent:  intent,
		}
	}

	logx.Debug().Str("intent", intent).Str("service", svc.Name()).Msg("intent executed")
	return &IntentExecutionResult{
		Success: true,
		Data:    data,
		Service: svc.Name(),
		Intent:  intent,
	}
}

func safeQuery(ctx context.Context, svc Service, slots Slots) (data any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logx.Error().Str("service", svc.Name()).Msgf("panic recovered: %v", rec)
			data = nil
			err = errx.New(fmt.Errorf("service %s panicked: %v", svc.Name(), rec), http.StatusInternalServerError, errx.SystemErrorMessage)
		}
	}()
	return svc.Query(ctx, slots)
}
