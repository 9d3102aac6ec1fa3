package logx

import (
	"testing"

	"github.com/Chative-core-poc-v1/intent-gateway/internal/core"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name string
		opts LoggerOpts
		want zerolog.Level
	}{
		{name: "development defaults to debug", opts: LoggerOpts{Environment: core.Development}, want: zerolog.DebugLevel},
		{name: "production defaults to info", opts: LoggerOpts{Environment: core.Production}, want: zerolog.InfoLevel},
		{name: "explicit level wins", opts: LoggerOpts{Environment: core.Production, Level: "warn"}, want: zerolog.WarnLevel},
		{name: "bad level is ignored", opts: LoggerOpts{Environment: core.Staging, Level: "loud"}, want: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.opts)
			if got := log.Logger.GetLevel(); got != tt.want {
				t.Fatalf("level: got %s, want %s", got, tt.want)
			}
		})
	}
}
