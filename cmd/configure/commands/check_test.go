package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/benvon/cook-with-ai/internal/config"
)

func TestReport(t *testing.T) {
	var out bytes.Buffer
	err := report(&out, []checkResult{
		{name: "database"},
		{name: "redis", skipped: true},
		{name: "rabbitmq", err: errors.New("connection refused")},
	})
	if err == nil || !strings.Contains(err.Error(), "1 check(s) failed") {
		t.Errorf("report() error = %v", err)
	}
	for _, want := range []string{"✓ database", "- redis: not configured", "✗ rabbitmq: connection refused"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("report output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := report(&out, []checkResult{{name: "database"}}); err != nil {
		t.Errorf("all-passing report() error = %v", err)
	}
}

func TestCheckAIKey(t *testing.T) {
	tests := []struct {
		cfg     config.Config
		wantErr bool
	}{
		{cfg: config.Config{AIProvider: "gemini", GeminiAPIKey: "k"}},
		{cfg: config.Config{AIProvider: "gemini", OpenAIKey: "k"}, wantErr: true},
		{cfg: config.Config{AIProvider: "openai", OpenAIKey: "k"}},
	}
	for _, tt := range tests {
		cfg := tt.cfg
		if got := checkAIKey(&cfg); (got.err != nil) != tt.wantErr {
			t.Errorf("checkAIKey(%s) err = %v, wantErr %v", cfg.AIProvider, got.err, tt.wantErr)
		}
	}
}
