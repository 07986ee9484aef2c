package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "host and port", cfg: Config{ServiceName: "test-service", Endpoint: "localhost:4318"}},
		{name: "full url with version", cfg: Config{Endpoint: "http://localhost:4318", ServiceVersion: "1.2.3", SampleRatio: 0.25}},
		{name: "https url", cfg: Config{Endpoint: "https://collector.example.com:4318"}},
		{name: "missing endpoint", cfg: Config{ServiceName: "test-service"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tp, err := InitTracer(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("InitTracer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tp == nil {
				return
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := Shutdown(shutdownCtx, tp); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestExporterOptions(t *testing.T) {
	tests := []struct {
		endpoint string
		want     int
	}{
		{endpoint: "localhost:4318", want: 2},
		{endpoint: "http://otel:4318", want: 2},
		{endpoint: "https://otel.example.com", want: 1},
	}
	for _, tt := range tests {
		if got := len(exporterOptions(tt.endpoint)); got != tt.want {
			t.Errorf("exporterOptions(%q) gave %d options, want %d", tt.endpoint, got, tt.want)
		}
	}
}

func TestShutdown_NilProvider(t *testing.T) {
	if err := Shutdown(context.Background(), nil); err != nil {
		t.Errorf("Shutdown() with nil provider should not error, got: %v", err)
	}
}
