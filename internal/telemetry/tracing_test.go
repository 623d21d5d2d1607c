package telemetry

import (
	"context"
	"strings"
	"testing"

	"sustainapi/internal/config"
)

func testConfig(endpoint string) *config.Config {
	return &config.Config{
		ServiceName:     "uva-sustainability-api",
		DataFile:        "assets/sustainability_metrics.csv",
		OTelEndpoint:    endpoint,
		OTelSampleRatio: 1,
	}
}

func TestSetupNoopWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), testConfig(""), "dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupInstallsProvider(t *testing.T) {
	// 192.0.2.0/24 is reserved for documentation; nothing is exported.
	shutdown, err := Setup(context.Background(), testConfig("http://192.0.2.1:4318"), "1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestServiceResource(t *testing.T) {
	res, err := serviceResource(context.Background(), testConfig(""), "1.2.3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{
		"service.name":         "uva-sustainability-api",
		"service.version":      "1.2.3",
		"sustainapi.data_file": "assets/sustainability_metrics.csv",
	}
	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, got[k])
		}
	}
}

func TestSamplerRatio(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "root:AlwaysOnSampler"},
		{2, "root:AlwaysOnSampler"},
		{0.25, "root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.ratio).Description(); !strings.Contains(got, tt.want) {
			t.Errorf("sampler(%v) = %s, want it to contain %s", tt.ratio, got, tt.want)
		}
	}
}
