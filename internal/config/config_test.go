package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SERVICE_NAME", "UPSTREAM_MODE", "NEEM_API_URL", "UPSTREAM_SKIP_BROWSER_WARNING",
		"HEALTH_POLL_INTERVAL", "STATUS_SENT_DELAY", "STATUS_DELIVERED_DELAY",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Server.ServiceName != "Neem AI Assistant API" {
		t.Fatalf("unexpected service name: %s", cfg.Server.ServiceName)
	}
	if cfg.Upstream.Mode != UpstreamHTTP || cfg.Upstream.URL != DefaultUpstreamURL {
		t.Fatalf("unexpected upstream: %+v", cfg.Upstream)
	}
	if !cfg.Upstream.SkipBrowserWarning {
		t.Fatal("expected browser warning skip enabled by default")
	}
	if cfg.Session != DefaultSessionConfig() {
		t.Fatalf("unexpected session timings: %+v", cfg.Session)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI should be disabled without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9090")
	t.Setenv("NEEM_API_URL", "http://localhost:5000")
	t.Setenv("HEALTH_POLL_INTERVAL", "5s")
	t.Setenv("STATUS_SENT_DELAY", "10ms")
	t.Setenv("STATUS_DELIVERED_DELAY", "20ms")
	t.Setenv("ARK_MAX_TOKENS", "256")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Upstream.URL != "http://localhost:5000" {
		t.Fatalf("unexpected upstream url: %s", cfg.Upstream.URL)
	}
	if cfg.Session.HealthPollInterval != 5*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.Session.HealthPollInterval)
	}
	if cfg.Session.StatusSentDelay != 10*time.Millisecond || cfg.Session.StatusDeliveredDelay != 20*time.Millisecond {
		t.Fatalf("unexpected status delays: %+v", cfg.Session)
	}
	if cfg.AI.MaxTokens == nil || *cfg.AI.MaxTokens != 256 {
		t.Fatalf("unexpected max tokens: %v", cfg.AI.MaxTokens)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad port":          {"PORT", "80 80"},
		"bad mode":          {"UPSTREAM_MODE", "grpc"},
		"bad url":           {"NEEM_API_URL", "not a url"},
		"bad duration":      {"HEALTH_POLL_INTERVAL", "soon"},
		"bad bool":          {"UPSTREAM_SKIP_BROWSER_WARNING", "maybe"},
		"ark without creds": {"UPSTREAM_MODE", "ark"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", kv[0], kv[1])
			}
		})
	}
}

func TestLoadRejectsDeliveredBeforeSent(t *testing.T) {
	clearEnv(t)
	t.Setenv("STATUS_SENT_DELAY", "2s")
	t.Setenv("STATUS_DELIVERED_DELAY", "1s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when delivered delay is shorter than sent delay")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	if (AIConfig{APIKey: "k"}).Enabled() {
		t.Fatal("model is required")
	}
	if !(AIConfig{Model: "m", APIKey: "k"}).Enabled() {
		t.Fatal("api key + model should enable")
	}
	if !(AIConfig{Model: "m", AccessKey: "a", SecretKey: "s"}).Enabled() {
		t.Fatal("ak/sk + model should enable")
	}
}
