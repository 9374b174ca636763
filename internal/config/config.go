package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// DefaultUpstreamURL is the tunnel address of the Neem AI inference service.
const DefaultUpstreamURL = "https://ff27-119-63-128-155.ngrok-free.app"

// Upstream modes.
const (
	UpstreamHTTP = "http"
	UpstreamArk  = "ark"
)

// Config aggregates every service setting.
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	AI       AIConfig
	Session  SessionConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	upstream, err := loadUpstreamConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	if upstream.Mode == UpstreamArk && !ai.Enabled() {
		return nil, fmt.Errorf("UPSTREAM_MODE=ark requires Model plus ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY")
	}

	return &Config{Server: server, Upstream: upstream, AI: ai, Session: session}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr        string
	ServiceName string
}

func loadServerConfig() (ServerConfig, error) {
	serviceName := getEnvOrDefault("SERVICE_NAME", "Neem AI Assistant API")

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// accept ":8080" or "127.0.0.1:8080" verbatim
		return ServerConfig{Addr: port, ServiceName: serviceName}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, ServiceName: serviceName}, nil
}

// UpstreamConfig selects and addresses the AI service the relay forwards to.
type UpstreamConfig struct {
	Mode               string
	URL                string
	SkipBrowserWarning bool
}

func loadUpstreamConfig() (UpstreamConfig, error) {
	mode := strings.ToLower(getEnvOrDefault("UPSTREAM_MODE", UpstreamHTTP))
	if mode != UpstreamHTTP && mode != UpstreamArk {
		return UpstreamConfig{}, fmt.Errorf("invalid UPSTREAM_MODE value %q: want %q or %q", mode, UpstreamHTTP, UpstreamArk)
	}

	rawURL := getEnvOrDefault("NEEM_API_URL", DefaultUpstreamURL)
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return UpstreamConfig{}, fmt.Errorf("invalid NEEM_API_URL value %q", rawURL)
	}

	skip, err := parseBoolEnv("UPSTREAM_SKIP_BROWSER_WARNING", true)
	if err != nil {
		return UpstreamConfig{}, err
	}

	return UpstreamConfig{Mode: mode, URL: rawURL, SkipBrowserWarning: skip}, nil
}

// SessionConfig holds the timings of the conversation state machine and
// the health monitor. They are UI pacing constants, not protocol.
type SessionConfig struct {
	HealthPollInterval   time.Duration
	StatusSentDelay      time.Duration
	StatusDeliveredDelay time.Duration
}

// DefaultSessionConfig returns the stock timings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HealthPollInterval:   30 * time.Second,
		StatusSentDelay:      500 * time.Millisecond,
		StatusDeliveredDelay: time.Second,
	}
}

func loadSessionConfig() (SessionConfig, error) {
	cfg := DefaultSessionConfig()

	interval, err := parseDurationEnv("HEALTH_POLL_INTERVAL", cfg.HealthPollInterval)
	if err != nil {
		return SessionConfig{}, err
	}
	if interval <= 0 {
		return SessionConfig{}, fmt.Errorf("HEALTH_POLL_INTERVAL must be positive, got %s", interval)
	}

	sent, err := parseDurationEnv("STATUS_SENT_DELAY", cfg.StatusSentDelay)
	if err != nil {
		return SessionConfig{}, err
	}

	delivered, err := parseDurationEnv("STATUS_DELIVERED_DELAY", cfg.StatusDeliveredDelay)
	if err != nil {
		return SessionConfig{}, err
	}
	if delivered < sent {
		return SessionConfig{}, fmt.Errorf("STATUS_DELIVERED_DELAY (%s) must not be shorter than STATUS_SENT_DELAY (%s)", delivered, sent)
	}

	return SessionConfig{
		HealthPollInterval:   interval,
		StatusSentDelay:      sent,
		StatusDeliveredDelay: delivered,
	}, nil
}

// AIConfig describes the optional Ark chat model used as an in-process upstream.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide Model plus ARK_API_KEY or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
