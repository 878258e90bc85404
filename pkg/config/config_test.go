package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no stray config.yaml
// or .env is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
	return tmpDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("", "test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
	if cfg.LLM.Provider != "groq" {
		t.Errorf("expected provider groq, got %s", cfg.LLM.Provider)
	}
	if got := cfg.LLM.ModelName(); got != DefaultGroqModel {
		t.Errorf("expected model %s, got %s", DefaultGroqModel, got)
	}
	if cfg.LLM.MaxTokens != 2000 {
		t.Errorf("expected MaxTokens=2000, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.Retry.MaxAttempts != 3 {
		t.Errorf("expected 3 retry attempts, got %d", cfg.LLM.Retry.MaxAttempts)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != 6379 || cfg.Redis.DB != 0 {
		t.Errorf("unexpected redis defaults: %+v", cfg.Redis)
	}
	if cfg.Cache.TTL() != 24*time.Hour {
		t.Errorf("expected cache TTL 24h, got %v", cfg.Cache.TTL())
	}
	if cfg.Cache.Prefix != "ai_insights:" {
		t.Errorf("expected cache prefix ai_insights:, got %s", cfg.Cache.Prefix)
	}
	if cfg.Groq.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("unexpected groq base URL %s", cfg.Groq.BaseURL)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), `
port: "9000"
env: "test"
llm:
  provider: "groq"
  max_tokens: 1500
  retry:
    max_attempts: 4
redis:
  host: "redis.example.com"
  port: 6380
cache:
  ttl_seconds: 600
`)

	t.Setenv("PORT", "9100")
	t.Setenv("AI_MAX_TOKENS", "1000")

	cfg, err := Load("", "v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9100" {
		t.Errorf("expected Port=9100 (from env), got %s", cfg.Port)
	}
	if cfg.LLM.MaxTokens != 1000 {
		t.Errorf("expected MaxTokens=1000 (from env), got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Env != "test" {
		t.Errorf("expected Env=test (from yaml), got %s", cfg.Env)
	}
	if cfg.LLM.Retry.MaxAttempts != 4 {
		t.Errorf("expected MaxAttempts=4 (from yaml), got %d", cfg.LLM.Retry.MaxAttempts)
	}
	if cfg.Redis.Host != "redis.example.com" || cfg.Redis.Port != 6380 {
		t.Errorf("expected redis from yaml, got %+v", cfg.Redis)
	}
	if cfg.Cache.TTL() != 10*time.Minute {
		t.Errorf("expected TTL 10m, got %v", cfg.Cache.TTL())
	}
}

func TestLoad_SecretsOnlyFromEnv(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), `
groq:
  api_key: "from-yaml"
redis:
  password: "from-yaml"
`)
	t.Setenv("GROQ_API_KEY", "gsk_from_env")

	cfg, err := Load("", "v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Groq.APIKey != "gsk_from_env" {
		t.Errorf("expected API key from env, got %q", cfg.Groq.APIKey)
	}
	if cfg.Redis.Password != "" {
		t.Errorf("redis password must not be read from yaml, got %q", cfg.Redis.Password)
	}
	if cfg.APIKey() != "gsk_from_env" {
		t.Errorf("APIKey() = %q, want groq key", cfg.APIKey())
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, filepath.Join(dir, ".env"), "AI_PROVIDER=claude\nCLAUDE_API_KEY=sk-ant-test\n")

	// godotenv writes into the process environment; restore afterwards.
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("CLAUDE_API_KEY", "")
	os.Unsetenv("AI_PROVIDER")
	os.Unsetenv("CLAUDE_API_KEY")

	cfg, err := Load("", "v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.LLM.Provider != "claude" {
		t.Errorf("expected provider claude from .env, got %s", cfg.LLM.Provider)
	}
	if cfg.APIKey() != "sk-ant-test" {
		t.Errorf("expected claude key from .env, got %q", cfg.APIKey())
	}
	if cfg.LLM.ModelName() != "" {
		t.Errorf("expected empty model for claude so the client default applies, got %q", cfg.LLM.ModelName())
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "llm:\n  model: \"llama-3.3-70b-versatile\"\n")

	cfg, err := Load(path, "v1")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.LLM.ModelName() != "llama-3.3-70b-versatile" {
		t.Errorf("expected model from custom file, got %s", cfg.LLM.ModelName())
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown provider", map[string]string{"AI_PROVIDER": "openai"}, "llm.provider"},
		{"zero max tokens", map[string]string{"AI_MAX_TOKENS": "0"}, "llm.max_tokens"},
		{"temperature too high", map[string]string{"AI_TEMPERATURE": "3"}, "llm.temperature"},
		{"no attempts", map[string]string{"AI_RETRY_MAX_ATTEMPTS": "0"}, "max_attempts"},
		{"zero ttl", map[string]string{"CACHE_TTL": "0"}, "ttl_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("", "v1")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.example.com", Port: 6380}
	if got := cfg.Addr(); got != "redis.example.com:6380" {
		t.Errorf("Addr() = %q", got)
	}
}
