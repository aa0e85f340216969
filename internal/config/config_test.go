package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("DATABASE_DSN", "user:pass@tcp(localhost:3306)/pdfwise")
	t.Setenv("PINECONE_API_KEY", "pc-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")

	cfg, err := Load(DefaultConfigPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
	if cfg.Pinecone.Index != "chat-with-pdf" {
		t.Errorf("default index = %q", cfg.Pinecone.Index)
	}
	if cfg.AI.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("default embedding model = %q", cfg.AI.EmbeddingModel)
	}
	if cfg.AI.TTS.Model != "tts-1" || cfg.AI.TTS.Voice != "alloy" {
		t.Errorf("default tts = %+v", cfg.AI.TTS)
	}
	if len(cfg.AI.Providers) != 2 {
		t.Fatalf("default providers = %d, want 2", len(cfg.AI.Providers))
	}
	// The openai-typed default provider inherits the shared key.
	if p := cfg.Provider("gpt-4-turbo"); p == nil || p.APIKey != "oa-key" {
		t.Errorf("gpt-4-turbo provider = %+v", p)
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	if _, err := Load(DefaultConfigPath); err == nil {
		t.Fatal("expected error when dsn is missing")
	}
}

func TestLoadYAMLAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
port: 9000
env: production
dsn: file-dsn
pinecone:
  api_key: file-pc-key
  index: my-index
ai:
  providers:
    - name: deepseek-chat
      type: openai-compatible
      endpoint: https://api.deepseek.com
      model: deepseek-chat
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_DSN", "env-dsn")
	t.Setenv("AI_PROVIDER_DEEPSEEK_CHAT_API_KEY", "ds-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DSN != "env-dsn" {
		t.Errorf("env should override file dsn, got %q", cfg.DSN)
	}
	if cfg.Port != 9000 || cfg.IsDev() {
		t.Errorf("file values lost: port=%d env=%q", cfg.Port, cfg.Env)
	}
	if cfg.Pinecone.Index != "my-index" {
		t.Errorf("index = %q", cfg.Pinecone.Index)
	}
	if p := cfg.Provider("deepseek-chat"); p == nil || p.APIKey != "ds-key" {
		t.Errorf("per-provider env key not applied: %+v", p)
	}
	if p := cfg.Provider("nope"); p != nil {
		t.Errorf("unknown provider should be nil, got %+v", p)
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	t.Setenv("DATABASE_DSN", "x")
	if _, err := Load("/nonexistent/custom.yaml"); err == nil {
		t.Fatal("explicit missing config path should error")
	}
}
