package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no -config flag is given.
const DefaultConfigPath = "config.yaml"

// Load reads the YAML config file, applies environment overrides and
// defaults, and validates required fields.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultConfigPath:
		// config entirely from env is fine
	default:
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required (config key dsn or env DATABASE_DSN)")
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	setString(&cfg.DSN, "DATABASE_DSN")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.S3.Region, "S3_REGION")
	setString(&cfg.S3.Bucket, "S3_BUCKET")
	setString(&cfg.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&cfg.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&cfg.Pinecone.APIKey, "PINECONE_API_KEY")
	setString(&cfg.Pinecone.Index, "PINECONE_INDEX")
	setString(&cfg.AI.OpenAIAPIKey, "OPENAI_API_KEY")

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = v
	}

	// Per-provider key overrides: AI_PROVIDER_<NAME>_API_KEY with the name
	// uppercased and dashes mapped to underscores.
	for i := range cfg.AI.Providers {
		envKey := "AI_PROVIDER_" + strings.ToUpper(strings.ReplaceAll(cfg.AI.Providers[i].Name, "-", "_")) + "_API_KEY"
		setString(&cfg.AI.Providers[i].APIKey, envKey)
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "redis://localhost:6379/0"
	}
	if cfg.Pinecone.Index == "" {
		cfg.Pinecone.Index = "chat-with-pdf"
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.AI.GenerationModel == "" {
		cfg.AI.GenerationModel = "gpt-4o-mini"
	}
	if cfg.AI.TTS.Model == "" {
		cfg.AI.TTS.Model = "tts-1"
	}
	if cfg.AI.TTS.Voice == "" {
		cfg.AI.TTS.Voice = "alloy"
	}
	if len(cfg.AI.Providers) == 0 {
		cfg.AI.Providers = []AIProvider{
			{Name: "gpt-4-turbo", Type: "openai", APIKey: cfg.AI.OpenAIAPIKey, Model: "gpt-4-turbo"},
			{Name: "deepseek-chat", Type: "openai-compatible", APIKey: os.Getenv("DEEPSEEK_API_KEY"), Endpoint: "https://api.deepseek.com", Model: "deepseek-chat"},
		}
	}
	for i := range cfg.AI.Providers {
		if cfg.AI.Providers[i].APIKey == "" && providerUsesOpenAIKey(cfg.AI.Providers[i].Type) {
			cfg.AI.Providers[i].APIKey = cfg.AI.OpenAIAPIKey
		}
		if cfg.AI.Providers[i].Model == "" {
			cfg.AI.Providers[i].Model = cfg.AI.Providers[i].Name
		}
	}
}

func providerUsesOpenAIKey(typ string) bool {
	return strings.EqualFold(strings.TrimSpace(typ), "openai")
}

func setString(dst *string, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		*dst = v
	}
}
