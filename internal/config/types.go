package config

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int       `yaml:"port"`
	Env            string    `yaml:"env"` // "development" | "production"
	DSN            string    `yaml:"dsn"` // MySQL DSN
	RedisURL       string    `yaml:"redis_url"`
	JWTSecret      string    `yaml:"jwt_secret"`
	AllowedOrigins []string  `yaml:"allowed_origins"`
	S3             S3Options `yaml:"s3"`
	Pinecone       Pinecone  `yaml:"pinecone"`
	AI             AIOptions `yaml:"ai"`
}

// S3Options configures the object storage collaborator. Credentials are
// explicit config values injected at client construction, never ambient
// process state.
type S3Options struct {
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint"`
	CustomDomain    string `yaml:"custom_domain"`
}

// Pinecone configures the vector index collaborator.
type Pinecone struct {
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// AIProvider describes one chat completion backend. Name is the model
// selector clients send with each message; Type decides how the language
// model is constructed.
type AIProvider struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"` // openai | openai-compatible | anthropic
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// AIOptions groups all model configuration.
type AIOptions struct {
	Providers       []AIProvider `yaml:"providers"`
	EmbeddingModel  string       `yaml:"embedding_model"`
	GenerationModel string       `yaml:"generation_model"` // flashcards/MCQ/podcast script
	OpenAIAPIKey    string       `yaml:"openai_api_key"`
	TTS             TTSOptions   `yaml:"tts"`
}

// TTSOptions configures text-to-speech synthesis.
type TTSOptions struct {
	Model string `yaml:"model"`
	Voice string `yaml:"voice"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// Provider returns the chat provider registered under name, or nil.
func (c *AppConfig) Provider(name string) *AIProvider {
	for i := range c.AI.Providers {
		if c.AI.Providers[i].Name == name {
			return &c.AI.Providers[i]
		}
	}
	return nil
}
