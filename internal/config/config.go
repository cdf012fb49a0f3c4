package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Storage  StorageConfig
	Wizard   WizardConfig
	Keys     APIKeys
	Ai       AIConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	NoticeLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Secret   string
	TTLHours int
}

type StorageConfig struct {
	Driver    string // "memory", "redis" or "postgres"
	KeyPrefix string
}

type WizardConfig struct {
	TemplateStep  bool
	TechStackMode string // "split" or "combined"
	DocumentName  string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
	Anthropic    string
	HuggingFace  string
}

type AIConfig struct {
	LLMProvider    string // "ollama", "huggingface", "gemini", "openai", "anthropic"
	LLMModel       string
	OllamaBaseURL  string
	TimeoutSeconds int
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
}

// DevSessionSecret signs session tokens outside production when
// SESSION_SECRET is unset.
const DevSessionSecret = "brdgenius-dev-secret"

var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set when GO_ENV=production")

func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			NoticeLogFilePath:  getEnv("NOTICE_LOG_FILE_PATH", "logs/notice.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:9002"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Secret:   getEnv("SESSION_SECRET", ""),
			TTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24*30),
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(getEnv("STATE_STORE", "memory")),
			KeyPrefix: getEnv("STATE_KEY_PREFIX", "brdGeniusState"),
		},
		Wizard: WizardConfig{
			TemplateStep:  getEnvAsBool("WIZARD_TEMPLATE_STEP", true),
			TechStackMode: strings.ToLower(getEnv("WIZARD_TECH_STACK_MODE", "split")),
			DocumentName:  getEnv("DOCUMENT_FILE_NAME", "BRDGenius_Document"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			Anthropic:    getEnv("ANTHROPIC_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
			LLMModel:       getEnv("LLM_MODEL", "gemini-2.0-flash"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			TimeoutSeconds: getEnvAsInt("AI_TIMEOUT_SECONDS", 0),
		},
		Otel: OtelConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
	if cfg.Session.Secret == "" && !cfg.App.IsProduction() {
		cfg.Session.Secret = DevSessionSecret
	}
	return cfg
}

// Validate rejects settings that are only acceptable outside production.
func (c *Config) Validate() error {
	if c.App.IsProduction() && (c.Session.Secret == "" || c.Session.Secret == DevSessionSecret) {
		return ErrMissingSessionSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
