package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Router   RouterConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string // Empty disables bearer auth
}

type DatabaseConfig struct {
	Connection string // Empty disables the transcript archive
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
}

type AIConfig struct {
	LLMProvider    string // "ollama", "gemini" or "huggingface"
	LLMModel       string
	LLMBaseURL     string
	ExtractNewPTKB bool
}

type RouterConfig struct {
	SelectionWeight int
	ConversationTTL time.Duration
	NotebookTTL     time.Duration
	NotebookStore   string // "redis" or "memory"
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	provider := getEnv("LLM_PROVIDER", "ollama")
	baseURL := getEnv("LLM_BASE_URL", "")
	if provider == "ollama" && baseURL == "" {
		baseURL = getEnv("OLLAMA_BASE_URL", "http://localhost:11434")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    provider,
			LLMModel:       getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:     baseURL,
			ExtractNewPTKB: getEnvAsBool("CHAT_EXTRACT_PTKB", false),
		},
		Router: RouterConfig{
			SelectionWeight: getEnvAsInt("ROUTER_SELECTION_WEIGHT", 2),
			ConversationTTL: getEnvAsDuration("CONVERSATION_TTL", time.Hour),
			NotebookTTL:     getEnvAsDuration("NOTEBOOK_TTL", 24*time.Hour),
			NotebookStore:   getEnv("NOTEBOOK_STORE", "redis"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ragify-be"),
		},
	}
}

// APIKey returns the key of the configured LLM provider
func (c *Config) APIKey() string {
	switch c.Ai.LLMProvider {
	case "gemini":
		return c.Keys.GoogleGemini
	case "huggingface":
		return c.Keys.HuggingFace
	}
	return ""
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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
	strValue := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
