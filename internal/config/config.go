package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Queue    QueueConfig
	Ai       AIConfig
	Client   ClientConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	MaxUploadBytes     int

	ServiceName  string
	OtelEnabled  bool
	OtelEndpoint string
}

type DatabaseConfig struct {
	Connection string // empty disables the evaluation history
}

type QueueConfig struct {
	Backend   string // "redis" or "memory"
	RedisURL  string
	Name      string
	ResultTTL time.Duration
	Workers   int
}

type AIConfig struct {
	LLMProvider     string // "ollama", "deepseek" or "moonshot"
	LLMModel        string
	OllamaBaseURL   string
	DeepSeekAPIKey  string
	MoonshotAPIKey  string
	MoonshotBaseURL string
}

// ClientConfig drives cmd/client.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	LogFilePath    string

	PollInitialDelay        time.Duration
	PollInterval            time.Duration
	PollBackoffFactor       float64
	PollMaxInterval         time.Duration
	PollProcessingThreshold int
	PollFailureThreshold    int
	PollMaxAttempts         int
	PollMaxDuration         time.Duration

	HistoryBudget      int
	ContextBudget      int
	DocumentMax        int
	RoleDescriptionMax int
	OrganizationMax    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			MaxUploadBytes:     getEnvAsInt("MAX_UPLOAD_BYTES", 10*1024*1024),
			ServiceName:        getEnv("OTEL_SERVICE_NAME", "resume-optimizer"),
			OtelEnabled:        getEnv("OTEL_ENABLED", "") == "true",
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Queue: QueueConfig{
			Backend:   getEnv("QUEUE_BACKEND", "memory"),
			RedisURL:  getEnv("REDIS_URL", "redis://localhost:6379"),
			Name:      getEnv("QUEUE_NAME", "Queue_RO"),
			ResultTTL: getEnvAsDuration("RESULT_TTL", 24*time.Hour),
			Workers:   getEnvAsInt("WORKER_CONCURRENCY", 2),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:        getEnv("LLM_MODEL", "qwen2.5"),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
			MoonshotAPIKey:  getEnv("MOONSHOT_API_KEY", ""),
			MoonshotBaseURL: getEnv("MOONSHOT_BASE_URL", ""),
		},
		Client: ClientConfig{
			BaseURL:        getEnv("RESUME_API_URL", "http://localhost:8000"),
			RequestTimeout: getEnvAsDuration("CLIENT_REQUEST_TIMEOUT", 30*time.Second),
			LogFilePath:    getEnv("CLIENT_LOG_FILE_PATH", "logs/client.log"),

			PollInitialDelay:        getEnvAsDuration("POLL_INITIAL_DELAY", 2*time.Second),
			PollInterval:            getEnvAsDuration("POLL_INTERVAL", 3*time.Second),
			PollBackoffFactor:       getEnvAsFloat("POLL_BACKOFF_FACTOR", 1.5),
			PollMaxInterval:         getEnvAsDuration("POLL_MAX_INTERVAL", 10*time.Second),
			PollProcessingThreshold: getEnvAsInt("POLL_PROCESSING_THRESHOLD", 5),
			PollFailureThreshold:    getEnvAsInt("POLL_FAILURE_THRESHOLD", 3),
			PollMaxAttempts:         getEnvAsInt("POLL_MAX_ATTEMPTS", 0),
			PollMaxDuration:         getEnvAsDuration("POLL_MAX_DURATION", 0),

			HistoryBudget:      getEnvAsInt("HISTORY_BUDGET", 3000),
			ContextBudget:      getEnvAsInt("CONTEXT_BUDGET", 6000),
			DocumentMax:        getEnvAsInt("CONTEXT_DOCUMENT_MAX", 1800),
			RoleDescriptionMax: getEnvAsInt("CONTEXT_ROLE_DESCRIPTION_MAX", 1000),
			OrganizationMax:    getEnvAsInt("CONTEXT_ORGANIZATION_MAX", 1200),
		},
	}
}

func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("2s") or plain seconds ("2").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.ParseFloat(strValue, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}
