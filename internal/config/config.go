package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Engine    EngineConfig
	Execution ExecutionConfig
	Llm       LlmConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// EngineConfig configures the embedded OLAP engine behind the SQL backend.
type EngineConfig struct {
	DuckDBPath     string // empty means in-memory
	DatasetStorage string // directory holding registered dataset files
	MaxResultRows  int
	GraphQLMaxRows int
}

type ExecutionConfig struct {
	Timeout time.Duration
}

type LlmConfig struct {
	Provider      string // "ollama"
	OllamaBaseURL string
	Model         string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Engine: EngineConfig{
			DuckDBPath:     getEnv("DUCKDB_PATH", ""),
			DatasetStorage: getEnv("DATASET_STORAGE_PATH", "./datasets"),
			MaxResultRows:  getEnvAsInt("MAX_RESULT_ROWS", 10000),
			GraphQLMaxRows: getEnvAsInt("GRAPHQL_MAX_ROWS", 1000),
		},
		Execution: ExecutionConfig{
			Timeout: time.Duration(getEnvAsInt("EXECUTION_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Llm: LlmConfig{
			Provider:      getEnv("LLM_PROVIDER", "ollama"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:         getEnv("LLM_MODEL", "llama3"),
		},
	}
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
