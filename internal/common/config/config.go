package config

import (
	"os"
	"strconv"
	"strings"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	LogLevel  string
	LogFormat string

	DBDriver string
	DBDSN    string

	AIProvider    string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	AITimeout     int

	ExportFontPath string
	ExportDir      string

	CameraSaveDebounceMS int
	CORSOrigins          []string
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBDSN:    getEnv("DB_DSN", "data/db/study.db"),

		AIProvider:    getEnv("AI_PROVIDER", "openai"),
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeminiKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AITimeout:     getEnvAsInt("AI_TIMEOUT", 60),

		ExportFontPath: getEnv("EXPORT_FONT_PATH", ""),
		ExportDir:      getEnv("EXPORT_DIR", ""),

		CameraSaveDebounceMS: getEnvAsInt("CAMERA_SAVE_DEBOUNCE_MS", 500),
		CORSOrigins:          getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
	}
}

// Development reports whether the service runs outside production.
func (c *Config) Development() bool {
	return c.Environment != "production"
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

// GetEnv is exported for binaries that carry a few settings of their own.
func GetEnv(key, defaultVal string) string {
	return getEnv(key, defaultVal)
}
