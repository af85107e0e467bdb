package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Telegram
	TelegramToken         string
	TelegramWebhookURL    string
	TelegramWebhookSecret string
	TelegramDebug         bool

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Transcription (Groq Whisper, OpenAI-compatible API)
	GroqAPIKey            string
	GroqBaseURL           string
	TranscriptionModel    string
	TranscriptionLanguage string

	// Extraction (Gemini on Vertex AI)
	GoogleProjectID       string
	GoogleRegion          string
	VertexModel           string
	GoogleCredentialsFile string

	// Voice pipeline
	AudioMaxDuration    time.Duration
	ExternalCallTimeout time.Duration
	Currency            string
	Timezone            string

	// Conversation state
	ConversationTTL time.Duration
	RedisURL        string
	SweepSchedule   string
	PinHashCost     int

	// Events
	RabbitMQURL    string
	EventsExchange string
}

// Load loads configuration from environment variables and validates it.
func Load() (*Config, error) {
	config := LoadEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadEnv reads the environment (and .env when present) without validating,
// for tools such as the migrator that need only part of the settings.
func LoadEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		TelegramToken:         getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramWebhookURL:    getEnv("TELEGRAM_WEBHOOK_URL", ""),
		TelegramWebhookSecret: getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
		TelegramDebug:         getEnvBool("TELEGRAM_DEBUG", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "finbot"),
		DBPassword:  getEnv("DB_PASSWORD", "finbot"),
		DBName:      getEnv("DB_NAME", "finbot"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		GroqAPIKey:            getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:           getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		TranscriptionModel:    getEnv("TRANSCRIPTION_MODEL", "whisper-large-v3-turbo"),
		TranscriptionLanguage: getEnv("TRANSCRIPTION_LANGUAGE", "pt"),

		GoogleProjectID:       getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleRegion:          getEnv("GOOGLE_REGION", "us-central1"),
		VertexModel:           getEnv("VERTEX_MODEL", "gemini-2.0-flash"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),

		AudioMaxDuration:    time.Duration(getEnvInt("AUDIO_MAX_DURATION_SECONDS", 60)) * time.Second,
		ExternalCallTimeout: getEnvDuration("EXTERNAL_CALL_TIMEOUT", 30*time.Second),
		Currency:            getEnv("CURRENCY", "BRL"),
		Timezone:            getEnv("TIMEZONE", "America/Sao_Paulo"),

		ConversationTTL: getEnvDuration("CONVERSATION_TTL", 30*time.Minute),
		RedisURL:        getEnv("REDIS_URL", ""),
		SweepSchedule:   getEnv("CONVERSATION_SWEEP_SCHEDULE", "@every 5m"),
		PinHashCost:     getEnvInt("PIN_HASH_COST", 12),

		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "finbot.events"),
	}
}

// Validate checks the settings the bot cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if c.GoogleProjectID == "" {
		missing = append(missing, "GOOGLE_PROJECT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.TelegramWebhookURL != "" && c.TelegramWebhookSecret == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_SECRET is required when TELEGRAM_WEBHOOK_URL is set")
	}
	if c.AudioMaxDuration <= 0 {
		return fmt.Errorf("AUDIO_MAX_DURATION_SECONDS must be positive")
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: invalid TIMEZONE value '%s', falling back to UTC\n", c.Timezone)
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
