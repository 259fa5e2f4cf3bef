package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL  PostgreSQLConfig  `yaml:"postgresql"`
	Server      ServerConfig      `yaml:"server"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Triage      TriageConfig      `yaml:"triage"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string `yaml:"dsn"` // full connection string, wins over the parts below
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Database           string `yaml:"database"`
	SSLMode            string `yaml:"sslmode"`
	MaxConnections     int    `yaml:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int    `yaml:"port"`
	Host           string `yaml:"host"`
	GinMode        string `yaml:"gin_mode"`
	AllowedOrigins string `yaml:"allowed_origins"`
}

// ClassifierConfig selects the zero-shot classification backend
type ClassifierConfig struct {
	Provider string `yaml:"provider"` // huggingface, openai or none
	Timeout  int    `yaml:"timeout"`  // seconds per classification call
}

// HuggingFaceConfig holds the hosted inference API configuration
type HuggingFaceConfig struct {
	APIKey  string `yaml:"api_key"`
	APIBase string `yaml:"api_base"`
	Model   string `yaml:"model"`
}

// OpenAIConfig holds OpenAI-compatible chat API configuration
type OpenAIConfig struct {
	APIKey          string  `yaml:"api_key"`
	APIBase         string  `yaml:"api_base"`
	ChatModel       string  `yaml:"chat_model"`
	ChatTemperature float64 `yaml:"chat_temperature"`
	ChatTopP        float64 `yaml:"chat_top_p"`
	ChatMaxTokens   int     `yaml:"chat_max_tokens"`
	ChatExtraBody   string  `yaml:"chat_extra_body"` // JSON object merged into the request as extra_body
	Enabled         bool    `yaml:"-"`
}

// KafkaConfig holds the urgent-alert producer configuration
type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	AlertsTopic string   `yaml:"alerts_topic"`
	Enabled     bool     `yaml:"-"`
}

// TriageConfig holds listing limits for stored submissions
type TriageConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug" adds file:line to log output
}

// defaults returns the built-in configuration before any file or environment overrides
func defaults() *Config {
	return &Config{
		PostgreSQL: PostgreSQLConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "postgres",
			Database:           "medtriage",
			SSLMode:            "disable",
			MaxConnections:     25,
			MaxIdleConnections: 5,
		},
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			GinMode:        "release",
			AllowedOrigins: "*",
		},
		Classifier: ClassifierConfig{
			Provider: "huggingface",
			Timeout:  30,
		},
		HuggingFace: HuggingFaceConfig{
			APIBase: "https://api-inference.huggingface.co",
			Model:   "facebook/bart-large-mnli",
		},
		OpenAI: OpenAIConfig{
			APIBase:         "https://api.openai.com/v1",
			ChatModel:       "gpt-4o-mini",
			ChatTemperature: 0.0,
			ChatTopP:        1.0,
			ChatMaxTokens:   512,
		},
		Kafka: KafkaConfig{
			AlertsTopic: "triage-urgent-alerts",
		},
		Triage: TriageConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file, an optional .env file
// and the environment, later sources overriding earlier ones. overrides run
// last, before validation, so command-line flags can replace invalid values.
func Load(overrides ...func(*Config)) (*Config, error) {
	cfg := defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg.PostgreSQL = PostgreSQLConfig{
		DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", cfg.PostgreSQL.DSN)),
		Host:               getEnv("PG_HOST", cfg.PostgreSQL.Host),
		Port:               getEnvAsInt("PG_PORT", cfg.PostgreSQL.Port),
		User:               getEnv("PG_USER", cfg.PostgreSQL.User),
		Password:           getEnv("PG_PASSWORD", cfg.PostgreSQL.Password),
		Database:           getEnv("PG_DATABASE", cfg.PostgreSQL.Database),
		SSLMode:            getEnv("PG_SSLMODE", cfg.PostgreSQL.SSLMode),
		MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", cfg.PostgreSQL.MaxConnections),
		MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", cfg.PostgreSQL.MaxIdleConnections),
	}
	cfg.Server = ServerConfig{
		Port:           getEnvAsInt("SERVER_PORT", cfg.Server.Port),
		Host:           getEnv("SERVER_HOST", cfg.Server.Host),
		GinMode:        getEnv("GIN_MODE", cfg.Server.GinMode),
		AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins),
	}
	cfg.Classifier = ClassifierConfig{
		Provider: strings.ToLower(getEnv("CLASSIFIER_PROVIDER", cfg.Classifier.Provider)),
		Timeout:  getEnvAsInt("CLASSIFIER_TIMEOUT", cfg.Classifier.Timeout),
	}
	cfg.HuggingFace = HuggingFaceConfig{
		APIKey:  getEnv("HF_API_KEY", cfg.HuggingFace.APIKey),
		APIBase: strings.TrimRight(getEnv("HF_API_BASE", cfg.HuggingFace.APIBase), "/"),
		Model:   getEnv("HF_MODEL", cfg.HuggingFace.Model),
	}
	cfg.OpenAI = OpenAIConfig{
		APIKey:          getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey),
		APIBase:         strings.TrimRight(getEnv("OPENAI_API_BASE", cfg.OpenAI.APIBase), "/"),
		ChatModel:       getEnv("OPENAI_CHAT_MODEL", cfg.OpenAI.ChatModel),
		ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", cfg.OpenAI.ChatTemperature),
		ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", cfg.OpenAI.ChatTopP),
		ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", cfg.OpenAI.ChatMaxTokens),
		ChatExtraBody:   getEnv("OPENAI_CHAT_EXTRA_BODY", cfg.OpenAI.ChatExtraBody),
	}
	cfg.OpenAI.Enabled = cfg.OpenAI.APIKey != ""
	cfg.Kafka = KafkaConfig{
		Brokers:     getEnvAsSlice("KAFKA_BROKERS", cfg.Kafka.Brokers),
		AlertsTopic: getEnv("KAFKA_ALERTS_TOPIC", cfg.Kafka.AlertsTopic),
	}
	cfg.Kafka.Enabled = len(cfg.Kafka.Brokers) > 0
	cfg.Triage = TriageConfig{
		DefaultLimit: getEnvAsInt("TRIAGE_DEFAULT_LIMIT", cfg.Triage.DefaultLimit),
		MaxLimit:     getEnvAsInt("TRIAGE_MAX_LIMIT", cfg.Triage.MaxLimit),
	}
	cfg.Logging = LoggingConfig{
		Level: getEnv("LOG_LEVEL", cfg.Logging.Level),
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks values that would otherwise fail later in confusing ways
func (c *Config) validate() error {
	switch c.Classifier.Provider {
	case "huggingface", "openai", "none":
	default:
		return fmt.Errorf("unknown classifier provider %q (want huggingface, openai or none)", c.Classifier.Provider)
	}
	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("classifier timeout must be positive, got %d", c.Classifier.Timeout)
	}
	if c.Triage.DefaultLimit <= 0 || c.Triage.MaxLimit < c.Triage.DefaultLimit {
		return fmt.Errorf("invalid triage limits: default %d, max %d", c.Triage.DefaultLimit, c.Triage.MaxLimit)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
