// Package config loads chatai settings from defaults, a YAML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreBolt    = "bolt"
	StoreSQLite  = "sqlite"
	StoreSurreal = "surreal"
	StoreRedis   = "redis"
	StoreMemory  = "memory"
)

// Text providers.
const (
	ProviderGemini    = "gemini"
	ProviderGenAI     = "genai"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Image providers.
const (
	ProviderStability = "stability"
	ProviderBedrock   = "bedrock"
	// ProviderOpenAI doubles as an image provider.
)

// Config holds all configuration values.
type Config struct {
	DataDir string `yaml:"data_dir"`

	// Persistence
	Store       string `yaml:"store"`
	StorePath   string `yaml:"store_path"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`

	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// Text generation
	TextProvider    string `yaml:"text_provider"`
	TextModel       string `yaml:"text_model"`
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	GeminiBaseURL   string `yaml:"gemini_base_url"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OllamaHost      string `yaml:"ollama_host"`

	// Image generation
	ImageProvider    string `yaml:"image_provider"`
	ImageModel       string `yaml:"image_model"`
	ImageFormat      string `yaml:"image_format"`
	StabilityAPIKey  string `yaml:"stability_api_key"`
	StabilityBaseURL string `yaml:"stability_base_url"`
	AWSRegion        string `yaml:"aws_region"`

	// Export
	ExportDir      string `yaml:"export_dir"`
	MinioEndpoint  string `yaml:"minio_endpoint"`
	MinioAccessKey string `yaml:"minio_access_key"`
	MinioSecretKey string `yaml:"minio_secret_key"`
	MinioBucket    string `yaml:"minio_bucket"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl"`

	// Display
	Theme string `yaml:"theme"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		DataDir:            dataDir,
		Store:              StoreBolt,
		RedisURL:           "redis://localhost:6379/0",
		RedisPrefix:        "chatai:",
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "chatai",
		SurrealDBDatabase:  "session",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",
		TextProvider:       ProviderGemini,
		GeminiBaseURL:      "https://generativelanguage.googleapis.com",
		OllamaHost:         "http://localhost:11434",
		ImageProvider:      ProviderStability,
		ImageFormat:        "webp",
		StabilityBaseURL:   "https://api.stability.ai",
		AWSRegion:          "us-west-2",
		MinioBucket:        "chatai-exports",
		Theme:              "light",
		LogLevel:           slog.LevelInfo,
	}
}

// Load reads configuration: defaults, then the YAML file, then .env, then the environment.
func Load() (Config, error) {
	cfg := Defaults()

	// .env never overrides variables that are already exported
	_ = godotenv.Load()

	path := getEnv("CHATAI_CONFIG", filepath.Join(userConfigDir(), "chatai", "config.yaml"))
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}

	cfg.applyEnv()
	cfg.resolvePaths()
	return cfg, nil
}

// mergeFile overlays values from a YAML file. A missing file is not an error.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var raw struct {
		Config   `yaml:",inline"`
		LogLevel string `yaml:"log_level"`
	}
	raw.Config = *c
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	*c = raw.Config
	if raw.LogLevel != "" {
		c.LogLevel = ParseLogLevel(raw.LogLevel)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("CHATAI_DATA_DIR", c.DataDir)

	c.Store = strings.ToLower(getEnv("CHATAI_STORE", c.Store))
	c.StorePath = getEnv("CHATAI_STORE_PATH", c.StorePath)
	c.RedisURL = getEnv("CHATAI_REDIS_URL", c.RedisURL)
	c.RedisPrefix = getEnv("CHATAI_REDIS_PREFIX", c.RedisPrefix)

	c.SurrealDBURL = getEnv("SURREALDB_URL", c.SurrealDBURL)
	c.SurrealDBNamespace = getEnv("SURREALDB_NAMESPACE", c.SurrealDBNamespace)
	c.SurrealDBDatabase = getEnv("SURREALDB_DATABASE", c.SurrealDBDatabase)
	c.SurrealDBUser = getEnv("SURREALDB_USER", c.SurrealDBUser)
	c.SurrealDBPass = getEnv("SURREALDB_PASS", c.SurrealDBPass)
	c.SurrealDBAuthLevel = getEnv("SURREALDB_AUTH_LEVEL", c.SurrealDBAuthLevel)

	c.TextProvider = strings.ToLower(getEnv("CHATAI_TEXT_PROVIDER", c.TextProvider))
	c.TextModel = getEnv("CHATAI_TEXT_MODEL", c.TextModel)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiBaseURL = getEnv("GEMINI_BASE_URL", c.GeminiBaseURL)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.OllamaHost = getEnv("OLLAMA_HOST", c.OllamaHost)

	c.ImageProvider = strings.ToLower(getEnv("CHATAI_IMAGE_PROVIDER", c.ImageProvider))
	c.ImageModel = getEnv("CHATAI_IMAGE_MODEL", c.ImageModel)
	c.ImageFormat = getEnv("CHATAI_IMAGE_FORMAT", c.ImageFormat)
	c.StabilityAPIKey = getEnv("STABILITY_API_KEY", c.StabilityAPIKey)
	c.StabilityBaseURL = getEnv("STABILITY_BASE_URL", c.StabilityBaseURL)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)

	c.ExportDir = getEnv("CHATAI_EXPORT_DIR", c.ExportDir)
	c.MinioEndpoint = getEnv("MINIO_ENDPOINT", c.MinioEndpoint)
	c.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", c.MinioAccessKey)
	c.MinioSecretKey = getEnv("MINIO_SECRET_KEY", c.MinioSecretKey)
	c.MinioBucket = getEnv("MINIO_BUCKET", c.MinioBucket)
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		c.MinioUseSSL = v == "true"
	}

	c.Theme = strings.ToLower(getEnv("CHATAI_THEME", c.Theme))

	c.LogFile = getEnv("CHATAI_LOG_FILE", c.LogFile)
	if v := os.Getenv("CHATAI_LOG_LEVEL"); v != "" {
		c.LogLevel = ParseLogLevel(v)
	}
}

// resolvePaths fills file locations that default to the data directory.
func (c *Config) resolvePaths() {
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "chatai.log")
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
}

// StoreFile returns the database file for file-backed stores.
// It is derived from Store so a backend chosen on the command line gets its own file.
func (c Config) StoreFile() string {
	if c.StorePath != "" {
		return c.StorePath
	}
	if c.Store == StoreSQLite {
		return filepath.Join(c.DataDir, "chatai.sqlite")
	}
	return filepath.Join(c.DataDir, "chatai.db")
}

// MinioEnabled reports whether object-storage export is configured.
func (c Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// ParseLogLevel maps a level name to a slog level, defaulting to INFO.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "chatai")
	}
	return filepath.Join(os.TempDir(), "chatai")
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}
