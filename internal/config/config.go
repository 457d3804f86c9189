package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSUrl                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	BalanceCacheTTL        time.Duration
	EvaluationTimeout      time.Duration
	ImageMaxBytes          int64
	ResubmitNoteMinLength  int
	DefaultRewardPoints    float64
	AIModel                string
	OpenAIAPIKey           string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CHORE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ChoreBoard API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "choreboard/proofs")
	v.SetDefault("balance.cache_ttl", "5m")
	v.SetDefault("evaluation_timeout_ms", 30000)
	v.SetDefault("image_max_mb", 10)
	v.SetDefault("resubmit_note_min_length", 10)
	v.SetDefault("default_reward_points", 10)
	v.SetDefault("ai.model", "gpt-4o-mini")

	ttlString := v.GetString("balance.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid balance cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("evaluation_timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 30000
	}

	imageMaxMB := v.GetInt64("image_max_mb")
	if imageMaxMB <= 0 {
		imageMaxMB = 10
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSUrl:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		BalanceCacheTTL:        ttl,
		EvaluationTimeout:      time.Duration(timeoutMs) * time.Millisecond,
		ImageMaxBytes:          imageMaxMB << 20,
		ResubmitNoteMinLength:  v.GetInt("resubmit_note_min_length"),
		DefaultRewardPoints:    v.GetFloat64("default_reward_points"),
		AIModel:                v.GetString("ai.model"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ResubmitNoteMinLength <= 0 {
		cfg.ResubmitNoteMinLength = 10
	}

	return cfg, nil
}
