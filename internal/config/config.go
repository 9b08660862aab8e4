package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Layout     LayoutConfig     `mapstructure:"layout" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// LLMConfig contains all image model related settings.
type LLMConfig struct {
	// GeminiAPIKey is the default credential, used when a request carries none.
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
	// BaseURL overrides the Gemini endpoint.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// GenerationConfig controls the retry policy and the fan-out of deck generation.
type GenerationConfig struct {
	MaxAttempts   int `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	BackoffBaseMS int `mapstructure:"backoff_base_ms" validate:"gte=0"`
	// Concurrency caps in-flight image requests; 0 leaves it unbounded.
	Concurrency   int      `mapstructure:"concurrency" validate:"gte=0"`
	StyleKeywords []string `mapstructure:"style_keywords" validate:"dive,required"`
}

// BackoffBase returns the linear backoff unit as a duration.
func (g GenerationConfig) BackoffBase() time.Duration {
	return time.Duration(g.BackoffBaseMS) * time.Millisecond
}

// LayoutConfig describes the printed page grid.
type LayoutConfig struct {
	Columns int `mapstructure:"columns" validate:"gte=1"`
	Rows    int `mapstructure:"rows" validate:"gte=1"`
}
