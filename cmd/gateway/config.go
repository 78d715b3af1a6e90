package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds all configuration for the gateway. It is loaded once at
// startup, immutable afterwards, and handed explicitly to the components
// that need it.
type AppConfig struct {
	Port string

	// Model collaborator.
	OllamaURL     string
	OllamaModel   string
	OllamaTimeout time.Duration

	// Spotify integration (optional; playback tools fail with a clear error
	// when unset).
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	// Weather integration (optional).
	OpenWeatherAPIKey string

	// Speech collaborator.
	SpeechServerURL string
	SpeechLanguage  string

	// Redis, used for the lookup cache and the audit stream. Optional.
	RedisAddr string

	// Auditing.
	EnableToolAuditing bool
	AuditStream        string

	// Lookup cache.
	CacheTTL time.Duration

	// Rate limiting thresholds. Declared policy only; enforcement lives in
	// the deployment layer, not in this core.
	MaxRequestsPerMinute  int
	MaxToolCallsPerMinute int
}

// yamlConfig mirrors config.yaml, which carries the operational knobs that
// do not belong in the environment.
type yamlConfig struct {
	Cache struct {
		LookupTTLMinutes int `yaml:"lookup_ttl_minutes"`
	} `yaml:"cache"`
	Audit struct {
		RedisStream string `yaml:"redis_stream"`
	} `yaml:"audit"`
	RateLimits struct {
		MaxRequestsPerMinute  int `yaml:"max_requests_per_minute"`
		MaxToolCallsPerMinute int `yaml:"max_tool_calls_per_minute"`
	} `yaml:"rate_limits"`
}

// LoadConfig loads configuration from a .env file, environment variables,
// and config.yaml. In release mode configuration comes straight from the
// environment (Docker Compose style), so the .env file is only consulted for
// local development.
func LoadConfig() (*AppConfig, error) {
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		Port:                  envDefault("PORT", "8000"),
		OllamaURL:             envDefault("OLLAMA_URL", "http://localhost:11434/api/chat"),
		OllamaModel:           envDefault("OLLAMA_MODEL", "qwen2.5:7b"),
		OllamaTimeout:         time.Duration(envInt("OLLAMA_TIMEOUT_SECONDS", 30)) * time.Second,
		SpotifyClientID:       os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret:   os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyRedirectURI:    os.Getenv("SPOTIFY_REDIRECT_URI"),
		OpenWeatherAPIKey:     os.Getenv("OPENWEATHER_API_KEY"),
		SpeechServerURL:       envDefault("SPEECH_SERVER_URL", "http://localhost:8090/transcribe"),
		SpeechLanguage:        envDefault("SPEECH_LANGUAGE", "en"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		EnableToolAuditing:    envBool("ENABLE_TOOL_AUDITING", true),
		AuditStream:           "audit:tool-events",
		CacheTTL:              30 * time.Minute,
		MaxRequestsPerMinute:  30,
		MaxToolCallsPerMinute: 10,
	}

	if cfg.OllamaTimeout <= 0 {
		return nil, fmt.Errorf("OLLAMA_TIMEOUT_SECONDS must be positive")
	}

	if err := applyYAML(cfg, "config.yaml"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyYAML overlays the optional config.yaml on top of the defaults.
func applyYAML(cfg *AppConfig, path string) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(raw, &yc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if yc.Cache.LookupTTLMinutes > 0 {
		cfg.CacheTTL = time.Duration(yc.Cache.LookupTTLMinutes) * time.Minute
	}
	if yc.Audit.RedisStream != "" {
		cfg.AuditStream = yc.Audit.RedisStream
	}
	if yc.RateLimits.MaxRequestsPerMinute > 0 {
		cfg.MaxRequestsPerMinute = yc.RateLimits.MaxRequestsPerMinute
	}
	if yc.RateLimits.MaxToolCallsPerMinute > 0 {
		cfg.MaxToolCallsPerMinute = yc.RateLimits.MaxToolCallsPerMinute
	}
	return nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARNING: %s=%q is not an integer, using %d", key, v, def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a boolean, using %v", key, v, def)
		return def
	}
	return b
}
