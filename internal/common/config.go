package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" yaml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server" yaml:"server"`
	Queue       QueueConfig     `toml:"queue" yaml:"queue"`
	Storage     StorageConfig   `toml:"storage" yaml:"storage"`
	Providers   ProvidersConfig `toml:"providers" yaml:"providers"`
	SMTP        SMTPConfig      `toml:"smtp" yaml:"smtp"`
	Scheduler   SchedulerConfig `toml:"scheduler" yaml:"scheduler"`
	WebSocket   WebSocketConfig `toml:"websocket" yaml:"websocket"`
	Logging     LoggingConfig   `toml:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Port          int    `toml:"port" yaml:"port"`
	Host          string `toml:"host" yaml:"host"`
	PublicBaseURL string `toml:"public_base_url" yaml:"public_base_url"` // Externally reachable base URL for webhook callbacks
}

type QueueConfig struct {
	PollInterval      string `toml:"poll_interval" yaml:"poll_interval"`           // e.g., "1s" - how often workers poll for messages
	Concurrency       int    `toml:"concurrency" yaml:"concurrency"`               // Number of concurrent workers
	VisibilityTimeout string `toml:"visibility_timeout" yaml:"visibility_timeout"` // e.g., "5m" - message visibility timeout for redelivery
	MaxReceive        int    `toml:"max_receive" yaml:"max_receive"`               // Max times a message can be received before dead-letter
	QueueName         string `toml:"queue_name" yaml:"queue_name"`                 // Queue name prefix in Badger
	PollDelay         string `toml:"poll_delay" yaml:"poll_delay"`                 // Delay between status poll attempts for one job
	MaxPollAttempts   int    `toml:"max_poll_attempts" yaml:"max_poll_attempts"`   // Max status poll attempts before exhaustion
	FailOnExhaustion  bool   `toml:"fail_on_exhaustion" yaml:"fail_on_exhaustion"` // Mark jobs failed when poll attempts run out
}

type StorageConfig struct {
	Badger  BadgerConfig  `toml:"badger" yaml:"badger"`
	Objects ObjectsConfig `toml:"objects" yaml:"objects"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" yaml:"path"`                         // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup" yaml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// ObjectsConfig configures the local object store used for media files
// and rendered results.
type ObjectsConfig struct {
	Dir           string `toml:"dir" yaml:"dir"`                         // Root directory for stored objects
	PublicBaseURL string `toml:"public_base_url" yaml:"public_base_url"` // Base URL for serving stored objects
}

type ProvidersConfig struct {
	ElevenLabs ElevenLabsConfig `toml:"elevenlabs" yaml:"elevenlabs"`
	Dolby      DolbyConfig      `toml:"dolby" yaml:"dolby"`
	TwelveLabs TwelveLabsConfig `toml:"twelvelabs" yaml:"twelvelabs"`
	Anthropic  AnthropicConfig  `toml:"anthropic" yaml:"anthropic"`
	YouTube    YouTubeConfig    `toml:"youtube" yaml:"youtube"`
}

type ElevenLabsConfig struct {
	APIKey    string `toml:"api_key" yaml:"api_key"`
	BaseURL   string `toml:"base_url" yaml:"base_url"`
	RateLimit string `toml:"rate_limit" yaml:"rate_limit"` // Minimum interval between requests, e.g. "500ms"
	Timeout   string `toml:"timeout" yaml:"timeout"`
}

type DolbyConfig struct {
	AppKey    string `toml:"app_key" yaml:"app_key"`
	AppSecret string `toml:"app_secret" yaml:"app_secret"`
	BaseURL   string `toml:"base_url" yaml:"base_url"`
	RateLimit string `toml:"rate_limit" yaml:"rate_limit"`
	Timeout   string `toml:"timeout" yaml:"timeout"`
}

type TwelveLabsConfig struct {
	APIKey    string `toml:"api_key" yaml:"api_key"`
	BaseURL   string `toml:"base_url" yaml:"base_url"`
	IndexID   string `toml:"index_id" yaml:"index_id"`
	RateLimit string `toml:"rate_limit" yaml:"rate_limit"`
	Timeout   string `toml:"timeout" yaml:"timeout"`
}

type AnthropicConfig struct {
	APIKey      string  `toml:"api_key" yaml:"api_key"`
	Model       string  `toml:"model" yaml:"model"`
	MaxTokens   int     `toml:"max_tokens" yaml:"max_tokens"`
	Timeout     string  `toml:"timeout" yaml:"timeout"`
	Temperature float64 `toml:"temperature" yaml:"temperature"`
}

type YouTubeConfig struct {
	ClientID     string `toml:"client_id" yaml:"client_id"`
	ClientSecret string `toml:"client_secret" yaml:"client_secret"`
	RedirectURL  string `toml:"redirect_url" yaml:"redirect_url"`
}

type SMTPConfig struct {
	Host     string `toml:"host" yaml:"host"`
	Port     int    `toml:"port" yaml:"port"`
	Username string `toml:"username" yaml:"username"`
	Password string `toml:"password" yaml:"password"`
	From     string `toml:"from" yaml:"from"`
	To       string `toml:"to" yaml:"to"` // Inquiry notification recipient
}

type SchedulerConfig struct {
	Enabled        bool   `toml:"enabled" yaml:"enabled"`
	WebhookRefresh string `toml:"webhook_refresh" yaml:"webhook_refresh"`     // Cron schedule for provider webhook re-registration
	StaleJobSweep  string `toml:"stale_job_sweep" yaml:"stale_job_sweep"`     // Cron schedule for stale job detection
	StaleJobMaxAge string `toml:"stale_job_max_age" yaml:"stale_job_max_age"` // Age after which a pending job is considered stale
}

type WebSocketConfig struct {
	MinLevel        string   `toml:"min_level" yaml:"min_level"` // Minimum log level mirrored to websocket clients
	ExcludePatterns []string `toml:"exclude_patterns" yaml:"exclude_patterns"`
}

type LoggingConfig struct {
	Level      string   `toml:"level" yaml:"level"`             // "debug", "info", "warn", "error"
	Format     string   `toml:"format" yaml:"format"`           // "json" or "text"
	Output     []string `toml:"output" yaml:"output"`           // "stdout", "file"
	TimeFormat string   `toml:"time_format" yaml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// NewDefaultConfig returns a configuration populated with sensible defaults.
// The server runs purely from defaults when no config file is present.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:          8080,
			Host:          "localhost",
			PublicBaseURL: "http://localhost:8080",
		},
		Queue: QueueConfig{
			PollInterval:      "1s",
			Concurrency:       4,
			VisibilityTimeout: "5m",
			MaxReceive:        3,
			QueueName:         "tasks",
			PollDelay:         "60s",
			MaxPollAttempts:   5,
			FailOnExhaustion:  true,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/creatorevolve.db",
				ResetOnStartup: false,
			},
			Objects: ObjectsConfig{
				Dir:           "./data/objects",
				PublicBaseURL: "http://localhost:8080/files",
			},
		},
		Providers: ProvidersConfig{
			ElevenLabs: ElevenLabsConfig{
				BaseURL:   "https://api.elevenlabs.io",
				RateLimit: "500ms",
				Timeout:   "2m",
			},
			Dolby: DolbyConfig{
				BaseURL:   "https://api.dolby.com",
				RateLimit: "500ms",
				Timeout:   "2m",
			},
			TwelveLabs: TwelveLabsConfig{
				BaseURL:   "https://api.twelvelabs.io/v1.2",
				RateLimit: "1s",
				Timeout:   "2m",
			},
			Anthropic: AnthropicConfig{
				Model:       "claude-sonnet-4-20250514",
				MaxTokens:   4096,
				Timeout:     "5m",
				Temperature: 0.7,
			},
			YouTube: YouTubeConfig{
				RedirectURL: "http://localhost:8080/api/video/youtube/oauth2/callback",
			},
		},
		SMTP: SMTPConfig{
			Host: "localhost",
			Port: 587,
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			WebhookRefresh: "0 */6 * * *", // every 6 hours
			StaleJobSweep:  "*/30 * * * *",
			StaleJobMaxAge: "24h",
		},
		WebSocket: WebSocketConfig{
			MinLevel: "info",
			ExcludePatterns: []string{
				"WebSocket client connected",
				"WebSocket client disconnected",
				"HTTP request",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05.000",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files. Files ending in .yaml/.yml are parsed as YAML, everything else
// as TOML.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, config)
		default:
			err = toml.Unmarshal(data, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: CE_ENV, fallback: GO_ENV)
	if env := os.Getenv("CE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("CE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if base := os.Getenv("CE_SERVER_PUBLIC_BASE_URL"); base != "" {
		config.Server.PublicBaseURL = base
	}

	// Queue configuration
	if pollInterval := os.Getenv("CE_QUEUE_POLL_INTERVAL"); pollInterval != "" {
		config.Queue.PollInterval = pollInterval
	}
	if concurrency := os.Getenv("CE_QUEUE_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Queue.Concurrency = c
		}
	}
	if visibilityTimeout := os.Getenv("CE_QUEUE_VISIBILITY_TIMEOUT"); visibilityTimeout != "" {
		config.Queue.VisibilityTimeout = visibilityTimeout
	}
	if maxReceive := os.Getenv("CE_QUEUE_MAX_RECEIVE"); maxReceive != "" {
		if mr, err := strconv.Atoi(maxReceive); err == nil {
			config.Queue.MaxReceive = mr
		}
	}
	if pollDelay := os.Getenv("CE_QUEUE_POLL_DELAY"); pollDelay != "" {
		config.Queue.PollDelay = pollDelay
	}
	if maxPollAttempts := os.Getenv("CE_QUEUE_MAX_POLL_ATTEMPTS"); maxPollAttempts != "" {
		if mpa, err := strconv.Atoi(maxPollAttempts); err == nil {
			config.Queue.MaxPollAttempts = mpa
		}
	}
	if failOnExhaustion := os.Getenv("CE_QUEUE_FAIL_ON_EXHAUSTION"); failOnExhaustion != "" {
		if foe, err := strconv.ParseBool(failOnExhaustion); err == nil {
			config.Queue.FailOnExhaustion = foe
		}
	}

	// Storage configuration
	if badgerPath := os.Getenv("CE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if objectsDir := os.Getenv("CE_OBJECTS_DIR"); objectsDir != "" {
		config.Storage.Objects.Dir = objectsDir
	}

	// Provider configuration
	if apiKey := os.Getenv("CE_ELEVENLABS_API_KEY"); apiKey != "" {
		config.Providers.ElevenLabs.APIKey = apiKey
	}
	if appKey := os.Getenv("CE_DOLBY_APP_KEY"); appKey != "" {
		config.Providers.Dolby.AppKey = appKey
	}
	if appSecret := os.Getenv("CE_DOLBY_APP_SECRET"); appSecret != "" {
		config.Providers.Dolby.AppSecret = appSecret
	}
	if apiKey := os.Getenv("CE_TWELVELABS_API_KEY"); apiKey != "" {
		config.Providers.TwelveLabs.APIKey = apiKey
	}
	if indexID := os.Getenv("CE_TWELVELABS_INDEX_ID"); indexID != "" {
		config.Providers.TwelveLabs.IndexID = indexID
	}
	if apiKey := os.Getenv("CE_ANTHROPIC_API_KEY"); apiKey != "" {
		config.Providers.Anthropic.APIKey = apiKey
	} else if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Providers.Anthropic.APIKey = apiKey
	}
	if model := os.Getenv("CE_ANTHROPIC_MODEL"); model != "" {
		config.Providers.Anthropic.Model = model
	}
	if clientID := os.Getenv("CE_YOUTUBE_CLIENT_ID"); clientID != "" {
		config.Providers.YouTube.ClientID = clientID
	}
	if clientSecret := os.Getenv("CE_YOUTUBE_CLIENT_SECRET"); clientSecret != "" {
		config.Providers.YouTube.ClientSecret = clientSecret
	}

	// SMTP configuration
	if host := os.Getenv("CE_SMTP_HOST"); host != "" {
		config.SMTP.Host = host
	}
	if port := os.Getenv("CE_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.SMTP.Port = p
		}
	}
	if username := os.Getenv("CE_SMTP_USERNAME"); username != "" {
		config.SMTP.Username = username
	}
	if password := os.Getenv("CE_SMTP_PASSWORD"); password != "" {
		config.SMTP.Password = password
	}

	// Logging configuration
	if level := os.Getenv("CE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("CE_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("CE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// PollDelayDuration returns the parsed poll delay, falling back to one
// minute when the configured value does not parse.
func (q QueueConfig) PollDelayDuration() time.Duration {
	d, err := time.ParseDuration(q.PollDelay)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// VisibilityTimeoutDuration returns the parsed visibility timeout with a
// five minute fallback.
func (q QueueConfig) VisibilityTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(q.VisibilityTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// PollIntervalDuration returns the parsed worker poll interval with a one
// second fallback.
func (q QueueConfig) PollIntervalDuration() time.Duration {
	d, err := time.ParseDuration(q.PollInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// ValidateSchedule validates a cron schedule expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
