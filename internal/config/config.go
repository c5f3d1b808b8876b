// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	AI struct {
		Enabled         bool    `mapstructure:"enabled" yaml:"enabled"`
		Model           string  `mapstructure:"model" yaml:"model"`
		Temperature     float64 `mapstructure:"temperature" yaml:"temperature"`
		MaxOutputTokens int     `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
		TimeoutSeconds  int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey          string  `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Gmail struct {
		CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
		TokenFile       string `mapstructure:"token_file" yaml:"token_file"`
		DaysBack        int    `mapstructure:"days_back" yaml:"days_back"`
		MaxResults      int    `mapstructure:"max_results" yaml:"max_results"`
	} `mapstructure:"gmail" yaml:"gmail"`

	Processing struct {
		PollIntervalSeconds int `mapstructure:"poll_interval_seconds" yaml:"poll_interval_seconds"`
		CooldownSeconds     int `mapstructure:"cooldown_seconds" yaml:"cooldown_seconds"`
	} `mapstructure:"processing" yaml:"processing"`

	// Heuristics configures the cheap pre-AI gate. The post-extraction gate
	// keywords are separate on purpose: the two gates overlap but are tuned
	// independently.
	Heuristics struct {
		SenderPatterns     []string `mapstructure:"sender_patterns" yaml:"sender_patterns"`
		SubjectKeywords    []string `mapstructure:"subject_keywords" yaml:"subject_keywords"`
		AttachmentKeywords []string `mapstructure:"attachment_keywords" yaml:"attachment_keywords"`
	} `mapstructure:"heuristics" yaml:"heuristics"`

	Classifier struct {
		VendorMapFile string `mapstructure:"vendor_map_file" yaml:"vendor_map_file"`
	} `mapstructure:"classifier" yaml:"classifier"`

	Gate struct {
		VendorKeywords  []string `mapstructure:"vendor_keywords" yaml:"vendor_keywords"`
		SubjectKeywords []string `mapstructure:"subject_keywords" yaml:"subject_keywords"`
		BodyPhrases     []string `mapstructure:"body_phrases" yaml:"body_phrases"`
	} `mapstructure:"gate" yaml:"gate"`

	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFile("")
}

// InitializeConfigFile is InitializeConfig with an explicit config file path.
// An empty path falls back to the default search locations.
func InitializeConfigFile(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.email-ledger")
		v.AddConfigPath(".email-ledger")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("EMAIL_LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicitly named)
	if err := v.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// 5. The API key always comes from the unprefixed environment variable
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		fmt.Printf("Warning: failed to bind GEMINI_API_KEY environment variable: %v\n", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Database defaults
	v.SetDefault("database.path", "ledger.db")

	// AI defaults
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.1)
	v.SetDefault("ai.max_output_tokens", 1200)
	v.SetDefault("ai.timeout_seconds", 30)

	// Gmail defaults
	v.SetDefault("gmail.credentials_file", "credentials.json")
	v.SetDefault("gmail.token_file", "token.json")
	v.SetDefault("gmail.days_back", 7)
	v.SetDefault("gmail.max_results", 100)

	// Processing defaults
	v.SetDefault("processing.poll_interval_seconds", 300)
	v.SetDefault("processing.cooldown_seconds", 60)

	// Heuristic gate defaults
	v.SetDefault("heuristics.sender_patterns", DefaultSenderPatterns)
	v.SetDefault("heuristics.subject_keywords", DefaultSubjectKeywords)
	v.SetDefault("heuristics.attachment_keywords", DefaultAttachmentKeywords)

	// Classifier defaults
	v.SetDefault("classifier.vendor_map_file", "vendor_categories.yaml")

	// Post-extraction gate defaults
	v.SetDefault("gate.vendor_keywords", DefaultGateVendorKeywords)
	v.SetDefault("gate.subject_keywords", DefaultGateSubjectKeywords)
	v.SetDefault("gate.body_phrases", DefaultGateBodyPhrases)

	// Server defaults
	v.SetDefault("server.addr", ":8000")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	// Validate AI configuration
	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}

		if config.AI.Temperature < 0.0 || config.AI.Temperature > 2.0 {
			return fmt.Errorf("ai.temperature must be between 0.0 and 2.0, got: %f", config.AI.Temperature)
		}

		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}

		if config.AI.MaxOutputTokens < 1 {
			return fmt.Errorf("ai.max_output_tokens must be positive, got: %d", config.AI.MaxOutputTokens)
		}
	}

	if config.Processing.PollIntervalSeconds < 1 {
		return fmt.Errorf("processing.poll_interval_seconds must be positive, got: %d", config.Processing.PollIntervalSeconds)
	}

	if config.Gmail.DaysBack < 1 {
		return fmt.Errorf("gmail.days_back must be positive, got: %d", config.Gmail.DaysBack)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
