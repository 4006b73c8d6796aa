package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the subreddit scraper
type Config struct {
	// Reddit API settings
	Reddit RedditConfig `yaml:"reddit" json:"reddit"`

	// Scrape loop settings
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Output file locations
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedditConfig holds Reddit API settings
type RedditConfig struct {
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	TokenURL  string        `yaml:"token_url" json:"token_url"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// ScrapeConfig holds the pagination loop settings
type ScrapeConfig struct {
	// BatchSize is the number of posts requested per page (Reddit caps at 100).
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// NumBatches is the fixed number of page requests per run. The loop
	// always issues this many requests, even after the listing is exhausted,
	// unless StopOnLastPage is set.
	NumBatches int `yaml:"num_batches" json:"num_batches"`

	// PageDelay is the pause between successive page requests.
	PageDelay time.Duration `yaml:"page_delay" json:"page_delay"`

	// StopOnLastPage ends the loop early once the API stops returning a
	// pagination cursor. Off by default: the default behavior issues all
	// NumBatches requests regardless, matching the historical request count.
	StopOnLastPage bool `yaml:"stop_on_last_page" json:"stop_on_last_page"`
}

// OutputConfig holds the on-disk file locations
type OutputConfig struct {
	DatasetFile     string `yaml:"dataset_file" json:"dataset_file"`
	RunLogFile      string `yaml:"run_log_file" json:"run_log_file"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			UserAgent: "subscraper/0.1",
			BaseURL:   "https://oauth.reddit.com",
			TokenURL:  "https://www.reddit.com/api/v1/access_token",
			Timeout:   30 * time.Second,
		},
		Scrape: ScrapeConfig{
			BatchSize:      100,
			NumBatches:     10,
			PageDelay:      2 * time.Second,
			StopOnLastPage: false,
		},
		Output: OutputConfig{
			DatasetFile:     filepath.Join("data", "subreddit_data.csv"),
			RunLogFile:      filepath.Join("data", "transaction_log.txt"),
			CredentialsFile: filepath.Join("data", "reddit_credentials.json"),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if ua := os.Getenv("SUBSCRAPER_USER_AGENT"); ua != "" {
		c.Reddit.UserAgent = ua
	}
	if base := os.Getenv("SUBSCRAPER_BASE_URL"); base != "" {
		c.Reddit.BaseURL = base
	}
	if token := os.Getenv("SUBSCRAPER_TOKEN_URL"); token != "" {
		c.Reddit.TokenURL = token
	}

	if bs := os.Getenv("SUBSCRAPER_BATCH_SIZE"); bs != "" {
		if val, err := strconv.Atoi(bs); err == nil && val > 0 {
			c.Scrape.BatchSize = val
		}
	}
	if nb := os.Getenv("SUBSCRAPER_NUM_BATCHES"); nb != "" {
		if val, err := strconv.Atoi(nb); err == nil && val > 0 {
			c.Scrape.NumBatches = val
		}
	}
	if delay := os.Getenv("SUBSCRAPER_PAGE_DELAY"); delay != "" {
		if val, err := time.ParseDuration(delay); err == nil && val >= 0 {
			c.Scrape.PageDelay = val
		}
	}
	if stop := os.Getenv("SUBSCRAPER_STOP_ON_LAST_PAGE"); stop != "" {
		c.Scrape.StopOnLastPage = strings.ToLower(stop) == "true"
	}

	if dataset := os.Getenv("SUBSCRAPER_DATASET_FILE"); dataset != "" {
		c.Output.DatasetFile = dataset
	}
	if runLog := os.Getenv("SUBSCRAPER_RUN_LOG_FILE"); runLog != "" {
		c.Output.RunLogFile = runLog
	}
	if creds := os.Getenv("SUBSCRAPER_CREDENTIALS_FILE"); creds != "" {
		c.Output.CredentialsFile = creds
	}

	if logLevel := os.Getenv("SUBSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("SUBSCRAPER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".subscraper.yaml",
		".subscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "subscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "subscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".subscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".subscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Reddit.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Reddit.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if c.Reddit.TokenURL == "" {
		errs = append(errs, errors.New("token URL is required"))
	}
	if c.Reddit.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Scrape.BatchSize <= 0 || c.Scrape.BatchSize > 100 {
		errs = append(errs, errors.New("batch size must be between 1 and 100"))
	}
	if c.Scrape.NumBatches <= 0 {
		errs = append(errs, errors.New("number of batches must be positive"))
	}
	if c.Scrape.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}

	if c.Output.DatasetFile == "" {
		errs = append(errs, errors.New("dataset file path is required"))
	}
	if c.Output.RunLogFile == "" {
		errs = append(errs, errors.New("run log file path is required"))
	}
	if c.Output.CredentialsFile == "" {
		errs = append(errs, errors.New("credentials file path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if ua, ok := flags["user-agent"].(string); ok && ua != "" {
		c.Reddit.UserAgent = ua
	}
	if batchSize, ok := flags["batch-size"].(int); ok && batchSize > 0 {
		c.Scrape.BatchSize = batchSize
	}
	if batches, ok := flags["batches"].(int); ok && batches > 0 {
		c.Scrape.NumBatches = batches
	}
	if delay, ok := flags["page-delay"].(time.Duration); ok && delay >= 0 {
		c.Scrape.PageDelay = delay
	}
	if stop, ok := flags["stop-on-last-page"].(bool); ok {
		c.Scrape.StopOnLastPage = stop
	}
	if dataset, ok := flags["output"].(string); ok && dataset != "" {
		c.Output.DatasetFile = dataset
	}
	if runLog, ok := flags["run-log"].(string); ok && runLog != "" {
		c.Output.RunLogFile = runLog
	}
	if creds, ok := flags["credentials"].(string); ok && creds != "" {
		c.Output.CredentialsFile = creds
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".subscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
