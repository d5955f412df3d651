package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML side of the configuration: everything an operator
// tunes per deployment without touching credentials.
type FileConfig struct {
	Automation AutomationConfig `yaml:"automation"`
	AdSense    AdSenseConfig    `yaml:"adsense"`
	Feeds      []FeedConfig     `yaml:"feeds"`
}

type AutomationConfig struct {
	TargetMarkets  []string `yaml:"target_markets"`
	Subreddits     []string `yaml:"subreddits"`
	LimitPerSource int      `yaml:"limit_per_source"`
	MinWords       int      `yaml:"min_words"`
	MaxWords       int      `yaml:"max_words"`
	TargetAudience string   `yaml:"target_audience"`
}

type AdSenseConfig struct {
	ClientID string            `yaml:"client_id"`
	Slots    map[string]string `yaml:"slots"`
}

// FeedConfig is one extra RSS source beyond the built-in APIs.
type FeedConfig struct {
	URL    string `yaml:"url"`
	Source string `yaml:"source"`
}

type Config struct {
	File FileConfig

	// LLM providers
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	// Image providers
	UnsplashAccessKey string
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string
	MinioPublicURL    string
	MinioUseSSL       bool

	// Database
	UseDatabase bool
	DatabaseURL string

	// Output
	OutputDir string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Upper bound on burst LLM calls per run; sizes the provider rate limiter.
	MaxLLMRequests int
}

// Load reads the YAML file at path and layers environment variables on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		OutputDir:      "public/articles",
		RequestTimeout: 30 * time.Second,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		MaxLLMRequests: 30,
	}

	if err := loadFile(path, &cfg.File); err != nil {
		return nil, fmt.Errorf("load config file %s: %w", path, err)
	}
	cfg.File.applyDefaults()

	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	cfg.UnsplashAccessKey = os.Getenv("UNSPLASH_ACCESS_KEY")

	cfg.MinioEndpoint = os.Getenv("MINIO_ENDPOINT")
	cfg.MinioAccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.MinioSecretKey = os.Getenv("MINIO_SECRET_KEY")
	cfg.MinioBucket = getEnvOrDefault("MINIO_BUCKET", "article-images")
	cfg.MinioPublicURL = os.Getenv("MINIO_PUBLIC_URL")
	cfg.MinioUseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	cfg.UseDatabase = os.Getenv("USE_DATABASE") == "true"
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if dir := os.Getenv("OUTPUT_DIR"); dir != "" {
		cfg.OutputDir = dir
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryAttempts = val
		}
	}
	if v := os.Getenv("MAX_LLM_REQUESTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MaxLLMRequests = val
		}
	}

	return cfg, cfg.Validate()
}

func loadFile(path string, fc *FileConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	return dec.Decode(fc)
}

func (fc *FileConfig) applyDefaults() {
	if len(fc.Automation.TargetMarkets) == 0 {
		fc.Automation.TargetMarkets = []string{"US", "UK", "CA"}
	}
	if len(fc.Automation.Subreddits) == 0 {
		fc.Automation.Subreddits = []string{"technology", "worldnews"}
	}
	if fc.Automation.LimitPerSource <= 0 {
		fc.Automation.LimitPerSource = 10
	}
	if fc.Automation.MinWords <= 0 {
		fc.Automation.MinWords = 1500
	}
	if fc.Automation.MaxWords <= 0 {
		fc.Automation.MaxWords = 2000
	}
	if fc.Automation.TargetAudience == "" {
		fc.Automation.TargetAudience = "North American and European readers"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks the credentials without which the pipeline cannot run at
// all. Optional providers (Unsplash, MinIO, database) degrade instead.
func (c *Config) Validate() error {
	if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("at least one of ANTHROPIC_API_KEY or OPENAI_API_KEY is required")
	}
	if c.UseDatabase && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when USE_DATABASE=true")
	}
	return nil
}
