package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the draftd service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// StorageConfig holds draft/analysis store settings.
type StorageConfig struct {
	Driver    string   `yaml:"driver"` // sqlite, redis (default: sqlite)
	Path      string   `yaml:"path"`   // sqlite database file
	Addrs     []string `yaml:"addrs"`  // redis addresses
	Password  string   `yaml:"password"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // openai, hash (default: hash)
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// RetrievalConfig holds retrieval strategy settings.
type RetrievalConfig struct {
	Strategy       string `yaml:"strategy"` // dense, sparse (default: dense)
	Metric         string `yaml:"metric"`   // cosine, l2 (default: cosine)
	TopK           int    `yaml:"top_k"`
	SnapshotPath   string `yaml:"snapshot_path"`
	SparseFallback bool   `yaml:"sparse_fallback"` // fall back to TF-IDF when embeddings are unavailable
}

// AnalysisConfig holds structured analysis generator settings.
type AnalysisConfig struct {
	Engine          string `yaml:"engine"` // generative, heuristic (default: heuristic)
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	Model           string `yaml:"model"`
	TimeoutSec      int    `yaml:"timeout_sec"`
	MaxExcerptChars int    `yaml:"max_excerpt_chars"`
}

// CorpusConfig holds corpus ingestion settings.
type CorpusConfig struct {
	Path string `yaml:"path"` // cleaned notices JSON; empty = built-in seed corpus
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Generative analysis dominates response latency.
		c.HTTP.WriteTimeoutSec = 180
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/drafts.db"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "draftd:"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "hash"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Retrieval.Strategy == "" {
		c.Retrieval.Strategy = "dense"
	}
	if c.Retrieval.Metric == "" {
		c.Retrieval.Metric = "cosine"
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 10
	}
	if c.Retrieval.SnapshotPath == "" {
		c.Retrieval.SnapshotPath = "data/notice_index.json"
	}
	if c.Analysis.Engine == "" {
		c.Analysis.Engine = "heuristic"
	}
	if c.Analysis.TimeoutSec <= 0 {
		c.Analysis.TimeoutSec = 120
	}
	if c.Analysis.MaxExcerptChars <= 0 {
		c.Analysis.MaxExcerptChars = 800
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("storage.driver must be \"sqlite\" or \"redis\", got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "redis" && len(c.Storage.Addrs) == 0 {
		return fmt.Errorf("storage.addrs is required for the redis driver")
	}
	switch c.Embedding.Provider {
	case "openai", "hash":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"hash\", got %q", c.Embedding.Provider)
	}
	switch c.Retrieval.Strategy {
	case "dense", "sparse":
	default:
		return fmt.Errorf("retrieval.strategy must be \"dense\" or \"sparse\", got %q", c.Retrieval.Strategy)
	}
	switch c.Retrieval.Metric {
	case "cosine", "l2":
	default:
		return fmt.Errorf("retrieval.metric must be \"cosine\" or \"l2\", got %q", c.Retrieval.Metric)
	}
	switch c.Analysis.Engine {
	case "generative", "heuristic":
	default:
		return fmt.Errorf("analysis.engine must be \"generative\" or \"heuristic\", got %q", c.Analysis.Engine)
	}
	if c.Analysis.Engine == "generative" && c.Analysis.Model == "" {
		return fmt.Errorf("analysis.model is required for the generative engine")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
