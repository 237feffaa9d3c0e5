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

// Config holds all configuration for kbrag.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"`
	Chunk    ChunkConfig    `yaml:"chunk"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	LLM      LLMConfig      `yaml:"llm"`
	Server   ServerConfig   `yaml:"server"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CorpusConfig selects the knowledge-base sources.
type CorpusConfig struct {
	Dir       string   `yaml:"dir"`
	Files     []string `yaml:"files"`    // explicit ordered list; overrides includes
	Includes  []string `yaml:"includes"`
	Excludes  []string `yaml:"excludes"`
	SourceTag string   `yaml:"source_tag"`
}

type ChunkConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

type RetrieveConfig struct {
	TopK      int           `yaml:"top_k"`
	CacheSize int           `yaml:"cache_size"` // 0 disables the query cache
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// LLMConfig configures the OpenAI-compatible chat endpoint.
type LLMConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Model         string        `yaml:"model"`
	Temperature   float64       `yaml:"temperature"`
	MaxTokens     int           `yaml:"max_tokens"`
	Timeout       time.Duration `yaml:"timeout"`
	APIKeyEnv     string        `yaml:"api_key_env"`
	AssistantName string        `yaml:"assistant_name"`
}

type ServerConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Debug bool   `yaml:"debug"`
}

type HistoryConfig struct {
	Path       string `yaml:"path"` // empty keeps history in memory
	MaxEntries int    `yaml:"max_entries"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Dir: "data",
			Files: []string{
				"owlvest_master_data.txt",
				"clean_whitepaper.txt",
				"clean_pic_data.txt",
				"website_data.txt",
			},
			Includes:  []string{"**/*.txt", "**/*.md", "**/*.pdf"},
			Excludes:  []string{"**/.git/**", "**/node_modules/**"},
			SourceTag: "owlvest_data",
		},
		Chunk: ChunkConfig{
			Size:    1000,
			Overlap: 200,
		},
		Retrieve: RetrieveConfig{
			TopK:      3,
			CacheSize: 256,
			CacheTTL:  5 * time.Minute,
		},
		LLM: LLMConfig{
			BaseURL:       "https://openrouter.ai/api/v1",
			Model:         "openrouter/auto",
			Temperature:   0.7,
			MaxTokens:     1000,
			Timeout:       30 * time.Second,
			APIKeyEnv:     "DEEPSEEK_API_KEY",
			AssistantName: "OwlVest AI Assistant",
		},
		Server: ServerConfig{
			Host:  "127.0.0.1",
			Port:  5001,
			Debug: true,
		},
		History: HistoryConfig{
			MaxEntries: 1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads dir/.env into the environment, then configuration from
// kbrag.yaml or .kbrag/config.yaml.
func LoadFromDir(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	for _, name := range []string{"kbrag.yaml", filepath.Join(".kbrag", "config.yaml")} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// lookupEnv returns the first of names that is set. Later names are
// fallbacks, such as the FLASK_* variables of older .env files.
func lookupEnv(names ...string) (string, string, bool) {
	for _, name := range names {
		if v, ok := os.LookupEnv(name); ok {
			return name, v, true
		}
	}
	return "", "", false
}

func (c *Config) applyEnv() error {
	ints := []struct {
		names []string
		dst   *int
	}{
		{[]string{"CHUNK_SIZE"}, &c.Chunk.Size},
		{[]string{"CHUNK_OVERLAP"}, &c.Chunk.Overlap},
		{[]string{"SIMILARITY_SEARCH_K"}, &c.Retrieve.TopK},
		{[]string{"SERVER_PORT", "FLASK_PORT"}, &c.Server.Port},
	}
	for _, e := range ints {
		if name, v, ok := lookupEnv(e.names...); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", name, v, err)
			}
			*e.dst = n
		}
	}

	if v, ok := os.LookupEnv("TEMPERATURE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TEMPERATURE %q: %w", v, err)
		}
		c.LLM.Temperature = f
	}
	if v, ok := os.LookupEnv("MODEL_NAME"); ok {
		c.LLM.Model = v
	}
	if _, v, ok := lookupEnv("SERVER_HOST", "FLASK_HOST"); ok {
		c.Server.Host = v
	}
	if _, v, ok := lookupEnv("SERVER_DEBUG", "FLASK_DEBUG"); ok {
		v = strings.ToLower(v)
		c.Server.Debug = v == "true" || v == "1"
	}
	return nil
}

// Validate rejects settings the chunker and retriever cannot work with.
func (c *Config) Validate() error {
	if c.Chunk.Size <= 0 {
		return fmt.Errorf("chunk.size must be positive, got %d", c.Chunk.Size)
	}
	if c.Chunk.Overlap < 0 {
		return fmt.Errorf("chunk.overlap must not be negative, got %d", c.Chunk.Overlap)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK)
	}
	return nil
}

// APIKey returns the LLM key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

// CorpusDir resolves the corpus directory against root.
func (c *Config) CorpusDir(root string) string {
	if filepath.IsAbs(c.Corpus.Dir) {
		return c.Corpus.Dir
	}
	return filepath.Join(root, c.Corpus.Dir)
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
