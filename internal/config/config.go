// Package config loads and validates the normakb configuration.
//
// Configuration is read from a YAML file (default: <data>/config.yaml),
// falling back to built-in defaults. A small set of NORMAKB_* environment
// variables override file values for deployment tuning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	kberrors "github.com/normakb/normakb/internal/errors"
)

// Defaults for segmentation and retrieval budgets.
const (
	// DefaultChunkTokenBudget is the maximum tokens per chunk (B).
	DefaultChunkTokenBudget = 14000

	// DefaultContextTokenCeiling is the maximum total tokens returned
	// for one query (C).
	DefaultContextTokenCeiling = 12000

	// DefaultKeywordsPerChunk is how many frequency-ranked keywords
	// are extracted per chunk.
	DefaultKeywordsPerChunk = 15

	// DefaultCacheCapacity is the retrieval cache size in entries.
	DefaultCacheCapacity = 64
)

// Config is the complete normakb configuration.
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PathsConfig locates the on-disk data layout.
type PathsConfig struct {
	// DataDir is the root for all derived data. Other paths default
	// to subdirectories of it when left empty.
	DataDir string `yaml:"data_dir"`

	// ProcessedDir holds the structured text documents (input).
	ProcessedDir string `yaml:"processed_dir"`

	// ChunksDir holds the persisted chunk store.
	ChunksDir string `yaml:"chunks_dir"`

	// IndicesDir holds versioned index builds and the CURRENT pointer.
	IndicesDir string `yaml:"indices_dir"`

	// LocksDir holds per-document build lock files.
	LocksDir string `yaml:"locks_dir"`

	// VersionsDB is the SQLite document version tracker.
	VersionsDB string `yaml:"versions_db"`

	// LogFile is the log file path. Empty disables file logging.
	LogFile string `yaml:"log_file"`
}

// ChunkingConfig controls the segmentation pass.
type ChunkingConfig struct {
	// TokenBudget is the maximum tokens per chunk (B).
	TokenBudget int `yaml:"token_budget"`

	// KeywordsPerChunk bounds the extracted keyword set per chunk.
	KeywordsPerChunk int `yaml:"keywords_per_chunk"`
}

// RetrievalConfig controls query-time context assembly.
type RetrievalConfig struct {
	// ContextTokenCeiling is the default total token ceiling (C).
	ContextTokenCeiling int `yaml:"context_token_ceiling"`

	// CacheCapacity is the chunk content cache size in entries.
	CacheCapacity int `yaml:"cache_capacity"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration rooted at dataDir.
func Default(dataDir string) *Config {
	cfg := &Config{
		Paths: PathsConfig{
			DataDir: dataDir,
		},
		Chunking: ChunkingConfig{
			TokenBudget:      DefaultChunkTokenBudget,
			KeywordsPerChunk: DefaultKeywordsPerChunk,
		},
		Retrieval: RetrievalConfig{
			ContextTokenCeiling: DefaultContextTokenCeiling,
			CacheCapacity:       DefaultCacheCapacity,
		},
		Logging: LoggingConfig{Level: "info"},
	}
	cfg.fillPathDefaults()
	return cfg
}

// Load reads configuration from path, applies defaults and env overrides,
// and validates the result. A missing file yields the defaults.
func Load(path string, dataDir string) (*Config, error) {
	cfg := Default(dataDir)

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file: defaults plus env overrides.
	case err != nil:
		return nil, kberrors.New(kberrors.ErrCodeConfigNotFound,
			fmt.Sprintf("cannot read config file %s", path), err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, kberrors.ConfigError(
				fmt.Sprintf("invalid YAML in %s", path), err)
		}
		cfg.fillPathDefaults()
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillPathDefaults derives unset paths from DataDir.
func (c *Config) fillPathDefaults() {
	root := c.Paths.DataDir
	if root == "" {
		root = "data"
		c.Paths.DataDir = root
	}
	if c.Paths.ProcessedDir == "" {
		c.Paths.ProcessedDir = filepath.Join(root, "processed")
	}
	if c.Paths.ChunksDir == "" {
		c.Paths.ChunksDir = filepath.Join(root, "chunks")
	}
	if c.Paths.IndicesDir == "" {
		c.Paths.IndicesDir = filepath.Join(root, "indices")
	}
	if c.Paths.LocksDir == "" {
		c.Paths.LocksDir = filepath.Join(root, "locks")
	}
	if c.Paths.VersionsDB == "" {
		c.Paths.VersionsDB = filepath.Join(root, "versions.db")
	}
	if c.Paths.LogFile == "" {
		c.Paths.LogFile = filepath.Join(root, "logs", "normakb.log")
	}
}

// applyEnvOverrides applies NORMAKB_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NORMAKB_TOKEN_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunking.TokenBudget = n
		}
	}
	if v := os.Getenv("NORMAKB_CONTEXT_CEILING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retrieval.ContextTokenCeiling = n
		}
	}
	if v := os.Getenv("NORMAKB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks budgets and capacities.
func (c *Config) Validate() error {
	if c.Chunking.TokenBudget <= 0 {
		return kberrors.ConfigError(
			fmt.Sprintf("chunking.token_budget must be positive, got %d", c.Chunking.TokenBudget), nil)
	}
	if c.Retrieval.ContextTokenCeiling <= 0 {
		return kberrors.ConfigError(
			fmt.Sprintf("retrieval.context_token_ceiling must be positive, got %d", c.Retrieval.ContextTokenCeiling), nil)
	}
	if c.Retrieval.CacheCapacity <= 0 {
		return kberrors.ConfigError(
			fmt.Sprintf("retrieval.cache_capacity must be positive, got %d", c.Retrieval.CacheCapacity), nil)
	}
	if c.Chunking.KeywordsPerChunk <= 0 {
		return kberrors.ConfigError(
			fmt.Sprintf("chunking.keywords_per_chunk must be positive, got %d", c.Chunking.KeywordsPerChunk), nil)
	}
	return nil
}
