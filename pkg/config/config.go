// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leseb/docparse/pkg/chunker"
	"github.com/leseb/docparse/pkg/extractor"
	"github.com/leseb/docparse/pkg/provider"
)

// SourceLocal reads inputs straight from the local filesystem instead of
// a file store.
const SourceLocal = "local"

// ResultsNone disables the result store.
const ResultsNone = "none"

// Config represents the main configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Source     SourceConfig     `yaml:"source"`
	Results    ResultsConfig    `yaml:"results"`
	Extraction ExtractionConfig `yaml:"extraction"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
}

// SourceConfig selects where documents are read from
type SourceConfig struct {
	Type       string `yaml:"type"`     // "local" (default), "memory", "filesystem" or "s3"
	BaseDir    string `yaml:"base_dir"` // filesystem backend
	S3Bucket   string `yaml:"s3_bucket"`
	S3Region   string `yaml:"s3_region"`
	S3Prefix   string `yaml:"s3_prefix"`
	S3Endpoint string `yaml:"s3_endpoint"` // e.g. MinIO
}

// ResultsConfig selects where extraction records are written
type ResultsConfig struct {
	Type string `yaml:"type"` // "none" (default), "memory", "sqlite" or "postgres"
	DSN  string `yaml:"dsn"`
}

// ExtractionConfig tunes the batch runner
type ExtractionConfig struct {
	Workers      int `yaml:"workers"`
	ChunkSize    int `yaml:"chunk_size"` // runes; negative disables chunking
	ChunkOverlap int `yaml:"chunk_overlap"`
	// ChunkSizeTokens and ChunkOverlapTokens take precedence over the rune
	// settings when positive.
	ChunkSizeTokens    int    `yaml:"chunk_size_tokens"`
	ChunkOverlapTokens int    `yaml:"chunk_overlap_tokens"`
	Format             string `yaml:"format"` // force one format for every input
}

// ChunkRunes returns the chunk size and overlap in runes.
func (e ExtractionConfig) ChunkRunes() (size, overlap int) {
	size, overlap = e.ChunkSize, e.ChunkOverlap
	if e.ChunkSizeTokens > 0 {
		size = chunker.TokensToRunes(e.ChunkSizeTokens)
	}
	if e.ChunkOverlapTokens > 0 {
		overlap = chunker.TokensToRunes(e.ChunkOverlapTokens)
	}
	return size, overlap
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns default configuration with environment overrides applied
func Default() *Config {
	var cfg Config
	// Numeric overrides that fail to parse fall back to the defaults.
	_ = applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Extraction.Format != "" {
		if _, ok := extractor.FromName(c.Extraction.Format); !ok {
			return fmt.Errorf("unknown extraction format %q", c.Extraction.Format)
		}
	}
	switch c.Source.Type {
	case "filesystem":
		if c.Source.BaseDir == "" {
			return fmt.Errorf("source type filesystem requires base_dir")
		}
	case "s3":
		if c.Source.S3Bucket == "" {
			return fmt.Errorf("source type s3 requires s3_bucket")
		}
	}
	if c.Results.Type == "postgres" && c.Results.DSN == "" {
		return fmt.Errorf("results type postgres requires dsn")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Extraction.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.Extraction.ChunkSizeTokens < 0 || c.Extraction.ChunkOverlapTokens < 0 {
		return fmt.Errorf("chunk token sizes must not be negative")
	}
	return nil
}

// SourceParams returns the file store backend parameters.
func (c *Config) SourceParams() provider.Params {
	return provider.Params{
		"base_dir": c.Source.BaseDir,
		"bucket":   c.Source.S3Bucket,
		"region":   c.Source.S3Region,
		"prefix":   c.Source.S3Prefix,
		"endpoint": c.Source.S3Endpoint,
	}
}

// ResultParams returns the result store backend parameters.
func (c *Config) ResultParams() provider.Params {
	return provider.Params{"dsn": c.Results.DSN}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DOCPARSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DOCPARSE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DOCPARSE_SOURCE"); v != "" {
		cfg.Source.Type = v
	}
	if v := os.Getenv("DOCPARSE_RESULTS"); v != "" {
		cfg.Results.Type = v
	}
	if v := os.Getenv("DOCPARSE_RESULTS_DSN"); v != "" {
		cfg.Results.DSN = v
	}

	// File store env overrides
	if v := os.Getenv("FILE_STORE_DIR"); v != "" {
		cfg.Source.BaseDir = v
	}
	if v := os.Getenv("FILE_STORE_S3_BUCKET"); v != "" {
		cfg.Source.S3Bucket = v
	}
	if v := os.Getenv("FILE_STORE_S3_REGION"); v != "" {
		cfg.Source.S3Region = v
	}
	if v := os.Getenv("FILE_STORE_S3_ENDPOINT"); v != "" {
		cfg.Source.S3Endpoint = v
	}

	if v := os.Getenv("DOCPARSE_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("DOCPARSE_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOCPARSE_PORT: %w", err)
		}
		cfg.Server.Port = n
	}

	if v := os.Getenv("DOCPARSE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOCPARSE_WORKERS: %w", err)
		}
		cfg.Extraction.Workers = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 60 * time.Second
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 64 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = SourceLocal
	}
	if cfg.Results.Type == "" {
		cfg.Results.Type = ResultsNone
	}
	if cfg.Results.Type == "sqlite" && cfg.Results.DSN == "" {
		cfg.Results.DSN = "docparse.db"
	}
	if cfg.Extraction.Workers == 0 {
		cfg.Extraction.Workers = 4
	}
	if cfg.Extraction.ChunkSize == 0 {
		cfg.Extraction.ChunkSize = chunker.DefaultSize
	}
	if cfg.Extraction.ChunkOverlap == 0 {
		cfg.Extraction.ChunkOverlap = chunker.DefaultOverlap
	}
}
