// Package config provides configuration loading and structs for the kotae server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Ranking   ranking.Config  `yaml:"ranking"`
	Answer    answer.Config   `yaml:"answer"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig holds dataset locations and chunking settings.
type CorpusConfig struct {
	Dir             string `yaml:"dir"`
	TestQueriesFile string `yaml:"test_queries_file"`
	ChunkMaxChars   int    `yaml:"chunk_max_chars"`
}

// StorageConfig holds paths for the database and the vector index.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
}

// EmbeddingConfig selects and tunes the embedding backend.
type EmbeddingConfig struct {
	// Backend is "hash" (local, deterministic) or "openai".
	Backend    string `yaml:"backend"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
}

// RetrievalConfig holds query-time retrieval settings.
type RetrievalConfig struct {
	TopK              int   `yaml:"top_k"`
	MaxTopK           int   `yaml:"max_top_k"`
	OverfetchFactor   int   `yaml:"overfetch_factor"`
	SemanticTimeoutMS int   `yaml:"semantic_timeout_ms"`
	LexicalEnabled    *bool `yaml:"lexical_enabled"`
	SemanticEnabled   *bool `yaml:"semantic_enabled"`
	BuildWorkers      int   `yaml:"build_workers"`
}

// LexicalEnabledOrDefault defaults to true when unset.
func (r *RetrievalConfig) LexicalEnabledOrDefault() bool {
	if r.LexicalEnabled != nil {
		return *r.LexicalEnabled
	}
	return true
}

// SemanticEnabledOrDefault defaults to true when unset.
func (r *RetrievalConfig) SemanticEnabledOrDefault() bool {
	if r.SemanticEnabled != nil {
		return *r.SemanticEnabled
	}
	return true
}

// WatchConfig holds dataset watch settings.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.Dir = expandPath(cfg.Corpus.Dir, configDir)
	cfg.Corpus.TestQueriesFile = expandPath(cfg.Corpus.TestQueriesFile, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute, relative to configDir.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return filepath.Join(configDir, path)
}
