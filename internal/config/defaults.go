package config

import "github.com/hyperjump/kotae/internal/models"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Corpus.Dir == "" {
		cfg.Corpus.Dir = "data/corpus"
	}
	if cfg.Corpus.TestQueriesFile == "" {
		cfg.Corpus.TestQueriesFile = "data/corpus/test_queries.json"
	}
	if cfg.Corpus.ChunkMaxChars == 0 {
		cfg.Corpus.ChunkMaxChars = 1200
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "data/db/chunks.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "data/indices/vectors.bin"
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = "hash"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = models.DefaultTopK
	}
	if cfg.Retrieval.MaxTopK == 0 || cfg.Retrieval.MaxTopK > models.MaxTopK {
		cfg.Retrieval.MaxTopK = models.MaxTopK
	}
	if cfg.Retrieval.OverfetchFactor == 0 {
		cfg.Retrieval.OverfetchFactor = 4
	}
	if cfg.Retrieval.SemanticTimeoutMS == 0 {
		cfg.Retrieval.SemanticTimeoutMS = 5000
	}
	if cfg.Retrieval.BuildWorkers == 0 {
		cfg.Retrieval.BuildWorkers = 8
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 500
	}
	cfg.Ranking.ApplyDefaults()
	cfg.Answer.ApplyDefaults()
}
