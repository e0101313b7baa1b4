package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  port: 9090
corpus:
  dir: dataset
embedding:
  backend: hash
  dimensions: 128
retrieval:
  top_k: 4
  semantic_enabled: false
ranking:
  semantic_weight: 0.7
  lexical_weight: 0.3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug not parsed")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("host default = %q, want localhost", cfg.Server.Host)
	}
	if want := filepath.Join(dir, "dataset"); cfg.Corpus.Dir != want {
		t.Errorf("corpus dir = %q, want %q (relative to config)", cfg.Corpus.Dir, want)
	}
	if cfg.Embedding.Dimensions != 128 {
		t.Errorf("dimensions = %d, want 128", cfg.Embedding.Dimensions)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("top_k = %d, want 4", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SemanticEnabledOrDefault() {
		t.Error("semantic_enabled: false must be honored")
	}
	if !cfg.Retrieval.LexicalEnabledOrDefault() {
		t.Error("lexical_enabled must default to true")
	}
	if cfg.Ranking.SemanticWeight != 0.7 || cfg.Ranking.LexicalWeight != 0.3 {
		t.Errorf("ranking weights = %f/%f", cfg.Ranking.SemanticWeight, cfg.Ranking.LexicalWeight)
	}
	if cfg.Answer.RelevanceFloor == 0 {
		t.Error("answer defaults must apply")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing config must fail")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Retrieval.TopK != 6 || cfg.Retrieval.MaxTopK != 20 {
		t.Errorf("retrieval defaults wrong: %+v", cfg.Retrieval)
	}
	if cfg.Embedding.Backend != "hash" {
		t.Errorf("default backend = %q, want hash", cfg.Embedding.Backend)
	}
	if cfg.Ranking.SemanticWeight != 0.5 {
		t.Errorf("ranking defaults must apply, got %f", cfg.Ranking.SemanticWeight)
	}
	if cfg.Watch.Enabled {
		t.Error("watch must default to disabled")
	}
	if cfg.Watch.DebounceMS != 500 {
		t.Errorf("debounce default = %d, want 500", cfg.Watch.DebounceMS)
	}
}
