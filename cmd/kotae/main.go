// Package main is the kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/engine"
	"github.com/hyperjump/kotae/internal/eval"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/ranking"
	"github.com/hyperjump/kotae/internal/semantic"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "kotae server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "answer":
		runAnswer()
	case "rank":
		runRank()
	case "rebuild":
		runRebuild()
	case "status":
		runStatus()
	case "eval":
		runEval()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (query traces, corpus rebuilds, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if _, err := components.Manager.Rebuild(ctx); err != nil {
		// The server still starts so that /rebuild can retry once the
		// datasets are fixed.
		logger.Warn("initial corpus build failed", zap.Error(err))
	}

	var watch *watcher.Watcher
	if cfg.Watch.Enabled {
		watch, err = watcher.New(
			cfg.Corpus.Dir,
			[]string{corpus.ProductDocsFile, corpus.SupportTicketsFile},
			time.Duration(cfg.Watch.DebounceMS)*time.Millisecond,
			func(ctx context.Context) {
				if _, err := components.Manager.Rebuild(ctx); err != nil {
					logger.Warn("watch rebuild failed", zap.Error(err))
				}
			},
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watch.Start(ctx)
	}

	srv := server.NewServer(
		components.Engine,
		components.Manager,
		components.Store,
		cfg,
		components.Metrics,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watch != nil {
		_ = watch.Stop()
	}
	if cfg.Storage.VectorIndexPath != "" {
		if snap := components.Engine.Snapshot(); snap != nil && snap.Vector != nil {
			if err := snap.Vector.Save(cfg.Storage.VectorIndexPath); err != nil {
				logger.Warn("vector index save failed",
					zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
			}
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAnswer() {
	fs := flag.NewFlagSet("answer", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	topK := fs.Int("top-k", 0, "number of candidates to keep (0 = server default)")
	queryVersion := fs.String("version", "", "product version context, e.g. v2.1")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae answer [flags] <question>")
		os.Exit(1)
	}
	queryStr := buildQuery(fs.Args())
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	req := &models.AnswerQuery{Query: queryStr, TopK: *topK, Version: *queryVersion}
	var res models.AnswerResult
	if err := postJSON(*serverURL+"/api/v1/answer", req, &res); err != nil {
		fmt.Fprintf(os.Stderr, "Answer failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, &res, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runRank() {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	topK := fs.Int("top-k", 0, "number of candidates to keep (0 = server default)")
	queryVersion := fs.String("version", "", "product version context, e.g. v2.1")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae rank [flags] <question>")
		os.Exit(1)
	}
	req := &models.AnswerQuery{Query: buildQuery(fs.Args()), TopK: *topK, Version: *queryVersion}

	// The rank trace is diagnostic output; JSON is the only useful shape.
	var trace json.RawMessage
	if err := postJSON(*serverURL+"/api/v1/rank", req, &trace); err != nil {
		fmt.Fprintf(os.Stderr, "Rank failed: %v\n", err)
		os.Exit(1)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trace, "", "  "); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(buf.String())
}

func runRebuild() {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	var res struct {
		SnapshotID  string `json:"snapshot_id"`
		Chunks      int    `json:"chunks"`
		VectorIndex bool   `json:"vector_index"`
		TookMS      int64  `json:"took_ms"`
	}
	if err := postJSON(*serverURL+"/api/v1/rebuild", struct{}{}, &res); err != nil {
		fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rebuilt snapshot %s: %d chunks (vector index: %t) in %dms\n",
		res.SnapshotID, res.Chunks, res.VectorIndex, res.TookMS)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var buf bytes.Buffer
	body, _ := io.ReadAll(resp.Body)
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(buf.String())
}

func runEval() {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	queriesPath := fs.String("queries", "", "test queries file (default from config)")
	topK := fs.Int("top-k", 0, "number of candidates per query (0 = config default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx := context.Background()
	if _, err := components.Manager.Rebuild(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Corpus build failed: %v\n", err)
		os.Exit(1)
	}

	path := *queriesPath
	if path == "" {
		path = cfg.Corpus.TestQueriesFile
	}
	queries, err := eval.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load queries: %v\n", err)
		os.Exit(1)
	}
	k := *topK
	if k <= 0 {
		k = cfg.Retrieval.TopK
	}
	report, err := eval.Run(ctx, components.Engine, queries, k)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Eval failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteEvalReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if report.Passed < report.Total {
		os.Exit(1)
	}
}

func postJSON(url string, req, res any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Store    *storage.ChunkStore
	Embedder embedding.Embedder
	Holder   *corpus.Holder
	Manager  *corpus.Manager
	Engine   *engine.Engine
	Metrics  *metrics.Metrics
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewChunkStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	var searcher *semantic.Searcher
	if cfg.Retrieval.SemanticEnabledOrDefault() {
		embedder, err = newEmbedder(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		searcher = semantic.NewSearcher(
			embedder,
			cfg.Retrieval.OverfetchFactor,
			time.Duration(cfg.Retrieval.SemanticTimeoutMS)*time.Millisecond,
		)
	}

	m := metrics.New()
	builder := corpus.NewBuilder(embedder, cfg.Retrieval.BuildWorkers, cfg.Corpus.ChunkMaxChars, logger)
	if searcher != nil && cfg.Storage.VectorIndexPath != "" {
		warm := vector.NewMemoryIndex(embedder.Dimensions())
		switch err := warm.Load(cfg.Storage.VectorIndexPath); {
		case err == nil && warm.Size() > 0:
			builder.WarmStart(warm)
			logger.Info("loaded saved vector index",
				zap.String("path", cfg.Storage.VectorIndexPath),
				zap.Int("vectors", warm.Size()))
		case err != nil && !errors.Is(err, os.ErrNotExist):
			logger.Warn("vector index load failed, rebuilding from scratch",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	holder := &corpus.Holder{}
	manager := corpus.NewManager(cfg.Corpus.Dir, builder, holder, store, m, logger)

	rcfg := cfg.Ranking
	eng, err := engine.New(
		holder,
		searcher,
		ranking.NewReranker(rcfg, ranking.DefaultBoosts(rcfg, nil)),
		answer.NewComposer(cfg.Answer, nil),
		query.NewRuleClassifier(),
		m,
		logger,
		cfg.Retrieval.LexicalEnabledOrDefault(),
	)
	if err != nil {
		return nil, err
	}

	return &Components{
		Store:    store,
		Embedder: embedder,
		Holder:   holder,
		Manager:  manager,
		Engine:   eng,
		Metrics:  m,
	}, nil
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	var inner embedding.Embedder
	switch cfg.Embedding.Backend {
	case "", "hash":
		inner = embedding.NewHashEmbedder(cfg.Embedding.Dimensions)
	case "openai":
		apiKey := os.Getenv(cfg.Embedding.APIKeyEnv)
		oa, err := embedding.NewOpenAIEmbedder(apiKey, cfg.Embedding.Model, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, err
		}
		inner = oa
	default:
		return nil, fmt.Errorf("unknown embedding backend %q; use hash or openai", cfg.Embedding.Backend)
	}
	return embedding.NewCachedEmbedder(inner, cfg.Embedding.CacheSize), nil
}

func printUsage() {
	fmt.Println(`kotae - Support Q&A retrieval and answer service

Usage:
  kotae server [flags]             Start the HTTP server
  kotae answer [flags] <question>  Ask a question against a running server
  kotae rank [flags] <question>    Show the ranked candidate trace
  kotae rebuild [flags]            Rebuild the corpus snapshot on the server
  kotae status [flags]             Show server snapshot and storage status
  kotae eval [flags]               Run the test query set locally
  kotae version                    Show version
  kotae help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging

Answer/Rank Flags:
  --server string    Server URL (default: http://localhost:8080)
  --top-k int        Number of candidates to keep (0 = server default)
  --version string   Product version context, e.g. v2.1
  --output string    Output format: text or json (answer only)

Eval Flags:
  --config string    Config file path
  --queries string   Test queries file (default from config)
  --top-k int        Candidates per query (0 = config default)
  --output string    Output format: text or json

Examples:
  kotae server
  kotae answer "how do I restore a deleted file"
  kotae answer --version v2.1 "sync is stuck after the update"
  kotae rank "two-factor setup"
  kotae eval --queries data/corpus/test_queries.json`)
}
