// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/rensou"
	"github.com/poiesic/rensou/ai"
	"github.com/poiesic/rensou/ai/openai"
	"github.com/poiesic/rensou/api"
	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/expansion"
	"github.com/poiesic/rensou/fetch"
	"github.com/poiesic/rensou/storage/badger"
	"github.com/poiesic/rensou/vocab"
	"github.com/urfave/cli/v2"
)

const defaultModelPath = "models/entity_vector.model.bin"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "rensou",
		Usage:   "Word association trees from word embeddings",
		Version: rensou.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the association API over HTTP",
				Action: serveCommand,
				Flags: append(backendFlags(),
					&cli.StringFlag{
						Name:    "host",
						Usage:   "Address to listen on",
						Value:   "0.0.0.0",
						EnvVars: []string{"API_HOST"},
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to listen on",
						Value:   8080,
						EnvVars: []string{"PORT", "API_PORT"},
					},
					&cli.StringSliceFlag{
						Name:  "cors-origin",
						Usage: "Allowed CORS origin (repeatable, default all)",
					},
				),
			},
			{
				Name:      "expand",
				Usage:     "Print the association tree for a keyword",
				ArgsUsage: "<keyword>",
				Action:    expandCommand,
				Flags: append(backendFlags(),
					&cli.IntFlag{
						Name:    "depth",
						Aliases: []string{"g"},
						Usage:   "Number of generations (at least 2)",
						Value:   core.MinDepth,
					},
					&cli.Float64Flag{
						Name:    "threshold",
						Aliases: []string{"t"},
						Usage:   "Minimum similarity in [0, 1]",
						Value:   core.DefaultThreshold,
					},
					&cli.BoolFlag{
						Name:  "deterministic",
						Usage: "Keep the best-ranked candidates instead of sampling",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (json, text)",
						Value: "json",
					},
				),
			},
			{
				Name:   "info",
				Usage:  "Print information about the loaded model",
				Action: infoCommand,
				Flags:  backendFlags(),
			},
			{
				Name:   "import",
				Usage:  "Import a word2vec model into a vector store",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "model",
						Aliases:  []string{"m"},
						Usage:    "Path to word2vec model (.bin binary, otherwise text)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of vectors written per batch",
						Value: 500,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N words",
						Value: 10000,
					},
				},
			},
			{
				Name:   "embed-vocab",
				Usage:  "Embed a word list into a vector store",
				Action: embedVocabCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "words",
						Aliases:  []string{"w"},
						Usage:    "Word list file, one word per line",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of words to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N words",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "fetch",
				Usage:  "Download the word2vec model",
				Action: fetchCommand,
				Flags: append(modelURLFlags(),
					&cli.StringFlag{
						Name:    "dest",
						Aliases: []string{"o"},
						Usage:   "Where to write the model",
						Value:   defaultModelPath,
					},
					&cli.Int64Flag{
						Name:  "expected-size",
						Usage: "Expected size in bytes, 0 to skip the check",
						Value: fetch.DefaultModelSize,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Download attempts before giving up",
						Value: fetch.DefaultMaxAttempts,
					},
				),
			},
		},
	}
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := api.NewMetrics("rensou")
	svc, err := openService(ctx, c, rensou.WithEngineOptions(expansion.WithMonitor(metrics)))
	if err != nil {
		return err
	}
	defer svc.Close()

	server, err := api.New(svc,
		api.WithMetrics(metrics),
		api.WithAllowedOrigins(c.StringSlice("cors-origin")...))
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(c.String("host"), strconv.Itoa(c.Int("port")))
	return server.ListenAndServe(ctx, addr)
}

func expandCommand(c *cli.Context) error {
	keyword := strings.TrimSpace(c.Args().First())
	if keyword == "" {
		return fmt.Errorf("keyword is required")
	}

	var opts []rensou.ServiceOption
	if c.Bool("deterministic") {
		opts = append(opts, rensou.WithEngineOptions(expansion.WithSampler(expansion.FirstSampler{})))
	}
	svc, err := openService(c.Context, c, opts...)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Expand(c.Context, keyword, c.Int("depth"), c.Float64("threshold"))
	if err != nil {
		return err
	}

	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		printTree(c, result)
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be json or text", c.String("format"))
	}
}

func printTree(c *cli.Context, result *core.ExpansionResult) {
	w := c.App.Writer
	fmt.Fprintf(w, "%s (depth %d, %d associations)\n", result.SeedKeyword, result.RequestedDepth, result.TotalCount)
	for _, node := range result.Nodes {
		indent := strings.Repeat("  ", node.GenerationNumber-1)
		fmt.Fprintf(w, "%s[%d] %s:", indent, node.GenerationNumber, node.ParentWord)
		for _, r := range node.Results {
			fmt.Fprintf(w, " %s(%.2f)", r.Word, r.Similarity)
		}
		fmt.Fprintln(w)
	}
}

func infoCommand(c *cli.Context) error {
	svc, err := openService(c.Context, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(svc.ModelInfo())
}

func importCommand(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewVectorRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	config := vocab.DefaultConfig()
	config.BatchSize = c.Int("batch-size")
	config.ReportInterval = c.Int("report-interval")

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", dbPath)
	n, err := vocab.NewImporter(repo, config, c.App.ErrWriter).Run(c.Context, c.String("model"))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "imported %s vectors\n", humanize.Comma(int64(n)))
	return nil
}

func embedVocabCommand(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	words, err := vocab.LoadWordList(c.String("words"))
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewVectorRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	config := &vocab.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", dbPath)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", aiConfig.EmbeddingHost)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", aiConfig.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	n, err := vocab.NewBuilder(repo, embedder, config, c.App.ErrWriter).Run(c.Context, words)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "embedded %s new words\n", humanize.Comma(int64(n)))
	return nil
}

func fetchCommand(c *cli.Context) error {
	f, err := fetch.New(
		fetch.WithExpectedSize(c.Int64("expected-size")),
		fetch.WithMaxAttempts(c.Int("max-attempts")))
	if err != nil {
		return err
	}
	n, err := f.Fetch(c.Context, modelURL(c), c.String("dest"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s (%s)\n", c.String("dest"), humanize.Bytes(uint64(n)))
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
