package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/rensou"
	"github.com/poiesic/rensou/ai"
	"github.com/poiesic/rensou/ai/openai"
	"github.com/poiesic/rensou/expansion"
	"github.com/poiesic/rensou/fetch"
	"github.com/poiesic/rensou/oracle"
	"github.com/poiesic/rensou/oracle/dictionary"
	"github.com/poiesic/rensou/oracle/embedding"
	"github.com/poiesic/rensou/oracle/vector"
	"github.com/poiesic/rensou/storage/badger"
	"github.com/poiesic/rensou/vocab"
	"github.com/urfave/cli/v2"
)

// Oracle backends selectable with --backend.
const (
	backendDictionary = "dictionary"
	backendWord2Vec   = "word2vec"
	backendStore      = "store"
	backendEmbedding  = "embedding"
)

func modelURLFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "model-url",
			Usage:   "Model download URL (default derived from bucket and region)",
			EnvVars: []string{"MODEL_URL"},
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "S3 bucket holding the model",
			Value:   fetch.DefaultBucket,
			EnvVars: []string{"S3_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region of the bucket",
			Value:   fetch.DefaultRegion,
			EnvVars: []string{"AWS_REGION"},
		},
	}
}

func backendFlags() []cli.Flag {
	return append(modelURLFlags(),
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Oracle backend (dictionary, word2vec, store, embedding)",
			Value:   backendDictionary,
			EnvVars: []string{"RENSOU_BACKEND"},
		},
		&cli.StringFlag{
			Name:  "profile",
			Usage: "Score profile of the dictionary backend (light, medium, large)",
			Value: string(dictionary.Light),
		},
		&cli.StringFlag{
			Name:  "dictionary",
			Usage: "YAML or JSON dictionary file (default built-in sample)",
		},
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "word2vec model path (default: search, then download)",
			EnvVars: []string{"MODEL_PATH"},
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Vector store directory (store backend, or embedding cache)",
		},
		&cli.StringFlag{
			Name:  "words",
			Usage: "Word list to embed (embedding backend)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Parallel oracle queries per generation (0 for one per CPU)",
		},
	)
}

func modelURL(c *cli.Context) string {
	if u := c.String("model-url"); u != "" {
		return u
	}
	return fetch.ModelURL(c.String("bucket"), c.String("region"))
}

// openService builds the oracle chosen by --backend and initializes a
// Service over it.
func openService(ctx context.Context, c *cli.Context, opts ...rensou.ServiceOption) (*rensou.Service, error) {
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, rensou.WithEngineOptions(expansion.WithPoolSize(size)))
	}

	switch backend := c.String("backend"); backend {
	case backendStore:
		if c.String("db") == "" {
			return nil, fmt.Errorf("--db is required for the %s backend", backendStore)
		}
		return rensou.OpenService(ctx, c.String("db"), opts...)

	case backendDictionary:
		o, err := dictionaryOracle(c)
		if err != nil {
			return nil, err
		}
		return rensou.NewService(ctx, o, opts...)

	case backendWord2Vec:
		path, err := resolveModel(ctx, c)
		if err != nil {
			return nil, err
		}
		o, err := vector.New(vector.Word2VecFile(path))
		if err != nil {
			return nil, err
		}
		return rensou.NewService(ctx, o, opts...)

	case backendEmbedding:
		o, closers, err := embeddingOracle(c)
		if err != nil {
			return nil, err
		}
		for _, closer := range closers {
			opts = append(opts, rensou.WithCloser(closer))
		}
		return rensou.NewService(ctx, o, opts...)

	default:
		return nil, fmt.Errorf("invalid backend %q: must be one of %s, %s, %s, %s",
			backend, backendDictionary, backendWord2Vec, backendStore, backendEmbedding)
	}
}

func dictionaryOracle(c *cli.Context) (oracle.Oracle, error) {
	profile, err := dictionary.ParseProfile(c.String("profile"))
	if err != nil {
		return nil, err
	}
	var loader dictionary.Loader
	if path := c.String("dictionary"); path != "" {
		loader = dictionary.File(path)
	}
	return dictionary.New(loader, dictionary.WithProfile(profile))
}

// resolveModel returns --model, else the first known model location, else
// downloads the model to the default location.
func resolveModel(ctx context.Context, c *cli.Context) (string, error) {
	if path := c.String("model"); path != "" {
		return path, nil
	}
	if path, ok := fetch.Locate(fetch.DefaultCandidates...); ok {
		slog.Info("found model file", "path", path)
		return path, nil
	}

	f, err := fetch.New(fetch.WithExpectedSize(fetch.DefaultModelSize))
	if err != nil {
		return "", err
	}
	if _, err := f.Fetch(ctx, modelURL(c), defaultModelPath); err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}
	return defaultModelPath, nil
}

func embeddingOracle(c *cli.Context) (oracle.Oracle, []io.Closer, error) {
	if c.String("words") == "" {
		return nil, nil, fmt.Errorf("--words is required for the %s backend", backendEmbedding)
	}
	words, err := vocab.LoadWordList(c.String("words"))
	if err != nil {
		return nil, nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	opts := []embedding.Option{embedding.WithModelName(aiConfig.EmbeddingModel)}
	var closers []io.Closer
	if dbPath := c.String("db"); dbPath != "" {
		backend, err := badger.OpenBackend(dbPath, false)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		repo, err := badger.NewVectorRepository(backend)
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		opts = append(opts, embedding.WithRepository(repo))
		closers = append(closers, backend)
	}

	o, err := embedding.New(embedder, words, opts...)
	if err != nil {
		for _, cl := range closers {
			cl.Close()
		}
		return nil, nil, err
	}
	return o, closers, nil
}
