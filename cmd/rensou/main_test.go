package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"rensou"}, args...))
	return out.String(), err
}

func findCommand(t *testing.T, name string) *cli.Command {
	t.Helper()
	for _, cmd := range newApp().Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func findFlag(t *testing.T, cmd *cli.Command, name string) cli.Flag {
	t.Helper()
	for _, flag := range cmd.Flags {
		for _, n := range flag.Names() {
			if n == name {
				return flag
			}
		}
	}
	t.Fatalf("flag %q not found on %s", name, cmd.Name)
	return nil
}

func TestCommands(t *testing.T) {
	names := []string{}
	for _, cmd := range newApp().Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"serve", "expand", "info", "import", "embed-vocab", "fetch"}, names)
}

func TestServeFlags(t *testing.T) {
	cmd := findCommand(t, "serve")

	port := findFlag(t, cmd, "port").(*cli.IntFlag)
	assert.Equal(t, 8080, port.Value)
	assert.Equal(t, []string{"PORT", "API_PORT"}, port.EnvVars)

	host := findFlag(t, cmd, "host").(*cli.StringFlag)
	assert.Equal(t, "0.0.0.0", host.Value)
	assert.Equal(t, []string{"API_HOST"}, host.EnvVars)

	backend := findFlag(t, cmd, "backend").(*cli.StringFlag)
	assert.Equal(t, backendDictionary, backend.Value)
}

func TestFetchFlags(t *testing.T) {
	cmd := findCommand(t, "fetch")

	assert.Equal(t, []string{"MODEL_URL"}, findFlag(t, cmd, "model-url").(*cli.StringFlag).EnvVars)
	assert.Equal(t, []string{"S3_BUCKET"}, findFlag(t, cmd, "bucket").(*cli.StringFlag).EnvVars)
	assert.Equal(t, []string{"AWS_REGION"}, findFlag(t, cmd, "region").(*cli.StringFlag).EnvVars)
	assert.Equal(t, int64(800000000), findFlag(t, cmd, "expected-size").(*cli.Int64Flag).Value)
}

func TestEmbedVocabFlags(t *testing.T) {
	cmd := findCommand(t, "embed-vocab")

	host := findFlag(t, cmd, "embedding-host").(*cli.StringFlag)
	assert.Equal(t, "http://localhost:11434/v1", host.Value)
	assert.Empty(t, host.EnvVars)

	model := findFlag(t, cmd, "embedding-model").(*cli.StringFlag)
	assert.Empty(t, model.Value)
	assert.True(t, model.Required)

	_, err := runApp(t, "embed-vocab", "--db", t.TempDir(), "--words", "words.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding-model")
}

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		t.Run(level, func(t *testing.T) {
			_, err := runApp(t, "--log-level", level, "info")
			assert.NoError(t, err)
		})
	}

	_, err := runApp(t, "--log-level", "verbose", "info")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestExpandCommand(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		out, err := runApp(t, "--log-level", "error", "expand", "--depth", "3", "--threshold", "0.45", "--deterministic", "犬")
		require.NoError(t, err)

		var result core.ExpansionResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, "犬", result.SeedKeyword)
		require.Len(t, result.Nodes, 2)
		assert.Equal(t, "猫", result.Nodes[1].ParentWord)
		assert.Equal(t, 8, result.TotalCount)
	})

	t.Run("text", func(t *testing.T) {
		out, err := runApp(t, "--log-level", "error", "expand", "--format", "text", "--deterministic", "雨")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "雨 (depth 2, 5 associations)"))
		assert.Contains(t, out, "[2] 雨: 水(0.90)")
	})

	t.Run("medium profile", func(t *testing.T) {
		out, err := runApp(t, "--log-level", "error", "expand", "--profile", "medium", "--deterministic", "雨")
		require.NoError(t, err)
		var result core.ExpansionResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 6, result.TotalCount)
	})

	t.Run("custom dictionary", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dict.yaml")
		require.NoError(t, os.WriteFile(path, []byte("空:\n  - 雲\n  - 青\n"), 0o644))

		out, err := runApp(t, "--log-level", "error", "expand", "--dictionary", path, "空")
		require.NoError(t, err)
		var result core.ExpansionResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, 2, result.TotalCount)
	})

	t.Run("missing keyword", func(t *testing.T) {
		_, err := runApp(t, "expand")
		assert.Error(t, err)
	})

	t.Run("unknown keyword", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "error", "expand", "存在しない")
		assert.ErrorIs(t, err, core.ErrKeywordNotFound)
	})

	t.Run("invalid depth", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "error", "expand", "--depth", "1", "犬")
		assert.ErrorIs(t, err, core.ErrInvalidParameter)
	})

	t.Run("invalid backend", func(t *testing.T) {
		_, err := runApp(t, "expand", "--backend", "nope", "犬")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid backend")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "error", "expand", "--format", "xml", "犬")
		require.Error(t, err)
	})
}

func TestInfoCommand(t *testing.T) {
	out, err := runApp(t, "--log-level", "error", "info", "--profile", "large")
	require.NoError(t, err)

	var info core.ModelInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, core.ModelInfo{VocabularySize: 10, VectorDimension: 200, ModelType: "dictionary_large"}, info)
}

func writeTextModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.txt")
	model := "3 3\n犬 1 0 0\n猫 0.9 0.1 0\n車 0 0 1\n"
	require.NoError(t, os.WriteFile(path, []byte(model), 0o644))
	return path
}

func TestImportThenExpandFromStore(t *testing.T) {
	model := writeTextModel(t)
	db := filepath.Join(t.TempDir(), "db")

	out, err := runApp(t, "--log-level", "error", "import", "--db", db, "--model", model, "--batch-size", "2", "--report-interval", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 3 vectors")

	backend, err := badger.OpenBackend(db, false)
	require.NoError(t, err)
	repo, err := badger.NewVectorRepository(backend)
	require.NoError(t, err)
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, backend.Close())

	out, err = runApp(t, "--log-level", "error", "expand", "--backend", "store", "--db", db, "犬")
	require.NoError(t, err)
	var result core.ExpansionResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Nodes, 1)
	require.Len(t, result.Nodes[0].Results, 1)
	assert.Equal(t, "猫", result.Nodes[0].Results[0].Word)
}

func TestExpandFromWord2VecFile(t *testing.T) {
	model := writeTextModel(t)

	out, err := runApp(t, "--log-level", "error", "info", "--backend", "word2vec", "--model", model)
	require.NoError(t, err)
	var info core.ModelInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, 3, info.VocabularySize)
	assert.Equal(t, 3, info.VectorDimension)
	assert.Equal(t, "word2vec", info.ModelType)
}

func TestStoreBackendRequiresDB(t *testing.T) {
	_, err := runApp(t, "info", "--backend", "store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db")
}

func TestFetchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "model-bytes")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "models", "model.bin")
	out, err := runApp(t, "--log-level", "error", "fetch", "--model-url", srv.URL, "--dest", dest, "--expected-size", "11")
	require.NoError(t, err)
	assert.Contains(t, out, dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "model-bytes", string(data))
}

func TestModelURL(t *testing.T) {
	app := &cli.App{
		Flags: modelURLFlags(),
		Action: func(c *cli.Context) error {
			assert.Equal(t,
				"https://b.s3.r.amazonaws.com/models/entity_vector/entity_vector.model.bin",
				modelURL(c))
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"x", "--bucket", "b", "--region", "r"}))

	t.Setenv("MODEL_URL", "http://example.com/m.bin")
	app.Action = func(c *cli.Context) error {
		assert.Equal(t, "http://example.com/m.bin", modelURL(c))
		return nil
	}
	require.NoError(t, app.Run([]string{"x"}))
}
