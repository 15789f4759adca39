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

package vocab

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/storage"
	"github.com/poiesic/rensou/word2vec"
)

// Importer copies a word2vec model file into a vector repository.
type Importer struct {
	repo     storage.VectorRepository
	config   *Config
	progress io.Writer
}

// NewImporter creates a new importer.
// progress: where to write progress output (typically os.Stderr)
func NewImporter(repo storage.VectorRepository, config *Config, progress io.Writer) *Importer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Importer{
		repo:     repo,
		config:   config,
		progress: progress,
	}
}

// Run imports every vector in the model at path and returns how many were
// read. Vectors are normalized before they are stored.
func (im *Importer) Run(ctx context.Context, path string) (int, error) {
	if err := im.config.validate(); err != nil {
		return 0, err
	}

	fmt.Fprintf(im.progress, "Importing %s (%s format, batch size: %d)\n",
		path, word2vec.DetectFormat(path), im.config.BatchSize)

	tracker := NewProgressTracker(im.progress, 0, im.config.ReportInterval)
	tracker.Start()

	batch := make([]*core.WordVector, 0, im.config.BatchSize)
	imported := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := im.repo.PutVectors(ctx, batch...); err != nil {
			return fmt.Errorf("failed to store batch: %w", err)
		}
		imported += len(batch)
		tracker.Update(imported)
		batch = batch[:0]
		return nil
	}

	header, err := word2vec.ReadFile(ctx, path, func(word string, vec []float32) error {
		batch = append(batch, &core.WordVector{Word: word, Vector: NormalizeVector(vec)})
		if len(batch) >= im.config.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return imported, err
	}
	if err := flush(); err != nil {
		return imported, err
	}

	tracker.SetTotal(imported)
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(im.progress, "Import complete. Stored %d of %d declared vectors (dimension %d) in %v\n",
		imported, header.Words, header.Dimension, elapsed.Round(time.Millisecond))
	return imported, nil
}
