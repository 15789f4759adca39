// Package dictionary implements oracle.Oracle over precomputed association
// lists. Scores are not measured; they come from a Profile applied to each
// word's list position.
package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/oracle"
)

// Dimension is the vector dimension reported by Info. Dictionaries have no
// vectors; the value matches the word2vec models they stand in for.
const Dimension = 200

// Loader produces the dictionary on Initialize.
type Loader func() (Dictionary, error)

// File returns a Loader reading path.
func File(path string) Loader {
	return func() (Dictionary, error) { return Load(path) }
}

// Static returns a Loader for an in-memory dictionary.
func Static(d Dictionary) Loader {
	return func() (Dictionary, error) { return d, nil }
}

// Oracle answers queries from a Dictionary.
type Oracle struct {
	loader  Loader
	profile Profile
	logger  *slog.Logger

	mu   sync.RWMutex
	dict Dictionary
}

var _ oracle.Oracle = (*Oracle)(nil)

// Option configures an Oracle.
type Option func(*Oracle) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Oracle) error {
		o.logger = logger
		return nil
	}
}

// WithProfile sets the score profile. Default Light.
func WithProfile(p Profile) Option {
	return func(o *Oracle) error {
		if _, err := ParseProfile(string(p)); err != nil {
			return err
		}
		o.profile = p
		return nil
	}
}

// New creates an Oracle. A nil loader serves the built-in sample.
func New(loader Loader, opts ...Option) (*Oracle, error) {
	if loader == nil {
		loader = Static(Sample())
	}
	o := &Oracle{
		loader:  loader,
		profile: Light,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", "dictionary-oracle")
	return o, nil
}

// Initialize loads the dictionary.
func (o *Oracle) Initialize(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dict != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d, err := o.loader()
	if err != nil {
		o.logger.Error("failed to load dictionary", "err", err)
		return err
	}
	if len(d) == 0 {
		return fmt.Errorf("%w: dictionary has no entries", oracle.ErrEmptyVocabulary)
	}
	o.dict = d
	o.logger.Info("dictionary loaded", "profile", o.profile, "vocabulary", len(d))
	return nil
}

// Ready reports whether the dictionary is loaded.
func (o *Oracle) Ready() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.dict != nil
}

// Contains reports whether word is a headword.
func (o *Oracle) Contains(word string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.dict[word]
	return ok
}

// Nearest returns the first count associations of word with profile scores.
func (o *Oracle) Nearest(ctx context.Context, word string, count int) ([]core.Candidate, error) {
	if err := core.ValidateCount(count); err != nil {
		return nil, err
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.dict == nil {
		return nil, oracle.ErrNotInitialized
	}
	list, ok := o.dict[word]
	if !ok {
		return nil, fmt.Errorf("%w: %q", oracle.ErrUnknownWord, word)
	}

	n := min(count, len(list))
	out := make([]core.Candidate, n)
	for i := 0; i < n; i++ {
		out[i] = core.Candidate{Word: list[i], Score: o.profile.Score(i)}
	}
	return out, nil
}

// Info reports the headword count, the fixed Dimension and
// "dictionary_<profile>".
func (o *Oracle) Info() core.ModelInfo {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.dict == nil {
		return core.ModelInfo{}
	}
	return core.ModelInfo{
		VocabularySize:  len(o.dict),
		VectorDimension: Dimension,
		ModelType:       "dictionary_" + string(o.profile),
	}
}

// Close drops the dictionary.
func (o *Oracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dict = nil
	return nil
}
