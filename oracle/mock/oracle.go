// Package mock provides a test double for oracle.Oracle.
//
// By default the mock serves a fixed neighbour table. Any method can be
// replaced through the function fields, and calls are counted so tests can
// assert how the engine used the oracle.
//
//	o := mock.NewOracle(map[string][]core.Candidate{
//	    "犬": {{Word: "猫", Score: 0.9}},
//	})
//	o.NearestFunc = func(ctx context.Context, word string, count int) ([]core.Candidate, error) {
//	    return nil, errors.New("unavailable")
//	}
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/oracle"
)

// Request records one Nearest call.
type Request struct {
	Word  string
	Count int
}

// Oracle is a test double for oracle.Oracle.
type Oracle struct {
	// InitializeFunc is called by Initialize if set.
	InitializeFunc func(ctx context.Context) error

	// NearestFunc is called by Nearest if set, after the initialization check.
	NearestFunc func(ctx context.Context, word string, count int) ([]core.Candidate, error)

	// ContainsFunc is called by Contains if set.
	ContainsFunc func(word string) bool

	// ModelType is reported by Info.
	ModelType string

	table map[string][]core.Candidate

	mu          sync.Mutex
	initialized bool
	requests    []Request
	containsN   int
}

var _ oracle.Oracle = (*Oracle)(nil)

// NewOracle creates a mock serving table. Every key is in the vocabulary;
// words that appear only as neighbours are not.
func NewOracle(table map[string][]core.Candidate) *Oracle {
	if table == nil {
		table = map[string][]core.Candidate{}
	}
	return &Oracle{table: table, ModelType: "mock"}
}

// NewReadyOracle creates a mock that is already initialized.
func NewReadyOracle(table map[string][]core.Candidate) *Oracle {
	o := NewOracle(table)
	o.initialized = true
	return o
}

func (o *Oracle) Initialize(ctx context.Context) error {
	if o.InitializeFunc != nil {
		if err := o.InitializeFunc(ctx); err != nil {
			return err
		}
	}
	o.mu.Lock()
	o.initialized = true
	o.mu.Unlock()
	return nil
}

func (o *Oracle) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.initialized
}

func (o *Oracle) Contains(word string) bool {
	o.mu.Lock()
	o.containsN++
	ready := o.initialized
	o.mu.Unlock()

	if !ready {
		return false
	}
	if o.ContainsFunc != nil {
		return o.ContainsFunc(word)
	}
	_, ok := o.table[word]
	return ok
}

func (o *Oracle) Nearest(ctx context.Context, word string, count int) ([]core.Candidate, error) {
	o.mu.Lock()
	o.requests = append(o.requests, Request{Word: word, Count: count})
	ready := o.initialized
	o.mu.Unlock()

	if !ready {
		return nil, oracle.ErrNotInitialized
	}
	if o.NearestFunc != nil {
		return o.NearestFunc(ctx, word, count)
	}
	if err := core.ValidateCount(count); err != nil {
		return nil, err
	}
	list, ok := o.table[word]
	if !ok {
		return nil, fmt.Errorf("%w: %q", oracle.ErrUnknownWord, word)
	}
	out := make([]core.Candidate, min(count, len(list)))
	copy(out, list)
	return out, nil
}

func (o *Oracle) Info() core.ModelInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.initialized {
		return core.ModelInfo{}
	}
	return core.ModelInfo{VocabularySize: len(o.table), ModelType: o.ModelType}
}

func (o *Oracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.initialized = false
	return nil
}

// Requests returns a copy of the recorded Nearest calls in arrival order.
func (o *Oracle) Requests() []Request {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Request(nil), o.requests...)
}

// ContainsCount returns how many times Contains was called.
func (o *Oracle) ContainsCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.containsN
}

// Reset clears recorded calls.
func (o *Oracle) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = nil
	o.containsN = 0
}
