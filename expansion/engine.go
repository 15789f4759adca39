package expansion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/oracle"
)

// Engine expands seed words into association trees.
// It is safe for concurrent use.
type Engine struct {
	oracle  oracle.Oracle
	sampler Sampler
	monitor Monitor
	pool    *ants.Pool
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPoolSize sets how many branches of one generation are retrieved
// concurrently. Default is runtime.NumCPU(), with a minimum of 1. A size
// of 1 retrieves branches one at a time.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if e.pool != nil {
			e.pool.Release()
		}
		e.pool = pool
		return nil
	}
}

// WithSampler replaces the random sampler.
func WithSampler(s Sampler) Option {
	return func(e *Engine) error {
		if s == nil {
			return ErrSamplerRequired
		}
		e.sampler = s
		return nil
	}
}

// WithMonitor sets a monitor to observe expansions.
func WithMonitor(m Monitor) Option {
	return func(e *Engine) error {
		if m == nil {
			m = &noopMonitor{}
		}
		e.monitor = m
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates an Engine over o. Retrieve and Expand fail with
// core.ErrOracleUnavailable until o is initialized.
func New(o oracle.Oracle, opts ...Option) (*Engine, error) {
	if o == nil {
		return nil, ErrOracleRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		oracle:  o,
		sampler: RandomSampler{},
		monitor: &noopMonitor{},
		pool:    pool,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}
	e.logger = e.logger.With("component", "expansion")
	return e, nil
}

// Release stops the worker pool. The engine must not be used afterwards.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

var bracketStripper = strings.NewReplacer("[", "", "]", "")

// Retrieve returns up to count associations of word scoring at least
// threshold. An unknown word yields an empty result. Oracle failures other
// than an uninitialized oracle are logged and also yield an empty result.
func (e *Engine) Retrieve(ctx context.Context, word string, count int, threshold float64) ([]core.AssociationResult, error) {
	if err := core.ValidateCount(count); err != nil {
		return nil, err
	}
	if err := core.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := e.checkReady(); err != nil {
		return nil, err
	}
	if !e.oracle.Contains(word) {
		return []core.AssociationResult{}, nil
	}

	candidates, err := e.oracle.Nearest(ctx, word, count*OverFetchFactor)
	if err != nil {
		switch {
		case errors.Is(err, oracle.ErrNotInitialized):
			return nil, fmt.Errorf("%w: %w", core.ErrOracleUnavailable, err)
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, oracle.ErrUnknownWord):
			return []core.AssociationResult{}, nil
		default:
			e.logger.Warn("oracle query failed, treating branch as empty", "word", word, "err", err)
			return []core.AssociationResult{}, nil
		}
	}

	pool := make([]core.AssociationResult, 0, len(candidates))
	for _, c := range candidates {
		similarity := widen(c.Score)
		if similarity < threshold {
			continue
		}
		cleaned := bracketStripper.Replace(c.Word)
		if cleaned == "" {
			continue
		}
		pool = append(pool, core.AssociationResult{Word: cleaned, Similarity: similarity})
	}

	if len(pool) <= count {
		return pool, nil
	}
	return e.sampler.Sample(pool, count), nil
}

// widen converts a float32 score to the float64 with the same shortest
// decimal form, so 0.9 stays 0.9 rather than 0.8999999761581421.
func widen(score float32) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(float64(score), 'g', -1, 32), 64)
	return v
}

// Expand builds the association tree for keyword down to generation depth.
func (e *Engine) Expand(ctx context.Context, keyword string, depth int, threshold float64) (result *core.ExpansionResult, err error) {
	if err := core.ValidateExpansion(keyword, depth, threshold); err != nil {
		return nil, err
	}
	if e.pool.IsClosed() {
		return nil, ErrEngineReleased
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	e.monitor.Start(keyword, depth, threshold)
	defer func() {
		e.monitor.Finish(result, err, time.Since(start))
	}()

	if err := e.checkReady(); err != nil {
		return nil, err
	}
	if !e.oracle.Contains(keyword) {
		return nil, fmt.Errorf("%w: %q", core.ErrKeywordNotFound, keyword)
	}

	result = &core.ExpansionResult{
		SeedKeyword:    keyword,
		RequestedDepth: depth,
		Nodes:          []core.GenerationNode{},
	}

	seed, err := e.Retrieve(ctx, keyword, SeedFanOut, threshold)
	if err != nil {
		return nil, err
	}
	e.emit(result, core.NewGenerationNode(FirstGeneration, keyword, seed))
	frontier := words(seed)

	for generation := FirstGeneration + 1; generation <= depth && len(frontier) > 0; generation++ {
		branches, err := e.retrieveAll(ctx, frontier, threshold)
		if err != nil {
			return nil, err
		}

		var next []string
		for i, parent := range frontier {
			if len(branches[i]) == 0 {
				e.monitor.BranchEmpty(generation, parent)
				continue
			}
			e.emit(result, core.NewGenerationNode(generation, parent, branches[i]))
			next = append(next, words(branches[i])...)
		}
		frontier = next
	}

	result.TotalCount = result.Total()
	e.logger.Debug("expansion complete",
		"keyword", keyword,
		"depth", depth,
		"nodes", len(result.Nodes),
		"total", result.TotalCount,
		"elapsed", time.Since(start))
	return result, nil
}

// checkReady keeps an uninitialized oracle from reading as an empty
// vocabulary.
func (e *Engine) checkReady() error {
	if !e.oracle.Ready() {
		return fmt.Errorf("%w: %w", core.ErrOracleUnavailable, oracle.ErrNotInitialized)
	}
	return nil
}

func (e *Engine) emit(result *core.ExpansionResult, node core.GenerationNode) {
	result.Nodes = append(result.Nodes, node)
	e.monitor.NodeEmitted(node)
}

// retrieveAll runs Retrieve for every parent on the pool. branches[i]
// belongs to parents[i].
func (e *Engine) retrieveAll(ctx context.Context, parents []string, threshold float64) ([][]core.AssociationResult, error) {
	branches := make([][]core.AssociationResult, len(parents))
	errs := make([]error, len(parents))

	var wg sync.WaitGroup
	for i, parent := range parents {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			branches[i], errs[i] = e.Retrieve(ctx, parent, BranchFanOut, threshold)
		})
		if submitErr != nil {
			wg.Done()
			wg.Wait()
			if errors.Is(submitErr, ants.ErrPoolClosed) {
				return nil, ErrEngineReleased
			}
			return nil, submitErr
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return branches, nil
}

func words(results []core.AssociationResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Word
	}
	return out
}
