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

// Package rensou builds word association trees. A Service owns an
// embedding oracle and the expansion engine driving it.
package rensou

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/rensou/core"
	"github.com/poiesic/rensou/expansion"
	"github.com/poiesic/rensou/oracle"
	"github.com/poiesic/rensou/oracle/vector"
	"github.com/poiesic/rensou/storage/badger"
)

// Version is reported by the API banner.
const Version = "1.0.0"

// Service expands keywords over an initialized oracle.
type Service struct {
	oracle  oracle.Oracle
	engine  *expansion.Engine
	closers []io.Closer
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	engineOpts []expansion.Option
	closers    []io.Closer
	logger     *slog.Logger
}

// WithEngineOptions passes options to the expansion engine.
func WithEngineOptions(opts ...expansion.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// WithCloser registers a resource closed by Service.Close after the oracle.
func WithCloser(c io.Closer) ServiceOption {
	return func(o *serviceOptions) {
		o.closers = append(o.closers, c)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService initializes o and builds an engine over it. If the oracle fails
// to initialize, the error is wrapped in core.ErrOracleUnavailable and no
// Service is returned.
func NewService(ctx context.Context, o oracle.Oracle, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger.With("component", "service")

	if o == nil {
		closeAll(logger, options.closers)
		return nil, fmt.Errorf("%w: %w", core.ErrOracleUnavailable, expansion.ErrOracleRequired)
	}
	if err := o.Initialize(ctx); err != nil {
		logger.Error("oracle failed to initialize", "err", err)
		closeAll(logger, options.closers)
		return nil, fmt.Errorf("%w: %w", core.ErrOracleUnavailable, err)
	}

	engineOpts := append([]expansion.Option{expansion.WithLogger(options.logger)}, options.engineOpts...)
	engine, err := expansion.New(o, engineOpts...)
	if err != nil {
		o.Close()
		closeAll(logger, options.closers)
		return nil, err
	}

	info := o.Info()
	logger.Info("service ready",
		"model_type", info.ModelType,
		"vocabulary", info.VocabularySize,
		"dimension", info.VectorDimension)

	return &Service{
		oracle:  o,
		engine:  engine,
		closers: options.closers,
		logger:  logger,
	}, nil
}

// OpenService serves the vectors persisted in the store at dbPath.
// The store is closed with the Service.
func OpenService(ctx context.Context, dbPath string, opts ...ServiceOption) (*Service, error) {
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, err
	}
	repo, err := badger.NewVectorRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	o, err := vector.New(vector.Repository(repo), vector.WithModelType("word2vec_store"))
	if err != nil {
		backend.Close()
		return nil, err
	}
	opts = append(opts, WithCloser(backend))
	return NewService(ctx, o, opts...)
}

// Expand builds the association tree for keyword. Parameters are validated
// before the oracle is consulted.
func (s *Service) Expand(ctx context.Context, keyword string, depth int, threshold float64) (*core.ExpansionResult, error) {
	if err := core.ValidateExpansion(keyword, depth, threshold); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrOracleUnavailable
	}
	return s.engine.Expand(ctx, keyword, depth, threshold)
}

// ModelInfo describes the oracle. It is zero after Close.
func (s *Service) ModelInfo() core.ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ModelInfo{}
	}
	return s.oracle.Info()
}

// Ready reports whether the service can expand keywords.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed && s.oracle.Ready()
}

// Close releases the engine, the oracle and registered closers.
// Calling Close more than once is a no-op.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.engine.Release()
	var firstErr error
	if err := s.oracle.Close(); err != nil {
		s.logger.Error("error closing oracle", "err", err)
		firstErr = err
	}
	if err := closeAll(s.logger, s.closers); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func closeAll(logger *slog.Logger, closers []io.Closer) error {
	var firstErr error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("error closing resource", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
