// Package fetch downloads model files over HTTP(S).
//
// Downloads are streamed into a temporary file beside the destination and
// renamed into place only after the transfer completes and, when an expected
// size is configured, the number of bytes written matches it. Failed attempts
// are retried with exponential backoff and leave no partial file behind.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/rensou/internal/retry"
)

const (
	// DefaultMaxAttempts is the number of download attempts before giving up.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the wait after the first failed attempt. It
	// doubles after each further failure.
	DefaultBaseDelay = time.Second

	// DefaultProgressInterval is how many bytes pass between progress logs.
	DefaultProgressInterval = 10 * 1024 * 1024

	// DefaultModelSize is the size of the published Japanese entity vector model.
	DefaultModelSize = 800000000

	// DefaultBucket and DefaultRegion locate the published model.
	DefaultBucket = "my-w2v-models-2024"
	DefaultRegion = "ap-northeast-1"
)

// ModelURL returns the public S3 URL of the entity vector model.
func ModelURL(bucket, region string) string {
	if bucket == "" {
		bucket = DefaultBucket
	}
	if region == "" {
		region = DefaultRegion
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/models/entity_vector/entity_vector.model.bin", bucket, region)
}

// Fetcher downloads files with retry.
type Fetcher struct {
	client           *http.Client
	maxAttempts      int
	baseDelay        time.Duration
	expectedSize     int64
	progressInterval int64
	logger           *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithHTTPClient sets the client used for requests.
// Default is a client with a 30 minute timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) error {
		if client == nil {
			return errors.New("http client is required")
		}
		f.client = client
		return nil
	}
}

// WithMaxAttempts sets how many times a download is tried.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidAttempts, n)
		}
		f.maxAttempts = n
		return nil
	}
}

// WithBaseDelay sets the first backoff delay.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) error {
		f.baseDelay = d
		return nil
	}
}

// WithExpectedSize enables the size check. Zero disables it.
func WithExpectedSize(size int64) Option {
	return func(f *Fetcher) error {
		f.expectedSize = size
		return nil
	}
}

// WithProgressInterval sets how many bytes pass between progress logs.
func WithProgressInterval(bytes int64) Option {
	return func(f *Fetcher) error {
		if bytes < 1 {
			bytes = DefaultProgressInterval
		}
		f.progressInterval = bytes
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// New creates a Fetcher.
func New(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:           &http.Client{Timeout: 30 * time.Minute},
		maxAttempts:      DefaultMaxAttempts,
		baseDelay:        DefaultBaseDelay,
		progressInterval: DefaultProgressInterval,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "fetch")
	return f, nil
}

// Fetch downloads url to dest and returns the number of bytes written.
// An existing dest is kept as is and reported with its current size.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) (int64, error) {
	if info, err := os.Stat(dest); err == nil {
		if info.IsDir() {
			return 0, fmt.Errorf("%w: %s is a directory", ErrDestination, dest)
		}
		f.logger.Info("model file already present", "path", dest, "size", humanize.Bytes(uint64(info.Size())))
		return info.Size(), nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDestination, err)
	}

	var n int64
	err := retry.Do(ctx, f.maxAttempts, f.baseDelay, func(attempt int) error {
		f.logger.Info("download started", "url", url, "attempt", attempt, "max_attempts", f.maxAttempts)
		written, err := f.download(ctx, url, dest)
		if err != nil {
			if ctx.Err() == nil {
				f.logger.Warn("download attempt failed", "attempt", attempt, "max_attempts", f.maxAttempts, "err", err)
			}
			return err
		}
		n = written
		return nil
	})
	switch {
	case err == nil:
		f.logger.Info("download complete", "path", dest, "size", humanize.Bytes(uint64(n)))
		return n, nil
	case ctx.Err() != nil:
		return 0, ctx.Err()
	}

	f.logger.Error("download failed", "url", url, "attempts", f.maxAttempts)
	return 0, fmt.Errorf("%w after %d attempts: %w", ErrDownloadFailed, f.maxAttempts, err)
}

// download performs one attempt. The temporary file is removed unless it was
// renamed to dest.
func (f *Fetcher) download(ctx context.Context, url, dest string) (written int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	if f.expectedSize > 0 && resp.ContentLength >= 0 && resp.ContentLength != f.expectedSize {
		f.logger.Warn("content length differs from expected size",
			"content_length", resp.ContentLength, "expected", f.expectedSize)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDestination, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	pw := &progressWriter{
		w:        tmp,
		total:    resp.ContentLength,
		interval: f.progressInterval,
		logger:   f.logger,
	}
	written, err = io.Copy(pw, resp.Body)
	if err != nil {
		return 0, err
	}
	if f.expectedSize > 0 && written != f.expectedSize {
		return 0, fmt.Errorf("%w: wrote %d bytes, expected %d", ErrSizeMismatch, written, f.expectedSize)
	}
	if err = tmp.Close(); err != nil {
		return 0, err
	}
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDestination, err)
	}
	return written, nil
}

type progressWriter struct {
	w        io.Writer
	total    int64
	written  int64
	next     int64
	interval int64
	logger   *slog.Logger
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.next == 0 {
		p.next = p.interval
	}
	for p.written >= p.next {
		if p.total > 0 {
			p.logger.Info("download progress",
				"percent", fmt.Sprintf("%.1f", float64(p.written)/float64(p.total)*100),
				"downloaded", humanize.Bytes(uint64(p.written)),
				"total", humanize.Bytes(uint64(p.total)))
		} else {
			p.logger.Info("download progress", "downloaded", humanize.Bytes(uint64(p.written)))
		}
		p.next += p.interval
	}
	return n, err
}

// Locate returns the first candidate path that exists as a regular file.
func Locate(candidates ...string) (string, bool) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// DefaultCandidates lists where a downloaded or hand-placed model is looked for.
var DefaultCandidates = []string{
	"models/entity_vector.model.bin",
	"entity_vector/entity_vector.model.bin",
	"entity_vector/entity_vector.model.txt",
	"models/entity_vector/model.bin",
	"models/entity_vector/model.txt",
}
