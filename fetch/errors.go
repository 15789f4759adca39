package fetch

import "errors"

var (
	// ErrDownloadFailed is returned when every attempt failed.
	ErrDownloadFailed = errors.New("download failed")

	// ErrUnexpectedStatus indicates a non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected http status")

	// ErrSizeMismatch indicates the bytes written differ from the expected size.
	ErrSizeMismatch = errors.New("downloaded size mismatch")

	// ErrDestination indicates the destination cannot be written.
	ErrDestination = errors.New("invalid destination")

	// ErrInvalidAttempts is returned for a non-positive attempt count.
	ErrInvalidAttempts = errors.New("max attempts must be positive")
)
