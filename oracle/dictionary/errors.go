package dictionary

import "errors"

var (
	ErrUnknownProfile  = errors.New("unknown dictionary profile")
	ErrEmptyDictionary = errors.New("empty dictionary")
	ErrMalformed       = errors.New("malformed dictionary")
)
