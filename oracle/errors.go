package oracle

import "errors"

var (
	// ErrUnknownWord is returned by Nearest for words outside the vocabulary.
	ErrUnknownWord = errors.New("word not in vocabulary")

	// ErrNotInitialized is returned when an oracle is queried before
	// Initialize succeeded or after Close.
	ErrNotInitialized = errors.New("oracle not initialized")

	// ErrEmptyVocabulary is returned by Initialize when the model holds no words.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
)
