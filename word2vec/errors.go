package word2vec

import "errors"

// ErrMalformed is returned for input that is not a word2vec model.
var ErrMalformed = errors.New("malformed word2vec data")
