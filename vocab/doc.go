// Package vocab builds vector vocabularies for the association engine.
//
// Importer copies a word2vec model into a vector repository. Builder embeds
// a word list through an ai.Embedder. Both work in batches, normalize every
// vector to unit length so cosine similarity reduces to a dot product, and
// report progress. Embedding batches are retried with exponential backoff.
package vocab
