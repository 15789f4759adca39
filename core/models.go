package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted vocabulary entries.
// It is generated using content-based hashing of the word.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Candidate is a raw neighbour returned by an oracle, before cleaning and
// threshold filtering.
type Candidate struct {
	Word  string
	Score float32
}

// AssociationResult is a single associated word with its similarity score.
// Values are produced fresh per query and never mutated.
type AssociationResult struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
}

// GenerationNode holds the associations produced by expanding one parent word
// at one generation level. A level may contain several nodes, one per parent
// that yielded any children.
type GenerationNode struct {
	GenerationNumber int                 `json:"generation_number"`
	ParentWord       string              `json:"parent_word"`
	Results          []AssociationResult `json:"results"`
	Count            int                 `json:"count"`
}

// NewGenerationNode builds a node whose Count always matches its results.
// A nil results slice is replaced with an empty one so it serializes as [].
func NewGenerationNode(generation int, parent string, results []AssociationResult) GenerationNode {
	if results == nil {
		results = []AssociationResult{}
	}
	return GenerationNode{
		GenerationNumber: generation,
		ParentWord:       parent,
		Results:          results,
		Count:            len(results),
	}
}

// ExpansionResult is the complete output of one expansion request.
type ExpansionResult struct {
	SeedKeyword    string           `json:"seed_keyword"`
	RequestedDepth int              `json:"requested_depth"`
	Nodes          []GenerationNode `json:"nodes"`
	TotalCount     int              `json:"total_count"`
}

// Total recomputes the sum of node counts.
func (r *ExpansionResult) Total() int {
	total := 0
	for _, n := range r.Nodes {
		total += n.Count
	}
	return total
}

// ModelInfo describes the oracle backing the service.
type ModelInfo struct {
	VocabularySize  int    `json:"vocabulary_size"`
	VectorDimension int    `json:"vector_dimension"`
	ModelType       string `json:"model_type"`
}

// WordVector is a persisted embedding for a single vocabulary word.
type WordVector struct {
	Id     ID
	Word   string
	Vector []float32
}
