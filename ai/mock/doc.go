// Package mock provides a test double for ai.Embedder.
//
// The mock runs without an external service and returns deterministic unit
// vectors derived from an FNV hash of the text. Behavior can be replaced
// through the function fields.
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("unavailable")
//	}
//	count := embedder.CallCount()
package mock
