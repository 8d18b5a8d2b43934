package similarity

import (
	"context"
	"fmt"
	"math"
)

// VectorSource produces one embedding per input text.
type VectorSource interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Analyzer computes pairwise cosine similarity over the embeddings of a
// batch's texts. The returned matrix is symmetric with ones on the diagonal.
type Analyzer struct {
	source VectorSource
}

func NewAnalyzer(source VectorSource) *Analyzer {
	return &Analyzer{source: source}
}

func (a *Analyzer) PairwiseSimilarity(ctx context.Context, texts []string) ([][]float64, error) {
	matrix := make([][]float64, len(texts))
	for i := range matrix {
		matrix[i] = make([]float64, len(texts))
		matrix[i][i] = 1
	}
	if len(texts) < 2 {
		return matrix, nil
	}

	vectors, err := a.source.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}

	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			score := cosine(vectors[i], vectors[j])
			matrix[i][j] = score
			matrix[j][i] = score
		}
	}
	return matrix, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
