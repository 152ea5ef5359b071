// Package similarity builds the token-pair similarity images consumed by the
// Text2Image matcher.
package similarity

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/textmatch/internal/parallel"
	"github.com/born-ml/textmatch/internal/tensor"
)

// Provider turns two batches of embedding sequences into a batch of
// single-channel similarity images.
type Provider interface {
	// ComputeSimilarity returns a [batch, 1, L, L] tensor and the batch size.
	ComputeSimilarity(seq1, seq2 *tensor.Tensor) (*tensor.Tensor, int, error)
}

// Metric scores one pair of embedding vectors.
type Metric int

// Supported metrics.
const (
	Cosine Metric = iota
	Dot
)

// String returns the metric name.
func (m Metric) String() string {
	switch m {
	case Cosine:
		return "cosine"
	case Dot:
		return "dot"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// MatrixProvider scores every (token of seq1, token of seq2) pair and lays the
// scores out on a fixed L×L grid. Rows past len(seq1) and columns past
// len(seq2) are zero; tokens past L are dropped.
type MatrixProvider struct {
	size     int
	metric   Metric
	parallel parallel.Config
}

// NewMatrixProvider creates a provider producing size×size images.
func NewMatrixProvider(size int, metric Metric) *MatrixProvider {
	if size <= 0 {
		panic(fmt.Sprintf("similarity: invalid size %d", size))
	}
	return &MatrixProvider{size: size, metric: metric, parallel: parallel.DefaultConfig()}
}

// WithParallel returns p scoring rows with the given worker configuration.
func (p *MatrixProvider) WithParallel(cfg parallel.Config) *MatrixProvider {
	c := *p
	c.parallel = cfg
	return &c
}

// Size returns the side of the produced images.
func (p *MatrixProvider) Size() int {
	return p.size
}

// ComputeSimilarity accepts [batch, len, emb] sequences (or [len, emb] for a
// single pair) and returns a [batch, 1, size, size] tensor on the backend of
// seq1. The result is a constant: no gradient flows back into the inputs.
func (p *MatrixProvider) ComputeSimilarity(seq1, seq2 *tensor.Tensor) (*tensor.Tensor, int, error) {
	s1, s2 := batched(seq1.Shape()), batched(seq2.Shape())
	if s1 == nil || s2 == nil {
		return nil, 0, tensor.NewShapeError("similarity", "expected [batch, len, emb] inputs, got %v and %v", seq1.Shape(), seq2.Shape())
	}
	if s1[0] != s2[0] || s1[2] != s2[2] {
		return nil, 0, tensor.NewShapeError("similarity", "batch/embedding mismatch: %v vs %v", seq1.Shape(), seq2.Shape())
	}
	batch, emb := s1[0], s1[2]
	len1, len2 := min(s1[1], p.size), min(s2[1], p.size)

	a, b := seq1.Data(), seq2.Data()
	out := make([]float64, batch*p.size*p.size)
	parallel.ForBatch(batch, len1, len2*emb, func(n, i int) {
		u := a[(n*s1[1]+i)*emb : (n*s1[1]+i+1)*emb]
		for j := 0; j < len2; j++ {
			v := b[(n*s2[1]+j)*emb : (n*s2[1]+j+1)*emb]
			out[(n*p.size+i)*p.size+j] = p.score(u, v)
		}
	}, p.parallel)

	img, err := tensor.FromSlice(out, tensor.Shape{batch, 1, p.size, p.size}, seq1.Backend())
	if err != nil {
		return nil, 0, err
	}
	return img, batch, nil
}

func (p *MatrixProvider) score(u, v []float64) float64 {
	dot := floats.Dot(u, v)
	if p.metric == Dot {
		return dot
	}
	norm := floats.Norm(u, 2) * floats.Norm(v, 2)
	if norm == 0 {
		return 0
	}
	return dot / norm
}

// batched returns the shape as [batch, len, emb], or nil if it is neither 2D
// nor 3D.
func batched(s tensor.Shape) tensor.Shape {
	switch len(s) {
	case 2:
		return tensor.Shape{1, s[0], s[1]}
	case 3:
		return s
	default:
		return nil
	}
}
