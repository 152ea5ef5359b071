// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matcher provides the sentence-pair matchers: BiLSTM, LSTM,
// Match-SRNN and Text2Image.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/textmatch/backend/cpu"
//	    "github.com/born-ml/textmatch/config"
//	    "github.com/born-ml/textmatch/matcher"
//	)
//
//	func main() {
//	    m, err := matcher.New(matcher.KindBiLSTM, config.Default(), cpu.New())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    scores, err := m.Forward(seq1, seq2) // [batch, target_size]
//	}
//
// Inputs are [batch, len, embedding_size] tensors. Text2Image turns them into
// a similarity image through a Provider, which WithProvider replaces.
package matcher

import (
	"log"

	"github.com/born-ml/textmatch/config"
	"github.com/born-ml/textmatch/internal/matcher"
	"github.com/born-ml/textmatch/internal/similarity"
	"github.com/born-ml/textmatch/tensor"
)

// Matcher scores sentence pairs.
type Matcher = matcher.Matcher

// Kind selects a matcher.
type Kind = matcher.Kind

// Available matchers.
const (
	KindBiLSTM     = matcher.KindBiLSTM
	KindLSTM       = matcher.KindLSTM
	KindMatchSRNN  = matcher.KindMatchSRNN
	KindText2Image = matcher.KindText2Image
)

var (
	// ErrUnknownKind is returned for an unrecognised model name.
	ErrUnknownKind = matcher.ErrUnknownKind

	// ErrEmptySequence is returned by Match-SRNN for a sequence with no tokens.
	ErrEmptySequence = matcher.ErrEmptySequence
)

// Concrete matchers.
type (
	BiLSTM     = matcher.BiLSTM
	LSTM       = matcher.LSTM
	MatchSRNN  = matcher.MatchSRNN
	Text2Image = matcher.Text2Image
)

// Option customises New.
type Option = matcher.Option

// New builds the matcher of the given kind. A nil backend means the CPU
// backend.
func New(kind Kind, cfg config.Config, backend tensor.Backend, opts ...Option) (Matcher, error) {
	return matcher.New(kind, cfg, backend, opts...)
}

// ParseKind maps a model name ("bilstm", "match-srnn", ...) to a Kind.
func ParseKind(s string) (Kind, error) { return matcher.ParseKind(s) }

// Kinds lists every matcher.
func Kinds() []Kind { return matcher.Kinds() }

// WithLogger sets the logger used for construction messages.
func WithLogger(l *log.Logger) Option { return matcher.WithLogger(l) }

// WithProvider sets the similarity provider used by Text2Image.
func WithProvider(p Provider) Option { return matcher.WithProvider(p) }

// Similarity images

// Provider turns two embedding batches into [batch, 1, L, L] similarity images.
type Provider = similarity.Provider

// Metric scores one pair of embedding vectors.
type Metric = similarity.Metric

// Supported metrics.
const (
	Cosine = similarity.Cosine
	Dot    = similarity.Dot
)

// MatrixProvider scores every token pair onto a fixed size×size grid.
type MatrixProvider = similarity.MatrixProvider

// NewMatrixProvider creates a provider producing size×size images.
func NewMatrixProvider(size int, metric Metric) *MatrixProvider {
	return similarity.NewMatrixProvider(size, metric)
}
