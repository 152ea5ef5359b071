// Package matcher implements the sentence-pair matchers: BiLSTM, LSTM,
// Match-SRNN and Text2Image.
//
// Every matcher maps two batches of token embeddings to a batch of class
// scores and owns its learned parameters for its whole lifetime. Forward
// never mutates parameters; gradients are taken by running Forward on an
// autodiff backend and handing the result to autodiff.Backward.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	m, err := matcher.New(matcher.KindMatchSRNN, config.Default(), backend)
//	scores, err := m.Forward(seq1, seq2)
package matcher

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"strings"

	"github.com/unixpickle/essentials"

	"github.com/born-ml/textmatch/internal/backend/cpu"
	"github.com/born-ml/textmatch/internal/config"
	"github.com/born-ml/textmatch/internal/nn"
	"github.com/born-ml/textmatch/internal/similarity"
	"github.com/born-ml/textmatch/internal/tensor"
)

var (
	// ErrUnknownKind is returned by ParseKind and New for an unrecognised model name.
	ErrUnknownKind = errors.New("matcher: unknown kind")

	// ErrEmptySequence is returned by Match-SRNN when either sequence has no
	// tokens, since the grid recurrence has no cell to read out.
	ErrEmptySequence = errors.New("matcher: empty sequence")
)

// Matcher scores sentence pairs.
type Matcher interface {
	// Forward maps two embedding batches to class scores. Dimension
	// mismatches are returned as *tensor.ShapeError (errors.Is
	// tensor.ErrShapeMismatch).
	Forward(seq1, seq2 *tensor.Tensor) (*tensor.Tensor, error)

	// Parameters returns every learned parameter.
	Parameters() []*nn.Parameter

	// SetTraining switches dropout on (true) or off (false, the default).
	SetTraining(training bool)

	// Name returns the model name.
	Name() string
}

// Kind selects a matcher.
type Kind int

// Available matchers.
const (
	KindBiLSTM Kind = iota
	KindLSTM
	KindMatchSRNN
	KindText2Image
)

var kindNames = map[Kind]string{
	KindBiLSTM:     "bilstm",
	KindLSTM:       "lstm",
	KindMatchSRNN:  "matchsrnn",
	KindText2Image: "text2image",
}

// String returns the canonical model name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every matcher in declaration order.
func Kinds() []Kind {
	return []Kind{KindBiLSTM, KindLSTM, KindMatchSRNN, KindText2Image}
}

// ParseKind maps a model name to a Kind. Matching ignores case, '-' and '_'.
func ParseKind(s string) (Kind, error) {
	norm := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "bilstm":
		return KindBiLSTM, nil
	case "lstm":
		return KindLSTM, nil
	case "matchsrnn", "srnn", "matchspatialrnn":
		return KindMatchSRNN, nil
	case "text2image", "cnn":
		return KindText2Image, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

type options struct {
	logger   *log.Logger
	provider similarity.Provider
}

// Option customises New.
type Option func(*options)

// WithLogger sets the logger used for construction messages. The default
// discards everything.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProvider sets the similarity provider used by Text2Image. The default
// is a cosine MatrixProvider sized to max_sqe_len.
func WithProvider(p similarity.Provider) Option {
	return func(o *options) { o.provider = p }
}

func newOptions(cfg config.Config, opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}
	if o.provider == nil {
		o.provider = similarity.NewMatrixProvider(cfg.MaxSeqLen, similarity.Cosine)
	}
	return o
}

// New builds the matcher of the given kind. A nil backend means the CPU
// backend.
func New(kind Kind, cfg config.Config, backend tensor.Backend, opts ...Option) (Matcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	device, err := cfg.DeviceKind()
	if err != nil {
		return nil, err
	}
	if device != tensor.CPU {
		return nil, fmt.Errorf("%w: %s", tensor.ErrDeviceUnavailable, device)
	}
	if backend == nil {
		backend = cpu.New()
	}
	o := newOptions(cfg, opts)

	var m Matcher
	switch kind {
	case KindBiLSTM:
		m = NewBiLSTM(cfg, backend, o.logger)
	case KindLSTM:
		m = NewLSTM(cfg, backend, o.logger)
	case KindMatchSRNN:
		m = NewMatchSRNN(cfg, backend, o.logger)
	case KindText2Image:
		m, err = NewText2Image(cfg, backend, o.provider, o.logger)
		if err != nil {
			return nil, essentials.AddCtx("new "+kind.String(), err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	o.logger.Printf("%s: %d parameters", m.Name(), nn.CountParameters(m.Parameters()))
	return m, nil
}

func newRNG(cfg config.Config) *rand.Rand {
	return rand.New(rand.NewSource(cfg.Seed))
}

func loggerOrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return l
}

// checkPair validates two [batch, len, emb] inputs and returns the batch size.
func checkPair(op string, seq1, seq2 *tensor.Tensor, emb int) int {
	s1, s2 := seq1.Shape(), seq2.Shape()
	if len(s1) != 3 || len(s2) != 3 {
		panic(tensor.NewShapeError(op, "expected [batch, len, %d] inputs, got %v and %v", emb, s1, s2))
	}
	if s1[2] != emb || s2[2] != emb {
		panic(tensor.NewShapeError(op, "embedding size must be %d, got %v and %v", emb, s1, s2))
	}
	if s1[0] != s2[0] {
		panic(tensor.NewShapeError(op, "batch sizes differ: %d vs %d", s1[0], s2[0]))
	}
	return s1[0]
}

// bind rebinds x to backend so that every op of the forward pass runs (and is
// recorded) there, whichever backend the caller created x on.
func bind(x *tensor.Tensor, backend tensor.Backend) *tensor.Tensor {
	if x.Backend() == backend {
		return x
	}
	return tensor.New(x.Raw(), backend)
}

// step returns time step t of a [batch, len, width] tensor as [batch, width].
func step(x *tensor.Tensor, t int) *tensor.Tensor {
	s := x.Shape()
	return x.Narrow(1, t, 1).Reshape(s[0], s[2])
}
