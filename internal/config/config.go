// Package config holds the immutable hyper-parameters shared by every
// matcher constructor.
//
// A Config is a plain value: Default returns the stock settings, With...
// options and Load derive new values from it, and nothing in the module
// keeps a global copy.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/unixpickle/essentials"

	"github.com/born-ml/textmatch/internal/tensor"
)

// ErrInvalidConfig is returned by Validate (and everything that calls it)
// when a setting is out of range.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full set of hyper-parameters.
//
// Only the model-shape fields are read by the matchers. LearningRate is read
// by the optimizer; BatchSize, EpochNum, EnglishTag, EnglishSpanishRate and
// TrainTestRate are carried for the external data pipeline and training loop.
type Config struct {
	HiddenSize         int     `json:"hidden_size"`
	TargetSize         int     `json:"target_size"`
	DropoutRate        float64 `json:"dropout_rate"`
	LearningRate       float64 `json:"learning_rate"`
	BatchSize          int     `json:"batch_size"`
	EpochNum           int     `json:"epoch_num"`
	EnglishTag         int     `json:"english_tag"`
	EnglishSpanishRate float64 `json:"english_spanish_rate"`
	TrainTestRate      float64 `json:"train_test_rate"`
	Device             string  `json:"device"`
	MaxSeqLen          int     `json:"max_sqe_len"`
	ConvChannel        int     `json:"conv_channel"`
	ConvTarget         int     `json:"conv_target"`

	EmbeddingSize int `json:"embedding_size"`

	// Match-SRNN interaction width and grid hidden width.
	SRNNDimension int `json:"srnn_dimension"`
	SRNNHiddenDim int `json:"srnn_hidden_dim"`

	// IndependentChannelKernels gives Text2Image one learned kernel per
	// channel. When false, kernel 0 is applied to every channel.
	IndependentChannelKernels bool `json:"independent_channel_kernels"`

	// Seed drives parameter initialization and dropout masks.
	Seed int64 `json:"seed"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		HiddenSize:         200,
		TargetSize:         2,
		DropoutRate:        0.1,
		LearningRate:       0.01,
		BatchSize:          16,
		EpochNum:           100,
		EnglishTag:         1,
		EnglishSpanishRate: 1,
		TrainTestRate:      0.7,
		Device:             "cpu",
		MaxSeqLen:          56,
		ConvChannel:        3,
		ConvTarget:         18,
		EmbeddingSize:      300,
		SRNNDimension:      3,
		SRNNHiddenDim:      3,
		Seed:               1,
	}
}

// Option overrides one setting.
type Option func(*Config)

// New returns Default with the options applied, validated.
func New(opts ...Option) (Config, error) {
	return Default().With(opts...)
}

// With returns a copy of c with the options applied, validated.
func (c Config) With(opts ...Option) (Config, error) {
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads a JSON file whose keys override Default. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, essentials.AddCtx("load config", err)
	}
	defer f.Close()

	c := Default()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, essentials.AddCtx("load config "+path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return c, nil
}

// Save writes c as indented JSON.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return essentials.AddCtx("save config", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return essentials.AddCtx("save config", err)
	}
	return nil
}

// Validate checks every setting a model constructor or optimizer relies on.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"hidden_size", c.HiddenSize},
		{"target_size", c.TargetSize},
		{"batch_size", c.BatchSize},
		{"epoch_num", c.EpochNum},
		{"max_sqe_len", c.MaxSeqLen},
		{"conv_channel", c.ConvChannel},
		{"conv_target", c.ConvTarget},
		{"embedding_size", c.EmbeddingSize},
		{"srnn_dimension", c.SRNNDimension},
		{"srnn_hidden_dim", c.SRNNHiddenDim},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, p.name, p.value)
		}
	}
	if c.DropoutRate < 0 || c.DropoutRate >= 1 {
		return fmt.Errorf("%w: dropout_rate must be in [0, 1), got %v", ErrInvalidConfig, c.DropoutRate)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning_rate must be positive, got %v", ErrInvalidConfig, c.LearningRate)
	}
	if c.TrainTestRate <= 0 || c.TrainTestRate > 1 {
		return fmt.Errorf("%w: train_test_rate must be in (0, 1], got %v", ErrInvalidConfig, c.TrainTestRate)
	}
	if c.EnglishSpanishRate < 0 {
		return fmt.Errorf("%w: english_spanish_rate must be non-negative, got %v", ErrInvalidConfig, c.EnglishSpanishRate)
	}
	if _, err := tensor.ParseDevice(c.Device); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DeviceKind resolves the device selector.
func (c Config) DeviceKind() (tensor.Device, error) {
	return tensor.ParseDevice(c.Device)
}

// WithHiddenSize sets hidden_size.
func WithHiddenSize(n int) Option { return func(c *Config) { c.HiddenSize = n } }

// WithTargetSize sets target_size.
func WithTargetSize(n int) Option { return func(c *Config) { c.TargetSize = n } }

// WithDropoutRate sets dropout_rate.
func WithDropoutRate(p float64) Option { return func(c *Config) { c.DropoutRate = p } }

// WithLearningRate sets learning_rate.
func WithLearningRate(lr float64) Option { return func(c *Config) { c.LearningRate = lr } }

// WithBatchSize sets batch_size.
func WithBatchSize(n int) Option { return func(c *Config) { c.BatchSize = n } }

// WithEpochNum sets epoch_num.
func WithEpochNum(n int) Option { return func(c *Config) { c.EpochNum = n } }

// WithEnglishTag sets english_tag.
func WithEnglishTag(tag int) Option { return func(c *Config) { c.EnglishTag = tag } }

// WithEnglishSpanishRate sets english_spanish_rate.
func WithEnglishSpanishRate(r float64) Option { return func(c *Config) { c.EnglishSpanishRate = r } }

// WithTrainTestRate sets train_test_rate.
func WithTrainTestRate(r float64) Option { return func(c *Config) { c.TrainTestRate = r } }

// WithDevice sets the device selector.
func WithDevice(d string) Option { return func(c *Config) { c.Device = d } }

// WithMaxSeqLen sets max_sqe_len.
func WithMaxSeqLen(n int) Option { return func(c *Config) { c.MaxSeqLen = n } }

// WithConvChannel sets conv_channel.
func WithConvChannel(n int) Option { return func(c *Config) { c.ConvChannel = n } }

// WithConvTarget sets conv_target.
func WithConvTarget(n int) Option { return func(c *Config) { c.ConvTarget = n } }

// WithEmbeddingSize sets embedding_size.
func WithEmbeddingSize(n int) Option { return func(c *Config) { c.EmbeddingSize = n } }

// WithSRNN sets the Match-SRNN interaction and hidden widths.
func WithSRNN(dimension, hiddenDim int) Option {
	return func(c *Config) {
		c.SRNNDimension = dimension
		c.SRNNHiddenDim = hiddenDim
	}
}

// WithIndependentChannelKernels toggles one Text2Image kernel per channel.
func WithIndependentChannelKernels(on bool) Option {
	return func(c *Config) { c.IndependentChannelKernels = on }
}

// WithSeed sets the initialization seed.
func WithSeed(seed int64) Option { return func(c *Config) { c.Seed = seed } }
