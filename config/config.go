// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package config exposes the hyper-parameters shared by every matcher.
//
// Example:
//
//	cfg, err := config.New(
//	    config.WithHiddenSize(64),
//	    config.WithSeed(7),
//	)
package config

import (
	"github.com/born-ml/textmatch/internal/config"
)

// Config is the full set of hyper-parameters.
type Config = config.Config

// Option modifies a Config.
type Option = config.Option

// ErrInvalidConfig is returned when a setting is out of range.
var ErrInvalidConfig = config.ErrInvalidConfig

// Default returns the stock configuration.
func Default() Config { return config.Default() }

// New applies opts to Default and validates the result.
func New(opts ...Option) (Config, error) { return config.New(opts...) }

// Load reads a JSON configuration, filling missing fields from Default.
func Load(path string) (Config, error) { return config.Load(path) }

// Options.
var (
	WithHiddenSize                = config.WithHiddenSize
	WithTargetSize                = config.WithTargetSize
	WithDropoutRate               = config.WithDropoutRate
	WithLearningRate              = config.WithLearningRate
	WithBatchSize                 = config.WithBatchSize
	WithEpochNum                  = config.WithEpochNum
	WithEnglishTag                = config.WithEnglishTag
	WithEnglishSpanishRate        = config.WithEnglishSpanishRate
	WithTrainTestRate             = config.WithTrainTestRate
	WithDevice                    = config.WithDevice
	WithMaxSeqLen                 = config.WithMaxSeqLen
	WithConvChannel               = config.WithConvChannel
	WithConvTarget                = config.WithConvTarget
	WithEmbeddingSize             = config.WithEmbeddingSize
	WithSRNN                      = config.WithSRNN
	WithIndependentChannelKernels = config.WithIndependentChannelKernels
	WithSeed                      = config.WithSeed
)
