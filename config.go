// SPDX-License-Identifier: MIT
package treestore

import (
	"github.com/sirupsen/logrus"
)

type (
	// Config defines configuration options for a [Store]'s operations.
	Config struct {
		// Logger for [Store] messages.
		//
		// Preferring a public field to allow for sharing.
		Logger logrus.FieldLogger
		Debug  bool

		// StrictParents makes [Validate] report parents missing from the source.
		StrictParents bool
	}

	// Option defines the [Store] & [Validate] functional option type.
	Option func(*Config)
)

var defConfig = DefConfig()

// DefConfig obtains the package's default [Config].
func DefConfig() *Config {
	return &Config{
		Logger: logrus.New(),
		Debug:  false,
	}
}

// WithConfig replaces the [Config] wholesale.
//
// Options following this one modify the supplied [Config].
func WithConfig(cfg *Config) Option {
	return func(c *Config) { *c = *cfg }
}

// WithLogger configures the logger option.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithDebug configures the debug option.
func WithDebug(debug bool) Option {
	return func(c *Config) { c.Debug = debug }
}

// WithStrictParents configures the strict parents option.
func WithStrictParents(strict bool) Option {
	return func(c *Config) { c.StrictParents = strict }
}

// newConfig applies options over a copy of the package default.
func newConfig(options ...Option) *Config {
	cfg := *defConfig
	for _, opt := range options {
		opt(&cfg)
	}

	// Populate missing entries with defaults.
	if cfg.Logger == nil {
		cfg.Logger = defConfig.Logger
	}

	return &cfg
}
