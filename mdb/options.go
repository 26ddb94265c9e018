package mdb

import "go.uber.org/zap"

// Option configures a Binding.
type Option func(*config)

type config struct {
	logger *zap.Logger
	lint   bool
}

func defaultConfig() config {
	return config{logger: zap.NewNop()}
}

// WithLogger sets the logger for lint warnings, engine failures and handle
// bookkeeping. Corruption is reported through logger.Fatal.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLint enables advisory warnings for calls with more arguments than an
// operation accepts. Excess arguments are ignored either way.
func WithLint(enabled bool) Option {
	return func(c *config) {
		c.lint = enabled
	}
}
