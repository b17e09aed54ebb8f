package internal

import "github.com/veritext/veritext/internal/grammar"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	engine grammar.Engine
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGrammarEngine overrides the built-in grammar engine, e.g. to plug in an
// external engine collaborator.
func WithGrammarEngine(e grammar.Engine) Option {
	return func(a *application) {
		a.engine = e
	}
}
