package engine

import "log/slog"

// Option configures a search.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	limit    int
	maxSteps int
	strict   bool
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for search diagnostics.
// Passing nil keeps the default, which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLimit stops the search after n embeddings. Reaching the limit is not
// an error. n <= 0 means no limit.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithMaxSteps bounds the number of main-loop iterations. Exceeding the
// bound aborts the search with a *StepsExceededError. n <= 0 means no bound.
func WithMaxSteps(n int) Option {
	return func(o *options) {
		o.maxSteps = n
	}
}

// WithStrictMotif rejects motifs whose edge order is not a connected growth
// order (see ValidateMotif).
func WithStrictMotif() Option {
	return func(o *options) {
		o.strict = true
	}
}
