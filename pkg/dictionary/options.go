package dictionary

import (
	"io"
	"log/slog"

	"github.com/leapstack-labs/odmval/pkg/version"
)

// Option is a functional option for Build.
type Option func(*buildOptions)

type buildOptions struct {
	logger *slog.Logger
	latest version.Version
}

// WithLogger sets the logger used for compatibility warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLatest overrides the latest known dictionary version, which is the
// effective end of every active part.
func WithLatest(v version.Version) Option {
	return func(o *buildOptions) {
		o.latest = v
	}
}

func newBuildOptions(opts []Option) buildOptions {
	o := buildOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		latest: version.Latest(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
