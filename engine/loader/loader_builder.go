package loader

import "go.uber.org/zap"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers is an option builder that sets the number of worker goroutines used for asynchronous loads.
// Values below 1 are ignored.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithPoster is an option builder that sets where load completions are delivered.
// Without one, completions run on the worker goroutine.
//
// Parameters:
//   - p: the poster, normally the engine
//
// Returns:
//   - LoaderBuilderOption: a function that applies the poster option to a loader
func WithPoster(p Poster) LoaderBuilderOption {
	return func(l *loader) {
		l.poster = p
	}
}

// WithRoot is an option builder that sets the directory relative asset paths resolve against.
//
// Parameters:
//   - dir: the asset root
//
// Returns:
//   - LoaderBuilderOption: a function that applies the root option to a loader
func WithRoot(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.root = dir
	}
}

// WithLogger is an option builder that sets the Loader's logger.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(log *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if log != nil {
			l.log = log
		}
	}
}
