package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrLoaderClosed is delivered for requests made after Close.
	ErrLoaderClosed = errors.New("loader closed")
	// ErrUnsupportedKind is returned for paths or kinds no backend can read.
	ErrUnsupportedKind = errors.New("unsupported asset kind")
	// ErrMalformedAsset is returned when importing an asset panicked.
	ErrMalformedAsset = errors.New("malformed asset")
	// ErrEmptyFragment reports a completion that carries neither a scene root nor an error.
	ErrEmptyFragment = errors.New("load produced no scene root")
)

// Request names one asset to load.
type Request struct {
	Path string
	Kind Kind
}

// Result is the outcome of an asynchronous Load. Exactly one of Fragment.Root and Err is set.
type Result struct {
	RequestID string
	Request   Request
	Fragment  scene.Fragment
	Err       error
}

// Failure returns the error a completion is to be treated as: Err if set, otherwise
// ErrEmptyFragment when the fragment has no root.
func (r Result) Failure() error {
	if r.Err != nil {
		return r.Err
	}
	if r.Fragment.Root == nil {
		return ErrEmptyFragment
	}
	return nil
}

// Poster runs a function on the thread that owns scene state.
// The engine's frame loop satisfies it; completions never run on a worker goroutine.
type Poster interface {
	Post(fn func())
}

// PosterFunc adapts a function to the Poster interface.
type PosterFunc func(fn func())

// Post calls p(fn).
func (p PosterFunc) Post(fn func()) { p(fn) }

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	cache map[uint64]*template

	backends map[Kind]loaderBackend

	root    string
	workers int
	pool    worker.DynamicWorkerPool
	poster  Poster
	log     *zap.Logger

	taskID   atomic.Int64
	inflight sync.WaitGroup
	closed   atomic.Bool
}

// Loader imports model assets off the frame thread and hands back scene fragments.
// Parsed assets are cached; every load still yields fresh resources owned by the caller.
type Loader interface {
	// Load starts an asynchronous load on the worker pool. done is invoked exactly once
	// through the configured Poster, never on a worker goroutine.
	//
	// Parameters:
	//   - req: the asset to load
	//   - done: completion callback receiving the fragment or the error
	//
	// Returns:
	//   - string: the request id, also carried by the Result
	Load(req Request, done func(Result)) string

	// LoadSync imports an asset on the calling goroutine.
	//
	// Parameters:
	//   - req: the asset to load
	//
	// Returns:
	//   - scene.Fragment: a fresh fragment
	//   - error: error if loading fails
	LoadSync(req Request) (scene.Fragment, error)

	// Warm parses a batch of assets into the cache concurrently without instantiating them.
	//
	// Parameters:
	//   - ctx: cancels outstanding work
	//   - reqs: assets to parse
	//
	// Returns:
	//   - error: the first failure, if any
	Warm(ctx context.Context, reqs []Request) error

	// Cached reports whether a request's template is already parsed.
	//
	// Parameters:
	//   - req: the asset to check
	//
	// Returns:
	//   - bool: true if a Load would not touch the filesystem
	Cached(req Request) bool

	// Close rejects new requests and waits for in-flight loads to finish.
	// Completions of in-flight loads are still posted.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF and primitive backends registered.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache: make(map[uint64]*template),
		backends: map[Kind]loaderBackend{
			KindGLTF:      newGLTFLoaderBackend(),
			KindGLB:       newGLTFLoaderBackend(),
			KindPrimitive: newPrimitiveLoaderBackend(),
		},
		workers: 4,
		log:     zap.NewNop(),
	}
	for _, option := range options {
		option(l)
	}
	if l.poster == nil {
		l.poster = PosterFunc(func(fn func()) { fn() })
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) Load(req Request, done func(Result)) string {
	id := uuid.NewString()
	if l.closed.Load() {
		l.poster.Post(func() {
			done(Result{RequestID: id, Request: req, Err: ErrLoaderClosed})
		})
		return id
	}

	l.inflight.Add(1)
	l.pool.SubmitTask(worker.Task{
		ID:      int(l.taskID.Add(1)),
		Payload: req,
		Do: func() (_ any, err error) {
			defer l.inflight.Done()
			start := time.Now()
			var frag scene.Fragment
			// Post the completion even if the load panics.
			defer func() {
				if r := recover(); r != nil {
					frag, err = scene.Fragment{}, fmt.Errorf("load %s: %w: %v", req.Path, ErrMalformedAsset, r)
				}
				l.log.Debug("load finished",
					zap.String("request_id", id),
					zap.String("path", req.Path),
					zap.Duration("elapsed", time.Since(start)),
					zap.Error(err),
				)
				res := Result{RequestID: id, Request: req, Fragment: frag, Err: err}
				l.poster.Post(func() { done(res) })
			}()
			frag, err = l.LoadSync(req)
			return nil, err
		},
	})
	return id
}

func (l *loader) LoadSync(req Request) (scene.Fragment, error) {
	t, err := l.template(req)
	if err != nil {
		return scene.Fragment{}, fmt.Errorf("load %s: %w", req.Path, err)
	}
	return t.instantiate(), nil
}

func (l *loader) Warm(ctx context.Context, reqs []Request) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := l.template(req); err != nil {
				return fmt.Errorf("warm %s: %w", req.Path, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (l *loader) Cached(req Request) bool {
	kind, path, err := l.resolve(req)
	if err != nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.cache[cacheKey(kind, path)]
	return ok
}

func (l *loader) Close() {
	if l.closed.Swap(true) {
		return
	}
	l.inflight.Wait()
	l.pool.Stop()
}

// template returns the cached template for req, importing it on a miss. Concurrent misses on
// the same key may both import; the first to finish wins the cache slot.
func (l *loader) template(req Request) (*template, error) {
	kind, path, err := l.resolve(req)
	if err != nil {
		return nil, err
	}
	key := cacheKey(kind, path)

	l.mu.RLock()
	if t, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return t, nil
	}
	l.mu.RUnlock()

	backend, ok := l.backends[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	t, err := importTemplate(backend, path, kind)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if cached, ok := l.cache[key]; ok {
		t = cached
	} else {
		l.cache[key] = t
	}
	l.mu.Unlock()
	return t, nil
}

// importTemplate runs backend.Import, turning a panic on malformed input into ErrMalformedAsset.
func importTemplate(backend loaderBackend, path string, kind Kind) (t *template, err error) {
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("%w: %v", ErrMalformedAsset, r)
		}
	}()
	return backend.Import(path, kind)
}

// resolve fills in the request kind and prefixes relative file paths with the asset root.
func (l *loader) resolve(req Request) (Kind, string, error) {
	kind := req.Kind
	if kind == KindAuto {
		var err error
		if kind, err = KindFromPath(req.Path); err != nil {
			return kind, "", err
		}
	}
	path := req.Path
	if kind != KindPrimitive && l.root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.root, filepath.FromSlash(path))
	}
	if kind == KindPrimitive && !strings.HasPrefix(path, BuiltinPrefix) {
		path = BuiltinPrefix + path
	}
	return kind, path, nil
}

func cacheKey(kind Kind, path string) uint64 {
	return xxhash.Sum64String(kind.String() + "\x00" + path)
}
