package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrDuplicateScene is returned by Register when the name is already taken.
	ErrDuplicateScene = errors.New("scene already registered")

	// ErrUnknownScene is returned by Activate for a name that was never registered.
	ErrUnknownScene = errors.New("unknown scene")

	// ErrSceneDisposed is returned by Activate when the target was disposed and cannot be rebuilt.
	ErrSceneDisposed = errors.New("scene disposed")
)

// RebuildFunc produces a fresh descriptor for a scene whose previous instance was disposed.
type RebuildFunc func(name string) (Descriptor, error)

// Registry maps scene names to descriptors and tracks the single active scene.
// Switching scenes disposes the outgoing one before the incoming one becomes active.
// Inactive scenes that were never shown keep their resources.
// Not safe for concurrent use; the frame loop is its only caller.
type Registry interface {
	// Register adds desc under desc.Name(). The first registered scene becomes active.
	//
	// Parameters:
	//   - desc: the scene to add
	//
	// Returns:
	//   - error: ErrDuplicateScene if the name is taken
	Register(desc Descriptor) error

	// Activate makes the named scene active, disposing the current one first.
	// Activating the scene that is already active does nothing.
	//
	// Parameters:
	//   - name: the scene to activate
	//
	// Returns:
	//   - error: ErrUnknownScene if not registered, ErrSceneDisposed if disposed and not rebuildable
	Activate(name string) error

	// Active returns the active scene, or nil before any scene is registered.
	//
	// Returns:
	//   - Descriptor: the active scene
	Active() Descriptor

	// Get returns the registered descriptor for name.
	//
	// Parameters:
	//   - name: the scene name
	//
	// Returns:
	//   - Descriptor: the scene
	//   - bool: false if not registered
	Get(name string) (Descriptor, bool)

	// Names returns the registered scene names in registration order.
	//
	// Returns:
	//   - []string: the names
	Names() []string

	// Teardown disposes every registered scene and clears the active scene.
	Teardown()
}

type registry struct {
	scenes  map[string]Descriptor
	order   []string
	active  Descriptor
	rebuild   RebuildFunc
	activated func(Descriptor)
	logger    *zap.Logger
}

var _ Registry = &registry{}

// NewRegistry creates an empty Registry.
//
// Parameters:
//   - options: functional options for registry configuration
//
// Returns:
//   - Registry: the newly created registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registry{
		scenes: make(map[string]Descriptor),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *registry) Register(desc Descriptor) error {
	name := desc.Name()
	if _, ok := r.scenes[name]; ok {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateScene)
	}
	r.scenes[name] = desc
	r.order = append(r.order, name)
	r.logger.Debug("scene registered", zap.String("scene", name), zap.String("id", desc.ID()))

	if r.active == nil {
		r.active = desc
		r.logger.Info("scene activated", zap.String("scene", name))
		r.notifyActivated()
	}
	return nil
}

func (r *registry) Activate(name string) error {
	target, ok := r.scenes[name]
	if !ok {
		return fmt.Errorf("activate %q: %w", name, ErrUnknownScene)
	}
	if r.active == target {
		return nil
	}

	if target.Disposed() {
		if r.rebuild == nil {
			return fmt.Errorf("activate %q: %w", name, ErrSceneDisposed)
		}
		fresh, err := r.rebuild(name)
		if err != nil {
			return fmt.Errorf("activate %q: rebuild: %w", name, err)
		}
		if fresh == nil || fresh.Disposed() || fresh.Name() != name {
			return fmt.Errorf("activate %q: rebuild returned no usable scene: %w", name, ErrSceneDisposed)
		}
		r.scenes[name] = fresh
		target = fresh
		r.logger.Info("scene rebuilt", zap.String("scene", name), zap.String("id", fresh.ID()))
	}

	if prev := r.active; prev != nil {
		prev.Dispose()
	}
	r.active = target
	r.logger.Info("scene activated", zap.String("scene", name), zap.String("id", target.ID()))
	r.notifyActivated()
	return nil
}

func (r *registry) notifyActivated() {
	if r.activated != nil {
		r.activated(r.active)
	}
}

func (r *registry) Active() Descriptor {
	return r.active
}

func (r *registry) Get(name string) (Descriptor, bool) {
	d, ok := r.scenes[name]
	return d, ok
}

func (r *registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *registry) Teardown() {
	for _, name := range r.order {
		r.scenes[name].Dispose()
	}
	r.active = nil
}
