package scene

import (
	"github.com/Carmen-Shannon/oxy-stage/engine/entity"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Descriptor is one named, switchable scene: a scene-graph root, a set of lights and
// the entities placed in it. Once disposed a descriptor stays disposed; its root is dropped
// and later attachments are discarded.
// Not safe for concurrent use; the frame loop owns every descriptor.
type Descriptor interface {
	// ID returns the per-instance identifier. A rebuilt scene keeps its name but gets a new ID.
	//
	// Returns:
	//   - string: the instance ID
	ID() string

	// Name returns the registry key of the scene.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Root returns the scene-graph root, or nil once disposed.
	//
	// Returns:
	//   - *Node: the root node
	Root() *Node

	// Lights returns the scene lights.
	//
	// Returns:
	//   - []light.Light: the lights, nil once disposed
	Lights() []light.Light

	// ClearColor returns the background color the scene is rendered over.
	//
	// Returns:
	//   - [4]float32: RGBA clear color
	ClearColor() [4]float32

	// Entities returns the IDs of the entities placed in this scene.
	//
	// Returns:
	//   - []entity.ID: the entity handles
	Entities() []entity.ID

	// AddEntity records that an entity belongs to this scene.
	//
	// Parameters:
	//   - id: the entity handle
	AddEntity(id entity.ID)

	// Disposed reports whether Dispose has run.
	//
	// Returns:
	//   - bool: true once disposed
	Disposed() bool

	// Dispose releases every resource reachable from the scene exactly once and drops the root.
	// Calling Dispose again does nothing.
	Dispose()

	// Attach merges a loaded fragment under the root.
	// If the scene is disposed the fragment is dropped and a warning is logged.
	//
	// Parameters:
	//   - frag: the loaded fragment
	//
	// Returns:
	//   - bool: true if the fragment was attached
	Attach(frag Fragment) bool

	// Resources returns the deduplicated set of resources currently owned by the scene.
	//
	// Returns:
	//   - *resource.Set: a fresh set, empty once disposed
	Resources() *resource.Set
}

type scene struct {
	id         string
	name       string
	root       *Node
	lights     []light.Light
	clearColor [4]float32
	entities   []entity.ID
	disposed   bool

	releaser  resource.Releaser
	onDispose []func(Descriptor)
	logger    *zap.Logger
}

var _ Descriptor = &scene{}

// NewDescriptor creates a scene with an empty root node.
//
// Parameters:
//   - name: the registry key
//   - options: functional options for scene configuration
//
// Returns:
//   - Descriptor: the newly created scene
func NewDescriptor(name string, options ...SceneBuilderOption) Descriptor {
	s := &scene{
		id:         uuid.NewString(),
		name:       name,
		root:       NewNode(name),
		clearColor: [4]float32{0, 0, 0, 1},
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) ID() string {
	return s.id
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Root() *Node {
	return s.root
}

func (s *scene) Lights() []light.Light {
	return s.lights
}

func (s *scene) ClearColor() [4]float32 {
	return s.clearColor
}

func (s *scene) Entities() []entity.ID {
	return s.entities
}

func (s *scene) AddEntity(id entity.ID) {
	s.entities = append(s.entities, id)
}

func (s *scene) Disposed() bool {
	return s.disposed
}

func (s *scene) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	set := s.Resources()
	total := set.Len()
	released := total
	if s.releaser != nil {
		released = set.ReleaseAll(s.releaser, func(r resource.Resource, err error) {
			s.logger.Error("release failed",
				zap.String("scene", s.name),
				zap.String("resource", r.Label()),
				zap.Error(err))
		})
	}

	s.root = nil
	s.lights = nil

	for _, hook := range s.onDispose {
		hook(s)
	}

	s.logger.Info("scene disposed",
		zap.String("scene", s.name),
		zap.String("id", s.id),
		zap.Int("resources", total),
		zap.Int("released", released))
}

func (s *scene) Attach(frag Fragment) bool {
	if s.disposed || s.root == nil {
		s.logger.Warn("dropping fragment for disposed scene",
			zap.String("scene", s.name),
			zap.String("id", s.id))
		return false
	}
	if frag.Root == nil {
		return false
	}
	s.root.AddChild(frag.Root)
	return true
}

func (s *scene) Resources() *resource.Set {
	set := &resource.Set{}
	if s.root != nil {
		s.root.CollectResources(set)
	}
	for _, l := range s.lights {
		if sm := l.ShadowMap(); sm != nil {
			set.Add(sm)
		}
	}
	return set
}
