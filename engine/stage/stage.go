// Package stage holds the context the frame loop, the command router and load completions share:
// the scene registry, the entity arena, the camera and the loader.
package stage

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/config"
	"github.com/Carmen-Shannon/oxy-stage/engine/entity"
	"github.com/Carmen-Shannon/oxy-stage/engine/loader"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"go.uber.org/zap"
)

// stage is the implementation of the Stage interface.
type stage struct {
	registry scene.Registry
	entities *entity.Store
	camera   camera.Camera
	follow   camera.CameraController
	loader   loader.Loader
	releaser resource.Releaser
	logger   *zap.Logger

	configs  map[string]config.SceneConfig
	subjects map[string]string // scene instance ID -> followed entity name
	pending  int
}

// Stage is the explicit context every scene mutation goes through.
// Apart from construction it must only be used from the frame loop goroutine.
type Stage interface {
	// Registry returns the scene registry. Its rebuild hook is Build.
	//
	// Returns:
	//   - scene.Registry: the registry
	Registry() scene.Registry

	// Entities returns the arena every entity lives in.
	//
	// Returns:
	//   - *entity.Store: the entity store
	Entities() *entity.Store

	// Camera returns the camera the active scene is rendered through.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Follow returns the controller that moves the camera after the followed entity moves.
	//
	// Returns:
	//   - camera.CameraController: the follow controller
	Follow() camera.CameraController

	// Logger returns the stage logger.
	//
	// Returns:
	//   - *zap.Logger: the logger
	Logger() *zap.Logger

	// AddScene records a scene configuration, builds its first instance and registers it.
	// The first scene added becomes active.
	//
	// Parameters:
	//   - cfg: the scene configuration
	//
	// Returns:
	//   - error: error if the name is taken or the configuration cannot be built
	AddScene(cfg config.SceneConfig) error

	// Build creates a fresh instance of a configured scene: its lights, its pending entities
	// and one asynchronous load per asset and entity model.
	// Build is the registry's rebuild hook, so a disposed scene comes back on reactivation.
	//
	// Parameters:
	//   - name: the scene name
	//
	// Returns:
	//   - scene.Descriptor: the new, unregistered descriptor
	//   - error: scene.ErrUnknownScene if no scene with that name was added, or a config error
	Build(name string) (scene.Descriptor, error)

	// ActiveEntity finds a live entity by name in the active scene.
	//
	// Parameters:
	//   - name: the entity name
	//
	// Returns:
	//   - entity.Entity: the entity
	//   - bool: false if there is no active scene or no such entity in it
	ActiveEntity(name string) (entity.Entity, bool)

	// FollowTarget returns the entity the camera follows in the active scene.
	//
	// Returns:
	//   - entity.Entity: the followed entity
	//   - bool: false if the active scene has none
	FollowTarget() (entity.Entity, bool)

	// SyncFollow points the camera at the follow target of the active scene, as the follow mode
	// dictates. It runs on every activation and when the target's model attaches.
	SyncFollow()

	// Pending returns the number of loads issued whose completion has not been processed.
	//
	// Returns:
	//   - int: outstanding loads
	Pending() int

	// Teardown disposes every scene. Completions that arrive afterwards are dropped.
	Teardown()
}

var _ Stage = &stage{}

// NewStage creates an empty Stage that loads assets through ld.
// Completions must be delivered on the goroutine that owns the stage, which is what
// handing the loader the frame loop as its Poster achieves.
//
// Parameters:
//   - ld: the asset loader; must not be nil
//   - options: functional options for stage configuration
//
// Returns:
//   - Stage: the newly created stage
func NewStage(ld loader.Loader, options ...StageBuilderOption) Stage {
	if ld == nil {
		panic("stage: nil loader")
	}
	s := &stage{
		entities: entity.NewStore(),
		loader:   ld,
		logger:   zap.NewNop(),
		configs:  make(map[string]config.SceneConfig),
		subjects: make(map[string]string),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	if s.follow == nil {
		s.follow = camera.NewCameraController()
	}
	s.registry = scene.NewRegistry(
		scene.WithRebuild(s.Build),
		scene.WithActivated(func(scene.Descriptor) { s.SyncFollow() }),
		scene.WithRegistryLogger(s.logger),
	)
	return s
}

// FromConfig creates a Stage with the camera and follow controller described by cfg.
// Scenes are added separately by Populate, once completions have somewhere to go.
//
// Parameters:
//   - cfg: a defaulted, validated configuration
//   - ld: the asset loader
//   - options: extra options, applied after the ones derived from cfg
//
// Returns:
//   - Stage: the empty stage
//   - error: error if the follow mode is unknown
func FromConfig(cfg *config.Config, ld loader.Loader, options ...StageBuilderOption) (Stage, error) {
	mode, err := camera.ParseFollowMode(cfg.Camera.Follow.Mode)
	if err != nil {
		return nil, err
	}

	aspect := float32(16) / 9
	if cfg.Window.Width > 0 && cfg.Window.Height > 0 {
		aspect = float32(cfg.Window.Width) / float32(cfg.Window.Height)
	}
	cam := camera.NewCamera(
		camera.WithPosition(cfg.Camera.Position),
		camera.WithTarget(cfg.Camera.Target),
		camera.WithFovDegrees(cfg.Camera.Fov),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
		camera.WithAspect(aspect),
	)
	follow := camera.NewCameraController(
		camera.WithFollowMode(mode),
		camera.WithFollowOffset(cfg.Camera.Follow.Offset),
	)

	opts := append([]StageBuilderOption{WithCamera(cam), WithFollowController(follow)}, options...)
	return NewStage(ld, opts...), nil
}

// Populate adds every scene in cfg to st and activates the start scene.
// Each scene's loads are issued as it is added.
//
// Parameters:
//   - st: the stage
//   - cfg: the configuration
//
// Returns:
//   - error: error if a scene cannot be built or the start scene cannot be activated
func Populate(st Stage, cfg *config.Config) error {
	for _, sc := range cfg.Scenes {
		if err := st.AddScene(sc); err != nil {
			return err
		}
	}
	if start := cfg.StartScene(); start != "" {
		return st.Registry().Activate(start)
	}
	return nil
}

func (s *stage) Registry() scene.Registry {
	return s.registry
}

func (s *stage) Entities() *entity.Store {
	return s.entities
}

func (s *stage) Camera() camera.Camera {
	return s.camera
}

func (s *stage) Follow() camera.CameraController {
	return s.follow
}

func (s *stage) Logger() *zap.Logger {
	return s.logger
}

func (s *stage) AddScene(cfg config.SceneConfig) error {
	if _, ok := s.configs[cfg.Name]; ok {
		return fmt.Errorf("add scene %q: %w", cfg.Name, scene.ErrDuplicateScene)
	}
	s.configs[cfg.Name] = cfg

	desc, err := s.Build(cfg.Name)
	if err != nil {
		delete(s.configs, cfg.Name)
		return err
	}
	return s.registry.Register(desc)
}

func (s *stage) ActiveEntity(name string) (entity.Entity, bool) {
	active := s.registry.Active()
	if active == nil || active.Disposed() {
		return nil, false
	}
	return s.entities.Find(active.ID(), name)
}

func (s *stage) FollowTarget() (entity.Entity, bool) {
	active := s.registry.Active()
	if active == nil || active.Disposed() {
		return nil, false
	}
	name, ok := s.subjects[active.ID()]
	if !ok {
		return nil, false
	}
	return s.entities.Find(active.ID(), name)
}

func (s *stage) SyncFollow() {
	if subject, ok := s.FollowTarget(); ok {
		s.follow.Follow(s.camera, subject.Position())
	}
}

func (s *stage) Pending() int {
	return s.pending
}

func (s *stage) Teardown() {
	s.registry.Teardown()
}

// onDispose frees the entities of a disposed scene instance so that completions still
// holding their IDs resolve to nothing.
func (s *stage) onDispose(d scene.Descriptor) {
	removed := s.entities.RemoveScene(d.ID())
	delete(s.subjects, d.ID())
	s.logger.Debug("scene entities removed",
		zap.String("scene", d.Name()),
		zap.String("id", d.ID()),
		zap.Int("entities", removed))
}
