// Package input turns raw key codes into Commands and applies them to a stage.
package input

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/Carmen-Shannon/oxy-stage/engine/config"
	"github.com/Carmen-Shannon/oxy-stage/engine/entity"
	"github.com/Carmen-Shannon/oxy-stage/engine/stage"
	"go.uber.org/zap"
)

// DefaultWalkClip is played when an entity moves forward, if its model has such a clip.
const DefaultWalkClip = "walk"

// Source delivers raw key-down events. The window satisfies it.
type Source interface {
	SetKeyDownCallback(callback func(keyCode uint32))
}

// router is the implementation of the Router interface.
type router struct {
	bindings map[uint32]Command
	walkClip string
	logger   *zap.Logger
}

// Router maps key codes to Commands through a fixed table and applies Commands to a stage.
type Router interface {
	// Route looks up the command bound to a key.
	//
	// Parameters:
	//   - keyCode: the virtual key code
	//
	// Returns:
	//   - Command: the bound command
	//   - bool: false for unmapped keys
	Route(keyCode uint32) (Command, bool)

	// Bind forwards every mapped key press from src to sink. Unmapped keys are ignored.
	//
	// Parameters:
	//   - src: the key source
	//   - sink: receives routed commands, typically the frame loop's Enqueue
	Bind(src Source, sink func(Command))

	// Apply executes cmd against st. Commands that cannot apply are dropped with a warning;
	// Apply never fails.
	// Must run on the goroutine that owns st.
	//
	// Parameters:
	//   - st: the stage
	//   - cmd: the command
	Apply(st stage.Stage, cmd Command)
}

var _ Router = &router{}

// NewRouter creates a Router with the given bindings.
//
// Parameters:
//   - options: functional options for router configuration
//
// Returns:
//   - Router: the newly created router
func NewRouter(options ...RouterBuilderOption) Router {
	r := &router{
		bindings: make(map[uint32]Command),
		walkClip: DefaultWalkClip,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// FromBindings builds a Router from configured key bindings.
//
// Parameters:
//   - bindings: the configured bindings
//   - options: extra router options
//
// Returns:
//   - Router: the router
//   - error: error for an unknown key, axis or action
func FromBindings(bindings []config.BindingConfig, options ...RouterBuilderOption) (Router, error) {
	opts := make([]RouterBuilderOption, 0, len(bindings)+len(options))
	for _, b := range bindings {
		key, ok := common.KeyByName(b.Key)
		if !ok {
			return nil, fmt.Errorf("binding %q: unknown key", b.Key)
		}
		cmd, err := commandFor(b)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Key, err)
		}
		opts = append(opts, WithBinding(key, cmd))
	}
	return NewRouter(append(opts, options...)...), nil
}

func commandFor(b config.BindingConfig) (Command, error) {
	switch b.Action {
	case config.ActionSwitchScene:
		return SwitchScene{Scene: b.Scene}, nil
	case config.ActionMove:
		axis, err := common.ParseAxis(b.Axis)
		if err != nil {
			return nil, err
		}
		return Move{Entity: b.Entity, Axis: axis, Delta: b.Delta}, nil
	case config.ActionPlay:
		return PlayAnimation{Entity: b.Entity, Clip: b.Clip}, nil
	}
	return nil, fmt.Errorf("unknown action %q", b.Action)
}

func (r *router) Route(keyCode uint32) (Command, bool) {
	cmd, ok := r.bindings[keyCode]
	return cmd, ok
}

func (r *router) Bind(src Source, sink func(Command)) {
	src.SetKeyDownCallback(func(keyCode uint32) {
		if cmd, ok := r.Route(keyCode); ok {
			sink(cmd)
		}
	})
}

func (r *router) Apply(st stage.Stage, cmd Command) {
	switch c := cmd.(type) {
	case SwitchScene:
		if err := st.Registry().Activate(c.Scene); err != nil {
			r.logger.Warn("scene switch failed", zap.String("scene", c.Scene), zap.Error(err))
		}
	case Move:
		ent, ok := r.target(st, c)
		if !ok {
			return
		}
		ent.ApplyMove(c.Axis, c.Delta)
		if c.Axis == common.ForwardAxis && c.Delta > 0 {
			r.walk(ent)
		}
		if subject, ok := st.FollowTarget(); ok && subject.ID() == ent.ID() {
			st.SyncFollow()
		}
	case PlayAnimation:
		ent, ok := r.target(st, c)
		if !ok {
			return
		}
		if err := ent.Animation().Play(c.Clip); err != nil {
			r.logger.Warn("play rejected", zap.String("entity", c.Entity), zap.String("clip", c.Clip), zap.Error(err))
		}
	default:
		r.logger.Warn("unknown command", zap.Stringer("command", cmd))
	}
}

// target resolves the entity a command addresses in the active scene.
func (r *router) target(st stage.Stage, cmd Command) (entity.Entity, bool) {
	var name string
	switch c := cmd.(type) {
	case Move:
		name = c.Entity
	case PlayAnimation:
		name = c.Entity
	}

	ent, ok := st.ActiveEntity(name)
	if !ok {
		r.logger.Warn("dropping command for missing entity", zap.Stringer("command", cmd))
		return nil, false
	}
	if ent.LoadStatus() == entity.Failed {
		r.logger.Warn("dropping command for failed entity",
			zap.Stringer("command", cmd),
			zap.NamedError("reason", ent.FailReason()))
		return nil, false
	}
	return ent, true
}

// walk starts the walk clip once the clip table is in. A pending entity moves without it.
func (r *router) walk(ent entity.Entity) {
	anim := ent.Animation()
	if r.walkClip == "" || !anim.Ready() {
		return
	}
	if err := anim.Play(r.walkClip); err != nil && !errors.Is(err, animation.ErrUnknownClip) {
		r.logger.Debug("walk clip rejected", zap.String("entity", ent.Name()), zap.Error(err))
	}
}
