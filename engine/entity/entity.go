// Package entity holds the controllable characters placed in a scene.
package entity

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrAlreadyLoaded is returned by MarkLoaded when the entity is no longer pending.
var ErrAlreadyLoaded = errors.New("entity already loaded")

// State is the discrete motion state of an entity.
type State int

const (
	Idle State = iota
	Moving
)

func (s State) String() string {
	if s == Moving {
		return "moving"
	}
	return "idle"
}

// LoadStatus tracks the arrival of an entity's visual representation.
type LoadStatus int

const (
	Pending LoadStatus = iota
	Loaded
	Failed
)

func (s LoadStatus) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "pending"
}

// Visual is the scene-graph node an entity's transform is reconciled onto.
type Visual interface {
	// SetTranslation moves the node to the given position.
	//
	// Parameters:
	//   - pos: the world-space position
	SetTranslation(pos mgl32.Vec3)
}

type entity struct {
	id       ID
	name     string
	sceneID  string
	model    string
	idleClip string

	position     mgl32.Vec3
	velocity     mgl32.Vec3
	acceleration mgl32.Vec3
	deceleration mgl32.Vec3

	state      State
	status     LoadStatus
	failReason error
	visual     Visual
	anim       animation.Controller

	// attached is set by MarkLoaded and cleared by the first tick that reconciles the visual.
	attached bool
	// moved is set by ApplyMove and cleared by Settle.
	moved bool
}

// Entity is a named character with a logical transform, a load status and an owned AnimationController.
// Its logical transform may be mutated while pending and is pushed onto the visual once it attaches.
type Entity interface {
	// ID returns the arena handle of this entity.
	//
	// Returns:
	//   - ID: the handle
	ID() ID

	// Name returns the entity name, unique within its scene.
	//
	// Returns:
	//   - string: the name
	Name() string

	// SceneID returns the instance ID of the scene the entity was created in.
	//
	// Returns:
	//   - string: the owning scene's instance ID
	SceneID() string

	// Model returns the asset path the entity's visual is loaded from.
	//
	// Returns:
	//   - string: the model path
	Model() string

	// IdleClip returns the clip played when the entity settles to Idle, or "".
	//
	// Returns:
	//   - string: the idle clip name
	IdleClip() string

	// Position returns the logical position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition overwrites the logical position.
	//
	// Parameters:
	//   - pos: the new position
	SetPosition(pos mgl32.Vec3)

	Velocity() mgl32.Vec3
	Acceleration() mgl32.Vec3
	Deceleration() mgl32.Vec3
	SetVelocity(v mgl32.Vec3)
	SetAcceleration(v mgl32.Vec3)
	SetDeceleration(v mgl32.Vec3)

	// State returns the motion state.
	//
	// Returns:
	//   - State: Idle or Moving
	State() State

	// LoadStatus returns the load status.
	//
	// Returns:
	//   - LoadStatus: Pending, Loaded or Failed
	LoadStatus() LoadStatus

	// FailReason returns the error recorded by MarkFailed, or nil.
	//
	// Returns:
	//   - error: the failure reason
	FailReason() error

	// Visual returns the attached visual, or nil while pending or failed.
	//
	// Returns:
	//   - Visual: the visual node
	Visual() Visual

	// Animation returns the entity's AnimationController.
	//
	// Returns:
	//   - animation.Controller: the controller
	Animation() animation.Controller

	// ApplyMove adds delta to the position along axis and marks the entity Moving.
	//
	// Parameters:
	//   - axis: the axis to move along
	//   - delta: the signed distance
	ApplyMove(axis common.Axis, delta float32)

	// MarkLoaded attaches the visual and moves the entity from Pending to Loaded.
	//
	// Parameters:
	//   - visual: the loaded scene-graph node
	//
	// Returns:
	//   - error: ErrAlreadyLoaded if the entity is not pending
	MarkLoaded(visual Visual) error

	// MarkFailed records a load failure. The entity stays present without a visual.
	//
	// Parameters:
	//   - reason: why the load failed
	MarkFailed(reason error)

	// Reconcile pushes the logical position onto the visual.
	//
	// Returns:
	//   - bool: true if this was the first reconcile since the visual attached
	Reconcile() bool

	// Settle clears the per-tick movement flag.
	//
	// Returns:
	//   - bool: true if the entity transitioned from Moving to Idle
	Settle() bool
}

var _ Entity = &entity{}

// NewEntity creates a pending Entity owned by the given scene instance.
//
// Parameters:
//   - name: the entity name
//   - sceneID: the owning scene's instance ID
//   - options: functional options for entity configuration
//
// Returns:
//   - Entity: the newly created entity
func NewEntity(name, sceneID string, options ...EntityBuilderOption) Entity {
	e := &entity{
		name:    name,
		sceneID: sceneID,
		state:   Idle,
		status:  Pending,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.anim == nil {
		e.anim = animation.NewController()
	}
	return e
}

func (e *entity) ID() ID                       { return e.id }
func (e *entity) Name() string                 { return e.name }
func (e *entity) SceneID() string              { return e.sceneID }
func (e *entity) Model() string                { return e.model }
func (e *entity) IdleClip() string             { return e.idleClip }
func (e *entity) Position() mgl32.Vec3         { return e.position }
func (e *entity) SetPosition(pos mgl32.Vec3)   { e.position = pos }
func (e *entity) Velocity() mgl32.Vec3         { return e.velocity }
func (e *entity) Acceleration() mgl32.Vec3     { return e.acceleration }
func (e *entity) Deceleration() mgl32.Vec3     { return e.deceleration }
func (e *entity) SetVelocity(v mgl32.Vec3)     { e.velocity = v }
func (e *entity) SetAcceleration(v mgl32.Vec3) { e.acceleration = v }
func (e *entity) SetDeceleration(v mgl32.Vec3) { e.deceleration = v }
func (e *entity) State() State                 { return e.state }
func (e *entity) LoadStatus() LoadStatus       { return e.status }
func (e *entity) FailReason() error            { return e.failReason }
func (e *entity) Visual() Visual               { return e.visual }

func (e *entity) Animation() animation.Controller {
	return e.anim
}

func (e *entity) ApplyMove(axis common.Axis, delta float32) {
	e.position = e.position.Add(axis.Unit().Mul(delta))
	e.state = Moving
	e.moved = true
}

func (e *entity) MarkLoaded(visual Visual) error {
	if e.status != Pending {
		return fmt.Errorf("mark %q loaded (status %s): %w", e.name, e.status, ErrAlreadyLoaded)
	}
	e.visual = visual
	e.status = Loaded
	e.attached = true
	return nil
}

func (e *entity) MarkFailed(reason error) {
	e.status = Failed
	e.failReason = reason
	e.visual = nil
	e.attached = false
}

func (e *entity) Reconcile() bool {
	if e.visual == nil {
		return false
	}
	e.visual.SetTranslation(e.position)
	first := e.attached
	e.attached = false
	return first
}

func (e *entity) Settle() bool {
	if e.moved {
		e.moved = false
		return false
	}
	if e.state == Moving {
		e.state = Idle
		return true
	}
	return false
}
