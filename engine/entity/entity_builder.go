package entity

import (
	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
)

// EntityBuilderOption is a functional option for configuring an Entity.
type EntityBuilderOption func(*entity)

// WithPosition sets the initial logical position.
//
// Parameters:
//   - pos: the starting position
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithPosition(pos mgl32.Vec3) EntityBuilderOption {
	return func(e *entity) {
		e.position = pos
	}
}

// WithMotion sets the velocity, acceleration and deceleration vectors.
//
// Parameters:
//   - velocity, acceleration, deceleration: the motion vectors
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithMotion(velocity, acceleration, deceleration mgl32.Vec3) EntityBuilderOption {
	return func(e *entity) {
		e.velocity = velocity
		e.acceleration = acceleration
		e.deceleration = deceleration
	}
}

// WithModel sets the asset path the entity's visual is loaded from.
func WithModel(path string) EntityBuilderOption {
	return func(e *entity) {
		e.model = path
	}
}

// WithIdleClip sets the clip played when the entity settles back to Idle.
func WithIdleClip(name string) EntityBuilderOption {
	return func(e *entity) {
		e.idleClip = name
	}
}

// WithAnimation supplies the AnimationController instead of a fresh default one.
//
// Parameters:
//   - c: the controller the entity will own
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithAnimation(c animation.Controller) EntityBuilderOption {
	return func(e *entity) {
		e.anim = c
	}
}
