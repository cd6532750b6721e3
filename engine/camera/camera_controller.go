package camera

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// FollowMode selects how the camera tracks a moving subject.
type FollowMode int

const (
	// FollowFree leaves the camera where it is.
	FollowFree FollowMode = iota
	// FollowLocked keeps the camera in place and turns it to look at the subject.
	FollowLocked
	// FollowOffset keeps the camera at a fixed offset from the subject, looking at it.
	FollowOffset
)

func (m FollowMode) String() string {
	switch m {
	case FollowLocked:
		return "locked"
	case FollowOffset:
		return "offset"
	}
	return "free"
}

// ParseFollowMode converts "free", "locked" or "offset" to a FollowMode. Empty selects free.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - FollowMode: the mode
//   - error: error if s is not a known mode
func ParseFollowMode(s string) (FollowMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "free":
		return FollowFree, nil
	case "locked":
		return FollowLocked, nil
	case "offset":
		return FollowOffset, nil
	}
	return FollowFree, fmt.Errorf("unknown camera follow mode %q", s)
}

// CameraController moves a Camera in response to a subject moving.
type CameraController interface {
	// Mode returns the active follow mode.
	//
	// Returns:
	//   - FollowMode: the mode
	Mode() FollowMode

	// Offset returns the subject-relative camera offset used by FollowOffset.
	//
	// Returns:
	//   - mgl32.Vec3: the offset
	Offset() mgl32.Vec3

	// SetMode changes the follow mode and offset.
	//
	// Parameters:
	//   - mode: the new mode
	//   - offset: the offset used by FollowOffset
	SetMode(mode FollowMode, offset mgl32.Vec3)

	// Follow updates cam for a subject at the given position.
	//
	// Parameters:
	//   - cam: the camera to move
	//   - subject: the subject's world-space position
	Follow(cam Camera, subject mgl32.Vec3)
}

type followController struct {
	mode   FollowMode
	offset mgl32.Vec3
}

var _ CameraController = &followController{}

// NewCameraController creates a follow controller, FollowFree unless configured otherwise.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the controller
func NewCameraController(options ...CameraControllerBuilderOption) CameraController {
	c := &followController{
		mode:   FollowFree,
		offset: mgl32.Vec3{0, 3, -6},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *followController) Mode() FollowMode {
	return c.mode
}

func (c *followController) Offset() mgl32.Vec3 {
	return c.offset
}

func (c *followController) SetMode(mode FollowMode, offset mgl32.Vec3) {
	c.mode = mode
	c.offset = offset
}

func (c *followController) Follow(cam Camera, subject mgl32.Vec3) {
	if cam == nil {
		return
	}
	switch c.mode {
	case FollowLocked:
		cam.SetTarget(subject)
	case FollowOffset:
		cam.LookAt(subject.Add(c.offset), subject)
	}
}
