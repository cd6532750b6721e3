// Package animation tracks clip playback for a single entity.
package animation

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrClipsNotReady is returned by Play before the entity's clip table has loaded.
	ErrClipsNotReady = errors.New("animation clips not loaded")

	// ErrUnknownClip is returned by Play for a clip name missing from the loaded table.
	ErrUnknownClip = errors.New("unknown animation clip")
)

// Policy controls what happens when a clip reaches its end.
type Policy int

const (
	// Loop wraps elapsed time back to the start of the clip.
	Loop Policy = iota
	// OneShot holds the last frame and marks the clip finished.
	OneShot
)

func (p Policy) String() string {
	if p == OneShot {
		return "one_shot"
	}
	return "loop"
}

// Clip is an immutable named animation with a fixed duration in seconds.
// Payload carries the keyframe data for whoever samples the clip; the controller never reads it.
type Clip struct {
	Name     string
	Duration float32
	Policy   Policy
	Payload  any
}

type controller struct {
	clips    map[string]Clip
	ready    bool
	current  *Clip
	elapsed  float32
	finished bool
	speed    float32
}

// Controller owns the clip table and playback cursor of one entity.
// It is not safe for concurrent use; the frame loop is its only caller.
type Controller interface {
	// LoadClips installs the clip table. Called once the entity's model finishes loading.
	// Clips with empty names are skipped; later duplicates replace earlier ones.
	//
	// Parameters:
	//   - clips: the clips parsed from the model
	LoadClips(clips []Clip)

	// Ready reports whether LoadClips has been called.
	//
	// Returns:
	//   - bool: true once the clip table is installed
	Ready() bool

	// Play cuts immediately to the named clip with elapsed reset to zero.
	// Playing the clip that is already current leaves its elapsed time unchanged.
	//
	// Parameters:
	//   - name: the clip to play
	//
	// Returns:
	//   - error: ErrClipsNotReady before LoadClips, ErrUnknownClip if name is not in the table
	Play(name string) error

	// Advance moves the playback cursor forward by delta seconds.
	// Does nothing when no clip is playing or delta is not positive.
	//
	// Parameters:
	//   - delta: elapsed seconds since the previous advance
	Advance(delta float32)

	// Current returns the playing clip.
	//
	// Returns:
	//   - Clip: the current clip
	//   - bool: false if nothing is playing
	Current() (Clip, bool)

	// Elapsed returns seconds into the current clip.
	//
	// Returns:
	//   - float32: elapsed time, 0 if nothing is playing
	Elapsed() float32

	// Finished reports whether a one-shot clip has reached its end.
	//
	// Returns:
	//   - bool: true once a one-shot clip clamps at its duration
	Finished() bool

	// Clips returns the names of the loaded clips.
	//
	// Returns:
	//   - []string: clip names in no particular order
	Clips() []string
}

var _ Controller = &controller{}

// NewController creates a Controller with an empty, not-yet-loaded clip table.
//
// Parameters:
//   - options: functional options for controller configuration
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controller{
		clips: make(map[string]Clip),
		speed: 1.0,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *controller) LoadClips(clips []Clip) {
	for _, clip := range clips {
		if clip.Name == "" {
			continue
		}
		c.clips[clip.Name] = clip
	}
	c.ready = true
}

func (c *controller) Ready() bool {
	return c.ready
}

func (c *controller) Play(name string) error {
	if !c.ready {
		return fmt.Errorf("play %q: %w", name, ErrClipsNotReady)
	}
	clip, ok := c.clips[name]
	if !ok {
		return fmt.Errorf("play %q: %w", name, ErrUnknownClip)
	}
	if c.current != nil && c.current.Name == name {
		return nil
	}
	c.current = &clip
	c.elapsed = 0
	c.finished = false
	return nil
}

func (c *controller) Advance(delta float32) {
	if c.current == nil || delta <= 0 {
		return
	}

	duration := c.current.Duration
	c.elapsed += delta * c.speed

	switch c.current.Policy {
	case OneShot:
		if c.elapsed >= duration {
			c.elapsed = duration
			c.finished = true
		}
	default:
		if duration <= 0 {
			c.elapsed = 0
			return
		}
		if c.elapsed >= duration {
			c.elapsed = float32(math.Mod(float64(c.elapsed), float64(duration)))
		}
	}
}

func (c *controller) Current() (Clip, bool) {
	if c.current == nil {
		return Clip{}, false
	}
	return *c.current, true
}

func (c *controller) Elapsed() float32 {
	return c.elapsed
}

func (c *controller) Finished() bool {
	return c.finished
}

func (c *controller) Clips() []string {
	names := make([]string, 0, len(c.clips))
	for name := range c.clips {
		names = append(names, name)
	}
	return names
}
