package config

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/common"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks names, references and enumerations. All problems are reported together.
//
// Returns:
//   - error: nil, or an error wrapping ErrInvalid that lists each problem
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Loop.TickRate <= 0 {
		fail("loop.tick_rate must be positive")
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		fail("camera: need 0 < near < far (got %g, %g)", c.Camera.Near, c.Camera.Far)
	}
	switch c.Camera.Follow.Mode {
	case "", "free", "locked", "offset":
	default:
		fail("camera.follow.mode %q", c.Camera.Follow.Mode)
	}
	switch c.Renderer.PresentMode {
	case "fifo", "immediate":
	default:
		fail("renderer.present_mode %q", c.Renderer.PresentMode)
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		fail("renderer.msaa must be 1 or 4 (got %d)", c.Renderer.MSAA)
	}

	scenes := make(map[string]SceneConfig, len(c.Scenes))
	for i, s := range c.Scenes {
		if s.Name == "" {
			fail("scenes[%d]: name is required", i)
			continue
		}
		if _, dup := scenes[s.Name]; dup {
			fail("scene %q defined twice", s.Name)
			continue
		}
		scenes[s.Name] = s

		for j, l := range s.Lights {
			switch l.Type {
			case "directional", "point":
			default:
				fail("scene %q light[%d]: type %q", s.Name, j, l.Type)
			}
		}
		for j, a := range s.Assets {
			if a.Path == "" {
				fail("scene %q asset[%d]: path is required", s.Name, j)
			}
		}
		names := make(map[string]bool, len(s.Entities))
		for _, e := range s.Entities {
			if e.Name == "" {
				fail("scene %q: entity without name", s.Name)
				continue
			}
			if names[e.Name] {
				fail("scene %q: entity %q defined twice", s.Name, e.Name)
			}
			names[e.Name] = true
			if e.Model == "" {
				fail("scene %q entity %q: model is required", s.Name, e.Name)
			}
		}
	}

	if c.InitialScene != "" {
		if _, ok := scenes[c.InitialScene]; !ok {
			fail("initial_scene %q is not defined", c.InitialScene)
		}
	}

	keys := make(map[string]bool, len(c.Bindings))
	for i, b := range c.Bindings {
		code, ok := common.KeyByName(b.Key)
		if !ok {
			fail("bindings[%d]: unknown key %q", i, b.Key)
			continue
		}
		id := fmt.Sprint(code)
		if keys[id] {
			fail("bindings[%d]: key %q bound twice", i, b.Key)
		}
		keys[id] = true

		switch b.Action {
		case ActionSwitchScene:
			if _, ok := scenes[b.Scene]; !ok {
				fail("bindings[%d]: switch to undefined scene %q", i, b.Scene)
			}
		case ActionMove:
			if b.Entity == "" {
				fail("bindings[%d]: move needs an entity", i)
			}
			if _, err := common.ParseAxis(b.Axis); err != nil {
				fail("bindings[%d]: %v", i, err)
			}
		case ActionPlay:
			if b.Entity == "" || b.Clip == "" {
				fail("bindings[%d]: play needs an entity and a clip", i)
			}
		default:
			fail("bindings[%d]: unknown action %q", i, b.Action)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
