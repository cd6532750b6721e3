package config

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/common"
)

const (
	DefaultTitle    = "oxy-stage"
	DefaultWidth    = 1280
	DefaultHeight   = 720
	DefaultTickRate = 60.0
	DefaultFov      = 75.0
	DefaultNear     = 0.1
	DefaultFar      = 1000.0
	DefaultWorkers  = 4
)

// ApplyDefaults fills unset fields with their default values.
func (c *Config) ApplyDefaults() {
	c.Window.Title = common.Coalesce(c.Window.Title, DefaultTitle)
	c.Window.Width = common.Coalesce(c.Window.Width, DefaultWidth)
	c.Window.Height = common.Coalesce(c.Window.Height, DefaultHeight)
	c.Loop.TickRate = common.Coalesce(c.Loop.TickRate, DefaultTickRate)
	c.Renderer.PresentMode = common.Coalesce(c.Renderer.PresentMode, "fifo")
	c.Renderer.MSAA = common.Coalesce(c.Renderer.MSAA, 4)
	c.Renderer.Ambient = common.Coalesce(c.Renderer.Ambient, [3]float32{0.15, 0.15, 0.18})
	c.Camera.Fov = common.Coalesce(c.Camera.Fov, DefaultFov)
	c.Camera.Near = common.Coalesce(c.Camera.Near, DefaultNear)
	c.Camera.Far = common.Coalesce(c.Camera.Far, DefaultFar)
	c.Camera.Position = common.Coalesce(c.Camera.Position, [3]float32{0, 5, 10})
	c.Loader.Workers = common.Coalesce(c.Loader.Workers, DefaultWorkers)

	for i := range c.Scenes {
		s := &c.Scenes[i]
		s.ClearColor = common.Coalesce(s.ClearColor, [4]float32{0, 0, 0, 1})
		for j := range s.Lights {
			l := &s.Lights[j]
			l.Type = common.Coalesce(l.Type, "directional")
			l.Color = common.Coalesce(l.Color, 0xFFFFFF)
			l.Intensity = common.Coalesce(l.Intensity, 1.0)
			if l.Shadow != nil && l.Shadow.MapSize == 0 {
				l.Shadow.MapSize = 4096
			}
		}
	}
}

// Default returns the two-scene setup the viewer starts with when no file is given:
// keys 1 and 2 switch between scene1 and scene2, each lit by a shadow-casting sun and
// loading resources/<scene>/scene.gltf.
//
// Returns:
//   - *Config: the default configuration
func Default() *Config {
	c := &Config{
		Bindings: []BindingConfig{
			{Key: "1", Action: ActionSwitchScene, Scene: "scene1"},
			{Key: "2", Action: ActionSwitchScene, Scene: "scene2"},
		},
	}
	for _, name := range []string{"scene1", "scene2"} {
		c.Scenes = append(c.Scenes, SceneConfig{
			Name:   name,
			Lights: []LightConfig{SunLight()},
			Assets: []AssetConfig{{Path: fmt.Sprintf("resources/%s/scene.gltf", name)}},
		})
	}
	c.ApplyDefaults()
	return c
}

// SunLight returns the white directional light every default scene is lit by.
func SunLight() LightConfig {
	return LightConfig{
		Name:      "sun",
		Type:      "directional",
		Color:     0xFFFFFF,
		Intensity: 1.0,
		Position:  [3]float32{-100, 100, 100},
		Target:    [3]float32{0, 0, 0},
		Shadow: &ShadowConfig{
			Bias:    -0.001,
			MapSize: 4096,
			Near:    0.5,
			Far:     500,
			Left:    50,
			Right:   -50,
			Top:     50,
			Bottom:  -50,
		},
	}
}
