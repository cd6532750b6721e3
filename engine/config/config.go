// Package config loads the viewer configuration: window, loop, camera, scenes and key bindings.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root of a viewer configuration file.
type Config struct {
	Window       WindowConfig    `yaml:"window"`
	Loop         LoopConfig      `yaml:"loop"`
	Renderer     RendererConfig  `yaml:"renderer"`
	Camera       CameraConfig    `yaml:"camera"`
	Loader       LoaderConfig    `yaml:"loader"`
	InitialScene string          `yaml:"initial_scene,omitempty"`
	Scenes       []SceneConfig   `yaml:"scenes"`
	Bindings     []BindingConfig `yaml:"bindings"`
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// LoopConfig controls the frame loop.
type LoopConfig struct {
	TickRate   float64 `yaml:"tick_rate"`
	FrameLimit int     `yaml:"frame_limit,omitempty"` // stop after this many ticks; 0 runs until closed
	Profiling  bool    `yaml:"profiling,omitempty"`
}

type RendererConfig struct {
	PresentMode string     `yaml:"present_mode,omitempty"` // "fifo" or "immediate"
	MSAA        int        `yaml:"msaa,omitempty"`         // 1 or 4
	Software    bool       `yaml:"software,omitempty"`     // force the fallback adapter
	Ambient     [3]float32 `yaml:"ambient,omitempty"`
}

// CameraConfig describes the perspective camera and how it follows an entity.
type CameraConfig struct {
	Fov      float32      `yaml:"fov"` // degrees
	Near     float32      `yaml:"near"`
	Far      float32      `yaml:"far"`
	Position [3]float32   `yaml:"position"`
	Target   [3]float32   `yaml:"target"`
	Follow   FollowConfig `yaml:"follow,omitempty"`
}

type FollowConfig struct {
	Mode   string     `yaml:"mode,omitempty"` // free, locked, offset
	Offset [3]float32 `yaml:"offset,omitempty"`
}

// LoaderConfig sizes the asset loader.
type LoaderConfig struct {
	Workers int    `yaml:"workers"`
	Root    string `yaml:"root,omitempty"` // prefix applied to relative asset paths
}

// SceneConfig describes one switchable scene.
type SceneConfig struct {
	Name       string         `yaml:"name"`
	ClearColor [4]float32     `yaml:"clear_color"`
	Lights     []LightConfig  `yaml:"lights,omitempty"`
	Assets     []AssetConfig  `yaml:"assets,omitempty"`
	Entities   []EntityConfig `yaml:"entities,omitempty"`
}

type LightConfig struct {
	Name      string        `yaml:"name,omitempty"`
	Type      string        `yaml:"type,omitempty"` // directional, point
	Color     uint32        `yaml:"color"`          // 0xRRGGBB
	Intensity float32       `yaml:"intensity"`
	Position  [3]float32    `yaml:"position"`
	Target    [3]float32    `yaml:"target"`
	Range     float32       `yaml:"range,omitempty"`
	Shadow    *ShadowConfig `yaml:"shadow,omitempty"`
}

type ShadowConfig struct {
	Bias    float32 `yaml:"bias"`
	MapSize uint32  `yaml:"map_size"`
	Near    float32 `yaml:"near"`
	Far     float32 `yaml:"far"`
	Left    float32 `yaml:"left"`
	Right   float32 `yaml:"right"`
	Top     float32 `yaml:"top"`
	Bottom  float32 `yaml:"bottom"`
}

// AssetConfig is environment geometry loaded into a scene.
type AssetConfig struct {
	Path     string     `yaml:"path"`
	Kind     string     `yaml:"kind,omitempty"` // gltf, glb, primitive; inferred from path when empty
	Position [3]float32 `yaml:"position,omitempty"`
}

// EntityConfig is a controllable character placed in a scene.
type EntityConfig struct {
	Name         string     `yaml:"name"`
	Model        string     `yaml:"model"`
	Kind         string     `yaml:"kind,omitempty"`
	Position     [3]float32 `yaml:"position,omitempty"`
	Velocity     [3]float32 `yaml:"velocity,omitempty"`
	Acceleration [3]float32 `yaml:"acceleration,omitempty"`
	Deceleration [3]float32 `yaml:"deceleration,omitempty"`
	IdleClip     string     `yaml:"idle_clip,omitempty"`
	OneShot      []string   `yaml:"one_shot,omitempty"` // clips played once instead of looping
	Follow       bool       `yaml:"follow,omitempty"`   // camera follows this entity when it moves
}

// Binding actions.
const (
	ActionSwitchScene = "switch_scene"
	ActionMove        = "move"
	ActionPlay        = "play"
)

// BindingConfig maps one key to one command.
type BindingConfig struct {
	Key    string  `yaml:"key"`
	Action string  `yaml:"action"`
	Scene  string  `yaml:"scene,omitempty"`
	Entity string  `yaml:"entity,omitempty"`
	Axis   string  `yaml:"axis,omitempty"`
	Delta  float32 `yaml:"delta,omitempty"`
	Clip   string  `yaml:"clip,omitempty"`
}

// Load reads, defaults and validates the configuration file at path.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - *Config: the configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	c, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// LoadYAML decodes, defaults and validates a configuration.
// Unknown fields are rejected.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - *Config: the configuration
//   - error: error if decoding or validation fails
func LoadYAML(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Scene returns the scene configuration with the given name.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneConfig: the scene
//   - bool: false if no scene has that name
func (c *Config) Scene(name string) (SceneConfig, bool) {
	for _, s := range c.Scenes {
		if s.Name == name {
			return s, true
		}
	}
	return SceneConfig{}, false
}

// StartScene returns the scene shown first: InitialScene, or the first configured scene.
func (c *Config) StartScene() string {
	if c.InitialScene != "" {
		return c.InitialScene
	}
	if len(c.Scenes) > 0 {
		return c.Scenes[0].Name
	}
	return ""
}
