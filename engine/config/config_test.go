package config

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func examplePath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "examples", "viewer.yaml")
}

func TestLoadExample(t *testing.T) {
	c, err := Load(examplePath(t))
	require.NoError(t, err)

	assert.Equal(t, "scene1", c.StartScene())
	require.Len(t, c.Scenes, 2)

	s1, ok := c.Scene("scene1")
	require.True(t, ok)
	require.Len(t, s1.Lights, 1)
	assert.Equal(t, uint32(0xFFFFFF), s1.Lights[0].Color)
	require.NotNil(t, s1.Lights[0].Shadow)
	assert.Equal(t, uint32(4096), s1.Lights[0].Shadow.MapSize)
	require.Len(t, s1.Entities, 1)
	assert.Equal(t, []string{"jump"}, s1.Entities[0].OneShot)

	s2, _ := c.Scene("scene2")
	assert.Equal(t, "directional", s2.Lights[0].Type, "defaulted")
	assert.Len(t, c.Bindings, 8)
	assert.Equal(t, "offset", c.Camera.Follow.Mode)
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "scene1", c.StartScene())
	assert.Equal(t, float32(75), c.Camera.Fov)
	assert.Equal(t, "resources/scene2/scene.gltf", c.Scenes[1].Assets[0].Path)
	assert.Len(t, c.Bindings, 2)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Default().Marshal()
	require.NoError(t, err)

	c, err := LoadYAML(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadYAMLEmpty(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 60.0, c.Loop.TickRate)
	assert.Equal(t, "", c.StartScene())
	assert.Equal(t, 4, c.Renderer.MSAA)
	assert.Equal(t, [3]float32{0.15, 0.15, 0.18}, c.Renderer.Ambient)
}

func TestLoadYAMLRejectsUnknownField(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("window:\n  colour: red\n"))
	assert.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	src := `
initial_scene: nowhere
camera: {follow: {mode: orbit}}
renderer: {msaa: 2}
scenes:
  - name: forest
    entities:
      - {name: hero}
      - {name: hero, model: hero.glb}
  - name: forest
bindings:
  - {key: "1", action: switch_scene, scene: cave}
  - {key: "1", action: move, entity: hero, axis: q}
  - {key: f13, action: play}
  - {key: j, action: dance}
`
	_, err := LoadYAML(strings.NewReader(src))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)

	msg := err.Error()
	for _, want := range []string{
		`initial_scene "nowhere"`,
		`camera.follow.mode "orbit"`,
		`renderer.msaa must be 1 or 4 (got 2)`,
		`entity "hero": model is required`,
		`entity "hero" defined twice`,
		`scene "forest" defined twice`,
		`undefined scene "cave"`,
		`key "1" bound twice`,
		`unknown axis "q"`,
		`unknown key "f13"`,
		`unknown action "dance"`,
	} {
		assert.Contains(t, msg, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
