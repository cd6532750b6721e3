package input

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/config"
	"github.com/Carmen-Shannon/oxy-stage/engine/entity"
	"github.com/Carmen-Shannon/oxy-stage/engine/loader"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/Carmen-Shannon/oxy-stage/engine/stage"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// heldLoader keeps completion callbacks by path until the test delivers them.
type heldLoader struct {
	done map[string]func(loader.Result)
}

func (h *heldLoader) Load(req loader.Request, done func(loader.Result)) string {
	h.done[req.Path] = done
	return req.Path
}

func (h *heldLoader) LoadSync(loader.Request) (scene.Fragment, error) {
	return scene.Fragment{}, errors.New("not supported")
}

func (h *heldLoader) Warm(context.Context, []loader.Request) error { return nil }
func (h *heldLoader) Cached(loader.Request) bool                   { return false }
func (h *heldLoader) Close()                                       {}

type keySource struct {
	cb func(uint32)
}

func (k *keySource) SetKeyDownCallback(cb func(uint32)) { k.cb = cb }

const heroModel = "resources/hero/scene.gltf"

func newStage(t *testing.T, log *zap.Logger, follow camera.CameraController) (stage.Stage, *heldLoader) {
	t.Helper()
	ld := &heldLoader{done: make(map[string]func(loader.Result))}
	opts := []stage.StageBuilderOption{stage.WithLogger(log)}
	if follow != nil {
		opts = append(opts, stage.WithFollowController(follow))
	}
	st := stage.NewStage(ld, opts...)
	require.NoError(t, st.AddScene(config.SceneConfig{
		Name:     "cave",
		Entities: []config.EntityConfig{{Name: "hero", Model: heroModel, Follow: true}},
	}))
	require.NoError(t, st.AddScene(config.SceneConfig{Name: "forest"}))
	return st, ld
}

func loadHero(ld *heldLoader) {
	ld.done[heroModel](loader.Result{Fragment: scene.Fragment{
		Root: scene.NewNode("hero"),
		Clips: []animation.Clip{
			{Name: "idle", Duration: 2},
			{Name: "walk", Duration: 1},
		},
	}})
}

func TestFromBindingsRoutesMappedKeys(t *testing.T) {
	r, err := FromBindings(config.Default().Bindings, WithBinding(common.KeySpace, PlayAnimation{Entity: "hero", Clip: "jump"}))
	require.NoError(t, err)

	cmd, ok := r.Route(common.Key1)
	require.True(t, ok)
	assert.Equal(t, SwitchScene{Scene: "scene1"}, cmd)

	cmd, ok = r.Route(common.KeySpace)
	require.True(t, ok)
	assert.Equal(t, "play(hero, jump)", cmd.String())

	_, ok = r.Route(common.KeyW)
	assert.False(t, ok)

	_, err = FromBindings([]config.BindingConfig{{Key: "f13", Action: config.ActionSwitchScene}})
	assert.Error(t, err)
	_, err = FromBindings([]config.BindingConfig{{Key: "w", Action: config.ActionMove, Axis: "w"}})
	assert.Error(t, err)
}

func TestBindIgnoresUnmappedKeys(t *testing.T) {
	r := NewRouter(WithBinding(common.KeyUp, Move{Entity: "hero", Axis: common.AxisZ, Delta: 1}))
	src := &keySource{}
	var got []Command
	r.Bind(src, func(c Command) { got = append(got, c) })

	src.cb(common.KeyW)
	src.cb(common.KeyUp)
	src.cb(common.Key9)

	require.Len(t, got, 1)
	assert.Equal(t, Move{Entity: "hero", Axis: common.AxisZ, Delta: 1}, got[0])
}

func TestSwitchToActiveSceneIsNoop(t *testing.T) {
	st, _ := newStage(t, zap.NewNop(), nil)
	r := NewRouter()
	cave := st.Registry().Active()

	r.Apply(st, SwitchScene{Scene: "cave"})
	assert.Same(t, cave, st.Registry().Active())
	assert.False(t, cave.Disposed())

	r.Apply(st, SwitchScene{Scene: "forest"})
	assert.True(t, cave.Disposed())
	assert.Equal(t, "forest", st.Registry().Active().Name())
}

func TestSwitchToUnknownSceneWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st, _ := newStage(t, zap.NewNop(), nil)
	r := NewRouter(WithLogger(zap.New(core)))

	r.Apply(st, SwitchScene{Scene: "desert"})
	assert.Equal(t, "cave", st.Registry().Active().Name())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "scene switch failed", logs.All()[0].Message)
}

func TestMoveOnFailedEntityIsDropped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st, ld := newStage(t, zap.NewNop(), nil)
	r := NewRouter(WithLogger(zap.New(core)))

	ld.done[heroModel](loader.Result{Err: errors.New("missing file")})
	hero, ok := st.ActiveEntity("hero")
	require.True(t, ok)
	require.Equal(t, entity.Failed, hero.LoadStatus())

	r.Apply(st, Move{Entity: "hero", Axis: common.AxisX, Delta: 3})
	assert.Equal(t, mgl32.Vec3{}, hero.Position())
	assert.Equal(t, entity.Idle, hero.State())
	assert.Equal(t, 1, logs.FilterMessage("dropping command for failed entity").Len())

	r.Apply(st, PlayAnimation{Entity: "hero", Clip: "idle"})
	assert.Equal(t, 2, logs.FilterMessage("dropping command for failed entity").Len())
}

func TestCommandForMissingEntityIsDropped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st, _ := newStage(t, zap.NewNop(), nil)
	r := NewRouter(WithLogger(zap.New(core)))

	r.Apply(st, Move{Entity: "ghost", Axis: common.AxisX, Delta: 1})
	r.Apply(st, SwitchScene{Scene: "forest"})
	r.Apply(st, Move{Entity: "hero", Axis: common.AxisX, Delta: 1})

	assert.Equal(t, 2, logs.FilterMessage("dropping command for missing entity").Len())
}

func TestMovePendingEntityUpdatesLogicalPosition(t *testing.T) {
	st, _ := newStage(t, zap.NewNop(), nil)
	r := NewRouter()

	r.Apply(st, Move{Entity: "hero", Axis: common.AxisZ, Delta: 0.5})
	r.Apply(st, Move{Entity: "hero", Axis: common.AxisZ, Delta: 0.5})

	hero, _ := st.ActiveEntity("hero")
	assert.Equal(t, entity.Pending, hero.LoadStatus())
	assert.Equal(t, entity.Moving, hero.State())
	assert.InDelta(t, 1.0, hero.Position().Z(), 1e-6)
}

func TestForwardMovePlaysWalk(t *testing.T) {
	st, ld := newStage(t, zap.NewNop(), nil)
	r := NewRouter()
	loadHero(ld)
	hero, _ := st.ActiveEntity("hero")

	r.Apply(st, Move{Entity: "hero", Axis: common.AxisZ, Delta: -1})
	_, playing := hero.Animation().Current()
	assert.False(t, playing)

	r.Apply(st, Move{Entity: "hero", Axis: common.AxisZ, Delta: 1})
	cur, ok := hero.Animation().Current()
	require.True(t, ok)
	assert.Equal(t, "walk", cur.Name)
}

func TestPlayOnPendingEntityIsRejected(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	st, _ := newStage(t, zap.NewNop(), nil)
	r := NewRouter(WithLogger(zap.New(core)))

	r.Apply(st, PlayAnimation{Entity: "hero", Clip: "walk"})

	entries := logs.FilterMessage("play rejected").All()
	require.Len(t, entries, 1)
	err, ok := entries[0].ContextMap()["error"].(string)
	require.True(t, ok)
	assert.Contains(t, err, animation.ErrClipsNotReady.Error())
}

func TestMoveAppliesCameraFollow(t *testing.T) {
	follow := camera.NewCameraController(
		camera.WithFollowMode(camera.FollowOffset),
		camera.WithFollowOffset(mgl32.Vec3{0, 2, -4}),
	)
	st, _ := newStage(t, zap.NewNop(), follow)
	r := NewRouter()

	r.Apply(st, Move{Entity: "hero", Axis: common.AxisX, Delta: 3})
	assert.True(t, st.Camera().Position().ApproxEqual(mgl32.Vec3{3, 2, -4}))
	assert.True(t, st.Camera().Target().ApproxEqual(mgl32.Vec3{3, 0, 0}))
}
