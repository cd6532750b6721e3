package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/common"
	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/Carmen-Shannon/oxy-stage/engine/config"
	"github.com/Carmen-Shannon/oxy-stage/engine/entity"
	"github.com/Carmen-Shannon/oxy-stage/engine/input"
	"github.com/Carmen-Shannon/oxy-stage/engine/loader"
	"github.com/Carmen-Shannon/oxy-stage/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/Carmen-Shannon/oxy-stage/engine/stage"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const heroModel = "resources/hero/scene.gltf"

// heldLoader keeps completion callbacks by path until the test delivers them.
type heldLoader struct {
	done map[string]func(loader.Result)
}

func newHeldLoader() *heldLoader {
	return &heldLoader{done: make(map[string]func(loader.Result))}
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

// deliver posts a completion through the engine, the way the real loader does.
func (h *heldLoader) deliver(e Engine, path string, res loader.Result) {
	done := h.done[path]
	e.Post(func() { done(res) })
}

type recordingRenderer struct {
	frames   []renderer.Frame
	released []resource.Resource
}

var _ renderer.Renderer = &recordingRenderer{}

func (r *recordingRenderer) Render(f renderer.Frame) error {
	r.frames = append(r.frames, f)
	return nil
}

func (r *recordingRenderer) Release(res resource.Resource) error {
	r.released = append(r.released, res)
	return nil
}

func (r *recordingRenderer) Resize(int, int)                      {}
func (r *recordingRenderer) SetPresentMode(renderer.PresentMode) {}
func (r *recordingRenderer) Close()                               {}

func (r *recordingRenderer) Stats() renderer.Stats {
	return renderer.Stats{Frames: uint64(len(r.frames))}
}

func (r *recordingRenderer) lastRoot() string {
	if len(r.frames) == 0 || r.frames[len(r.frames)-1].Root == nil {
		return ""
	}
	return r.frames[len(r.frames)-1].Root.Name
}

func heroFragment() scene.Fragment {
	body := scene.NewNode("body")
	body.Drawables = []scene.Drawable{{
		Geometry: &resource.Geometry{Name: "body", Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Indices: []uint32{0, 1, 2}},
		Material: &resource.Material{Name: "skin"},
	}}
	root := scene.NewNode("hero")
	root.AddChild(body)
	return scene.Fragment{
		Root: root,
		Clips: []animation.Clip{
			{Name: "idle", Duration: 4},
			{Name: "walk", Duration: 1},
		},
	}
}

func caveConfig() config.SceneConfig {
	return config.SceneConfig{
		Name: "cave",
		Entities: []config.EntityConfig{{
			Name:     "hero",
			Model:    heroModel,
			IdleClip: "idle",
		}},
	}
}

type fixture struct {
	ld  *heldLoader
	rec *recordingRenderer
	st  stage.Stage
	e   Engine
}

func newFixture(t *testing.T, options ...EngineBuilderOption) *fixture {
	t.Helper()
	f := &fixture{ld: newHeldLoader(), rec: &recordingRenderer{}}
	f.st = stage.NewStage(f.ld, stage.WithReleaser(f.rec))
	opts := append([]EngineBuilderOption{WithRenderer(f.rec), WithRouter(input.NewRouter())}, options...)
	f.e = NewEngine(f.st, opts...)
	return f
}

func TestForestCaveHeroSequence(t *testing.T) {
	f := newFixture(t)
	const dt = float32(0.25)

	require.NoError(t, f.st.AddScene(config.SceneConfig{Name: "forest"}))
	require.NoError(t, f.st.Registry().Activate("forest"))
	forest := f.st.Registry().Active()

	f.e.Tick(dt)
	require.Len(t, f.rec.frames, 1)
	assert.Equal(t, "forest", f.rec.lastRoot())

	require.NoError(t, f.st.AddScene(caveConfig()))
	f.e.Enqueue(input.SwitchScene{Scene: "cave"})
	f.e.Enqueue(input.Move{Entity: "hero", Axis: common.AxisX, Delta: 2})
	f.e.Tick(dt)

	assert.True(t, forest.Disposed())
	assert.Equal(t, "cave", f.rec.lastRoot())
	hero, ok := f.st.ActiveEntity("hero")
	require.True(t, ok)
	assert.Equal(t, entity.Pending, hero.LoadStatus())

	// The completion lands at the tick boundary: the hero attaches and is reconciled,
	// but its animation does not advance on this tick.
	f.ld.deliver(f.e, heroModel, loader.Result{Fragment: heroFragment()})
	f.e.Tick(dt)

	assert.Equal(t, entity.Loaded, hero.LoadStatus())
	cur, ok := hero.Animation().Current()
	require.True(t, ok)
	assert.Equal(t, "idle", cur.Name)
	assert.Zero(t, hero.Animation().Elapsed())
	visual := hero.Visual().(*scene.Node)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, visual.Translation)

	f.e.Tick(dt)
	assert.InDelta(t, 0.25, hero.Animation().Elapsed(), 1e-6)
	f.e.Tick(2 * dt)
	assert.InDelta(t, 0.75, hero.Animation().Elapsed(), 1e-6)

	assert.Len(t, f.rec.frames, 5)
	assert.Equal(t, "cave", f.rec.lastRoot())
	assert.Equal(t, uint64(5), f.e.Ticks())
}

func TestCompletionForDisposedSceneIsDropped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := &fixture{ld: newHeldLoader(), rec: &recordingRenderer{}}
	f.st = stage.NewStage(f.ld, stage.WithReleaser(f.rec), stage.WithLogger(zap.New(core)))
	f.e = NewEngine(f.st, WithRenderer(f.rec), WithRouter(input.NewRouter()))

	require.NoError(t, f.st.AddScene(caveConfig()))
	require.NoError(t, f.st.AddScene(config.SceneConfig{Name: "forest"}))
	cave := f.st.Registry().Active()

	f.e.Enqueue(input.SwitchScene{Scene: "forest"})
	f.e.Tick(0.1)
	require.True(t, cave.Disposed())

	f.ld.deliver(f.e, heroModel, loader.Result{Fragment: heroFragment()})
	assert.NotPanics(t, func() { f.e.Tick(0.1) })

	assert.Zero(t, cave.Resources().Len())
	assert.Empty(t, f.rec.released, "nothing from the late fragment is released")
	assert.Equal(t, 1, logs.FilterMessage("dropping model for stale entity").Len())
	assert.Equal(t, "forest", f.rec.lastRoot())
}

func TestEntitySettlesToIdleClip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.AddScene(caveConfig()))
	f.ld.deliver(f.e, heroModel, loader.Result{Fragment: heroFragment()})
	f.e.Tick(0.1)
	hero, _ := f.st.ActiveEntity("hero")

	f.e.Enqueue(input.Move{Entity: "hero", Axis: common.ForwardAxis, Delta: 1})
	f.e.Tick(0.1)
	cur, _ := hero.Animation().Current()
	assert.Equal(t, "walk", cur.Name)
	assert.Equal(t, entity.Moving, hero.State())

	f.e.Tick(0.1)
	cur, _ = hero.Animation().Current()
	assert.Equal(t, "idle", cur.Name)
	assert.Equal(t, entity.Idle, hero.State())
	assert.Equal(t, float32(1), hero.Position().Z())
}

func TestInboxKeepsArrivalOrder(t *testing.T) {
	f := newFixture(t)
	var got []int
	for i := range 5 {
		f.e.Post(func() { got = append(got, i) })
	}
	f.e.Post(func() {
		f.e.Post(func() { got = append(got, 99) })
	})

	f.e.Tick(0)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)

	f.e.Tick(0)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 99}, got)
}

func TestPanickingMessageDoesNotAbortTick(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newFixture(t, WithLogger(zap.New(core)))
	require.NoError(t, f.st.AddScene(config.SceneConfig{Name: "forest"}))

	ran := false
	f.e.Post(func() { panic("boom") })
	f.e.Post(func() { ran = true })

	assert.NotPanics(t, func() { f.e.Tick(0.1) })
	assert.Equal(t, 1, logs.FilterMessage("inbox message recovered from panic").Len())
	assert.True(t, ran)
	assert.Len(t, f.rec.frames, 1)
}

// brokenVisual panics whenever the loop reconciles onto it.
type brokenVisual struct{}

func (brokenVisual) SetTranslation(mgl32.Vec3) { panic("no node") }

func TestPanickingEntityDoesNotStopOthers(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	f := newFixture(t, WithLogger(zap.New(core)))
	require.NoError(t, f.st.AddScene(config.SceneConfig{Name: "forest"}))
	active := f.st.Registry().Active()

	bad := f.st.Entities().Spawn("bad", active.ID())
	active.AddEntity(bad.ID())
	require.NoError(t, bad.MarkLoaded(brokenVisual{}))

	good := f.st.Entities().Spawn("good", active.ID())
	active.AddEntity(good.ID())
	require.NoError(t, good.MarkLoaded(scene.NewNode("good")))
	good.Animation().LoadClips([]animation.Clip{{Name: "idle", Duration: 4}})
	require.NoError(t, good.Animation().Play("idle"))

	f.e.Tick(0.5)
	f.e.Tick(0.5)

	assert.Equal(t, 2, logs.FilterMessage("entity update recovered from panic").Len())
	assert.InDelta(t, 0.5, good.Animation().Elapsed(), 1e-6)
	assert.Len(t, f.rec.frames, 2)
	assert.Zero(t, logs.FilterMessage("tick recovered from panic").Len())
}

func TestEmptyModelCompletionKeepsRendering(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.AddScene(caveConfig()))

	f.ld.deliver(f.e, heroModel, loader.Result{Fragment: scene.Fragment{}})
	f.e.Tick(0.1)
	f.e.Tick(0.1)

	hero, ok := f.st.ActiveEntity("hero")
	require.True(t, ok)
	assert.Equal(t, entity.Failed, hero.LoadStatus())
	assert.Len(t, f.rec.frames, 2)
}

func TestStateStaysRunningUntilLoopExits(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, WithTickRate(1000), WithLogger(zap.New(core)))
	require.NoError(t, f.st.AddScene(config.SceneConfig{Name: "forest"}))

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.e.SetTickCallback(func(float32) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	f.e.Start()
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not tick")
	}

	// The loop goroutine is mid-tick, so a quit does not make manual ticks safe yet.
	f.e.Quit()
	assert.Equal(t, Running, f.e.State())
	ticks := f.e.Ticks()
	f.e.Tick(0.1)
	assert.Equal(t, ticks, f.e.Ticks())
	assert.Equal(t, 1, logs.FilterMessage("manual tick ignored while running").Len())

	close(release)
	f.e.Stop()
	assert.Equal(t, Stopped, f.e.State())
}

func TestNoActiveSceneRendersNothing(t *testing.T) {
	f := newFixture(t)
	f.e.Tick(0.1)
	assert.Empty(t, f.rec.frames)
	assert.Equal(t, uint64(1), f.e.Ticks())
}

func TestEnqueueWithoutRouterIsDropped(t *testing.T) {
	ld := newHeldLoader()
	st := stage.NewStage(ld)
	require.NoError(t, st.AddScene(config.SceneConfig{Name: "forest"}))
	require.NoError(t, st.AddScene(config.SceneConfig{Name: "cave"}))
	e := NewEngine(st)

	e.Enqueue(input.SwitchScene{Scene: "cave"})
	e.Tick(0.1)
	assert.Equal(t, "forest", st.Registry().Active().Name())
}

func TestStartStop(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, WithTickRate(500), WithLogger(zap.New(core)))
	require.NoError(t, f.st.AddScene(config.SceneConfig{Name: "forest"}))

	assert.Equal(t, Stopped, f.e.State())
	f.e.Start()
	f.e.Start()
	assert.Equal(t, Running, f.e.State())

	require.Eventually(t, func() bool { return f.e.Ticks() >= 3 }, time.Second, time.Millisecond)
	f.e.Tick(1)
	assert.Equal(t, 1, logs.FilterMessage("manual tick ignored while running").Len())

	f.e.Stop()
	f.e.Stop()
	assert.Equal(t, Stopped, f.e.State())
	stopped := f.e.Ticks()

	// Messages posted after Stop stay queued until the next tick.
	ran := false
	f.e.Post(func() { ran = true })
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, stopped, f.e.Ticks())
	assert.False(t, ran)

	f.e.Tick(0)
	assert.True(t, ran)
}

func TestRunHeadlessUntilQuit(t *testing.T) {
	f := newFixture(t, WithTickRate(1000), WithProfiling(true))
	require.NoError(t, f.st.AddScene(config.SceneConfig{Name: "forest"}))
	f.e.SetTickRate(2000)
	f.e.DisableProfiler()

	f.e.SetTickCallback(func(float32) {
		if f.e.Ticks() >= 5 {
			f.e.Quit()
		}
	})

	done := make(chan struct{})
	go func() {
		f.e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.Equal(t, Stopped, f.e.State())
	assert.GreaterOrEqual(t, f.e.Ticks(), uint64(5))
	assert.Equal(t, "forest", f.rec.lastRoot())
}
