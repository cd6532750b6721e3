package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-stage/engine/entity"
	"github.com/Carmen-Shannon/oxy-stage/engine/input"
	"github.com/Carmen-Shannon/oxy-stage/engine/loader"
	"github.com/Carmen-Shannon/oxy-stage/engine/profiler"
	"github.com/Carmen-Shannon/oxy-stage/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stage/engine/stage"
	"github.com/Carmen-Shannon/oxy-stage/engine/window"
	"go.uber.org/zap"
)

// LoopState is the run state of the frame loop.
type LoopState int32

const (
	Stopped LoopState = iota
	Running
)

func (s LoopState) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// DefaultInboxSize is how many posted messages the loop buffers between ticks.
const DefaultInboxSize = 1024

type engine struct {
	mu              sync.Mutex
	state           atomic.Int32
	tickRateChannel chan time.Duration
	wg              sync.WaitGroup
	quitChannel     chan struct{}
	quitOnce        *sync.Once

	inbox chan func()

	window   window.Window
	stage    stage.Stage
	router   input.Router
	renderer renderer.Renderer
	logger   *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool
	engineTickRate   time.Duration
	tickCallback     func(deltaTime float32)
	ticks            atomic.Uint64
	inboxSize        int
}

// Engine is the frame loop. Each tick it drains the inbox (commands and load completions,
// in arrival order), reconciles and animates the active scene's loaded entities, settles
// entities that stopped moving, and renders the active scene.
//
// All scene state is touched only by the goroutine running the ticks. Other goroutines
// reach it through Post and Enqueue.
type Engine interface {
	loader.Poster

	// Window returns the window the engine presents to, or nil when headless.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Stage returns the context the engine drives.
	//
	// Returns:
	//   - stage.Stage: the stage
	Stage() stage.Stage

	// EnableProfiler enables periodic tick-rate and memory reports.
	EnableProfiler()

	// DisableProfiler disables performance reports.
	DisableProfiler()

	// SetTickRate sets the tick rate in ticks per second.
	// If the engine is running, the change takes effect immediately.
	//
	// Parameters:
	//   - fps: the new tick rate; non-positive values select 60
	SetTickRate(fps float64)

	// SetTickCallback registers a function called at the end of every tick, on the loop goroutine.
	//
	// Parameters:
	//   - callback: receives the tick's delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// Enqueue queues a command to be applied at the start of the next tick.
	// Safe to call from any goroutine.
	//
	// Parameters:
	//   - cmd: the command
	Enqueue(cmd input.Command)

	// State reports whether the loop goroutine is running.
	//
	// Returns:
	//   - LoopState: Stopped or Running
	State() LoopState

	// Ticks returns the number of ticks run so far.
	//
	// Returns:
	//   - uint64: the tick count
	Ticks() uint64

	// Start launches the loop goroutine. Does nothing while a loop goroutine is still running,
	// including one that has been told to quit but has not yet exited.
	Start()

	// Stop signals the loop goroutine to exit and waits for it. Outstanding loads are not
	// cancelled; their completions stay queued for a later tick.
	// Must not be called from the loop goroutine; use Quit there.
	Stop()

	// Tick runs one tick with the given delta on the calling goroutine, processing the
	// messages that arrived since the previous tick. Ignored while the loop is running.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous tick
	Tick(deltaTime float32)

	// Run starts the loop and blocks until the window closes or Quit is called,
	// then stops the loop. With a window it must be called from the main goroutine.
	Run()

	// Quit signals the loop to stop and asks the window to close. Safe from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a stopped Engine driving st.
//
// Parameters:
//   - st: the stage to drive; must not be nil
//   - options: a variadic list of EngineBuilderOption functions
//
// Returns:
//   - Engine: the engine
func NewEngine(st stage.Stage, options ...EngineBuilderOption) Engine {
	if st == nil {
		panic("engine: nil stage")
	}
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		quitOnce:        &sync.Once{},
		stage:           st,
		logger:          zap.NewNop(),
		engineTickRate:  time.Second / 60,
		inboxSize:       DefaultInboxSize,
	}

	for _, opt := range options {
		opt(e)
	}

	e.inbox = make(chan func(), e.inboxSize)
	e.profiler = profiler.NewProfiler(e.logger.Named("profiler"))

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			e.Post(func() {
				if e.renderer != nil {
					e.renderer.Resize(width, height)
				}
				if height > 0 {
					e.stage.Camera().SetAspect(float32(width) / float32(height))
				}
			})
		})
		if e.router != nil {
			e.router.Bind(e.window, e.Enqueue)
		}
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Stage() stage.Stage {
	return e.stage
}

// Post queues fn to run on the loop goroutine at the next tick boundary.
// It blocks only when the inbox is full.
func (e *engine) Post(fn func()) {
	if fn == nil {
		return
	}
	e.inbox <- fn
}

func (e *engine) Enqueue(cmd input.Command) {
	if cmd == nil || e.router == nil {
		return
	}
	e.Post(func() {
		e.router.Apply(e.stage, cmd)
	})
}

func (e *engine) State() LoopState {
	return LoopState(e.state.Load())
}

func (e *engine) Ticks() uint64 {
	return e.ticks.Load()
}

func (e *engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.State() == Running {
		return
	}
	e.quitChannel = make(chan struct{})
	e.quitOnce = &sync.Once{}
	e.state.Store(int32(Running))

	e.wg.Add(1)
	go e.handleEngine(e.quitChannel)
}

func (e *engine) Stop() {
	e.signalQuit()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
	if e.window != nil {
		e.window.RequestClose()
	}
}

func (e *engine) Run() {
	e.Start()
	if e.window != nil {
		e.window.ProcessMessages()
	} else {
		e.mu.Lock()
		quit := e.quitChannel
		e.mu.Unlock()
		<-quit
	}
	e.Stop()
}

func (e *engine) Tick(deltaTime float32) {
	if e.State() == Running {
		e.logger.Warn("manual tick ignored while running")
		return
	}
	e.tick(deltaTime)
}

// signalQuit closes the quit channel to signal the loop goroutine to exit.
// Uses sync.Once to ensure the channel is only closed once per Start. The state stays Running
// until the loop goroutine has returned.
func (e *engine) signalQuit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop in its own goroutine and listens for
// rate changes via tickRateChannel. Exits when quit is closed.
func (e *engine) handleEngine(quit <-chan struct{}) {
	defer e.wg.Done()
	defer e.state.Store(int32(Stopped))

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.tick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// tick runs one frame. Inbox messages and entities recover their own panics so the rest of the
// frame still runs; anything else that panics abandons the frame and the loop carries on.
func (e *engine) tick(dt float32) {
	n := e.ticks.Add(1)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tick recovered from panic", zap.Uint64("tick", n), zap.Any("panic", r))
		}
	}()

	e.drain()
	e.update(dt)
	e.render()

	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

// drain runs the messages queued before the tick began. Messages posted while draining wait
// for the next tick.
func (e *engine) drain() {
	for n := len(e.inbox); n > 0; n-- {
		e.runMessage(<-e.inbox)
	}
}

func (e *engine) runMessage(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("inbox message recovered from panic", zap.Any("panic", r))
		}
	}()
	fn()
}

// update reconciles and animates the active scene's entities. An entity whose visual attached
// this tick is only reconciled; its animation starts advancing on the next tick.
func (e *engine) update(dt float32) {
	active := e.stage.Registry().Active()
	if active == nil || active.Disposed() {
		return
	}
	store := e.stage.Entities()
	for _, id := range active.Entities() {
		if ent, ok := store.Get(id); ok {
			e.updateEntity(ent, dt)
		}
	}
}

func (e *engine) updateEntity(ent entity.Entity, dt float32) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("entity update recovered from panic", zap.String("entity", ent.Name()), zap.Any("panic", r))
		}
	}()
	if ent.LoadStatus() == entity.Loaded && !ent.Reconcile() {
		ent.Animation().Advance(dt)
	}
	if ent.Settle() {
		e.settle(ent)
	}
}

// settle returns an entity that stopped moving to its idle clip.
func (e *engine) settle(ent entity.Entity) {
	idle := ent.IdleClip()
	if idle == "" || !ent.Animation().Ready() {
		return
	}
	if err := ent.Animation().Play(idle); err != nil {
		e.logger.Debug("idle clip rejected", zap.String("entity", ent.Name()), zap.Error(err))
	}
}

func (e *engine) render() {
	if e.renderer == nil {
		return
	}
	active := e.stage.Registry().Active()
	if active == nil || active.Disposed() {
		return
	}
	err := e.renderer.Render(renderer.Frame{
		Root:       active.Root(),
		Camera:     e.stage.Camera(),
		Lights:     active.Lights(),
		ClearColor: active.ClearColor(),
	})
	if err != nil {
		e.logger.Warn("render failed", zap.String("scene", active.Name()), zap.Error(err))
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.State() == Running {
		// Non-blocking send; a pending update is replaced.
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}
