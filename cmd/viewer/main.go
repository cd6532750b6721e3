// Command viewer shows the configured scenes in a window, or drives them headless.
//
// Keys switch scenes and move or animate entities as bound in the config file.
// Without -config it starts the built-in two-scene setup (keys 1 and 2).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-stage/engine"
	"github.com/Carmen-Shannon/oxy-stage/engine/config"
	"github.com/Carmen-Shannon/oxy-stage/engine/input"
	"github.com/Carmen-Shannon/oxy-stage/engine/loader"
	"github.com/Carmen-Shannon/oxy-stage/engine/logging"
	"github.com/Carmen-Shannon/oxy-stage/engine/renderer"
	"github.com/Carmen-Shannon/oxy-stage/engine/stage"
	"github.com/Carmen-Shannon/oxy-stage/engine/window"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a viewer YAML file (default: built-in scene1/scene2 setup)")
	headless := flag.Bool("headless", false, "Run without a window or GPU")
	frames := flag.Int("frames", 0, "Stop after this many ticks (0: use loop.frame_limit, then run until closed)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logJSON := flag.Bool("log-json", false, "Log JSON to stderr instead of the console format")
	flag.Parse()

	if err := run(*configPath, *headless, *frames, *logLevel, *logJSON); err != nil {
		fmt.Fprintln(os.Stderr, "viewer:", err)
		os.Exit(1)
	}
}

func run(configPath string, headless bool, frames int, logLevel string, logJSON bool) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	newLogger := logging.NewDevelopment
	if logJSON {
		newLogger = logging.New
	}
	log, err := newLogger(level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.Default()
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	presentMode, err := renderer.ParsePresentMode(cfg.Renderer.PresentMode)
	if err != nil {
		return err
	}

	var win window.Window
	backend := renderer.BackendTypeHeadless
	if !headless {
		win, err = window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
		)
		if err != nil {
			return err
		}
		defer func() { _ = win.Close() }()
		backend = renderer.BackendTypeWGPU
	}

	rend, err := renderer.NewRenderer(backend, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.Software),
		renderer.WithAmbient(cfg.Renderer.Ambient),
		renderer.WithLogger(log.Named("renderer")),
	)
	if err != nil {
		return err
	}
	defer rend.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Completions are posted to the loop, which exists before any load is issued.
	var loop engine.Engine
	ld := loader.NewLoader(
		loader.WithWorkers(cfg.Loader.Workers),
		loader.WithRoot(cfg.Loader.Root),
		loader.WithLogger(log.Named("loader")),
		loader.WithPoster(loader.PosterFunc(func(fn func()) { loop.Post(fn) })),
	)
	if err := ld.Warm(ctx, warmRequests(cfg)); err != nil {
		log.Warn("asset warm-up incomplete", zap.Error(err))
	}

	router, err := input.FromBindings(cfg.Bindings, input.WithLogger(log.Named("input")))
	if err != nil {
		return err
	}

	st, err := stage.FromConfig(cfg, ld,
		stage.WithReleaser(rend),
		stage.WithLogger(log.Named("stage")),
	)
	if err != nil {
		return err
	}

	loop = engine.NewEngine(st,
		engine.WithWindow(win),
		engine.WithRouter(router),
		engine.WithRenderer(rend),
		engine.WithTickRate(cfg.Loop.TickRate),
		engine.WithProfiling(cfg.Loop.Profiling),
		engine.WithLogger(log.Named("engine")),
	)

	if err := stage.Populate(st, cfg); err != nil {
		return err
	}

	if frames == 0 {
		frames = cfg.Loop.FrameLimit
	}
	if frames > 0 {
		limit := uint64(frames)
		loop.SetTickCallback(func(float32) {
			if loop.Ticks() >= limit {
				loop.Quit()
			}
		})
	}
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			loop.Quit()
		case <-stopped:
		}
	}()

	active := ""
	if a := st.Registry().Active(); a != nil {
		active = a.Name()
	}
	log.Info("viewer started",
		zap.Bool("headless", headless),
		zap.Strings("scenes", st.Registry().Names()),
		zap.String("active", active))

	loop.Run()
	close(stopped)

	// Late completions still pass through the loop so they meet the liveness checks.
	st.Teardown()
	ld.Close()
	loop.Tick(0)

	s := rend.Stats()
	log.Info("viewer stopped",
		zap.Uint64("ticks", loop.Ticks()),
		zap.Uint64("frames", s.Frames),
		zap.Uint64("released", s.Released),
		zap.Int("resident", s.Resident))
	return nil
}

// warmRequests lists every asset and model the configured scenes load.
func warmRequests(cfg *config.Config) []loader.Request {
	var reqs []loader.Request
	add := func(path, kind string) {
		k, err := loader.ParseKind(kind)
		if err != nil {
			return
		}
		reqs = append(reqs, loader.Request{Path: path, Kind: k})
	}
	for _, sc := range cfg.Scenes {
		for _, a := range sc.Assets {
			add(a.Path, a.Kind)
		}
		for _, e := range sc.Entities {
			add(e.Model, e.Kind)
		}
	}
	return reqs
}
