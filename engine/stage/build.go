package stage

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/engine/animation"
	"github.com/Carmen-Shannon/oxy-stage/engine/config"
	"github.com/Carmen-Shannon/oxy-stage/engine/entity"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/loader"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

func (s *stage) Build(name string) (scene.Descriptor, error) {
	cfg, ok := s.configs[name]
	if !ok {
		return nil, fmt.Errorf("build %q: %w", name, scene.ErrUnknownScene)
	}

	lights, err := buildLights(cfg.Lights)
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", name, err)
	}

	// Resolve every kind before anything is spawned so a bad entry leaves no half-built scene.
	assetKinds := make([]loader.Kind, len(cfg.Assets))
	for i, a := range cfg.Assets {
		if assetKinds[i], err = loader.ParseKind(a.Kind); err != nil {
			return nil, fmt.Errorf("build %q asset %q: %w", name, a.Path, err)
		}
	}
	entityKinds := make([]loader.Kind, len(cfg.Entities))
	for i, e := range cfg.Entities {
		if entityKinds[i], err = loader.ParseKind(e.Kind); err != nil {
			return nil, fmt.Errorf("build %q entity %q: %w", name, e.Name, err)
		}
	}

	desc := scene.NewDescriptor(cfg.Name,
		scene.WithLights(lights...),
		scene.WithClearColor(cfg.ClearColor),
		scene.WithReleaser(s.releaser),
		scene.WithLogger(s.logger),
		scene.WithDisposeHook(s.onDispose),
	)

	for i, ec := range cfg.Entities {
		ent := s.entities.Spawn(ec.Name, desc.ID(),
			entity.WithModel(ec.Model),
			entity.WithPosition(ec.Position),
			entity.WithMotion(ec.Velocity, ec.Acceleration, ec.Deceleration),
			entity.WithIdleClip(ec.IdleClip),
		)
		desc.AddEntity(ent.ID())
		if ec.Follow {
			s.subjects[desc.ID()] = ec.Name
		}
		s.loadModel(desc, ent.ID(), loader.Request{Path: ec.Model, Kind: entityKinds[i]}, ec.OneShot)
	}

	for i, a := range cfg.Assets {
		s.loadAsset(desc, loader.Request{Path: a.Path, Kind: assetKinds[i]}, a.Position)
	}

	s.logger.Debug("scene built",
		zap.String("scene", desc.Name()),
		zap.String("id", desc.ID()),
		zap.Int("lights", len(lights)),
		zap.Int("assets", len(cfg.Assets)),
		zap.Int("entities", len(cfg.Entities)))
	return desc, nil
}

func buildLights(cfgs []config.LightConfig) ([]light.Light, error) {
	lights := make([]light.Light, 0, len(cfgs))
	for _, lc := range cfgs {
		lt, err := light.ParseLightType(lc.Type)
		if err != nil {
			return nil, err
		}
		opts := []light.LightBuilderOption{
			light.WithName(lc.Name),
			light.WithHexColor(lc.Color),
			light.WithIntensity(lc.Intensity),
			light.WithPosition(lc.Position),
			light.WithTarget(lc.Target),
		}
		if lc.Range > 0 {
			opts = append(opts, light.WithRange(lc.Range))
		}
		if sc := lc.Shadow; sc != nil {
			opts = append(opts, light.WithShadow(light.Shadow{
				Bias:    sc.Bias,
				MapSize: sc.MapSize,
				Near:    sc.Near,
				Far:     sc.Far,
				Left:    sc.Left,
				Right:   sc.Right,
				Top:     sc.Top,
				Bottom:  sc.Bottom,
			}))
		}
		lights = append(lights, light.NewLight(lt, opts...))
	}
	return lights, nil
}

// loadAsset issues an environment load. The fragment is attached if the scene is still live.
func (s *stage) loadAsset(desc scene.Descriptor, req loader.Request, at mgl32.Vec3) {
	s.pending++
	s.loader.Load(req, func(res loader.Result) {
		s.pending--
		if err := res.Failure(); err != nil {
			s.logger.Warn("asset load failed",
				zap.String("scene", desc.Name()),
				zap.String("path", req.Path),
				zap.Error(err))
			return
		}
		res.Fragment.Root.Translation = at
		if desc.Attach(res.Fragment) {
			s.logger.Debug("asset attached", zap.String("scene", desc.Name()), zap.String("path", req.Path))
		}
	})
}

// loadModel issues an entity model load. The completion reconciles onto the entity only if both
// the scene instance and the entity handle are still live.
func (s *stage) loadModel(desc scene.Descriptor, id entity.ID, req loader.Request, oneShot []string) {
	s.pending++
	s.loader.Load(req, func(res loader.Result) {
		s.pending--

		ent, ok := s.entities.Get(id)
		if !ok || desc.Disposed() {
			s.logger.Warn("dropping model for stale entity",
				zap.String("scene", desc.Name()),
				zap.Stringer("entity", id),
				zap.String("path", req.Path))
			return
		}

		if err := res.Failure(); err != nil {
			ent.MarkFailed(err)
			s.logger.Warn("entity model load failed",
				zap.String("scene", desc.Name()),
				zap.String("entity", ent.Name()),
				zap.String("path", req.Path),
				zap.Error(err))
			return
		}

		if err := ent.MarkLoaded(res.Fragment.Root); err != nil {
			s.logger.Warn("ignoring duplicate model load", zap.String("entity", ent.Name()), zap.Error(err))
			return
		}
		desc.Attach(res.Fragment)
		ent.Animation().LoadClips(applyPolicies(res.Fragment.Clips, oneShot))

		if idle := ent.IdleClip(); idle != "" {
			if err := ent.Animation().Play(idle); err != nil {
				s.logger.Debug("idle clip unavailable", zap.String("entity", ent.Name()), zap.Error(err))
			}
		}
		if subject, ok := s.FollowTarget(); ok && subject.ID() == ent.ID() {
			s.SyncFollow()
		}
		s.logger.Info("entity loaded",
			zap.String("scene", desc.Name()),
			zap.String("entity", ent.Name()),
			zap.Int("clips", len(res.Fragment.Clips)))
	})
}

// applyPolicies marks the named clips OneShot; every other clip loops.
func applyPolicies(clips []animation.Clip, oneShot []string) []animation.Clip {
	if len(oneShot) == 0 {
		return clips
	}
	once := make(map[string]bool, len(oneShot))
	for _, name := range oneShot {
		once[name] = true
	}
	out := make([]animation.Clip, len(clips))
	for i, c := range clips {
		if once[c.Name] {
			c.Policy = animation.OneShot
		}
		out[i] = c
	}
	return out
}
