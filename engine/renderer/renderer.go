package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/engine/camera"
	"github.com/Carmen-Shannon/oxy-stage/engine/light"
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/Carmen-Shannon/oxy-stage/engine/scene"
	"github.com/Carmen-Shannon/oxy-stage/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ErrRendererClosed is returned by Render after Close.
var ErrRendererClosed = errors.New("renderer closed")

// Frame is one draw request: a scene graph seen through a camera.
type Frame struct {
	Root       *scene.Node
	Camera     camera.Camera
	Lights     []light.Light
	ClearColor [4]float32
}

// Stats summarizes renderer activity.
type Stats struct {
	Frames    uint64 // frames drawn
	LastDraws int    // draw items in the most recent frame
	Resident  int    // resources currently holding GPU objects
	Released  uint64 // resources freed through Release
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	log         *zap.Logger

	ambient mgl32.Vec3
	items   []drawItem
	stats   Stats
	closed  bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer draws scene graphs and owns the GPU side of scene resources.
//
// Resources are uploaded lazily the first time a frame references them, so a fragment that is
// never attached to a live scene never costs GPU memory. Renderer satisfies resource.Releaser;
// scenes hand it their resources when disposed.
type Renderer interface {
	resource.Releaser

	// Render draws one frame.
	//
	// Parameters:
	//   - f: the scene root, camera, lights and clear color; a nil Root draws only the clear color
	//
	// Returns:
	//   - error: backend failure or ErrRendererClosed
	Render(f Frame) error

	// Resize reconfigures the surface for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are presented.
	//
	// Parameters:
	//   - mode: VSync or Uncapped
	SetPresentMode(mode PresentMode)

	// Stats returns a snapshot of renderer counters.
	Stats() Stats

	// Close frees every GPU object. Further Render calls fail.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the given backend.
//
// Parameters:
//   - backendType: BackendTypeWGPU or BackendTypeHeadless
//   - win: the window to present into; ignored (and may be nil) for the headless backend
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: error if the GPU device or surface cannot be created
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		log:         zap.NewNop(),
		ambient:     mgl32.Vec3{0.15, 0.15, 0.18},
	}

	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	width, height := 1, 1
	switch backendType {
	case BackendTypeHeadless:
		r.backend = newHeadlessRendererBackend()
	case BackendTypeWGPU:
		if win == nil {
			return nil, errors.New("wgpu renderer requires a window")
		}
		b, err := newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.log)
		if err != nil {
			return nil, fmt.Errorf("create wgpu backend: %w", err)
		}
		r.backend = b
		width, height = win.Width(), win.Height()
	default:
		return nil, fmt.Errorf("unknown renderer backend %d", backendType)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(width, height)
	return r, nil
}

func (r *renderer) Render(f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRendererClosed
	}

	fd := &frameData{
		clear:   f.ClearColor,
		ambient: r.ambient,
		sun:     pickSun(f.Lights),
	}
	if f.Camera != nil {
		fd.viewProj = f.Camera.ViewProjectionMatrix()
	} else {
		fd.viewProj = mgl32.Ident4()
	}

	r.items = r.items[:0]
	if f.Root != nil {
		f.Root.Walk(func(node *scene.Node, world mgl32.Mat4) bool {
			for _, d := range node.Drawables {
				if d.Geometry == nil || len(d.Geometry.Indices) < 3 {
					continue
				}
				r.items = append(r.items, drawItem{geometry: d.Geometry, material: d.Material, model: world})
			}
			return true
		})
	}
	fd.items = r.items

	if err := r.backend.DrawFrame(fd); err != nil {
		return err
	}
	r.stats.Frames++
	r.stats.LastDraws = len(fd.items)
	return nil
}

func (r *renderer) Release(res resource.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	freed, err := r.backend.Release(res)
	if err != nil {
		return err
	}
	if freed {
		r.stats.Released++
		r.log.Debug("resource released", zap.String("resource", res.Label()))
	}
	return nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Resident = r.backend.Resident()
	return s
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.backend.Destroy()
}

// pickSun returns the first enabled directional light. Point lights only contribute through
// the ambient term.
func pickSun(lights []light.Light) *sunData {
	for _, l := range lights {
		if l == nil || !l.Enabled() || l.Type() != light.LightTypeDirectional {
			continue
		}
		dir := l.Direction()
		if dir.Len() == 0 {
			continue
		}
		sun := &sunData{
			direction: dir,
			color:     l.Color(),
			intensity: l.Intensity(),
		}
		if l.CastsShadows() && l.ShadowMap() != nil {
			sun.shadow = l.ShadowMap()
			sun.lightViewProj = l.ShadowViewProjection()
			sun.bias = l.Shadow().Bias
		}
		return sun
	}
	return nil
}
