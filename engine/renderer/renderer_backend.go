package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend. It requires a window.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless records frames and resource residency without touching a GPU.
	BackendTypeHeadless
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode parses "vsync" or "uncapped".
//
// Parameters:
//   - s: the configured mode name
//
// Returns:
//   - PresentMode: the parsed mode
//   - error: error if the name is unknown
func ParsePresentMode(s string) (PresentMode, error) {
	switch strings.ToLower(s) {
	case "", "vsync", "fifo":
		return PresentModeVSync, nil
	case "uncapped", "immediate":
		return PresentModeUncapped, nil
	}
	return PresentModeVSync, fmt.Errorf("unknown present mode %q", s)
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// drawItem is one drawable with its resolved world transform.
type drawItem struct {
	geometry *resource.Geometry
	material *resource.Material
	model    mgl32.Mat4
}

// sunData is the single directional light the backends shade with.
type sunData struct {
	direction     mgl32.Vec3
	color         mgl32.Vec3
	intensity     float32
	shadow        *resource.ShadowMap
	lightViewProj mgl32.Mat4
	bias          float32
}

// frameData is everything a backend needs to draw one frame. It is rebuilt every frame.
type frameData struct {
	clear    [4]float32
	viewProj mgl32.Mat4
	ambient  mgl32.Vec3
	sun      *sunData
	items    []drawItem
}

// RendererBackend is the per-API implementation behind the Renderer.
// GPU objects are created lazily on first draw and freed by Release.
type RendererBackend interface {
	// ConfigureSurface (re)creates size-dependent targets.
	ConfigureSurface(width, height int)

	// SetPresentMode changes how frames are presented. Takes effect on the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// DrawFrame uploads anything not yet resident, then draws and presents the frame.
	DrawFrame(f *frameData) error

	// Release frees the GPU objects backing r. Resources never drawn are not resident and
	// releasing them is a no-op that reports false.
	Release(r resource.Resource) (bool, error)

	// Resident returns the number of resources currently holding GPU objects.
	Resident() int

	// Destroy frees every GPU object and the device.
	Destroy()
}
