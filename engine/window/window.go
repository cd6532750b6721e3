package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the native surface the viewer presents into and the source of its key events.
// All methods must be called from the goroutine that created the window.
type Window interface {
	// SetUpdateCallback sets the function ProcessMessages calls once per pumped batch of events.
	// The engine's frame step is installed here.
	//
	// Parameters:
	//   - callback: the per-iteration update
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called with the new framebuffer size in pixels.
	//
	// Parameters:
	//   - callback: receives width and height
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the function called on key press and key repeat.
	//
	// Parameters:
	//   - callback: receives the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the function called on key release.
	//
	// Parameters:
	//   - callback: receives the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns the WebGPU surface descriptor for this window.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and has not been asked to close.
	IsRunning() bool

	// RequestClose asks the window to stop at the next ProcessMessages iteration.
	RequestClose()

	// Close destroys the native window.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages pumps native events and calls the update callback until the window stops running.
	ProcessMessages()

	Width() int
	Height() int
}

type engineWindow struct {
	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	width  int
	height int

	internalWindow any

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a native window.
//
// Parameters:
//   - options: a variadic list of WindowBuilderOption functions to configure the window
//
// Returns:
//   - Window: the created window
//   - error: error if the platform layer cannot create a window (e.g. no display)
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-stage",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
