package renderer

import (
	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
)

// headlessRendererBackendImpl tracks what a GPU backend would hold resident without creating
// any GPU objects. It backs -headless runs and tests.
type headlessRendererBackendImpl struct {
	width, height int
	presentMode   PresentMode
	resident      map[resource.Resource]struct{}
}

var _ RendererBackend = &headlessRendererBackendImpl{}

func newHeadlessRendererBackend() RendererBackend {
	return &headlessRendererBackendImpl{resident: make(map[resource.Resource]struct{})}
}

func (b *headlessRendererBackendImpl) ConfigureSurface(width, height int) {
	b.width, b.height = width, height
}

func (b *headlessRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.presentMode = mode
}

func (b *headlessRendererBackendImpl) DrawFrame(f *frameData) error {
	for _, it := range f.items {
		b.resident[it.geometry] = struct{}{}
		if it.material != nil {
			b.resident[it.material] = struct{}{}
		}
	}
	if f.sun != nil && f.sun.shadow != nil {
		b.resident[f.sun.shadow] = struct{}{}
	}
	return nil
}

func (b *headlessRendererBackendImpl) Release(r resource.Resource) (bool, error) {
	if _, ok := b.resident[r]; !ok {
		return false, nil
	}
	delete(b.resident, r)
	return true, nil
}

func (b *headlessRendererBackendImpl) Resident() int {
	return len(b.resident)
}

func (b *headlessRendererBackendImpl) Destroy() {
	clear(b.resident)
}
