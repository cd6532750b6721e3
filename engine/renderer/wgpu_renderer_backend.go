package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-stage/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

type gpuMesh struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
}

func (m *gpuMesh) release() {
	m.vertex.Release()
	m.index.Release()
}

type gpuShadowMap struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup // lit group 0 sampling this map
}

func (s *gpuShadowMap) release() {
	s.bindGroup.Release()
	s.view.Release()
	s.texture.Release()
}

// drawSlot is a per-draw uniform buffer reused across frames by draw order.
type drawSlot struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
}

type wgpuRendererBackendImpl struct {
	mu  *sync.Mutex
	log *zap.Logger

	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	msaaTextureView  *wgpu.TextureView
	depthTextureView *wgpu.TextureView
	width, height    int

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	globalsBuffer      *wgpu.Buffer
	litGlobalsLayout   *wgpu.BindGroupLayout
	shadowGlobalsGroup *wgpu.BindGroup
	drawLayout         *wgpu.BindGroupLayout
	litPipeline        *wgpu.RenderPipeline
	shadowPipeline     *wgpu.RenderPipeline
	comparisonSampler  *wgpu.Sampler
	fallbackShadow     *gpuShadowMap

	meshes     map[*resource.Geometry]*gpuMesh
	shadowMaps map[*resource.ShadowMap]*gpuShadowMap
	materials  map[*resource.Material]struct{}
	slots      []*drawSlot
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, log *zap.Logger) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	if surfaceDescriptor == nil {
		return nil, errors.New("window has no surface descriptor")
	}

	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		log:         log,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		meshes:      make(map[*resource.Geometry]*gpuMesh),
		shadowMaps:  make(map[*resource.ShadowMap]*gpuShadowMap),
		materials:   make(map[*resource.Material]struct{}),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{Label: "Main Device"})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, errors.New("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	if err := b.createPipelines(); err != nil {
		return nil, err
	}
	return b, nil
}

// createPipelines builds the lit and shadow pipelines and the objects they share.
func (b *wgpuRendererBackendImpl) createPipelines() error {
	var err error
	b.globalsBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Globals Uniform",
		Size:  gpuGlobalsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	uniformEntry := func(binding uint32, size uint64) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: size,
			},
		}
	}

	litGlobals := wgpu.BindGroupLayoutDescriptor{Label: "Lit Globals Layout", Entries: []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, gpuGlobalsSize),
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeDepth,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		{
			Binding:    2,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeComparison},
		},
	}}
	if b.litGlobalsLayout, err = b.device.CreateBindGroupLayout(&litGlobals); err != nil {
		return fmt.Errorf("lit globals layout: %w", err)
	}
	shadowGlobals := wgpu.BindGroupLayoutDescriptor{Label: "Shadow Globals Layout", Entries: []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, gpuGlobalsSize),
	}}
	shadowGlobalsLayout, err := b.device.CreateBindGroupLayout(&shadowGlobals)
	if err != nil {
		return fmt.Errorf("shadow globals layout: %w", err)
	}
	drawDesc := wgpu.BindGroupLayoutDescriptor{Label: "Draw Layout", Entries: []wgpu.BindGroupLayoutEntry{
		uniformEntry(0, gpuDrawDataSize),
	}}
	if b.drawLayout, err = b.device.CreateBindGroupLayout(&drawDesc); err != nil {
		return fmt.Errorf("draw layout: %w", err)
	}

	b.shadowGlobalsGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Shadow Globals",
		Layout:  shadowGlobalsLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: b.globalsBuffer, Size: wgpu.WholeSize}},
	})
	if err != nil {
		return err
	}

	b.comparisonSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create comparison sampler: %w", err)
	}

	if b.fallbackShadow, err = b.createShadowMap("Fallback Shadow", 1); err != nil {
		return err
	}

	vertexLayout := wgpu.VertexBufferLayout{
		ArrayStride: gpuVertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		},
	}

	lit, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "lit.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: litShaderSource},
	})
	if err != nil {
		return err
	}
	litLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Lit",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.litGlobalsLayout, b.drawLayout},
	})
	if err != nil {
		return err
	}
	b.litPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Lit Render Pipeline",
		Layout: litLayout,
		Vertex: wgpu.VertexState{
			Module:     lit,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     lit,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    b.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fmt.Errorf("lit pipeline: %w", err)
	}

	shadow, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "shadow.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shadowShaderSource},
	})
	if err != nil {
		return err
	}
	shadowLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow",
		BindGroupLayouts: []*wgpu.BindGroupLayout{shadowGlobalsLayout, b.drawLayout},
	})
	if err != nil {
		return err
	}
	b.shadowPipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Shadow Pipeline",
		Layout: shadowLayout,
		Vertex: wgpu.VertexState{
			Module:     shadow,
			EntryPoint: "vs_shadow",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		// No fragment shader: depth-only pass
		Fragment: nil,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			DepthBias:           2,
			DepthBiasSlopeScale: 2.0,
			StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return fmt.Errorf("shadow pipeline: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.width, b.height = width, height
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}

	count := uint32(b.sampleCount)
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	if count > 1 {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			b.log.Error("create msaa texture", zap.Error(err))
			return
		}
		if b.msaaTextureView, err = msaaTexture.CreateView(nil); err != nil {
			b.log.Error("create msaa view", zap.Error(err))
			return
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		b.log.Error("create depth texture", zap.Error(err))
		return
	}
	if b.depthTextureView, err = depthTexture.CreateView(nil); err != nil {
		b.log.Error("create depth view", zap.Error(err))
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) DrawFrame(f *frameData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.depthTextureView == nil {
		return errors.New("surface is not configured")
	}

	for _, it := range f.items {
		if _, err := b.mesh(it.geometry); err != nil {
			return fmt.Errorf("upload %s: %w", it.geometry.Label(), err)
		}
		if it.material != nil {
			b.materials[it.material] = struct{}{}
		}
	}
	if err := b.ensureSlots(len(f.items)); err != nil {
		return err
	}
	for i, it := range f.items {
		dd := GPUDrawData{Model: it.model, BaseColor: [4]float32{0.8, 0.8, 0.8, 1}}
		if it.material != nil {
			dd.BaseColor = it.material.BaseColor
		}
		b.queue.WriteBuffer(b.slots[i].buffer, 0, dd.Marshal())
	}

	globals := GPUGlobals{
		ViewProj: clipCorrection.Mul4(f.viewProj),
		Ambient:  [4]float32{f.ambient[0], f.ambient[1], f.ambient[2], 0},
	}
	shadowMap := b.fallbackShadow
	if f.sun != nil {
		globals.SunDirection = [4]float32{f.sun.direction[0], f.sun.direction[1], f.sun.direction[2], f.sun.bias}
		globals.SunColor = [4]float32{f.sun.color[0], f.sun.color[1], f.sun.color[2], f.sun.intensity}
		if f.sun.shadow != nil {
			sm, err := b.shadowMap(f.sun.shadow)
			if err != nil {
				return err
			}
			shadowMap = sm
			globals.LightViewProj = clipCorrection.Mul4(f.sun.lightViewProj)
			globals.Ambient[3] = 1
		}
	}
	b.queue.WriteBuffer(b.globalsBuffer, 0, globals.Marshal())

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	if shadowMap != b.fallbackShadow {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            shadowMap.view,
				DepthLoadOp:     wgpu.LoadOpClear,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		})
		pass.SetPipeline(b.shadowPipeline)
		pass.SetBindGroup(0, b.shadowGlobalsGroup, nil)
		b.encodeDraws(pass, f.items)
		pass.End()
	}

	color := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpClear,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(f.clear[0]), G: float64(f.clear[1]), B: float64(f.clear[2]), A: float64(f.clear[3]),
		},
	}
	if b.msaaTextureView != nil {
		color.View = b.msaaTextureView
		color.ResolveTarget = view
		color.StoreOp = wgpu.StoreOpDiscard
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	pass.SetPipeline(b.litPipeline)
	pass.SetBindGroup(0, shadowMap.bindGroup, nil)
	b.encodeDraws(pass, f.items)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	b.queue.Submit(commandBuffer)
	b.surface.Present()
	return nil
}

func (b *wgpuRendererBackendImpl) encodeDraws(pass *wgpu.RenderPassEncoder, items []drawItem) {
	for i, it := range items {
		m := b.meshes[it.geometry]
		pass.SetBindGroup(1, b.slots[i].bindGroup, nil)
		pass.SetVertexBuffer(0, m.vertex, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(m.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(m.indexCount, 1, 0, 0, 0)
	}
}

// mesh returns the resident buffers for g, uploading them on first use.
func (b *wgpuRendererBackendImpl) mesh(g *resource.Geometry) (*gpuMesh, error) {
	if m, ok := b.meshes[g]; ok {
		return m, nil
	}
	vertexData := marshalVertices(g.Positions, g.Normals)
	indexData := marshalIndices(g.Indices)

	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: g.Label() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: g.Label() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, err
	}
	b.queue.WriteBuffer(vb, 0, vertexData)
	b.queue.WriteBuffer(ib, 0, indexData)

	m := &gpuMesh{vertex: vb, index: ib, indexCount: uint32(len(g.Indices))}
	b.meshes[g] = m
	return m, nil
}

func (b *wgpuRendererBackendImpl) shadowMap(sm *resource.ShadowMap) (*gpuShadowMap, error) {
	if s, ok := b.shadowMaps[sm]; ok {
		return s, nil
	}
	s, err := b.createShadowMap(sm.Label(), sm.Size)
	if err != nil {
		return nil, err
	}
	b.shadowMaps[sm] = s
	return s, nil
}

func (b *wgpuRendererBackendImpl) createShadowMap(label string, size uint32) (*gpuShadowMap, error) {
	if size == 0 {
		size = 1
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: size, Height: size, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create shadow depth texture view: %w", err)
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Lit Globals",
		Layout: b.litGlobalsLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.globalsBuffer, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: view},
			{Binding: 2, Sampler: b.comparisonSampler},
		},
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}
	return &gpuShadowMap{texture: tex, view: view, bindGroup: bg}, nil
}

func (b *wgpuRendererBackendImpl) ensureSlots(n int) error {
	for len(b.slots) < n {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("Draw Uniform %d", len(b.slots)),
			Size:  gpuDrawDataSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("Draw %d", len(b.slots)),
			Layout:  b.drawLayout,
			Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: wgpu.WholeSize}},
		})
		if err != nil {
			buf.Release()
			return err
		}
		b.slots = append(b.slots, &drawSlot{buffer: buf, bindGroup: bg})
	}
	return nil
}

func (b *wgpuRendererBackendImpl) Release(r resource.Resource) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch res := r.(type) {
	case *resource.Geometry:
		m, ok := b.meshes[res]
		if !ok {
			return false, nil
		}
		m.release()
		delete(b.meshes, res)
		return true, nil
	case *resource.ShadowMap:
		s, ok := b.shadowMaps[res]
		if !ok {
			return false, nil
		}
		s.release()
		delete(b.shadowMaps, res)
		return true, nil
	case *resource.Material:
		// Material parameters live in the per-draw uniform; nothing to free.
		if _, ok := b.materials[res]; !ok {
			return false, nil
		}
		delete(b.materials, res)
		return true, nil
	}
	return false, fmt.Errorf("unsupported resource %T", r)
}

func (b *wgpuRendererBackendImpl) Resident() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.meshes) + len(b.shadowMaps) + len(b.materials)
}

func (b *wgpuRendererBackendImpl) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for g, m := range b.meshes {
		m.release()
		delete(b.meshes, g)
	}
	for sm, s := range b.shadowMaps {
		s.release()
		delete(b.shadowMaps, sm)
	}
	clear(b.materials)
	for _, s := range b.slots {
		s.bindGroup.Release()
		s.buffer.Release()
	}
	b.slots = nil
	if b.fallbackShadow != nil {
		b.fallbackShadow.release()
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	b.globalsBuffer.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
