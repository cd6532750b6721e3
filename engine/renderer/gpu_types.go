package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// litShaderSource draws scene geometry with one directional light and an optional shadow map.
//
//go:embed assets/lit.wgsl
var litShaderSource string

// shadowShaderSource is the depth-only vertex stage for the shadow pass.
//
//go:embed assets/shadow.wgsl
var shadowShaderSource string

// gpuVertexSize is the byte size of one interleaved position+normal vertex.
const gpuVertexSize = 24

// GPUGlobals mirrors the WGSL Globals uniform (176 bytes).
type GPUGlobals struct {
	ViewProj      mgl32.Mat4 // offset   0
	LightViewProj mgl32.Mat4 // offset  64
	SunDirection  [4]float32 // offset 128: xyz direction of travel, w shadow bias
	SunColor      [4]float32 // offset 144: rgb, w intensity
	Ambient       [4]float32 // offset 160: rgb, w 1 when a shadow map is bound
}

const gpuGlobalsSize = 176

// Marshal serializes the globals for upload.
//
// Returns:
//   - []byte: 176-byte buffer
func (g *GPUGlobals) Marshal() []byte {
	buf := make([]byte, gpuGlobalsSize)
	putFloats(buf[0:], g.ViewProj[:])
	putFloats(buf[64:], g.LightViewProj[:])
	putFloats(buf[128:], g.SunDirection[:])
	putFloats(buf[144:], g.SunColor[:])
	putFloats(buf[160:], g.Ambient[:])
	return buf
}

// GPUDrawData mirrors the WGSL Draw uniform (80 bytes).
type GPUDrawData struct {
	Model     mgl32.Mat4 // offset  0
	BaseColor [4]float32 // offset 64
}

const gpuDrawDataSize = 80

// Marshal serializes the per-draw uniform.
//
// Returns:
//   - []byte: 80-byte buffer
func (d *GPUDrawData) Marshal() []byte {
	buf := make([]byte, gpuDrawDataSize)
	putFloats(buf[0:], d.Model[:])
	putFloats(buf[64:], d.BaseColor[:])
	return buf
}

// marshalVertices interleaves positions and normals. Missing normals default to +Y.
func marshalVertices(positions, normals []float32) []byte {
	n := len(positions) / 3
	buf := make([]byte, n*gpuVertexSize)
	for i := 0; i < n; i++ {
		o := i * gpuVertexSize
		putFloats(buf[o:], positions[i*3:i*3+3])
		if len(normals) >= i*3+3 {
			putFloats(buf[o+12:], normals[i*3:i*3+3])
		} else {
			putFloats(buf[o+12:], []float32{0, 1, 0})
		}
	}
	return buf
}

func marshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, v := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

func putFloats(dst []byte, src []float32) {
	for i, f := range src {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// clipCorrection remaps OpenGL clip depth [-1, 1] to the WebGPU range [0, 1].
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}
