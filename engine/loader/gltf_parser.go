package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorRange      = errors.New("accessor out of range")
)

// gltfFile is a decoded glTF document with every buffer resolved to bytes.
type gltfFile struct {
	doc     gltfDocument
	baseDir string
	binary  []byte
}

// decodeGLTF decodes a JSON glTF document. External buffer URIs resolve against baseDir.
func decodeGLTF(data []byte, baseDir string) (*gltfFile, error) {
	f := &gltfFile{baseDir: baseDir}
	if err := f.decodeJSON(data); err != nil {
		return nil, err
	}
	return f, nil
}

// decodeGLB decodes a binary GLB container.
func decodeGLB(data []byte, baseDir string) (*gltfFile, error) {
	if len(data) < 12 {
		return nil, errors.New("GLB file too small")
	}

	r := bytes.NewReader(data)
	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return nil, errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return nil, errInvalidGLBVersion
	}

	f := &gltfFile{baseDir: baseDir}
	var jsonChunk []byte
	for {
		var ch gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read GLB chunk header: %w", err)
		}
		if int64(ch.ChunkLength) > int64(r.Len()) {
			return nil, fmt.Errorf("read GLB chunk: length %d exceeds remaining %d bytes", ch.ChunkLength, r.Len())
		}
		chunk := make([]byte, ch.ChunkLength)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, fmt.Errorf("read GLB chunk: %w", err)
		}
		switch ch.ChunkType {
		case gltfGLBChunkJSON:
			jsonChunk = chunk
		case gltfGLBChunkBIN:
			f.binary = chunk
		}
	}
	if jsonChunk == nil {
		return nil, errMissingJSONChunk
	}
	if err := f.decodeJSON(jsonChunk); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *gltfFile) decodeJSON(data []byte) error {
	if err := json.Unmarshal(data, &f.doc); err != nil {
		return fmt.Errorf("parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(f.doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	for i := range f.doc.Buffers {
		if err := f.resolveBuffer(i); err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
	}
	return nil
}

func (f *gltfFile) resolveBuffer(i int) error {
	buf := &f.doc.Buffers[i]
	switch {
	case buf.URI == "" && i == 0 && f.binary != nil:
		buf.Data = f.binary
	case buf.URI == "":
		return errors.New("no URI and no GLB binary chunk")
	case strings.HasPrefix(buf.URI, "data:"):
		data, err := decodeDataURI(buf.URI)
		if err != nil {
			return err
		}
		buf.Data = data
	default:
		data, err := os.ReadFile(filepath.Join(f.baseDir, filepath.FromSlash(buf.URI)))
		if err != nil {
			return fmt.Errorf("load %q: %w", buf.URI, err)
		}
		buf.Data = data
	}
	if len(buf.Data) < buf.ByteLength {
		return errBufferSizeMismatch
	}
	return nil
}

// decodeDataURI decodes data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errInvalidBufferURI
	}
	if !strings.HasSuffix(header, ";base64") && header != "base64" {
		return nil, fmt.Errorf("unsupported data URI encoding %q", header)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return data, nil
}

// accessorBytes gathers an accessor's elements into a tightly packed slice, honouring byteStride.
func (f *gltfFile) accessorBytes(index int) (*gltfAccessor, []byte, error) {
	if index < 0 || index >= len(f.doc.Accessors) {
		return nil, nil, fmt.Errorf("accessor %d: %w", index, errAccessorRange)
	}
	acc := &f.doc.Accessors[index]
	if acc.Sparse != nil {
		return nil, nil, fmt.Errorf("accessor %d: sparse accessors are not supported", index)
	}
	if acc.BufferView == nil {
		return nil, nil, fmt.Errorf("accessor %d has no bufferView", index)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(f.doc.BufferViews) {
		return nil, nil, fmt.Errorf("accessor %d: bufferView %w", index, errAccessorRange)
	}
	bv := &f.doc.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(f.doc.Buffers) {
		return nil, nil, fmt.Errorf("accessor %d: buffer %w", index, errAccessorRange)
	}
	buf := f.doc.Buffers[bv.Buffer].Data

	elem := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elem == 0 {
		return nil, nil, fmt.Errorf("accessor %d: unsupported layout %s/%d", index, acc.Type, acc.ComponentType)
	}
	if acc.Count < 0 || acc.ByteOffset < 0 || bv.ByteOffset < 0 || (bv.ByteStride != nil && *bv.ByteStride < 0) {
		return nil, nil, fmt.Errorf("accessor %d: negative count, offset or stride: %w", index, errAccessorRange)
	}
	stride := elem
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	// Bounding each term by the buffer length keeps the products below from overflowing.
	base := bv.ByteOffset + acc.ByteOffset
	if base > len(buf) || (acc.Count > 1 && stride > len(buf)) || acc.Count > len(buf) {
		return nil, nil, fmt.Errorf("accessor %d: %w", index, errBufferSizeMismatch)
	}
	if acc.Count > 0 && base+(acc.Count-1)*stride+elem > len(buf) {
		return nil, nil, fmt.Errorf("accessor %d: %w", index, errBufferSizeMismatch)
	}

	out := make([]byte, acc.Count*elem)
	for i := 0; i < acc.Count; i++ {
		src := base + i*stride
		copy(out[i*elem:(i+1)*elem], buf[src:src+elem])
	}
	return acc, out, nil
}

// floats reads a FLOAT accessor of the given type as a flat slice.
func (f *gltfFile) floats(index int, accessorType string) ([]float32, error) {
	acc, data, err := f.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor %d is %s/%d, want %s FLOAT", index, acc.Type, acc.ComponentType, accessorType)
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// indices reads a SCALAR index accessor of any unsigned component type.
func (f *gltfFile) indices(index int) ([]uint32, error) {
	acc, data, err := f.accessorBytes(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor %d is %s, want SCALAR", index, acc.Type)
	}
	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range out {
			out[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("unsupported index component type %d", acc.ComponentType)
	}
	return out, nil
}

func componentSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	}
	return 0
}

func componentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	}
	return 0
}
