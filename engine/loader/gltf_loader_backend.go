package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	readFile func(string) ([]byte, error)
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{readFile: os.ReadFile}
}

func (b *gltfLoaderBackendImpl) Import(path string, kind Kind) (*template, error) {
	data, err := b.readFile(path)
	if err != nil {
		return nil, err
	}

	var f *gltfFile
	baseDir := filepath.Dir(path)
	switch kind {
	case KindGLB:
		f, err = decodeGLB(data, baseDir)
	case KindGLTF:
		f, err = decodeGLTF(data, baseDir)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if err != nil {
		return nil, err
	}

	return importGLTF(f, assetName(path))
}

// assetName names an asset after its file, or after its directory for the conventional
// <name>/scene.gltf layout.
func assetName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "scene" {
		if dir := filepath.Base(filepath.Dir(path)); dir != "." && dir != string(filepath.Separator) {
			return dir
		}
	}
	return stem
}
