package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies the format of a load request.
type Kind int

const (
	// KindAuto infers the format from the request path.
	KindAuto Kind = iota
	// KindGLTF is a JSON glTF 2.0 document.
	KindGLTF
	// KindGLB is a binary glTF container.
	KindGLB
	// KindPrimitive is a built-in mesh addressed as "builtin:<name>".
	KindPrimitive
)

// BuiltinPrefix marks request paths that name a built-in primitive.
const BuiltinPrefix = "builtin:"

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindGLTF:
		return "gltf"
	case KindGLB:
		return "glb"
	case KindPrimitive:
		return "primitive"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind parses a configured asset kind. The empty string means KindAuto.
//
// Parameters:
//   - s: one of "", "auto", "gltf", "glb", "primitive"
//
// Returns:
//   - Kind: the parsed kind
//   - error: ErrUnsupportedKind wrapped with the input when unrecognized
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "gltf":
		return KindGLTF, nil
	case "glb":
		return KindGLB, nil
	case "primitive", "builtin":
		return KindPrimitive, nil
	}
	return KindAuto, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// KindFromPath infers a Kind from a request path.
//
// Parameters:
//   - path: a file path or "builtin:<name>"
//
// Returns:
//   - Kind: the inferred kind
//   - error: ErrUnsupportedKind when the extension is not recognized
func KindFromPath(path string) (Kind, error) {
	if strings.HasPrefix(path, BuiltinPrefix) {
		return KindPrimitive, nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf":
		return KindGLTF, nil
	case ".glb":
		return KindGLB, nil
	default:
		return KindAuto, fmt.Errorf("%w: %q", ErrUnsupportedKind, ext)
	}
}

// loaderBackend turns a resolved request into a cacheable template.
// Concrete implementations (gltfLoaderBackend, primitiveLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Import reads the asset at path.
	//
	// Parameters:
	//   - path: the resolved file path or builtin name
	//   - kind: the concrete kind, never KindAuto
	//
	// Returns:
	//   - *template: the immutable parsed asset
	//   - error: error if the asset cannot be read or decoded
	Import(path string, kind Kind) (*template, error)
}
