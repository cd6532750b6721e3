package common

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Axis names one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// ForwardAxis is the axis a character walks along. Models follow the glTF convention of facing +Z.
const ForwardAxis = AxisZ

// String returns the lower-case axis letter.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Unit returns the unit vector along the axis.
//
// Returns:
//   - mgl32.Vec3: the unit vector, or the zero vector for an invalid axis
func (a Axis) Unit() mgl32.Vec3 {
	switch a {
	case AxisX:
		return mgl32.Vec3{1, 0, 0}
	case AxisY:
		return mgl32.Vec3{0, 1, 0}
	case AxisZ:
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{}
}

// ParseAxis converts "x", "y" or "z" (any case) to an Axis.
//
// Parameters:
//   - s: the axis name
//
// Returns:
//   - Axis: the parsed axis
//   - error: error if s does not name an axis
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// Vec3 converts a plain float triple, as found in config and glTF documents, to an mgl32 vector.
func Vec3(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}
