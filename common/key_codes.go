package common

import "strings"

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyQ     = 81  // Q key (ASCII)
	KeyE     = 69  // E key (ASCII)
	KeyF     = 70  // F key (ASCII)
	KeyJ     = 74  // J key (ASCII)
	KeyR     = 82  // R key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)

	Key0 = 48 // 0 key (ASCII)
	Key1 = 49 // 1 key (ASCII)
	Key2 = 50 // 2 key (ASCII)
	Key3 = 51 // 3 key (ASCII)
	Key4 = 52 // 4 key (ASCII)
	Key5 = 53 // 5 key (ASCII)
	Key6 = 54 // 6 key (ASCII)
	Key7 = 55 // 7 key (ASCII)
	Key8 = 56 // 8 key (ASCII)
	Key9 = 57 // 9 key (ASCII)
)

// Arrow keys (GLFW)
const (
	KeyRight = 262
	KeyLeft  = 263
	KeyDown  = 264
	KeyUp    = 265
)

var keyNames = map[string]uint32{
	"w": KeyW, "a": KeyA, "s": KeyS, "d": KeyD,
	"q": KeyQ, "e": KeyE, "f": KeyF, "j": KeyJ, "r": KeyR,
	"space": KeySpace, "escape": KeyEsc,
	"0": Key0, "1": Key1, "2": Key2, "3": Key3, "4": Key4,
	"5": Key5, "6": Key6, "7": Key7, "8": Key8, "9": Key9,
	"right": KeyRight, "left": KeyLeft, "down": KeyDown, "up": KeyUp,
}

// KeyByName resolves a key name as written in configuration files (e.g. "1", "w", "up")
// to its virtual key code. Lookup is case-insensitive.
//
// Parameters:
//   - name: the key name
//
// Returns:
//   - uint32: the virtual key code
//   - bool: false if the name is not a known key
func KeyByName(name string) (uint32, bool) {
	code, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}
