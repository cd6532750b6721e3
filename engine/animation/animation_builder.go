package animation

// ControllerBuilderOption is a functional option for configuring a Controller.
type ControllerBuilderOption func(*controller)

// WithSpeed sets the playback rate multiplier applied to every Advance.
// Values <= 0 are treated as the default (1.0).
//
// Parameters:
//   - speed: the playback rate
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithSpeed(speed float32) ControllerBuilderOption {
	return func(c *controller) {
		if speed <= 0 {
			speed = 1.0
		}
		c.speed = speed
	}
}

// WithClips installs a clip table at construction, as if LoadClips had been called.
//
// Parameters:
//   - clips: the clips to install
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithClips(clips ...Clip) ControllerBuilderOption {
	return func(c *controller) {
		c.LoadClips(clips)
	}
}
