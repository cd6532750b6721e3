package input

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-stage/common"
)

// Command is a typed request produced from a key press and applied inside a tick.
// The set is closed: SwitchScene, Move and PlayAnimation.
type Command interface {
	fmt.Stringer
	command()
}

// SwitchScene activates a registered scene.
type SwitchScene struct {
	Scene string
}

// Move shifts an entity of the active scene along one axis.
type Move struct {
	Entity string
	Axis   common.Axis
	Delta  float32
}

// PlayAnimation starts a clip on an entity of the active scene.
type PlayAnimation struct {
	Entity string
	Clip   string
}

func (SwitchScene) command()   {}
func (Move) command()          {}
func (PlayAnimation) command() {}

func (c SwitchScene) String() string {
	return "switch_scene(" + c.Scene + ")"
}

func (c Move) String() string {
	return fmt.Sprintf("move(%s, %s, %g)", c.Entity, c.Axis, c.Delta)
}

func (c PlayAnimation) String() string {
	return "play(" + c.Entity + ", " + c.Clip + ")"
}
