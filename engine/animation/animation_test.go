package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heroClips() []Clip {
	return []Clip{
		{Name: "idle", Duration: 2.0},
		{Name: "walk", Duration: 1.0},
		{Name: "jump", Duration: 0.5, Policy: OneShot},
	}
}

func TestPlayBeforeLoad(t *testing.T) {
	c := NewController()
	assert.False(t, c.Ready())
	assert.ErrorIs(t, c.Play("walk"), ErrClipsNotReady)
}

func TestPlayUnknownClip(t *testing.T) {
	c := NewController(WithClips(heroClips()...))
	require.True(t, c.Ready())
	assert.ErrorIs(t, c.Play("swim"), ErrUnknownClip)
	_, playing := c.Current()
	assert.False(t, playing)
}

func TestAdvanceWithoutClipIsNoop(t *testing.T) {
	c := NewController(WithClips(heroClips()...))
	c.Advance(1)
	assert.Zero(t, c.Elapsed())
}

func TestAdvanceZeroIsIdentity(t *testing.T) {
	c := NewController(WithClips(heroClips()...))
	require.NoError(t, c.Play("walk"))
	c.Advance(0.25)
	c.Advance(0)
	c.Advance(-1)
	assert.InDelta(t, 0.25, c.Elapsed(), 1e-6)
}

func TestReplaySameClipKeepsTime(t *testing.T) {
	c := NewController(WithClips(heroClips()...))
	require.NoError(t, c.Play("walk"))
	c.Advance(0.3)
	require.NoError(t, c.Play("walk"))
	assert.InDelta(t, 0.3, c.Elapsed(), 1e-6)

	require.NoError(t, c.Play("idle"))
	assert.Zero(t, c.Elapsed())
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "idle", cur.Name)
}

func TestLoopWraps(t *testing.T) {
	c := NewController(WithClips(heroClips()...))
	require.NoError(t, c.Play("walk"))
	c.Advance(0.75)
	c.Advance(0.5)
	assert.InDelta(t, 0.25, c.Elapsed(), 1e-5)

	c.Advance(0.75)
	assert.InDelta(t, 0.0, c.Elapsed(), 1e-5)
	assert.Less(t, c.Elapsed(), float32(1.0))
	assert.False(t, c.Finished())
}

func TestOneShotClamps(t *testing.T) {
	c := NewController(WithClips(heroClips()...))
	require.NoError(t, c.Play("jump"))
	c.Advance(0.3)
	assert.False(t, c.Finished())
	c.Advance(0.3)
	assert.InDelta(t, 0.5, c.Elapsed(), 1e-6)
	assert.True(t, c.Finished())

	c.Advance(10)
	assert.InDelta(t, 0.5, c.Elapsed(), 1e-6)

	require.NoError(t, c.Play("walk"))
	assert.False(t, c.Finished())
}

func TestSpeedScalesAdvance(t *testing.T) {
	c := NewController(WithSpeed(2), WithClips(heroClips()...))
	require.NoError(t, c.Play("idle"))
	c.Advance(0.5)
	assert.InDelta(t, 1.0, c.Elapsed(), 1e-6)
}

func TestLoadClipsSkipsUnnamed(t *testing.T) {
	c := NewController()
	c.LoadClips([]Clip{{Name: ""}, {Name: "walk", Duration: 1}})
	assert.ElementsMatch(t, []string{"walk"}, c.Clips())
}
