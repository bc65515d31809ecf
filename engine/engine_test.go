package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/manager"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/volume"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrollingDesc(name string) volume.VolumeDesc {
	d := volume.DefaultVolumeDesc()
	d.Name = name
	d.MovementType = volume.MovementTypeScrolling
	d.ProbeCounts = common.Int3{4, 4, 4}
	return d
}

func TestRunFollowsCamera(t *testing.T) {
	e := NewEngine(WithManagerOptions(manager.WithWorkers(2)))
	v, err := e.Manager().Register(scrollingDesc("follow"))
	require.NoError(t, err)

	e.SetTickCallback(func(tick int, _ float32) {
		eye := mgl32.Vec3{float32(tick), 0, 0}
		e.Camera().MoveTo(eye, eye.Add(mgl32.Vec3{1, 0, 0}))
	})
	scrolls := 0
	e.SetUpdateCallback(func(_ int, events int) {
		scrolls += events
	})

	assert.Equal(t, 10, e.Run(10))
	assert.Equal(t, 10, scrolls)
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, v.ScrollAnchor())
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, v.EffectiveOrigin())
}

func TestFollowCameraDisabled(t *testing.T) {
	e := NewEngine(WithFollowCamera(false), WithProfiling(true))
	v, err := e.Manager().Register(scrollingDesc("still"))
	require.NoError(t, err)
	e.Camera().MoveTo(mgl32.Vec3{50, 0, 0}, mgl32.Vec3{0, 0, 0})

	e.Run(3)
	assert.Equal(t, mgl32.Vec3{}, v.EffectiveOrigin())
}

func TestQuitStopsRun(t *testing.T) {
	m := manager.NewManager(manager.WithWorkers(1))
	e := NewEngine(WithManager(m))
	assert.Same(t, m, e.Manager())

	e.SetTickCallback(func(tick int, _ float32) {
		if tick == 4 {
			e.Quit()
			e.Quit()
		}
	})
	assert.Equal(t, 4, e.Run(0))
	assert.Equal(t, 0, e.Run(0))
}

func TestRunLimitIsPerCall(t *testing.T) {
	e := NewEngine()
	var seen []int
	e.SetTickCallback(func(tick int, _ float32) {
		seen = append(seen, tick)
	})

	assert.Equal(t, 3, e.Run(3))
	assert.Equal(t, 2, e.Run(2))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, seen)
}

func TestPacedRun(t *testing.T) {
	e := NewEngine(WithTickRate(500))
	e.SetTickCallback(func(tick int, _ float32) {
		if tick == 2 {
			e.SetTickRate(1000)
		}
	})

	start := time.Now()
	assert.Equal(t, 5, e.Run(5))
	assert.GreaterOrEqual(t, time.Since(start), 4*time.Millisecond)
}
