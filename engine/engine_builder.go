package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-ddgi/engine/camera"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/manager"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the profiler of the engine-created manager.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 run ticks back to back (the default).
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.engineTickRate = 0
			return
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithManager sets a pre-configured manager rather than allowing the engine to create one.
//
// Parameters:
//   - m: the manager
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithManager(m manager.Manager) EngineBuilderOption {
	return func(e *engine) {
		e.manager = m
	}
}

// WithManagerOptions forwards options to the engine-created manager.
// Ignored when WithManager is used.
//
// Parameters:
//   - options: manager options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithManagerOptions(options ...manager.ManagerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.managerOptions = append(e.managerOptions, options...)
	}
}

// WithCamera sets the camera the volumes follow.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithFollowCamera decides whether scrolling volumes are anchored to the camera each tick.
// Defaults to true.
//
// Parameters:
//   - follow: whether to follow the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFollowCamera(follow bool) EngineBuilderOption {
	return func(e *engine) {
		e.followCamera = follow
	}
}
