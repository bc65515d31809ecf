package engine

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-ddgi/engine/camera"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/manager"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/profiler"
)

// engine implements the Engine interface.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	mu      sync.Mutex
	running bool
	ticks   int

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	manager          manager.Manager
	camera           camera.Camera
	followCamera     bool
	profilingEnabled bool
	managerOptions   []manager.ManagerBuilderOption

	engineTickRate time.Duration // 0 = unpaced
	tickCallback   func(tick int, deltaTime float32)
	updateCallback func(tick int, scrollEvents int)
}

// Engine drives the probe volumes of a scene. Every tick it runs the tick callback, moves the
// scroll anchor of every scrolling volume to the camera and updates all volumes.
type Engine interface {
	// Manager returns the volume manager.
	//
	// Returns:
	//   - manager.Manager: the manager
	Manager() manager.Manager

	// Camera returns the viewer the volumes follow.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// SetTickRate sets the engine tick rate in ticks per second.
	// 0 runs ticks back to back.
	//
	// Parameters:
	//   - fps: target ticks per second
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the start of each tick, before volumes update.
	// Use this to move the camera.
	//
	// Parameters:
	//   - callback: receives the 1-based tick number and the delta time in seconds
	SetTickCallback(callback func(tick int, deltaTime float32))

	// SetUpdateCallback registers the function called after the volumes of a tick have updated.
	//
	// Parameters:
	//   - callback: receives the tick number and the number of volumes that scrolled
	SetUpdateCallback(callback func(tick int, scrollEvents int))

	// Run ticks until maxTicks have run in this call or Quit is called. Blocks the caller.
	// Tick numbers passed to the callbacks keep counting across calls.
	//
	// Parameters:
	//   - maxTicks: tick limit for this call, 0 = unlimited
	//
	// Returns:
	//   - int: the number of ticks this call ran
	Run(maxTicks int) int

	// Quit stops Run after the current tick.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Without WithManager a manager is created, profiled when WithProfiling is set.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		followCamera:    true,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.manager == nil {
		managerOptions := e.managerOptions
		if e.profilingEnabled {
			managerOptions = append(managerOptions, manager.WithProfiler(profiler.NewProfiler()))
		}
		e.manager = manager.NewManager(managerOptions...)
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	return e
}

func (e *engine) Manager() manager.Manager {
	return e.manager
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

// Quit signals Run to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Run(maxTicks int) int {
	e.mu.Lock()
	e.running = true
	rate := e.engineTickRate
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	var pace <-chan time.Time
	var ticker *time.Ticker
	if rate > 0 {
		ticker = time.NewTicker(rate)
		defer ticker.Stop()
		pace = ticker.C
	}

	ran := 0
	lastTick := time.Now()
	for maxTicks == 0 || ran < maxTicks {
		if pace != nil {
			select {
			case <-e.quitChannel:
				return ran
			case newRate := <-e.tickRateChannel:
				ticker.Reset(newRate)
				continue
			case <-pace:
			}
		} else {
			select {
			case <-e.quitChannel:
				return ran
			default:
			}
		}

		now := time.Now()
		dt := float32(now.Sub(lastTick).Seconds())
		lastTick = now
		e.tick(dt)
		ran++
	}
	return ran
}

// tick runs one engine tick.
func (e *engine) tick(dt float32) {
	e.ticks++
	if e.tickCallback != nil {
		e.tickCallback(e.ticks, dt)
	}
	if e.followCamera {
		e.manager.SetScrollAnchor(e.camera.Position())
	}
	scrolls := e.manager.UpdateAll()
	if e.updateCallback != nil {
		e.updateCallback(e.ticks, scrolls)
	}
}

// SetTickRate sets the engine tick rate in ticks per second.
// A paced running engine picks up a new non-zero rate on the next tick. Switching between paced
// and unpaced takes effect on the next Run.
func (e *engine) SetTickRate(fps float64) {
	var newRate time.Duration
	if fps > 0 {
		newRate = time.Duration(float64(time.Second) / fps)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.engineTickRate = newRate
	if !e.running || newRate == 0 {
		return
	}

	// Non-blocking send - if channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(tick int, deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetUpdateCallback(callback func(tick int, scrollEvents int)) {
	e.updateCallback = callback
}
