package manager

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/volume"
	"github.com/go-gl/mathgl/mgl32"
)

// Manager owns every probe volume of a scene. It hands out descriptor buffer slots, updates
// the volumes once per tick in parallel and builds the buffers shared by the GPU passes.
// All methods are safe for concurrent use.
type Manager interface {
	// Register creates a volume from desc and assigns it the lowest free descriptor slot.
	// desc.Index is overwritten with that slot.
	//
	// Parameters:
	//   - desc: the volume description
	//   - options: options forwarded to volume.NewVolume
	//
	// Returns:
	//   - volume.Volume: the new volume
	//   - error: error if a volume with the same name is registered
	Register(desc volume.VolumeDesc, options ...volume.VolumeBuilderOption) (volume.Volume, error)

	// Remove unregisters a volume and frees its slot.
	//
	// Parameters:
	//   - name: the volume name
	//
	// Returns:
	//   - bool: true if a volume was removed
	Remove(name string) bool

	// Get looks up a volume by name.
	//
	// Parameters:
	//   - name: the volume name
	//
	// Returns:
	//   - volume.Volume: the volume, or nil
	//   - bool: true if found
	Get(name string) (volume.Volume, bool)

	// Volumes returns the registered volumes in slot order.
	//
	// Returns:
	//   - []volume.Volume: the volumes
	Volumes() []volume.Volume

	// Len returns the number of registered volumes.
	//
	// Returns:
	//   - int: the volume count
	Len() int

	// SetScrollAnchor moves the anchor of every scrolling volume, usually to the camera position.
	//
	// Parameters:
	//   - anchor: the world-space anchor
	SetScrollAnchor(anchor mgl32.Vec3)

	// UpdateAll runs Update on every volume on the worker pool and waits for all of them.
	//
	// Returns:
	//   - int: the number of volumes that scrolled this tick
	UpdateAll() int

	// MarshalDescBuffer packs every volume descriptor into one buffer indexed by slot.
	//
	// Returns:
	//   - []byte: the descriptor buffer
	MarshalDescBuffer() []byte

	// VisibleVolumes returns the volumes whose bounds intersect a view frustum.
	//
	// Parameters:
	//   - viewProj: the column-major Projection * View matrix (16 floats)
	//
	// Returns:
	//   - []volume.Volume: the visible volumes in slot order
	VisibleVolumes(viewProj []float32) []volume.Volume

	// GPUMemoryUsedInBytes sums the estimates of every volume.
	//
	// Returns:
	//   - uint64: total bytes
	GPUMemoryUsedInBytes() uint64
}

type manager struct {
	mu *sync.RWMutex

	slots  []volume.Volume
	byName map[string]volume.Volume

	workers int
	pool    worker.DynamicWorkerPool
	prof    *profiler.Profiler
	verbose bool
}

var _ Manager = &manager{}

// NewManager creates an empty Manager.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Manager: the new manager
func NewManager(options ...ManagerBuilderOption) Manager {
	m := &manager{
		mu:      &sync.RWMutex{},
		byName:  make(map[string]volume.Volume),
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(m)
	}

	// Workers are reused across ticks; the per-tick barrier is a WaitGroup in UpdateAll.
	m.pool = worker.NewDynamicWorkerPool(m.workers, 256, 1*time.Second)
	return m
}

func (m *manager) Register(desc volume.VolumeDesc, options ...volume.VolumeBuilderOption) (volume.Volume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[desc.Name]; ok {
		return nil, fmt.Errorf("register volume %q: name already in use", desc.Name)
	}

	slot := len(m.slots)
	for i, v := range m.slots {
		if v == nil {
			slot = i
			break
		}
	}
	desc.Index = uint32(slot)

	v := volume.NewVolume(desc, options...)
	if slot == len(m.slots) {
		m.slots = append(m.slots, v)
	} else {
		m.slots[slot] = v
	}
	m.byName[desc.Name] = v

	log.Printf("[DDGI] Registered volume %q at index %d (%s, %s, %d probes, %.2f MB)",
		desc.Name, slot, desc.CoordinateSystem, desc.MovementType, v.NumProbes(),
		float64(v.GPUMemoryUsedInBytes())/1024/1024)
	return v, nil
}

func (m *manager) Remove(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.byName[name]
	if !ok {
		return false
	}
	delete(m.byName, name)
	m.slots[v.Index()] = nil
	for len(m.slots) > 0 && m.slots[len(m.slots)-1] == nil {
		m.slots = m.slots[:len(m.slots)-1]
	}

	log.Printf("[DDGI] Removed volume %q from index %d", name, v.Index())
	return true
}

func (m *manager) Get(name string) (volume.Volume, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.byName[name]
	return v, ok
}

func (m *manager) Volumes() []volume.Volume {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volumesLocked()
}

func (m *manager) volumesLocked() []volume.Volume {
	out := make([]volume.Volume, 0, len(m.byName))
	for _, v := range m.slots {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func (m *manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byName)
}

func (m *manager) SetScrollAnchor(anchor mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.slots {
		if v != nil && v.MovementType() == volume.MovementTypeScrolling {
			v.SetScrollAnchor(anchor)
		}
	}
}

func (m *manager) UpdateAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	volumes := m.volumesLocked()
	scrolled := make([]bool, len(volumes))

	var wg sync.WaitGroup
	for i, v := range volumes {
		wg.Add(1)
		m.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				v.Update()
				flags := v.ScrollClear()
				scrolled[i] = flags[0] || flags[1] || flags[2]
				return nil, nil
			},
		})
	}
	wg.Wait()

	events := 0
	for i, s := range scrolled {
		if !s {
			continue
		}
		events++
		if m.verbose {
			v := volumes[i]
			log.Printf("[DDGI] Volume %q scrolled: offsets %v, origin %v", v.Name(), v.ScrollOffsets(), v.EffectiveOrigin())
		}
	}

	if m.prof != nil {
		m.prof.Tick(events)
	}
	return events
}

func (m *manager) MarshalDescBuffer() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return volume.MarshalDescBuffer(m.volumesLocked())
}

func (m *manager) VisibleVolumes(viewProj []float32) []volume.Volume {
	m.mu.RLock()
	defer m.mu.RUnlock()

	frustum := common.ExtractFrustumFromMatrix(viewProj)
	var visible []volume.Volume
	for _, v := range m.slots {
		if v != nil && frustum.IntersectsAABB(v.AxisAlignedBoundingBox()) {
			visible = append(visible, v)
		}
	}
	return visible
}

func (m *manager) GPUMemoryUsedInBytes() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total uint64
	for _, v := range m.slots {
		if v != nil {
			total += v.GPUMemoryUsedInBytes()
		}
	}
	return total
}
