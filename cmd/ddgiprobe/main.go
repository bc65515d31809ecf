package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-ddgi/engine"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/camera"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/config"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/manager"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/probedump"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/volume"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// anchorOrbitRate is the angular speed of the circling anchor in radians per tick.
const anchorOrbitRate = 0.05

func main() {
	configPath := flag.String("config", "", "Path to a volume config YAML (empty = use defaults)")
	ticks := flag.Int("ticks", 0, "Ticks to simulate (0 = use config)")
	dumpDir := flag.String("dump-dir", "", "Directory for probe CSV dumps (overrides config)")
	descOut := flag.String("desc-out", "", "Write the final packed descriptor buffer to this file")
	legacy := flag.Bool("legacy", false, "Write the 256-byte legacy descriptor layout with -desc-out")
	writeConfig := flag.String("write-config", "", "Write the merged config to this file and exit")
	verbose := flag.Bool("verbose", false, "Log every scroll event")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[DDGI] Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[DDGI] Invalid config:\n%v", err)
	}
	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			log.Fatalf("[DDGI] %v", err)
		}
		log.Printf("[DDGI] Wrote config to %s", *writeConfig)
		return
	}

	sim := cfg.Simulation
	if *ticks > 0 {
		sim.Ticks = *ticks
	}
	if *dumpDir != "" {
		sim.DumpPath = *dumpDir
	}

	eng := engine.NewEngine(
		engine.WithProfiling(true),
		engine.WithTickRate(sim.TickRate),
		engine.WithManagerOptions(
			manager.WithWorkers(cfg.Workers),
			manager.WithVerbose(*verbose),
		),
	)
	m := eng.Manager()
	for i, vc := range cfg.Volumes {
		desc, err := vc.VolumeDesc(uint32(i))
		if err != nil {
			log.Fatalf("[DDGI] Volume %q: %v", vc.Name, err)
		}
		if _, err := m.Register(desc, volume.WithSeed(vc.Seed)); err != nil {
			log.Fatalf("[DDGI] %v", err)
		}
	}

	dump, err := probedump.NewWriter(sim.DumpPath)
	if err != nil {
		log.Fatalf("[DDGI] %v", err)
	}
	defer dump.Close()

	log.Printf("[DDGI] Simulating %d ticks over %d volumes (%.2f MB GPU)",
		sim.Ticks, m.Len(), float64(m.GPUMemoryUsedInBytes())/1024/1024)

	cam := eng.Camera()
	eng.SetTickCallback(func(tick int, _ float32) {
		eye := anchorAt(sim, tick)
		cam.MoveTo(eye, eye.Add(heading(eye.Sub(anchorAt(sim, tick-1)))))
	})
	totalScrolls := 0
	eng.SetUpdateCallback(func(tick int, scrollEvents int) {
		totalScrolls += scrollEvents
		if (sim.ReportEvery > 0 && tick%sim.ReportEvery == 0) || tick == sim.Ticks {
			report(m, cam, dump, tick)
		}
	})
	if sim.Ticks > 0 {
		eng.Run(sim.Ticks)
	}
	log.Printf("[DDGI] Done: %d scroll events", totalScrolls)

	if *descOut != "" {
		if err := writeDescBuffer(m, *descOut, *legacy); err != nil {
			log.Fatalf("[DDGI] %v", err)
		}
		log.Printf("[DDGI] Wrote descriptor buffer to %s", *descOut)
	}
}

// anchorAt is the scroll anchor at a tick: a straight line at the configured velocity,
// optionally circling in the XZ plane.
func anchorAt(sim config.SimulationConfig, tick int) mgl32.Vec3 {
	t := float32(tick)
	anchor := mgl32.Vec3(sim.AnchorVelocity).Mul(t)
	if sim.AnchorRadius != 0 {
		angle := t * anchorOrbitRate
		anchor = anchor.Add(mgl32.Vec3{sim.AnchorRadius * math32.Cos(angle), 0, sim.AnchorRadius * math32.Sin(angle)})
	}
	return anchor
}

// heading is the horizontal direction of travel, or -Z while the anchor is still.
func heading(step mgl32.Vec3) mgl32.Vec3 {
	step[1] = 0
	if step.Len() < 1e-6 {
		return mgl32.Vec3{0, 0, -1}
	}
	return step.Normalize()
}

func report(m manager.Manager, cam camera.Camera, dump *probedump.Writer, tick int) {
	viewProj := cam.ViewProjectionMatrix()
	log.Printf("[DDGI] tick %d | camera %v | %d/%d volumes visible",
		tick, cam.Position(), len(m.VisibleVolumes(viewProj[:])), m.Len())
	for _, v := range m.Volumes() {
		log.Printf("[DDGI] tick %d | %s | origin %v | offsets %v | ray rotation %v",
			tick, v.Name(), v.EffectiveOrigin(), v.ScrollOffsets(), v.ProbeRayRotationQuaternion())
		if err := dump.WriteVolume(v, tick); err != nil {
			log.Printf("[DDGI] Dump failed: %v", err)
		}
	}
}

func writeDescBuffer(m manager.Manager, path string, legacy bool) error {
	var buf []byte
	if legacy {
		for _, v := range m.Volumes() {
			buf = append(buf, v.DescGPU().MarshalLegacy()...)
		}
	} else {
		buf = m.MarshalDescBuffer()
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("writing descriptor buffer: %w", err)
	}
	return nil
}
