// Package probedump writes probe positions and volume state to CSV for offline inspection
// and debug visualization.
package probedump

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-ddgi/engine/volume"
	"github.com/gocarina/gocsv"
)

// ProbeRecord is one probe of one volume at one tick.
type ProbeRecord struct {
	Tick        int     `csv:"tick"`
	Volume      string  `csv:"volume"`
	Probe       int     `csv:"probe"`
	StorageSlot int     `csv:"storage_slot"`
	GridX       int32   `csv:"grid_x"`
	GridY       int32   `csv:"grid_y"`
	GridZ       int32   `csv:"grid_z"`
	X           float32 `csv:"x"`
	Y           float32 `csv:"y"`
	Z           float32 `csv:"z"`
}

// VolumeRecord is the state of one volume at one tick.
type VolumeRecord struct {
	Tick          int     `csv:"tick"`
	Volume        string  `csv:"volume"`
	Index         uint32  `csv:"index"`
	Movement      string  `csv:"movement"`
	OriginX       float32 `csv:"origin_x"`
	OriginY       float32 `csv:"origin_y"`
	OriginZ       float32 `csv:"origin_z"`
	ScrollOffsetX int32   `csv:"scroll_offset_x"`
	ScrollOffsetY int32   `csv:"scroll_offset_y"`
	ScrollOffsetZ int32   `csv:"scroll_offset_z"`
	Probes        int     `csv:"probes"`
	GPUBytes      uint64  `csv:"gpu_bytes"`
}

// Probes collects a record for every probe of v. Positions include scrolling and rotation.
//
// Parameters:
//   - v: the volume
//   - tick: the tick stamped on every record
//
// Returns:
//   - []ProbeRecord: one record per probe in linear index order
func Probes(v volume.Volume, tick int) []ProbeRecord {
	records := make([]ProbeRecord, v.NumProbes())
	for i := range records {
		g := v.ProbeGridCoords(i)
		p := v.ProbeWorldPosition(i)
		records[i] = ProbeRecord{
			Tick:        tick,
			Volume:      v.Name(),
			Probe:       i,
			StorageSlot: v.ScrollingProbeIndex(i),
			GridX:       g[0],
			GridY:       g[1],
			GridZ:       g[2],
			X:           p[0],
			Y:           p[1],
			Z:           p[2],
		}
	}
	return records
}

// Summary collects the state record of v.
//
// Parameters:
//   - v: the volume
//   - tick: the tick stamped on the record
//
// Returns:
//   - VolumeRecord: the record
func Summary(v volume.Volume, tick int) VolumeRecord {
	o := v.EffectiveOrigin()
	s := v.ScrollOffsets()
	return VolumeRecord{
		Tick:          tick,
		Volume:        v.Name(),
		Index:         v.Index(),
		Movement:      v.MovementType().String(),
		OriginX:       o[0],
		OriginY:       o[1],
		OriginZ:       o[2],
		ScrollOffsetX: s[0],
		ScrollOffsetY: s[1],
		ScrollOffsetZ: s[2],
		Probes:        v.NumProbes(),
		GPUBytes:      v.GPUMemoryUsedInBytes(),
	}
}

// Writer appends records to probes.csv and volumes.csv in a directory.
// A nil Writer discards everything.
type Writer struct {
	dir          string
	probeFile    *os.File
	volumeFile   *os.File
	probeHeader  bool
	volumeHeader bool
}

// NewWriter creates the output directory and both CSV files.
// Returns nil if dir is empty (output disabled).
//
// Parameters:
//   - dir: the output directory
//
// Returns:
//   - *Writer: the writer, or nil
//   - error: error if the directory or a file cannot be created
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	w := &Writer{dir: dir}
	f, err := os.Create(filepath.Join(dir, "probes.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating probes.csv: %w", err)
	}
	w.probeFile = f

	f, err = os.Create(filepath.Join(dir, "volumes.csv"))
	if err != nil {
		w.probeFile.Close()
		return nil, fmt.Errorf("creating volumes.csv: %w", err)
	}
	w.volumeFile = f
	return w, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// WriteVolume appends the summary and every probe of v.
//
// Parameters:
//   - v: the volume
//   - tick: the current tick
//
// Returns:
//   - error: error if a write fails
func (w *Writer) WriteVolume(v volume.Volume, tick int) error {
	if w == nil {
		return nil
	}
	if err := writeRecords(w.volumeFile, []VolumeRecord{Summary(v, tick)}, &w.volumeHeader); err != nil {
		return fmt.Errorf("writing volumes: %w", err)
	}
	if err := writeRecords(w.probeFile, Probes(v, tick), &w.probeHeader); err != nil {
		return fmt.Errorf("writing probes: %w", err)
	}
	return nil
}

// writeRecords writes the header only on the first call for a file.
func writeRecords[T any](f *os.File, records []T, headerWritten *bool) error {
	if *headerWritten {
		return gocsv.MarshalWithoutHeaders(records, f)
	}
	if err := gocsv.Marshal(records, f); err != nil {
		return err
	}
	*headerWritten = true
	return nil
}

// Close closes both files.
//
// Returns:
//   - error: the first close error, or nil
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	errProbes := w.probeFile.Close()
	errVolumes := w.volumeFile.Close()
	if errProbes != nil {
		return errProbes
	}
	return errVolumes
}
