package manager

import "github.com/Carmen-Shannon/oxy-ddgi/engine/profiler"

// ManagerBuilderOption is a functional option for configuring a Manager.
// Use the With* functions to create options.
type ManagerBuilderOption func(m *manager)

// WithWorkers sets the number of worker goroutines used by UpdateAll.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithWorkers(n int) ManagerBuilderOption {
	return func(m *manager) {
		m.workers = max(n, 1)
	}
}

// WithProfiler ticks p after every UpdateAll with the number of volumes that scrolled.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) ManagerBuilderOption {
	return func(m *manager) {
		m.prof = p
	}
}

// WithVerbose logs every scroll event.
//
// Parameters:
//   - verbose: whether scroll events are logged
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithVerbose(verbose bool) ManagerBuilderOption {
	return func(m *manager) {
		m.verbose = verbose
	}
}
