package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that fixes the worker count.
const EnvOverride = "FRAME_WORKERS"

// DefaultFrameLimit caps the frame-extraction pool. Each worker runs its own
// ffmpeg process, so the pool stays small even on large hosts.
const DefaultFrameLimit = 4

// override returns the FRAME_WORKERS value if it is a positive integer.
func override() (int, bool) {
	value := os.Getenv(EnvOverride)
	if value == "" {
		return 0, false
	}
	count, err := strconv.Atoi(value)
	if err != nil || count <= 0 {
		return 0, false
	}
	return count, true
}

// Count returns the number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit.
//
// Can be overridden with the FRAME_WORKERS environment variable; the limit
// still applies to the override.
func Count(multiplier float64, limit int) int {
	if count, ok := override(); ok {
		if limit > 0 && count > limit {
			return limit
		}
		return count
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
// The limit parameter caps the maximum number of workers.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForFrames returns the frame-extraction pool size: min(GOMAXPROCS, 4),
// or FRAME_WORKERS verbatim when it is set. A result of 1 means frames are
// extracted sequentially.
func ForFrames() int {
	if count, ok := override(); ok {
		return count
	}
	return ForCPU(DefaultFrameLimit)
}
