// Package memory keeps preview generation inside the container's memory
// budget.
//
// Decoding sampled frames and quantizing them into an animation are the only
// parts of an ingestion whose memory grows with the work, and several
// ingestions may run at once. Two pieces cover this:
//
//   - [ConfigureFromEnv] sets GOMEMLIMIT from MEMORY_LIMIT (Kubernetes
//     Downward API) and MEMORY_RATIO, unless GOMEMLIMIT is set already.
//   - [Monitor] samples the heap and, above the critical mark, makes
//     [Monitor.Wait] block new preview work until usage drops below the
//     high mark.
//
// # Kubernetes Example
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
//	  - name: MEMORY_RATIO
//	    value: "0.7"
//
// The default ratio of 0.7 leaves room for ffmpeg child processes and
// libvips buffers, neither of which count against the Go heap.
//
// # Metrics
//
//   - video_library_memory_usage_ratio
//   - video_library_memory_paused
//   - video_library_memory_gc_pauses_total
//   - video_library_preview_memory_wait_seconds
package memory
