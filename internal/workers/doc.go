/*
Package workers sizes worker pools in containerized environments.

When running in a container the number of usable CPUs may be limited by cgroup
constraints. Go 1.19+ sets GOMAXPROCS from those limits while runtime.NumCPU
still reports the host's CPUs, so pool sizes here are derived from GOMAXPROCS.

# Frame extraction

The preview pipeline extracts sample frames with one ffmpeg process per
worker. [ForFrames] returns min(GOMAXPROCS, 4):

	config := media.SamplerConfig{
	    Count:   10,
	    Width:   320,
	    Workers: workers.ForFrames(),
	}

A value of 1 extracts frames sequentially, which is the safest choice on
hosts where ffmpeg is memory constrained.

# Environment Override

FRAME_WORKERS replaces the computed value:

	FRAME_WORKERS=2 ./video-library

Invalid values (non-numeric, zero, negative) are ignored and the computed
count is used. [Count] still caps an override at its limit; [ForFrames]
does not.
*/
package workers
