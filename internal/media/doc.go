// Package media turns a stored video into a preview animation.
//
// FFmpeg wraps the two external tools: ProbeDuration runs ffprobe and
// ExtractFrame runs ffmpeg, each under its own timeout. Every probe failure
// is reported as ErrProbeUnavailable so callers can skip the preview without
// failing the upload.
//
// Sampler picks timestamps strictly inside the clip and extracts one frame
// per timestamp into a WorkArea using a small worker pool. Failed frames are
// dropped and the survivors are returned in timestamp order.
//
// Composer encodes those frames as a looping GIF and moves it into place only
// once it is complete.
package media
