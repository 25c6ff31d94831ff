package media

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// FrameExtractor writes one still frame of videoPath, taken at ts seconds and
// scaled to width pixels wide, to outPath.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, ts float64, outPath string, width int) error
}

// ExtractFrame seeks to ts, decodes exactly one frame, scales it to width
// preserving aspect ratio and writes it to outPath. A zero exit without an
// output file is reported as a failure.
func (f *FFmpeg) ExtractFrame(ctx context.Context, videoPath string, ts float64, outPath string, width int) error {
	_, err := f.run(ctx, "ffmpeg", f.cfg.FFmpegPath, f.cfg.ExtractTimeout,
		"-v", "error",
		"-ss", strconv.FormatFloat(ts, 'f', 3, 64),
		"-i", videoPath,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-1", width),
		"-y",
		outPath,
	)
	if err != nil {
		return err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("ffmpeg produced no output at %.3fs: %w", ts, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced an empty frame at %.3fs", ts)
	}
	return nil
}
