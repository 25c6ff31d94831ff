package media

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeScript writes an executable shell script standing in for a tool.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write script %s: %v", name, err)
	}
	return path
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, solidImage(w, h, c)); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func testTools(dir string) ToolConfig {
	return ToolConfig{
		FFmpegPath:     filepath.Join(dir, "ffmpeg"),
		FFprobePath:    filepath.Join(dir, "ffprobe"),
		ProbeTimeout:   5 * time.Second,
		ExtractTimeout: 5 * time.Second,
	}
}
