package media

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractFrame(t *testing.T) {
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.png")
	writePNG(t, fixture, 320, 180, color.White)
	argsFile := filepath.Join(dir, "args")

	// copy the fixture to the last argument and record the arguments
	writeScript(t, dir, "ffmpeg", `echo "$@" > `+argsFile+`
for last; do :; done
cp `+fixture+` "$last"`)

	f := NewFFmpeg(testTools(dir))
	out := filepath.Join(dir, "frame_000.png")
	if err := f.ExtractFrame(context.Background(), "/videos/clip.mp4", 3, out, 320); err != nil {
		t.Fatalf("ExtractFrame() error = %v", err)
	}

	if _, err := os.Stat(out); err != nil {
		t.Errorf("frame not written: %v", err)
	}
	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	want := "-v error -ss 3.000 -i /videos/clip.mp4 -vframes 1 -vf scale=320:-1 -y " + out
	if got := strings.TrimSpace(string(args)); got != want {
		t.Errorf("ffmpeg args = %q, want %q", got, want)
	}
}

func TestExtractFrameMissingOutput(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "ffmpeg", `exit 0`)
	f := NewFFmpeg(testTools(dir))

	err := f.ExtractFrame(context.Background(), "/videos/clip.mp4", 1, filepath.Join(dir, "out.png"), 320)
	if err == nil {
		t.Error("ExtractFrame() error = nil, want missing output error")
	}
}

func TestExtractFrameEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "ffmpeg", `for last; do :; done
: > "$last"`)
	f := NewFFmpeg(testTools(dir))

	err := f.ExtractFrame(context.Background(), "/videos/clip.mp4", 1, filepath.Join(dir, "out.png"), 320)
	if err == nil {
		t.Error("ExtractFrame() error = nil, want empty output error")
	}
}
