package media

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"os"
	"path/filepath"
	"time"

	"video-library/internal/filesystem"
	"video-library/internal/logging"
	"video-library/internal/metrics"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

const (
	// DefaultPreviewWidth is the width of preview frames in pixels.
	DefaultPreviewWidth = 320

	// DefaultFrameDelay is how long each preview frame is shown.
	DefaultFrameDelay = 500 * time.Millisecond
)

// ErrNoFrames is returned by Compose when it is given nothing to compose.
var ErrNoFrames = errors.New("no frames to compose")

// ComposerConfig configures a Composer.
type ComposerConfig struct {
	Width      int
	FrameDelay time.Duration
}

// Composer encodes sampled frames into a looping animated GIF.
type Composer struct {
	config ComposerConfig
	encode func(f *os.File, anim *gif.GIF) error
}

// NewComposer creates a composer, defaulting to 320px and 500ms per frame.
func NewComposer(config ComposerConfig) *Composer {
	if config.Width <= 0 {
		config.Width = DefaultPreviewWidth
	}
	if config.FrameDelay <= 0 {
		config.FrameDelay = DefaultFrameDelay
	}
	return &Composer{
		config: config,
		encode: func(f *os.File, anim *gif.GIF) error { return gif.EncodeAll(f, anim) },
	}
}

// delayCentiseconds converts the frame delay to GIF units (1/100 s), at least 1.
func (c *Composer) delayCentiseconds() int {
	cs := int(c.config.FrameDelay / (10 * time.Millisecond))
	if cs < 1 {
		cs = 1
	}
	return cs
}

// Compose writes frames, in the order given, as an infinitely looping
// animation at dst. Encoding happens in a temporary file in the same
// directory that is committed only once fully written, so dst never holds a
// partial animation. An existing dst is never replaced; Compose then fails
// with filesystem.ErrTargetExists.
func (c *Composer) Compose(frames []SampleFrame, dst string) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	start := time.Now()
	defer func() {
		metrics.PreviewComposeDuration.Observe(time.Since(start).Seconds())
	}()

	anim := c.build(frames)

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create preview temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
				logging.Warn("Failed to remove preview temp file %s: %v", tmpName, err)
			}
		}
	}()

	if err := c.encode(tmp, anim); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync preview: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close preview: %w", err)
	}
	if err := filesystem.CommitNoReplace(tmpName, dst); err != nil {
		return fmt.Errorf("failed to move preview into place: %w", err)
	}
	committed = true

	logging.Debug("Composed %d-frame preview %s in %v", len(frames), filepath.Base(dst),
		time.Since(start).Round(time.Millisecond))
	return nil
}

// build normalises every frame to the canvas of the first one and quantises
// it to a fixed palette with Floyd-Steinberg dithering.
func (c *Composer) build(frames []SampleFrame) *gif.GIF {
	canvasW, canvasH := canvasSize(frames[0].Image, c.config.Width)
	bounds := image.Rect(0, 0, canvasW, canvasH)
	delay := c.delayCentiseconds()

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		Disposal:  make([]byte, 0, len(frames)),
		LoopCount: 0, // loop forever
		Config: image.Config{
			ColorModel: color.Palette(palette.Plan9),
			Width:      canvasW,
			Height:     canvasH,
		},
	}

	for _, f := range frames {
		src := f.Image
		if src.Bounds().Dx() != canvasW || src.Bounds().Dy() != canvasH {
			fitted := imaging.Fit(src, canvasW, canvasH, imaging.Lanczos)
			src = imaging.PasteCenter(imaging.New(canvasW, canvasH, color.Black), fitted)
		}

		paletted := image.NewPaletted(bounds, palette.Plan9)
		xdraw.FloydSteinberg.Draw(paletted, bounds, src, src.Bounds().Min)

		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}
	return anim
}

// canvasSize scales img to width preserving aspect ratio.
func canvasSize(img image.Image, width int) (int, int) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return width, width
	}
	if width <= 0 || b.Dx() == width {
		return b.Dx(), b.Dy()
	}
	h := b.Dy() * width / b.Dx()
	if h < 1 {
		h = 1
	}
	return width, h
}
