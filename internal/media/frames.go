package media

import (
	"fmt"
	"image"
	"os"

	"video-library/internal/logging"

	// Frame decoders
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP frames
)

const (
	// MaxFrameDimension bounds the width or height of a decoded frame.
	MaxFrameDimension = 4096

	// MaxFramePixels bounds width*height of a decoded frame (~64MB in RGBA).
	MaxFramePixels = 16_000_000
)

// FrameDimensions holds frame width and height.
type FrameDimensions struct {
	Width  int
	Height int
}

// GetFrameDimensions reads the header of an image file without decoding it.
func GetFrameDimensions(path string) (*FrameDimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close frame file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}

	return &FrameDimensions{
		Width:  config.Width,
		Height: config.Height,
	}, nil
}

// DecodeFrame loads an extracted frame and makes sure it is width pixels
// wide. libvips is used when it has been initialised, imaging otherwise.
func DecodeFrame(path string, width int) (image.Image, error) {
	dims, err := GetFrameDimensions(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, fmt.Errorf("frame has empty dimensions %dx%d", dims.Width, dims.Height)
	}
	if dims.Width > MaxFrameDimension || dims.Height > MaxFrameDimension ||
		dims.Width*dims.Height > MaxFramePixels {
		return nil, fmt.Errorf("frame %dx%d exceeds decode limits", dims.Width, dims.Height)
	}

	if IsVipsAvailable() {
		img, err := LoadFrameWithVips(path, width)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips decode failed for %s: %v, falling back to imaging", path, err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	if width > 0 && img.Bounds().Dx() != width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	return img, nil
}
