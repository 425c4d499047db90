package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"

	"reelhub/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultPreviewWidth = 320
	MaxPreviewWidth     = 1080
	PreviewQuality      = 70
	PreviewContentType  = "image/webp"
)

// Preview returns a WebP rendition of an image file no wider than width.
// Renditions are cached next to the original.
func (s *Store) Preview(ctx context.Context, bucket, id string, width int) ([]byte, error) {
	switch {
	case width <= 0:
		width = DefaultPreviewWidth
	case width > MaxPreviewWidth:
		width = MaxPreviewWidth
	}

	file, err := s.Stat(ctx, bucket, id)
	if err != nil {
		return nil, err
	}
	if !file.IsImage() {
		return nil, models.NewValidationError("preview is only available for images")
	}

	abs := s.objectPath(file.Path)
	cached := fmt.Sprintf("%s.preview-%d.webp", abs, width)
	if b, err := os.ReadFile(cached); err == nil {
		return b, nil
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, models.NewNotFoundError("File", id)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, models.NewValidationError("stored file is not a decodable image")
	}

	out, err := encodeWebP(resizeToWidth(src, width), PreviewQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	_ = os.WriteFile(cached, out, 0o600)
	return out, nil
}

func resizeToWidth(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth || w <= 0 || h <= 0 {
		return src
	}
	newH := h * maxWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
