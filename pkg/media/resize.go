package media

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

type Size struct {
	Width  int
	Height int
}

var (
	Cover  = Size{Width: 1600, Height: 900}
	Avatar = Size{Width: 400, Height: 400}
	Deal   = Size{Width: 800, Height: 600}
	Logo   = Size{Width: 400, Height: 400}
)

// Fill decodes an image, crops it to cover size and re-encodes it as JPEG.
// The returned name keeps the original base name with a .jpg extension.
func Fill(r io.Reader, fileName string, size Size) (io.Reader, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fill(img, size.Width, size.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	return &buf, base + ".jpg", nil
}

// IsImage reports whether the content type names an image.
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// IsVideo reports whether the content type names a video.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}
