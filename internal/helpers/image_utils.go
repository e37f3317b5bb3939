package helpers

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/rs/zerolog/log"
)

const placeholderQuality = 75

// IsJPEG checks if the byte slice contains JPEG data by checking magic bytes
func IsJPEG(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	// JPEG magic bytes: FF D8
	return data[0] == 0xFF && data[1] == 0xD8
}

// Placeholder renders the frame streamed while a camera has no recent
// frames: a dark tile with a border and crossed diagonals, so a dead feed
// reads as "no signal" rather than a hung player.
func Placeholder(width, height int) []byte {
	if width <= 0 {
		width = 320
	}
	if height <= 0 {
		height = 240
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 24
	}

	line := color.Gray{Y: 96}
	for x := 0; x < width; x++ {
		img.SetGray(x, 0, line)
		img.SetGray(x, height-1, line)
	}
	for y := 0; y < height; y++ {
		img.SetGray(0, y, line)
		img.SetGray(width-1, y, line)
	}

	steps := width
	if height > steps {
		steps = height
	}
	for i := 0; i <= steps; i++ {
		x := (width - 1) * i / steps
		y := (height - 1) * i / steps
		img.SetGray(x, y, line)
		img.SetGray(width-1-x, y, line)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: placeholderQuality}); err != nil {
		log.Error().Err(err).Msg("Failed to encode placeholder frame")
		return nil
	}
	return buf.Bytes()
}
