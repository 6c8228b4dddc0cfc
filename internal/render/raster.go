package render

import (
	"image"
	"image/png"
	"io"
)

// ImageToRGBA copies a rendered frame into a raw RGBA byte buffer for
// piping to an encoder. When the image is the compositor's native
// NRGBA this is a single copy; anything else goes through the slow
// per-pixel path.
func ImageToRGBA(img image.Image, buffer []byte) {
	if nrgba, ok := img.(*image.NRGBA); ok {
		copy(buffer, nrgba.Pix)
		return
	}
	if rgba, ok := img.(*image.RGBA); ok {
		copy(buffer, rgba.Pix)
		return
	}

	bounds := img.Bounds()
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			buffer[idx] = uint8(r >> 8)
			buffer[idx+1] = uint8(g >> 8)
			buffer[idx+2] = uint8(b >> 8)
			buffer[idx+3] = uint8(a >> 8)
			idx += 4
		}
	}
}

// FrameBytes returns the buffer size for one raw RGBA frame.
func FrameBytes(width, height int) int { return width * height * 4 }

// EncodePNG writes a frame as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
