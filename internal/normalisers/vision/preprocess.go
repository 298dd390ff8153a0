package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Registered decoders.
	_ "image/png"

	"golang.org/x/image/draw"
)

// Preprocess decodes a JPEG or PNG, downscales it to at most maxWidth
// pixels wide preserving aspect ratio, flattens transparency onto white
// and re-encodes it as JPEG.
func Preprocess(data []byte, maxWidth, quality int) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode image: empty %s", format)
	}

	dw, dh := fitWidth(w, h, maxWidth)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	if dw == w && dh == h {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWidth returns the output size for a w×h image bounded by maxWidth.
// Images already narrower are left alone.
func fitWidth(w, h, maxWidth int) (int, int) {
	if maxWidth <= 0 || w <= maxWidth {
		return w, h
	}
	nh := h * maxWidth / w
	if nh < 1 {
		nh = 1
	}
	return maxWidth, nh
}
