package imagestore

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

const jpegQuality = 90

// MaxPixels caps the decoded size of a raster upload. A small file can
// declare dimensions whose pixel buffer would exhaust memory.
const MaxPixels = 40_000_000

// Transform is applied by the store before an image is saved. Crop "limit"
// scales an image down to fit inside Width x Height, keeping its aspect
// ratio, and never scales it up.
type Transform struct {
	Crop   string
	Width  int
	Height int
}

// LimitTransform fits uploads inside 600x600.
var LimitTransform = Transform{Crop: "limit", Width: 600, Height: 600}

// applyTransform returns the bytes to store. Raster images are decoded and
// resized when larger than the box; other formats pass through.
func applyTransform(content []byte, contentType string, t Transform) ([]byte, error) {
	if t.Crop != "limit" || t.Width <= 0 || t.Height <= 0 {
		return content, nil
	}

	ct := normalizeContentType(contentType)
	var (
		decodeConfig func(io.Reader) (image.Config, error)
		decode       func(io.Reader) (image.Image, error)
	)
	switch ct {
	case "image/jpeg":
		decodeConfig, decode = jpeg.DecodeConfig, jpeg.Decode
	case "image/png":
		decodeConfig, decode = png.DecodeConfig, png.Decode
	default:
		return content, nil
	}

	cfg, err := decodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrRejected, ct, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrRejected, cfg.Width, cfg.Height, MaxPixels)
	}

	src, err := decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrRejected, ct, err)
	}

	b := src.Bounds()
	if b.Dx() <= t.Width && b.Dy() <= t.Height {
		return content, nil
	}

	dst := resizeToFit(src, t.Width, t.Height)
	buf := bytes.NewBuffer(nil)
	if ct == "image/png" {
		err = png.Encode(buf, dst)
	} else {
		err = jpeg.Encode(buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", ErrStore, ct, err)
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := min(scaleW, scaleH)
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
