package ocr

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// Preprocess prepares a ticket photo for recognition: grayscale, a contrast
// and sharpen bump for thermal-printer text, and a bounded resize so huge
// phone photos do not blow up tesseract's runtime. The result is written to
// a temp PNG; the caller must invoke cleanup when done.
func Preprocess(path string, maxDimension int) (string, func(), error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", nil, fmt.Errorf("open image: %w", err)
	}

	img = imaging.Grayscale(img)
	img = imaging.AdjustContrast(img, 20)
	img = imaging.Sharpen(img, 1.0)
	img = boundedResize(img, maxDimension)

	tmp, err := os.CreateTemp("", "ticket-ocr-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := imaging.Save(img, tmpPath); err != nil {
		os.Remove(tmpPath)
		return "", nil, fmt.Errorf("save preprocessed image: %w", err)
	}
	cleanup := func() { os.Remove(tmpPath) }
	return tmpPath, cleanup, nil
}

// boundedResize shrinks the image so the longest side is at most
// maxDimension, preserving aspect ratio. Small images pass through
// untouched; upscaling only adds blur.
func boundedResize(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDimension && h <= maxDimension {
		return img
	}
	if w >= h {
		return imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
}
