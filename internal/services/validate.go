package services

import (
	"bytes"
	"image"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	MaxCoverBytes  = 5 * 1024 * 1024
	maxCoverPixels = 4096
	minCoverWidth  = 300
	minCoverHeight = 450

	// Covers render in a 2:3 portrait grid; anything far off gets
	// letterboxed badly, so uploads must be close to that shape.
	coverAspectRatio     = 2.0 / 3.0
	coverAspectTolerance = 0.05
)

// ValidateCoverImage gates an upload before any storage call is made.
// declaredSize is the byte size reported for the file, checked before the
// payload is decoded so oversize files are rejected cheaply. Checks run in
// order and the first failure wins.
func ValidateCoverImage(data []byte, declaredSize int64) error {
	if declaredSize > MaxCoverBytes {
		return &ValidationError{Reason: "Image must be less than 5MB"}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return &ValidationError{Reason: "Invalid image file"}
	}

	if cfg.Width > maxCoverPixels || cfg.Height > maxCoverPixels {
		return &ValidationError{Reason: "Image resolution too high (max 4096px)"}
	}

	if cfg.Width < minCoverWidth || cfg.Height < minCoverHeight {
		return &ValidationError{Reason: "Image resolution too low (min 300x450px)"}
	}

	aspect := float64(cfg.Width) / float64(cfg.Height)
	if math.Abs(aspect-coverAspectRatio) > coverAspectTolerance {
		return &ValidationError{Reason: "Image must have a 2:3 aspect ratio (e.g., 600x900)"}
	}

	return nil
}
