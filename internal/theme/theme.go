// Package theme holds the colours used for editor overlays and the desktop
// host backdrop.
package theme

import (
	"image/color"
)

// Theme defines the overlay palette.
type Theme struct {
	Name string

	// Host window
	Background color.RGBA // behind the image
	Foreground color.RGBA // status text
	// Checkerboard shown through transparent pixels
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Crop overlay
	CropStroke       color.RGBA
	CropHandleFill   color.RGBA
	CropHandleBorder color.RGBA

	// Selection decoration
	SelectionStroke       color.RGBA
	SelectionHandleFill   color.RGBA
	SelectionHandleBorder color.RGBA
}

// Default returns the built-in palette used when no theme is configured.
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{43, 43, 43, 255},
		Foreground:            color.RGBA{230, 230, 230, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		CropStroke:            color.RGBA{0, 255, 0, 255},
		CropHandleFill:        color.RGBA{0, 255, 0, 255},
		CropHandleBorder:      color.RGBA{255, 255, 255, 255},
		SelectionStroke:       color.RGBA{255, 215, 0, 255},
		SelectionHandleFill:   color.RGBA{255, 215, 0, 255},
		SelectionHandleBorder: color.RGBA{34, 34, 34, 255},
	}
}
