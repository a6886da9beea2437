// Package ui provides the graphical user interface for WarpPulse.
// This file contains icon generation utilities for the system tray.
package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/warppulse/warppulse/common"
)

// IconConfig defines the configuration for icon generation.
type IconConfig struct {
	Size          int
	FillColor     color.RGBA
	BorderColor   color.RGBA
	AccentColor   color.RGBA
	SymbolColor   color.RGBA
	ShowCheckmark bool
}

// ProtectedIconConfig is the blue shield with a checkmark.
func ProtectedIconConfig() IconConfig {
	return IconConfig{
		Size:          common.TrayIconSize,
		FillColor:     color.RGBA{28, 113, 216, 255},
		BorderColor:   color.RGBA{53, 132, 228, 255},
		AccentColor:   color.RGBA{153, 193, 241, 255},
		SymbolColor:   color.RGBA{255, 255, 255, 255},
		ShowCheckmark: true,
	}
}

// UnprotectedIconConfig is the red shield with an open lock.
func UnprotectedIconConfig() IconConfig {
	return IconConfig{
		Size:          common.TrayIconSize,
		FillColor:     color.RGBA{192, 28, 40, 255},
		BorderColor:   color.RGBA{224, 27, 36, 255},
		AccentColor:   color.RGBA{246, 97, 81, 255},
		SymbolColor:   color.RGBA{255, 255, 255, 255},
		ShowCheckmark: false,
	}
}

// IconGenerator generates PNG icons for the system tray.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates a new icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Image draws the icon.
func (g *IconGenerator) Image() *image.RGBA {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawShield(img)
	if g.config.ShowCheckmark {
		g.drawCheckmark(img)
	} else {
		g.drawLock(img)
	}
	return img
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, g.Image()); err != nil {
		common.LogError("Encoding tray icon: %v", err)
		return nil
	}
	return buf.Bytes()
}

// drawShield draws the shield shape on the image.
func (g *IconGenerator) drawShield(img *image.RGBA) {
	size := g.config.Size
	centerX := float64(size) / 2
	topY := 1.0
	bottomY := float64(size) - 2
	shieldWidth := float64(size) - 4

	isInShield := func(x, y float64) bool {
		relY := (y - topY) / (bottomY - topY)
		if relY < 0 || relY > 1 {
			return false
		}

		var halfWidth float64
		if relY < 0.5 {
			halfWidth = shieldWidth/2 - relY*0.5
		} else {
			progress := (relY - 0.5) * 2
			halfWidth = (shieldWidth/2 - 0.25) * (1 - progress*progress)
		}

		return x >= centerX-halfWidth && x <= centerX+halfWidth
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if !isInShield(fx, fy) {
				continue
			}

			isBorder := !isInShield(fx-1, fy) || !isInShield(fx+1, fy) ||
				!isInShield(fx, fy-1) || !isInShield(fx, fy+1)

			switch {
			case isBorder:
				img.Set(x, y, g.config.BorderColor)
			case float64(y)/float64(size) < 0.3:
				img.Set(x, y, g.config.AccentColor)
			default:
				img.Set(x, y, g.config.FillColor)
			}
		}
	}
}

// scale maps a coordinate on the 22px design grid to the icon size.
func (g *IconGenerator) scale(v int) int {
	return v * g.config.Size / common.TrayIconSize
}

// drawCheckmark draws a checkmark symbol on the image.
func (g *IconGenerator) drawCheckmark(img *image.RGBA) {
	points := []struct{ x, y int }{
		{6, 11}, {7, 11}, {7, 12}, {8, 12}, {8, 13}, {9, 13},
		{9, 12}, {10, 12}, {10, 11}, {11, 11}, {11, 10}, {12, 10},
		{12, 9}, {13, 9}, {13, 8}, {14, 8},
	}
	for _, p := range points {
		x, y := g.scale(p.x), g.scale(p.y)
		if x >= 0 && x < g.config.Size && y >= 0 && y < g.config.Size {
			img.Set(x, y, g.config.SymbolColor)
		}
	}
}

// drawLock draws an open lock: the shackle is lifted off the right side.
func (g *IconGenerator) drawLock(img *image.RGBA) {
	c := g.config.SymbolColor

	for y := g.scale(10); y <= g.scale(15); y++ {
		for x := g.scale(8); x <= g.scale(14); x++ {
			if y == g.scale(10) || y == g.scale(15) || x == g.scale(8) || x == g.scale(14) {
				img.Set(x, y, c)
			}
		}
	}

	for y := g.scale(5); y <= g.scale(9); y++ {
		img.Set(g.scale(9), y, c)
		if y <= g.scale(6) {
			img.Set(g.scale(13), y, c)
		}
	}
	for x := g.scale(9); x <= g.scale(13); x++ {
		img.Set(x, g.scale(5), c)
	}
}

// GenerateProtectedIcon generates the connected state icon.
func GenerateProtectedIcon() []byte {
	return NewIconGenerator(ProtectedIconConfig()).Generate()
}

// GenerateUnprotectedIcon generates the disconnected state icon.
func GenerateUnprotectedIcon() []byte {
	return NewIconGenerator(UnprotectedIconConfig()).Generate()
}
