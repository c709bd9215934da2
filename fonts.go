package main

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type FontSizeInPoints = float64

type Font struct {
	font  *opentype.Font
	faces map[FontSizeInPoints]font.Face
}

func (f *Font) GetFace(size FontSizeInPoints) (font.Face, error) {
	if face, ok := f.faces[size]; ok {
		return face, nil
	}
	faceOpts := &opentype.FaceOptions{
		Size:    size,
		DPI:     96,
		Hinting: font.HintingFull,
	}
	face, err := opentype.NewFace(f.font, faceOpts)
	if err != nil {
		return nil, err
	}
	f.faces[size] = face
	return face, nil
}

// GetFaceImage renders the first cols×rows runes of face into an alpha
// atlas with one fixed-size cell per rune.
func (f *Font) GetFaceImage(face font.Face, sizeInTiles Size) (*image.Alpha, error) {
	cols, rows := sizeInTiles.X, sizeInTiles.Y
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("sizeInTiles must be positive, got %v", sizeInTiles)
	}
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	tileHeight := metrics.Height.Ceil()
	if tileHeight == 0 {
		tileHeight = ascent + descent
	}
	adv, ok := face.GlyphAdvance('m')
	if !ok {
		return nil, fmt.Errorf("font face does not provide a glyph for rune 'm'")
	}
	tileWidth := adv.Ceil()
	atlas := image.NewAlpha(image.Rect(0, 0, tileWidth*cols, tileHeight*rows))
	for i := range cols * rows {
		col := i % cols
		row := i / cols
		dot := fixed.Point26_6{
			X: fixed.I(col * tileWidth),
			Y: fixed.I(row*tileHeight + ascent),
		}
		dstRect, mask, maskPt, _, ok := face.Glyph(dot, rune(i))
		if !ok || mask == nil {
			continue
		}
		draw.Draw(atlas, dstRect, mask, maskPt, draw.Src)
	}
	return atlas, nil
}

func LoadFontFromBytes(bytes []byte) (*Font, error) {
	f, err := opentype.Parse(bytes)
	if err != nil {
		return nil, err
	}
	return &Font{
		font:  f,
		faces: make(map[FontSizeInPoints]font.Face),
	}, nil
}

// LoadGoMono returns the Go Mono face bundled with x/image.
func LoadGoMono() (*Font, error) {
	return LoadFontFromBytes(gomono.TTF)
}
