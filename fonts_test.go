package main

import "testing"

func TestGoMonoAtlas(t *testing.T) {
	f, err := LoadGoMono()
	if err != nil {
		t.Fatal(err)
	}
	face, err := f.GetFace(hudFontSize)
	if err != nil {
		t.Fatal(err)
	}
	again, err := f.GetFace(hudFontSize)
	if err != nil || again != face {
		t.Error("GetFace did not reuse the cached face")
	}
	img, err := f.GetFaceImage(face, hudAtlasSize)
	if err != nil {
		t.Fatal(err)
	}
	size := img.Bounds().Size()
	if size.X == 0 || size.X%hudAtlasSize.X != 0 || size.Y%hudAtlasSize.Y != 0 {
		t.Errorf("atlas size %v is not a grid of %v cells", size, hudAtlasSize)
	}
	inked := false
	for _, a := range img.Pix {
		if a != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Error("atlas is blank")
	}
	if _, err := f.GetFaceImage(face, Size{}); err == nil {
		t.Error("GetFaceImage accepted an empty grid")
	}
}

func TestLoadFontFromBytesRejectsGarbage(t *testing.T) {
	if _, err := LoadFontFromBytes([]byte("not a font")); err == nil {
		t.Error("LoadFontFromBytes accepted garbage")
	}
}
