package main

import (
	"fmt"
	"image"
	"unsafe"

	gl "github.com/go-gl/gl/v3.1/gles2"
	mgl "github.com/go-gl/mathgl/mgl32"
)

const (
	tileVertexShader = `
    precision highp float;
    attribute vec2 a_position;
    attribute vec2 a_texcoord;
    uniform mat4 u_transform;
    varying vec2 v_texcoord;
    void main(void) {
      gl_Position = u_transform * vec4(a_position, 0.0, 1.0);
      v_texcoord = a_texcoord;
    }`
	tileFragmentShader = `
    precision highp float;
    uniform sampler2D u_tex;
    uniform vec4 u_color;
    varying vec2 v_texcoord;
    void main(void) {
      gl_FragColor = u_color * texture2D(u_tex, v_texcoord).a;
    }`
)

type TileVertex struct {
	position [2]float32
	texcoord [2]float32
}

// TileMap is a glyph atlas uploaded as a texture, drawn one cell per rune.
type TileMap struct {
	img         *image.Alpha
	cols, rows  int
	tex         Texture
	program     *Program
	a_position  int32
	a_texcoord  int32
	u_transform int32
	u_tex       int32
	u_color     int32
}

type TileDrawList struct {
	tm       *TileMap
	vertices []TileVertex
	color    [4]float32
}

func CreateTileMap(img *image.Alpha, sizeInTiles Size) (*TileMap, error) {
	program, err := CreateProgram(tileVertexShader, tileFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("tile map: %w", err)
	}
	tex, err := CreateTexture()
	if err != nil {
		program.Close()
		return nil, err
	}
	mapSize := img.Bounds().Size()
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.ALPHA,
		int32(mapSize.X), int32(mapSize.Y),
		0, gl.ALPHA, gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := checkGLError("upload tile map"); err != nil {
		tex.Close()
		program.Close()
		return nil, err
	}
	tm := &TileMap{
		img:         img,
		cols:        sizeInTiles.X,
		rows:        sizeInTiles.Y,
		tex:         tex,
		program:     program,
		a_position:  program.GetAttribLocation("a_position"),
		a_texcoord:  program.GetAttribLocation("a_texcoord"),
		u_transform: program.GetUniformLocation("u_transform"),
		u_tex:       program.GetUniformLocation("u_tex"),
		u_color:     program.GetUniformLocation("u_color"),
	}
	return tm, nil
}

func (tm *TileMap) GetMapSize() Size {
	return tm.img.Bounds().Size()
}

func (tm *TileMap) GetTileSize() Size {
	mapSize := tm.GetMapSize()
	return Size{X: mapSize.X / tm.cols, Y: mapSize.Y / tm.rows}
}

func (tm *TileMap) CreateDrawList() *TileDrawList {
	return &TileDrawList{
		tm:       tm,
		vertices: make([]TileVertex, 0, 6*4096),
		color:    [4]float32{1, 1, 1, 1},
	}
}

func (tdl *TileDrawList) Clear() {
	tdl.vertices = tdl.vertices[:0]
}

func (tdl *TileDrawList) SetColor(r, g, b, a float32) {
	tdl.color = [4]float32{r, g, b, a}
}

// DrawRune places r at tile column x, row y. Runes outside the atlas
// are skipped.
func (tdl *TileDrawList) DrawRune(x, y int, r rune) {
	rows := tdl.tm.rows
	cols := tdl.tm.cols
	if r < 0 || int(r) >= cols*rows {
		return
	}
	cell := image.Pt(int(r)%cols, int(r)/cols)
	quad := tileQuad(image.Pt(x, y), cell, Size{X: cols, Y: rows})
	tdl.vertices = append(tdl.vertices, quad[:]...)
}

// tileQuad builds the two triangles covering screen tile pos, textured
// with atlas cell of an atlas grid. Screen rows grow downwards.
func tileQuad(pos, cell image.Point, grid Size) [6]TileVertex {
	pos0 := [2]float32{float32(pos.X), float32(-pos.Y)}
	pos1 := [2]float32{pos0[0] + 1, pos0[1] - 1}
	uv0 := [2]float32{float32(cell.X) / float32(grid.X), float32(cell.Y) / float32(grid.Y)}
	uv1 := [2]float32{uv0[0] + 1/float32(grid.X), uv0[1] + 1/float32(grid.Y)}
	corner := func(right, bottom bool) TileVertex {
		v := TileVertex{position: pos0, texcoord: uv0}
		if right {
			v.position[0], v.texcoord[0] = pos1[0], uv1[0]
		}
		if bottom {
			v.position[1], v.texcoord[1] = pos1[1], uv1[1]
		}
		return v
	}
	return [6]TileVertex{
		corner(false, false), corner(false, true), corner(true, true),
		corner(true, true), corner(true, false), corner(false, false),
	}
}

// DrawString lays s out from tile (x, y) and returns the number of
// columns used.
func (tdl *TileDrawList) DrawString(x, y int, s string) int {
	col := 0
	for _, r := range s {
		tdl.DrawRune(x+col, y, r)
		col++
	}
	return col
}

// Render draws the list at pixel offset origin of a viewport of fbSize
// pixels, one atlas cell per tile.
func (tdl *TileDrawList) Render(origin image.Point, fbSize Size) error {
	if len(tdl.vertices) == 0 || fbSize.X <= 0 || fbSize.Y <= 0 {
		return nil
	}
	tm := tdl.tm
	tm.program.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	tm.tex.Bind()
	gl.Uniform1i(tm.u_tex, 0)
	gl.Uniform4f(tm.u_color, tdl.color[0], tdl.color[1], tdl.color[2], tdl.color[3])
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.EnableVertexAttribArray(uint32(tm.a_position))
	gl.VertexAttribPointer(
		uint32(tm.a_position), 2, gl.FLOAT, false,
		int32(unsafe.Sizeof(TileVertex{})),
		gl.Ptr(&tdl.vertices[0].position[0]))
	gl.EnableVertexAttribArray(uint32(tm.a_texcoord))
	gl.VertexAttribPointer(
		uint32(tm.a_texcoord), 2, gl.FLOAT, false,
		int32(unsafe.Sizeof(TileVertex{})),
		gl.Ptr(&tdl.vertices[0].texcoord[0]))
	tileSize := tm.GetTileSize()
	ux := 2.0 / float32(fbSize.X)
	uy := 2.0 / float32(fbSize.Y)
	mScale := mgl.Scale3D(ux*float32(tileSize.X), uy*float32(tileSize.Y), 1)
	tx := -1.0 + ux*float32(origin.X)
	ty := 1.0 - uy*float32(origin.Y)
	mTranslate := mgl.Translate3D(tx, ty, 0)
	mTransform := mTranslate.Mul4(mScale)
	gl.UniformMatrix4fv(tm.u_transform, 1, false, &mTransform[0])
	gl.Disable(gl.DEPTH_TEST)
	defer gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(tdl.vertices)))
	gl.Disable(gl.BLEND)
	gl.DisableVertexAttribArray(uint32(tm.a_position))
	gl.DisableVertexAttribArray(uint32(tm.a_texcoord))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return checkGLError("render tiles")
}

func (tm *TileMap) Close() error {
	tm.tex.Close()
	return tm.program.Close()
}
