package main

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"
	mgl "github.com/go-gl/mathgl/mgl32"
)

// Device draws a mesh with the current shader parameters.
type Device interface {
	Draw(mesh *Mesh, params *ShaderParams) error
	Resize(width, height int)
}

const (
	DefaultClearColor       = 0x222222
	DefaultSpectrumLength   = 64
	projectionMatrixUniform = "projectionMatrix"
	modelViewMatrixUniform  = "modelViewMatrix"
	positionAttribute       = "position"
	wireframeFlag           = "wireframe"
)

type GLDeviceConfig struct {
	VertexShader   string
	FragmentShader string
	SpectrumLength int
	ClearColor     uint32
	Camera         *Camera
}

type meshBuffers struct {
	positions Buffer
	triangles Buffer
	lines     Buffer
}

func (mb *meshBuffers) Close() error {
	mb.positions.Close()
	mb.triangles.Close()
	mb.lines.Close()
	return nil
}

type GLDevice struct {
	program        *Program
	camera         *Camera
	spectrumLength int
	clear          [3]float32
	meshes         map[*Mesh]*meshBuffers
	spectrumBuf    []float32
	width, height  int
}

// NewGLDevice compiles the scene shaders. It needs a current GL context.
func NewGLDevice(cfg GLDeviceConfig) (*GLDevice, error) {
	if cfg.Camera == nil {
		return nil, fmt.Errorf("gl device: nil camera")
	}
	vs, fs := cfg.VertexShader, cfg.FragmentShader
	if vs == "" {
		vs = defaultVertexShader
	}
	if fs == "" {
		fs = defaultFragmentShader
	}
	program, err := CreateProgram(vs, fs)
	if err != nil {
		return nil, fmt.Errorf("gl device: %w", err)
	}
	n := cfg.SpectrumLength
	if n <= 0 {
		n = DefaultSpectrumLength
	}
	return &GLDevice{
		program:        program,
		camera:         cfg.Camera,
		spectrumLength: n,
		clear:          rgbComponents(cfg.ClearColor),
		meshes:         make(map[*Mesh]*meshBuffers),
		spectrumBuf:    make([]float32, n),
	}, nil
}

func rgbComponents(c uint32) [3]float32 {
	return [3]float32{
		float32((c>>16)&0xff) / 255,
		float32((c>>8)&0xff) / 255,
		float32(c&0xff) / 255,
	}
}

func (d *GLDevice) Resize(width, height int) {
	d.width, d.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	d.camera.SetAspect(width, height)
}

func (d *GLDevice) buffersFor(mesh *Mesh) (*meshBuffers, error) {
	if mb, ok := d.meshes[mesh]; ok {
		return mb, nil
	}
	positions, err := CreateVertexBuffer(mesh.Positions)
	if err != nil {
		return nil, err
	}
	triangles, err := CreateIndexBuffer(mesh.Triangles)
	if err != nil {
		positions.Close()
		return nil, err
	}
	lines, err := CreateIndexBuffer(mesh.Lines)
	if err != nil {
		positions.Close()
		triangles.Close()
		return nil, err
	}
	mb := &meshBuffers{positions: positions, triangles: triangles, lines: lines}
	d.meshes[mesh] = mb
	return mb, nil
}

// spectrumUniform converts a snapshot to the fixed length float array the
// shader declares, zero padded or truncated.
func spectrumUniform(dst []float32, s SpectrumSnapshot) {
	n := min(len(dst), len(s))
	for i := range n {
		dst[i] = float32(s[i])
	}
	clear(dst[n:])
}

func (d *GLDevice) setUniforms(mesh *Mesh, params *ShaderParams) {
	p := d.program
	for _, name := range params.FloatNames() {
		if loc := p.GetUniformLocation(name); loc >= 0 {
			v, _ := params.Float(name)
			gl.Uniform1f(loc, float32(v))
		}
	}
	for _, name := range params.FlagNames() {
		if loc := p.GetUniformLocation(name); loc >= 0 {
			var v int32
			if params.Flag(name) {
				v = 1
			}
			gl.Uniform1i(loc, v)
		}
	}
	for _, name := range params.SpectrumNames() {
		loc := p.GetUniformLocation(name)
		if loc < 0 {
			loc = p.GetUniformLocation(name + "[0]")
		}
		if loc < 0 {
			continue
		}
		s, _ := params.Spectrum(name)
		spectrumUniform(d.spectrumBuf, s)
		gl.Uniform1fv(loc, int32(len(d.spectrumBuf)), &d.spectrumBuf[0])
	}
	projection := d.camera.Projection()
	modelView := d.camera.View().Mul4(mesh.Transform.Matrix())
	setMatrix(p.GetUniformLocation(projectionMatrixUniform), projection)
	setMatrix(p.GetUniformLocation(modelViewMatrixUniform), modelView)
}

func setMatrix(loc int32, m mgl.Mat4) {
	if loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, &m[0])
	}
}

func (d *GLDevice) Draw(mesh *Mesh, params *ShaderParams) error {
	gl.ClearColor(d.clear[0], d.clear[1], d.clear[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if mesh == nil {
		return nil
	}
	mb, err := d.buffersFor(mesh)
	if err != nil {
		return fmt.Errorf("upload mesh: %w", err)
	}
	d.program.Use()
	d.setUniforms(mesh, params)

	attr := d.program.GetAttribLocation(positionAttribute)
	if attr < 0 {
		return fmt.Errorf("shader has no %q attribute", positionAttribute)
	}
	mb.positions.Bind()
	gl.EnableVertexAttribArray(uint32(attr))
	gl.VertexAttribPointer(uint32(attr), 3, gl.FLOAT, false, 0, nil)

	wireframe := mesh.Wireframe
	if params.HasFlag(wireframeFlag) {
		wireframe = params.Flag(wireframeFlag)
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	if wireframe {
		mb.lines.Bind()
		gl.DrawElements(gl.LINES, int32(mb.lines.Count()), gl.UNSIGNED_SHORT, nil)
		mb.lines.Unbind()
	} else {
		mb.triangles.Bind()
		gl.DrawElements(gl.TRIANGLES, int32(mb.triangles.Count()), gl.UNSIGNED_SHORT, nil)
		mb.triangles.Unbind()
	}
	gl.Disable(gl.BLEND)
	gl.DisableVertexAttribArray(uint32(attr))
	mb.positions.Unbind()
	return checkGLError("draw mesh")
}

func (d *GLDevice) Close() error {
	for mesh, mb := range d.meshes {
		mb.Close()
		delete(d.meshes, mesh)
	}
	return d.program.Close()
}
