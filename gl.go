package main

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

func initGL() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	logger.Info("gl context", "version", gl.GoStr(gl.GetString(gl.VERSION)), "renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	return nil
}

// cstr returns s with the trailing NUL the GL bindings expect.
func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func glErrorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("0x%04x", code)
	}
}

// checkGLError drains the GL error queue and reports the first error.
func checkGLError(op string) error {
	first := uint32(gl.NO_ERROR)
	for range 16 {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if first == gl.NO_ERROR {
			first = code
		}
	}
	if first != gl.NO_ERROR {
		return fmt.Errorf("%s: %s", op, glErrorName(first))
	}
	return nil
}

type Texture struct {
	tex uint32
}

func (t Texture) Bind() {
	gl.BindTexture(gl.TEXTURE_2D, t.tex)
}

func CreateTexture() (Texture, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return Texture{}, fmt.Errorf("glGenTextures failed")
	}
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	return Texture{tex}, nil
}

func (t *Texture) Close() error {
	if t.tex != 0 {
		gl.DeleteTextures(1, &t.tex)
		t.tex = 0
	}
	return nil
}

// Buffer is a static vertex or index buffer object.
type Buffer struct {
	buf    uint32
	target uint32
	count  int
}

func createBuffer(target uint32, size int, data unsafe.Pointer, count int) (Buffer, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return Buffer{}, fmt.Errorf("glGenBuffers failed")
	}
	gl.BindBuffer(target, buf)
	gl.BufferData(target, size, data, gl.STATIC_DRAW)
	gl.BindBuffer(target, 0)
	if err := checkGLError("glBufferData"); err != nil {
		gl.DeleteBuffers(1, &buf)
		return Buffer{}, err
	}
	return Buffer{buf: buf, target: target, count: count}, nil
}

func CreateVertexBuffer(data []float32) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, fmt.Errorf("empty vertex buffer")
	}
	return createBuffer(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), len(data))
}

func CreateIndexBuffer(data []uint16) (Buffer, error) {
	if len(data) == 0 {
		return Buffer{}, fmt.Errorf("empty index buffer")
	}
	return createBuffer(gl.ELEMENT_ARRAY_BUFFER, len(data)*2, gl.Ptr(data), len(data))
}

func (b Buffer) Bind() {
	gl.BindBuffer(b.target, b.buf)
}

func (b Buffer) Unbind() {
	gl.BindBuffer(b.target, 0)
}

func (b Buffer) Count() int {
	return b.count
}

func (b *Buffer) Close() error {
	if b.buf != 0 {
		gl.DeleteBuffers(1, &b.buf)
		b.buf = 0
	}
	return nil
}

type Shader struct {
	shader uint32
}

func GetShaderInfoLog(shader uint32) string {
	var length int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := make([]uint8, length)
	var logLen int32
	gl.GetShaderInfoLog(shader, length, &logLen, &log[0])
	return string(log[:logLen])
}

func shaderTypeName(shaderType uint32) string {
	switch shaderType {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	default:
		return fmt.Sprintf("0x%04x", shaderType)
	}
}

func CreateShader(shaderType uint32, source string) (Shader, error) {
	shader := gl.CreateShader(shaderType)
	source = cstr(source)
	data := gl.Str(source)
	length := int32(len(source) - 1)
	gl.ShaderSource(shader, 1, &data, &length)
	gl.CompileShader(shader)
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		infoLog := GetShaderInfoLog(shader)
		gl.DeleteShader(shader)
		return Shader{}, fmt.Errorf("%s shader compilation failed: %s", shaderTypeName(shaderType), infoLog)
	}
	return Shader{shader}, nil
}

func (s *Shader) Close() error {
	if s.shader != 0 {
		gl.DeleteShader(s.shader)
		s.shader = 0
	}
	return nil
}

type Program struct {
	program        uint32
	vertexShader   Shader
	fragmentShader Shader
	uniforms       map[string]int32
}

func GetProgramInfoLog(program uint32) string {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := make([]uint8, length)
	var logLen int32
	gl.GetProgramInfoLog(program, length, &logLen, &log[0])
	return string(log[:logLen])
}

func CreateProgram(vertexShader string, fragmentShader string) (*Program, error) {
	vs, err := CreateShader(gl.VERTEX_SHADER, vertexShader)
	if err != nil {
		return nil, err
	}
	fs, err := CreateShader(gl.FRAGMENT_SHADER, fragmentShader)
	if err != nil {
		vs.Close()
		return nil, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs.shader)
	gl.AttachShader(program, fs.shader)
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		infoLog := GetProgramInfoLog(program)
		gl.DeleteProgram(program)
		vs.Close()
		fs.Close()
		return nil, fmt.Errorf("program link failed: %s", infoLog)
	}
	return &Program{
		program:        program,
		vertexShader:   vs,
		fragmentShader: fs,
		uniforms:       make(map[string]int32),
	}, nil
}

func (p *Program) GetAttribLocation(name string) int32 {
	return gl.GetAttribLocation(p.program, gl.Str(cstr(name)))
}

// GetUniformLocation looks a uniform up once and caches the answer, -1
// included, so unused uniforms cost nothing on later frames.
func (p *Program) GetUniformLocation(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.program, gl.Str(cstr(name)))
	p.uniforms[name] = loc
	return loc
}

func (p *Program) Use() {
	gl.UseProgram(p.program)
}

func (p *Program) Close() error {
	p.vertexShader.Close()
	p.fragmentShader.Close()
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
	return nil
}
