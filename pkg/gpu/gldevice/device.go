// Package gldevice implements gpu.Device on OpenGL 4.5 core.
//
// Every call must come from the thread that owns the GL context.
package gldevice

import (
	"fmt"
	"strings"
	"unsafe"

	"glscene/internal/logger"
	"glscene/pkg/gpu"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Device is the OpenGL device
type Device struct {
	log *logger.Logger
	// vertex array used for procedural draws
	emptyVAO uint32
}

// New initializes the GL function pointers of the current context
func New(log *logger.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Infof("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))
	log.Infof("OpenGL renderer: %s", gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	d := &Device{log: log}
	gl.CreateVertexArrays(1, &d.emptyVAO)
	return d, nil
}

func storageFlags(f gpu.BufferFlags) (storage, access uint32) {
	if f&gpu.MapRead != 0 {
		storage |= gl.MAP_READ_BIT
		access |= gl.MAP_READ_BIT
	}
	if f&gpu.MapWrite != 0 {
		storage |= gl.MAP_WRITE_BIT
		access |= gl.MAP_WRITE_BIT
	}
	if f&gpu.MapPersistent != 0 {
		storage |= gl.MAP_PERSISTENT_BIT
		access |= gl.MAP_PERSISTENT_BIT
	}
	if f&gpu.MapCoherent != 0 {
		storage |= gl.MAP_COHERENT_BIT
		access |= gl.MAP_COHERENT_BIT
	}
	if f&gpu.DynamicStorage != 0 {
		storage |= gl.DYNAMIC_STORAGE_BIT
	}
	return storage, access
}

// NewBuffer creates immutable storage and keeps it mapped when the flags ask
// for persistent mapping
func (d *Device) NewBuffer(size int, flags gpu.BufferFlags) (gpu.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", size)
	}
	storage, access := storageFlags(flags)

	b := &buffer{size: size}
	gl.CreateBuffers(1, &b.id)
	gl.NamedBufferStorage(b.id, size, nil, storage)

	if flags&gpu.MapPersistent != 0 {
		ptr := gl.MapNamedBufferRange(b.id, 0, size, access)
		if ptr == nil {
			gl.DeleteBuffers(1, &b.id)
			return nil, fmt.Errorf("failed to map buffer of %d bytes: gl error 0x%x", size, gl.GetError())
		}
		b.mapped = unsafe.Slice((*byte)(ptr), size)
	}
	return b, nil
}

type buffer struct {
	id     uint32
	size   int
	mapped []byte
}

func (b *buffer) Size() int { return b.size }

func (b *buffer) Write(offset int, data []byte) error {
	if offset < 0 || offset+len(data) > b.size {
		return gpu.ErrOutOfRange
	}
	if len(data) == 0 {
		return nil
	}
	if b.mapped != nil {
		copy(b.mapped[offset:], data)
		return nil
	}
	gl.NamedBufferSubData(b.id, offset, len(data), gl.Ptr(data))
	return nil
}

func (b *buffer) BindUniform(binding uint32) {
	gl.BindBufferRange(gl.UNIFORM_BUFFER, binding, b.id, 0, b.size)
}

func (b *buffer) Release() {
	if b.id == 0 {
		return
	}
	if b.mapped != nil {
		gl.UnmapNamedBuffer(b.id)
		b.mapped = nil
	}
	gl.DeleteBuffers(1, &b.id)
	b.id = 0
}

func glStage(s gpu.Stage) (shaderType, stageBit uint32) {
	switch s {
	case gpu.StageFragment:
		return gl.FRAGMENT_SHADER, gl.FRAGMENT_SHADER_BIT
	case gpu.StageCompute:
		return gl.COMPUTE_SHADER, gl.COMPUTE_SHADER_BIT
	default:
		return gl.VERTEX_SHADER, gl.VERTEX_SHADER_BIT
	}
}

// NewPipeline links one separable program per stage into a program pipeline
func (d *Device) NewPipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	p := &pipeline{}
	gl.CreateProgramPipelines(1, &p.id)

	for _, src := range desc.Shaders {
		shaderType, bit := glStage(src.Stage)
		program, err := createSeparableProgram(src.Code, shaderType)
		if err != nil {
			p.Release()
			return nil, fmt.Errorf("pipeline %q: %s: %w", desc.Name, src.Name, err)
		}
		gl.UseProgramStages(p.id, bit, program)
		p.programs = append(p.programs, program)
	}

	gl.CreateVertexArrays(1, &p.vao)
	for _, a := range desc.Attribs {
		gl.EnableVertexArrayAttrib(p.vao, a.Location)
		gl.VertexArrayAttribFormat(p.vao, a.Location, int32(a.Components), gl.FLOAT, false, 0)
		// one binding per attribute, same index as the location
		gl.VertexArrayAttribBinding(p.vao, a.Location, a.Location)
	}
	p.attribs = desc.Attribs
	return p, nil
}

type pipeline struct {
	id       uint32
	vao      uint32
	programs []uint32
	attribs  []gpu.VertexAttrib
}

func (p *pipeline) Bind() {
	gl.BindProgramPipeline(p.id)
	gl.BindVertexArray(p.vao)
}

func (p *pipeline) Release() {
	for _, prog := range p.programs {
		gl.DeleteProgram(prog)
	}
	p.programs = nil
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.id != 0 {
		gl.DeleteProgramPipelines(1, &p.id)
		p.id = 0
	}
}

// createSeparableProgram compiles source and links it as a separable program
func createSeparableProgram(source string, shaderType uint32) (uint32, error) {
	shader, err := compileShader(source, shaderType)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.ProgramParameteri(program, gl.PROGRAM_SEPARABLE, gl.TRUE)
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	// Check for linking errors
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))

		gl.DeleteProgram(program)
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("shader program linking failed: %v", log)
	}

	gl.DetachShader(program, shader)
	gl.DeleteShader(shader)

	return program, nil
}

// compileShader compiles a shader from source
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	// Check for compilation errors
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		gl.DeleteShader(shader)

		return 0, fmt.Errorf("shader compilation failed: %v", log)
	}

	return shader, nil
}

func glTopology(t gpu.Topology) uint32 {
	switch t {
	case gpu.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.Lines:
		return gl.LINES
	case gpu.Points:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

// NewGeometry uploads each stream to its own buffer
func (d *Device) NewGeometry(desc gpu.GeometryDesc) (gpu.Geometry, error) {
	g := &geometry{mode: glTopology(desc.Topology)}
	for _, s := range desc.Streams {
		if len(s.Data) == 0 {
			continue
		}
		var id uint32
		gl.CreateBuffers(1, &id)
		gl.NamedBufferStorage(id, len(s.Data)*4, gl.Ptr(s.Data), 0)
		g.streams = append(g.streams, stream{id: id, location: s.Location, stride: int32(s.Components * 4)})
		if n := s.Count(); g.vertexCount == 0 || n < g.vertexCount {
			g.vertexCount = n
		}
	}
	if len(desc.Indices) > 0 {
		gl.CreateBuffers(1, &g.indexBuffer)
		gl.NamedBufferStorage(g.indexBuffer, len(desc.Indices)*4, gl.Ptr(desc.Indices), 0)
		g.indexCount = len(desc.Indices)
	}
	if e := gl.GetError(); e != gl.NO_ERROR {
		g.Release()
		return nil, fmt.Errorf("failed to create geometry: gl error 0x%x", e)
	}
	return g, nil
}

type stream struct {
	id       uint32
	location uint32
	stride   int32
}

type geometry struct {
	mode        uint32
	streams     []stream
	indexBuffer uint32
	vertexCount int
	indexCount  int
}

// Draw binds the streams to the vertex array of the bound pipeline
func (g *geometry) Draw() {
	var vao int32
	gl.GetIntegerv(gl.VERTEX_ARRAY_BINDING, &vao)
	for _, s := range g.streams {
		gl.VertexArrayVertexBuffer(uint32(vao), s.location, s.id, 0, s.stride)
	}
	if g.indexCount > 0 {
		gl.VertexArrayElementBuffer(uint32(vao), g.indexBuffer)
		gl.DrawElements(g.mode, int32(g.indexCount), gl.UNSIGNED_INT, nil)
		return
	}
	gl.DrawArrays(g.mode, 0, int32(g.vertexCount))
}

func (g *geometry) Release() {
	for _, s := range g.streams {
		gl.DeleteBuffers(1, &s.id)
	}
	g.streams = nil
	if g.indexBuffer != 0 {
		gl.DeleteBuffers(1, &g.indexBuffer)
		g.indexBuffer = 0
	}
}

// DrawProcedural draws vertices generated from gl_VertexID
func (d *Device) DrawProcedural(count int) {
	gl.BindVertexArray(d.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(count))
}

func (d *Device) Clear(color mgl32.Vec4, depth float32) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.ClearDepthf(depth)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) Close() error {
	if d.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &d.emptyVAO)
		d.emptyVAO = 0
	}
	return nil
}
