// Package gpu describes the graphics device the scene layer draws through.
//
// The scene only needs a handful of operations: persistent-mapped uniform
// buffers written in place and bound to a slot, separable shader pipelines,
// and vertex geometry. OpenGL lives in gldevice; MemoryDevice records calls
// for tests and headless runs.
package gpu

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferFlags selects buffer storage and mapping behaviour.
type BufferFlags uint32

const (
	MapRead BufferFlags = 1 << iota
	MapWrite
	MapPersistent
	MapCoherent
	DynamicStorage
)

// UniformFlags is the flag set used for per-component uniform blocks.
const UniformFlags = MapWrite | MapPersistent | MapCoherent

// ErrOutOfRange is returned when a write does not fit the buffer.
var ErrOutOfRange = errors.New("gpu: write out of buffer range")

// Buffer is GPU-visible memory that stays mapped for writing.
type Buffer interface {
	Size() int
	Write(offset int, data []byte) error
	// BindUniform binds the whole buffer to a uniform block slot.
	BindUniform(binding uint32)
	Release()
}

// Stage is a shader stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// ShaderSource is one stage of a pipeline.
type ShaderSource struct {
	Stage Stage
	Name  string
	Code  string
}

// VertexAttrib describes one float attribute read from its own stream.
type VertexAttrib struct {
	Location   uint32
	Components int
}

// PipelineDesc describes a separable program pipeline.
type PipelineDesc struct {
	Name    string
	Shaders []ShaderSource
	Attribs []VertexAttrib
}

// Pipeline is a bound-able program pipeline with its vertex layout.
type Pipeline interface {
	Bind()
	Release()
}

// Topology is the primitive assembly mode.
type Topology int

const (
	Triangles Topology = iota
	TriangleStrip
	Lines
	Points
)

// VertexStream is one attribute stream of a geometry.
type VertexStream struct {
	Location   uint32
	Components int
	Data       []float32
}

// Count returns the number of vertices in the stream.
func (s VertexStream) Count() int {
	if s.Components <= 0 {
		return 0
	}
	return len(s.Data) / s.Components
}

// GeometryDesc describes vertex streams and optional indices.
type GeometryDesc struct {
	Topology Topology
	Streams  []VertexStream
	Indices  []uint32
}

// Geometry is uploaded vertex data ready to draw.
type Geometry interface {
	Draw()
	Release()
}

// Device creates resources and issues frame-level commands.
type Device interface {
	NewBuffer(size int, flags BufferFlags) (Buffer, error)
	NewPipeline(desc PipelineDesc) (Pipeline, error)
	NewGeometry(desc GeometryDesc) (Geometry, error)
	// DrawProcedural draws count vertices generated in the vertex shader.
	DrawProcedural(count int)
	Clear(color mgl32.Vec4, depth float32)
	Viewport(x, y, width, height int)
	Close() error
}
