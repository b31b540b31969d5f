package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Block builds a std140 uniform block image.
type Block struct {
	buf []byte
}

// NewBlock returns a block with capacity for size bytes.
func NewBlock(size int) *Block {
	return &Block{buf: make([]byte, 0, size)}
}

func (b *Block) align(n int) {
	for len(b.buf)%n != 0 {
		b.buf = append(b.buf, 0)
	}
}

// Float appends a float.
func (b *Block) Float(v float32) *Block {
	b.align(4)
	b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(v))
	return b
}

// Int appends a signed int.
func (b *Block) Int(v int32) *Block {
	b.align(4)
	b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(v))
	return b
}

// Vec3 appends a vec3 on a 16 byte boundary. The next scalar may pack into
// the fourth slot.
func (b *Block) Vec3(v mgl32.Vec3) *Block {
	b.align(16)
	for _, f := range v {
		b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(f))
	}
	return b
}

// Vec4 appends a vec4.
func (b *Block) Vec4(v mgl32.Vec4) *Block {
	b.align(16)
	for _, f := range v {
		b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(f))
	}
	return b
}

// Mat4 appends a column-major mat4.
func (b *Block) Mat4(m mgl32.Mat4) *Block {
	b.align(16)
	for _, f := range m {
		b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(f))
	}
	return b
}

// Bytes returns the block padded to a multiple of 16.
func (b *Block) Bytes() []byte {
	b.align(16)
	return b.buf
}

// ReadFloat decodes a float at offset.
func ReadFloat(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

// ReadVec4 decodes a vec4 at offset.
func ReadVec4(data []byte, offset int) mgl32.Vec4 {
	var v mgl32.Vec4
	for i := range v {
		v[i] = ReadFloat(data, offset+4*i)
	}
	return v
}

// ReadMat4 decodes a column-major mat4 at offset.
func ReadMat4(data []byte, offset int) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = ReadFloat(data, offset+4*i)
	}
	return m
}
