package gpu

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// MemoryDevice is a Device backed by host memory. It records what was
// created, bound and drawn.
type MemoryDevice struct {
	mu sync.Mutex

	// Fail, when set, is returned by every resource constructor.
	Fail error

	buffers       []*MemoryBuffer
	pipelines     []*MemoryPipeline
	geometries    []*MemoryGeometry
	uniforms      map[uint32]*MemoryBuffer
	boundPipeline *MemoryPipeline
	draws         int
	clears        int
	clearColor    mgl32.Vec4
	viewport      [4]int
	closed        bool
}

// NewMemoryDevice returns an empty recording device.
func NewMemoryDevice() *MemoryDevice {
	return &MemoryDevice{uniforms: make(map[uint32]*MemoryBuffer)}
}

// MemoryBuffer is a host-side Buffer.
type MemoryBuffer struct {
	dev      *MemoryDevice
	flags    BufferFlags
	data     []byte
	writes   int
	released bool
}

// MemoryPipeline is a recorded pipeline.
type MemoryPipeline struct {
	dev      *MemoryDevice
	Desc     PipelineDesc
	released bool
}

// MemoryGeometry is recorded geometry.
type MemoryGeometry struct {
	dev      *MemoryDevice
	Desc     GeometryDesc
	released bool
}

func (d *MemoryDevice) NewBuffer(size int, flags BufferFlags) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Fail != nil {
		return nil, d.Fail
	}
	if size <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", size)
	}
	b := &MemoryBuffer{dev: d, flags: flags, data: make([]byte, size)}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *MemoryDevice) NewPipeline(desc PipelineDesc) (Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Fail != nil {
		return nil, d.Fail
	}
	for _, s := range desc.Shaders {
		if s.Code == "" {
			return nil, fmt.Errorf("shader %q (%s) is empty", s.Name, s.Stage)
		}
	}
	p := &MemoryPipeline{dev: d, Desc: desc}
	d.pipelines = append(d.pipelines, p)
	return p, nil
}

func (d *MemoryDevice) NewGeometry(desc GeometryDesc) (Geometry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Fail != nil {
		return nil, d.Fail
	}
	g := &MemoryGeometry{dev: d, Desc: desc}
	d.geometries = append(d.geometries, g)
	return g, nil
}

func (d *MemoryDevice) DrawProcedural(count int) {
	d.mu.Lock()
	d.draws++
	d.mu.Unlock()
}

func (d *MemoryDevice) Clear(color mgl32.Vec4, depth float32) {
	d.mu.Lock()
	d.clears++
	d.clearColor = color
	d.mu.Unlock()
}

func (d *MemoryDevice) Viewport(x, y, width, height int) {
	d.mu.Lock()
	d.viewport = [4]int{x, y, width, height}
	d.mu.Unlock()
}

func (d *MemoryDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// Uniform returns the buffer bound to a uniform slot.
func (d *MemoryDevice) Uniform(binding uint32) (*MemoryBuffer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.uniforms[binding]
	return b, ok
}

// BoundPipeline returns the last bound pipeline.
func (d *MemoryDevice) BoundPipeline() *MemoryPipeline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.boundPipeline
}

// Draws returns the number of draw calls issued.
func (d *MemoryDevice) Draws() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

// Clears returns the number of clears issued.
func (d *MemoryDevice) Clears() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

// ClearColor returns the colour of the last clear.
func (d *MemoryDevice) ClearColor() mgl32.Vec4 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clearColor
}

// ViewportRect returns the last viewport.
func (d *MemoryDevice) ViewportRect() [4]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewport
}

// Pipelines returns every pipeline created so far.
func (d *MemoryDevice) Pipelines() []*MemoryPipeline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*MemoryPipeline(nil), d.pipelines...)
}

// Live counts resources that have not been released.
func (d *MemoryDevice) Live() (buffers, pipelines, geometries int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.buffers {
		if !b.released {
			buffers++
		}
	}
	for _, p := range d.pipelines {
		if !p.released {
			pipelines++
		}
	}
	for _, g := range d.geometries {
		if !g.released {
			geometries++
		}
	}
	return
}

func (b *MemoryBuffer) Size() int { return len(b.data) }

func (b *MemoryBuffer) Write(offset int, data []byte) error {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	if b.released {
		return fmt.Errorf("write to released buffer")
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return ErrOutOfRange
	}
	copy(b.data[offset:], data)
	b.writes++
	return nil
}

func (b *MemoryBuffer) BindUniform(binding uint32) {
	b.dev.mu.Lock()
	b.dev.uniforms[binding] = b
	b.dev.mu.Unlock()
}

func (b *MemoryBuffer) Release() {
	b.dev.mu.Lock()
	b.released = true
	for k, v := range b.dev.uniforms {
		if v == b {
			delete(b.dev.uniforms, k)
		}
	}
	b.dev.mu.Unlock()
}

// Bytes returns a copy of the buffer contents.
func (b *MemoryBuffer) Bytes() []byte {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Writes returns how many writes the buffer received.
func (b *MemoryBuffer) Writes() int {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	return b.writes
}

// Released reports whether Release was called.
func (b *MemoryBuffer) Released() bool {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()
	return b.released
}

func (p *MemoryPipeline) Bind() {
	p.dev.mu.Lock()
	p.dev.boundPipeline = p
	p.dev.mu.Unlock()
}

func (p *MemoryPipeline) Release() {
	p.dev.mu.Lock()
	p.released = true
	p.dev.mu.Unlock()
}

func (g *MemoryGeometry) Draw() {
	g.dev.mu.Lock()
	g.dev.draws++
	g.dev.mu.Unlock()
}

func (g *MemoryGeometry) Release() {
	g.dev.mu.Lock()
	g.released = true
	g.dev.mu.Unlock()
}
