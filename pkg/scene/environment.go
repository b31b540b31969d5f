package scene

import (
	"fmt"

	"glscene/pkg/gpu"
	"glscene/pkg/ident"

	"github.com/go-gl/mathgl/mgl32"
)

// environment block: ambient colour, ambient intensity
const environmentBufferSize = 16

// Environment holds the per-scene ambient term and the clear values.
type Environment struct {
	ident.Object

	dev gpu.Device

	ambientColor     mgl32.Vec3
	ambientIntensity float32
	clearColor       mgl32.Vec4
	clearDepth       float32

	buffer gpu.Buffer
}

// NewEnvironment returns an environment with a dim grey ambient. A nil device
// makes every GPU operation a no-op.
func NewEnvironment(dev gpu.Device) *Environment {
	return &Environment{
		Object:           ident.New(),
		dev:              dev,
		ambientColor:     mgl32.Vec3{0.1, 0.1, 0.1},
		ambientIntensity: 1,
		clearColor:       mgl32.Vec4{0.2, 0.2, 0.2, 1},
		clearDepth:       1,
	}
}

func (e *Environment) AmbientColor() mgl32.Vec3  { return e.ambientColor }
func (e *Environment) AmbientIntensity() float32 { return e.ambientIntensity }
func (e *Environment) ClearColor() mgl32.Vec4    { return e.clearColor }

// SetAmbientColor changes the ambient colour and uploads it right away.
func (e *Environment) SetAmbientColor(c mgl32.Vec3) error {
	e.ambientColor = c
	return e.Update()
}

func (e *Environment) SetAmbientIntensity(i float32) error {
	e.ambientIntensity = i
	return e.Update()
}

func (e *Environment) SetClearColor(c mgl32.Vec4) { e.clearColor = c }

func (e *Environment) SetClearDepth(d float32) { e.clearDepth = d }

func (e *Environment) block() []byte {
	return gpu.NewBlock(environmentBufferSize).
		Vec3(e.ambientColor).
		Float(e.ambientIntensity).
		Bytes()
}

// Prepare creates the ambient buffer once.
func (e *Environment) Prepare() error {
	if e.buffer != nil || e.dev == nil {
		return nil
	}
	buf, err := e.dev.NewBuffer(environmentBufferSize, gpu.UniformFlags)
	if err != nil {
		return fmt.Errorf("environment buffer: %w", err)
	}
	e.buffer = buf
	return e.Update()
}

// Update uploads the ambient block. Before Prepare it only keeps the values.
func (e *Environment) Update() error {
	if e.buffer == nil {
		return nil
	}
	return e.buffer.Write(0, e.block())
}

// Bind binds the ambient block to a uniform slot.
func (e *Environment) Bind(binding uint32) {
	if e.buffer != nil {
		e.buffer.BindUniform(binding)
	}
}

// Render clears colour and depth.
func (e *Environment) Render() {
	if e.dev != nil {
		e.dev.Clear(e.clearColor, e.clearDepth)
	}
}

func (e *Environment) Release() {
	if e.buffer != nil {
		e.buffer.Release()
		e.buffer = nil
	}
}
