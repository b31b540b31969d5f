package scene

import (
	"fmt"

	"glscene/internal/logger"
	"glscene/pkg/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// light block: color, intensity, direction
const lightBufferSize = 32

// LightType is the kind of light source. Only directional lights exist.
type LightType int

const (
	LightDirectional LightType = iota
)

// Light is a directional light. Its buffer is created in Prepare and
// refreshed whenever the node updates.
type Light struct {
	BaseComponent

	Type LightType

	dev       gpu.Device
	color     mgl32.Vec3
	intensity float32
	direction mgl32.Vec3

	buffer gpu.Buffer
}

// NewLight returns a constructor for a white directional light.
func NewLight(dev gpu.Device) func(*Node) (*Light, error) {
	return func(n *Node) (*Light, error) {
		return &Light{
			BaseComponent: NewBaseComponent(n, "light"),
			Type:          LightDirectional,
			dev:           dev,
			color:         mgl32.Vec3{1, 1, 1},
			intensity:     1,
			direction:     mgl32.Vec3{1, 1, 0},
		}, nil
	}
}

func (l *Light) Color() mgl32.Vec3     { return l.color }
func (l *Light) Intensity() float32    { return l.intensity }
func (l *Light) Direction() mgl32.Vec3 { return l.direction }

func (l *Light) SetColor(c mgl32.Vec3) *Light {
	l.color = c
	l.node.NeedUpdate(true, false)
	return l
}

func (l *Light) SetIntensity(i float32) *Light {
	l.intensity = i
	l.node.NeedUpdate(true, false)
	return l
}

// SetDirection sets the direction the light comes from.
func (l *Light) SetDirection(d mgl32.Vec3) *Light {
	l.direction = d
	l.node.NeedUpdate(true, false)
	return l
}

func (l *Light) block() []byte {
	return gpu.NewBlock(lightBufferSize).
		Vec3(l.color).
		Float(l.intensity).
		Vec3(l.direction).
		Bytes()
}

func (l *Light) Prepare() error {
	if l.buffer != nil || l.dev == nil {
		return nil
	}
	buf, err := l.dev.NewBuffer(lightBufferSize, gpu.UniformFlags)
	if err != nil {
		return fmt.Errorf("light buffer: %w", err)
	}
	if err := buf.Write(0, l.block()); err != nil {
		buf.Release()
		return err
	}
	l.buffer = buf
	return nil
}

func (l *Light) Update() {
	if l.buffer == nil {
		return
	}
	if err := l.buffer.Write(0, l.block()); err != nil {
		logger.Default().Warnf("upload light of %s: %v", l.node, err)
	}
}

// Bind binds the light block to a uniform slot.
func (l *Light) Bind(binding uint32) {
	if l.buffer != nil {
		l.buffer.BindUniform(binding)
	}
}

func (l *Light) Destroy() {
	if l.buffer != nil {
		l.buffer.Release()
		l.buffer = nil
	}
}
