package scene

import (
	"fmt"
	"math"

	"glscene/internal/logger"
	"glscene/pkg/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection selects how a Camera projects.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// camera block: V, P, eyePos, near, far
const cameraBufferSize = 160

// Camera turns the owning node's frame into view and projection matrices.
// The node should carry a Transform; without one the view is the identity.
type Camera struct {
	BaseComponent

	projection Projection
	fovy       float32 // radians
	aspect     float32
	xmag, ymag float32
	near, far  float32

	proj mgl32.Mat4
	view mgl32.Mat4
	eye  mgl32.Vec3

	nearCorners [4]mgl32.Vec3
	farCorners  [4]mgl32.Vec3

	buffer gpu.Buffer
}

func newCamera(dev gpu.Device, n *Node) (*Camera, error) {
	c := &Camera{
		BaseComponent: NewBaseComponent(n, "camera"),
		view:          mgl32.Ident4(),
	}
	if dev != nil {
		buf, err := dev.NewBuffer(cameraBufferSize, gpu.UniformFlags)
		if err != nil {
			return nil, fmt.Errorf("camera buffer: %w", err)
		}
		c.buffer = buf
	}
	return c, nil
}

// NewPerspectiveCamera returns a constructor for a perspective camera. A far
// plane of 0 gives an infinite projection.
func NewPerspectiveCamera(dev gpu.Device, fovy, aspect, near, far float32) func(*Node) (*Camera, error) {
	return func(n *Node) (*Camera, error) {
		c, err := newCamera(dev, n)
		if err != nil {
			return nil, err
		}
		c.near, c.far = near, far
		c.SetPerspective(fovy, aspect)
		return c, nil
	}
}

// NewOrthographicCamera returns a constructor for an orthographic camera
// covering xmag by ymag units.
func NewOrthographicCamera(dev gpu.Device, xmag, ymag, near, far float32) func(*Node) (*Camera, error) {
	return func(n *Node) (*Camera, error) {
		c, err := newCamera(dev, n)
		if err != nil {
			return nil, err
		}
		c.near, c.far = near, far
		c.SetOrthographic(xmag, ymag)
		return c, nil
	}
}

func (c *Camera) SetPerspective(fovy, aspect float32) *Camera {
	c.projection = Perspective
	c.fovy, c.aspect = fovy, aspect
	c.updateProjection()
	return c
}

func (c *Camera) SetOrthographic(xmag, ymag float32) *Camera {
	c.projection = Orthographic
	c.xmag, c.ymag = xmag, ymag
	c.updateProjection()
	return c
}

// SetAspect keeps the field of view and changes the aspect ratio.
func (c *Camera) SetAspect(aspect float32) *Camera {
	if c.projection == Perspective {
		return c.SetPerspective(c.fovy, aspect)
	}
	return c
}

func (c *Camera) SetNearPlane(near float32) *Camera {
	c.near = near
	c.updateProjection()
	return c
}

func (c *Camera) SetFarPlane(far float32) *Camera {
	c.far = far
	c.updateProjection()
	return c
}

func (c *Camera) Projection() Projection { return c.projection }
func (c *Camera) Fovy() float32          { return c.fovy }
func (c *Camera) Aspect() float32        { return c.aspect }
func (c *Camera) Near() float32          { return c.near }
func (c *Camera) Far() float32           { return c.far }

func infinitePerspective(fovy, aspect, near float32) mgl32.Mat4 {
	f := 1 / float32(math.Tan(float64(fovy)/2))
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, -1, -1,
		0, 0, -2 * near, 0,
	}
}

func (c *Camera) updateProjection() {
	switch c.projection {
	case Perspective:
		if c.far == 0 {
			c.proj = infinitePerspective(c.fovy, c.aspect, c.near)
		} else {
			c.proj = mgl32.Perspective(c.fovy, c.aspect, c.near, c.far)
		}
		tanHalf := float32(math.Tan(float64(c.fovy) / 2))
		yn, yf := tanHalf*c.near, tanHalf*c.far
		xn, xf := yn*c.aspect, yf*c.aspect
		c.nearCorners = corners(xn, yn, c.near)
		c.farCorners = corners(xf, yf, c.far)
	case Orthographic:
		x, y := c.xmag/2, c.ymag/2
		c.proj = mgl32.Ortho(-x, x, -y, y, c.near, c.far)
		c.nearCorners = corners(x, y, c.near)
		c.farCorners = corners(x, y, c.far)
	}
	c.upload()
}

func corners(x, y, z float32) [4]mgl32.Vec3 {
	return [4]mgl32.Vec3{
		{-x, -y, -z},
		{x, -y, -z},
		{-x, y, -z},
		{x, y, -z},
	}
}

// FrustumCorners returns the near and far plane corners in camera space,
// ordered bottom-left, bottom-right, top-left, top-right.
func (c *Camera) FrustumCorners() (near, far [4]mgl32.Vec3) {
	return c.nearCorners, c.farCorners
}

// Update refreshes the view from the node's frame and uploads the block.
func (c *Camera) Update() {
	c.upload()
}

func (c *Camera) upload() {
	if t := c.transform(); t != nil {
		c.view = t.GlobalMatrix().Inv()
		c.eye = t.GlobalPosition()
	}
	if c.buffer == nil {
		return
	}
	data := gpu.NewBlock(cameraBufferSize).
		Mat4(c.view).
		Mat4(c.proj).
		Vec3(c.eye).
		Float(c.near).
		Float(c.far).
		Bytes()
	if err := c.buffer.Write(0, data); err != nil {
		logger.Default().Warnf("upload camera of %s: %v", c.node, err)
	}
}

func (c *Camera) ViewMatrix() mgl32.Mat4       { return c.view }
func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.proj }
func (c *Camera) EyePosition() mgl32.Vec3      { return c.eye }

// Bind binds the camera block to a uniform slot.
func (c *Camera) Bind(binding uint32) {
	if c.buffer != nil {
		c.buffer.BindUniform(binding)
	}
}

func (c *Camera) Destroy() {
	if c.buffer != nil {
		c.buffer.Release()
		c.buffer = nil
	}
}
