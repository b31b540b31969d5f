package scene

import (
	"glscene/pkg/input"

	"github.com/go-gl/mathgl/mgl32"
)

// direction bits
const (
	dirLeft = 1 << iota
	dirRight
	dirUp
	dirDown
)

// moveDirection maps held direction bits to a camera-space vector. Opposing
// keys held together cancel the movement.
func moveDirection(bits int) mgl32.Vec3 {
	switch bits {
	case dirLeft:
		return mgl32.Vec3{-1, 0, 0}
	case dirRight:
		return mgl32.Vec3{1, 0, 0}
	case dirUp:
		return mgl32.Vec3{0, 0, -1}
	case dirDown:
		return mgl32.Vec3{0, 0, 1}
	case dirLeft | dirUp:
		return mgl32.Vec3{-1, 0, -1}
	case dirLeft | dirDown:
		return mgl32.Vec3{-1, 0, 1}
	case dirRight | dirUp:
		return mgl32.Vec3{1, 0, -1}
	case dirRight | dirDown:
		return mgl32.Vec3{1, 0, 1}
	}
	return mgl32.Vec3{}
}

// drag remembers the previous cursor position of a mouse drag.
type drag struct {
	active bool
	prevX  float64
	prevY  float64
}

// EditCameraController flies the camera: WASD or arrow keys move it, a left
// drag turns it, a right drag pans and the wheel dollies toward where it
// looks.
type EditCameraController struct {
	BaseBehaviour

	// Speed is in units per second.
	Speed float32
	// ScrollFactor scales the dolly step by the distance to the origin.
	ScrollFactor float32
	// RotateSensitivity is radians per pixel.
	RotateSensitivity float32
	// PanSensitivity is units per pixel per unit of distance.
	PanSensitivity float32
	// Start is applied once in Prepare.
	Start mgl32.Vec3

	drag drag
}

// NewEditCameraController returns a constructor for AddComponent.
func NewEditCameraController(in *input.Input) func(*Node) (*EditCameraController, error) {
	return func(n *Node) (*EditCameraController, error) {
		c := &EditCameraController{
			BaseBehaviour:     NewBaseBehaviour(n, "edit camera controller", in),
			Speed:             3,
			ScrollFactor:      0.1,
			RotateSensitivity: 0.001,
			PanSensitivity:    0.001,
			Start:             mgl32.Vec3{0, 1, 5},
		}
		c.Listen(c)
		return c, nil
	}
}

func (c *EditCameraController) Prepare() error {
	if t := c.transform(); t != nil {
		t.Translate(c.Start, SpaceParent)
	}
	return nil
}

func (c *EditCameraController) UpdatePerFrame(dt float32) {
	t := c.transform()
	if t == nil {
		return
	}
	bits := 0
	if c.keyDown(input.KeyA) || c.keyDown(input.KeyLeft) {
		bits |= dirLeft
	}
	if c.keyDown(input.KeyD) || c.keyDown(input.KeyRight) {
		bits |= dirRight
	}
	if c.keyDown(input.KeyW) || c.keyDown(input.KeyUp) {
		bits |= dirUp
	}
	if c.keyDown(input.KeyS) || c.keyDown(input.KeyDown) {
		bits |= dirDown
	}
	dir := moveDirection(bits)
	if dir == (mgl32.Vec3{}) {
		return
	}
	t.Translate(dir.Mul(c.Speed*dt), SpaceLocal)
}

func (c *EditCameraController) OnScroll(e input.ScrollEvent) {
	t := c.transform()
	if t == nil {
		return
	}
	dist := t.GlobalPosition().Len()
	t.Translate(mgl32.Vec3{0, 0, -dist * c.ScrollFactor * float32(e.DY)}, SpaceLocal)
}

func (c *EditCameraController) OnMouseMove(e input.CursorEvent) {
	if c.Input == nil || c.Input.GUIWantCaptureMouse {
		return
	}
	t := c.transform()
	if t == nil {
		return
	}
	left := c.keyDown(input.MouseButtonLeft)
	right := c.keyDown(input.MouseButtonRight)
	if !left && !right {
		c.drag.active = false
		return
	}
	if !c.drag.active {
		c.drag = drag{active: true, prevX: e.X, prevY: e.Y}
	}
	dx := float32(c.drag.prevX - e.X)
	dy := float32(c.drag.prevY - e.Y)
	if left {
		if dx != 0 {
			t.Yaw(dx*c.RotateSensitivity, SpaceParent)
		}
		if dy != 0 {
			t.Pitch(dy*c.RotateSensitivity, SpaceLocal)
		}
	} else {
		k := c.PanSensitivity * t.GlobalPosition().Len()
		if dx != 0 {
			t.Translate(mgl32.Vec3{dx * k, 0, 0}, SpaceLocal)
		}
		if dy != 0 {
			t.Translate(mgl32.Vec3{0, -dy * k, 0}, SpaceLocal)
		}
	}
	c.drag.prevX, c.drag.prevY = e.X, e.Y
}

// OrbitCameraController keeps the camera looking at the origin: a left drag
// tumbles around it, a right drag turns the camera in place, the wheel moves
// along the view direction and releasing the left button snaps back.
type OrbitCameraController struct {
	BaseBehaviour

	// Distance is the initial distance along +Z, applied in Prepare.
	Distance float32
	// Sensitivity is degrees per pixel.
	Sensitivity float32
	// ScrollStep is the move per wheel notch.
	ScrollStep float32

	drag drag
}

// NewOrbitCameraController returns a constructor for AddComponent.
func NewOrbitCameraController(in *input.Input) func(*Node) (*OrbitCameraController, error) {
	return func(n *Node) (*OrbitCameraController, error) {
		c := &OrbitCameraController{
			BaseBehaviour: NewBaseBehaviour(n, "orbit camera controller", in),
			Distance:      3,
			Sensitivity:   2,
			ScrollStep:    0.1,
		}
		c.Listen(c)
		return c, nil
	}
}

func (c *OrbitCameraController) Prepare() error {
	if t := c.transform(); t != nil {
		t.SetInitTranslation(mgl32.Vec3{0, 0, c.Distance})
	}
	return nil
}

func (c *OrbitCameraController) OnScroll(e input.ScrollEvent) {
	t := c.transform()
	if t == nil {
		return
	}
	step := mgl32.Vec3{0, 0, float32(e.DY) * c.ScrollStep}
	t.Translate(t.LocalRotation().Rotate(step), SpaceParent)
}

func (c *OrbitCameraController) OnMouseMove(e input.CursorEvent) {
	if c.Input == nil || c.Input.GUIWantCaptureMouse {
		return
	}
	t := c.transform()
	if t == nil {
		return
	}
	left := c.keyDown(input.MouseButtonLeft)
	right := c.keyDown(input.MouseButtonRight)
	if !left && !right {
		c.drag.active = false
		return
	}
	if !c.drag.active {
		c.drag = drag{active: true, prevX: e.X, prevY: e.Y}
		return
	}
	dx := c.Sensitivity * float32(e.X-c.drag.prevX)
	dy := -c.Sensitivity * float32(e.Y-c.drag.prevY)
	c.drag.prevX, c.drag.prevY = e.X, e.Y

	if left {
		if dx == 0 && dy == 0 {
			return
		}
		a := mgl32.Vec3{dx, dy, 0}.Normalize()
		axis := a.Cross(mgl32.Vec3{0, 0, 1})
		dl := mgl32.Vec2{dx, dy}.Len()
		t.RotateAxis(axis, mgl32.DegToRad(dl), SpaceLocal)
		t.SetLocalTranslation(t.LocalRotation().Rotate(t.InitTranslation()))
		return
	}
	t.Yaw(mgl32.DegToRad(dx), SpaceParent)
	t.Pitch(mgl32.DegToRad(dy), SpaceLocal)
}

func (c *OrbitCameraController) OnMouseButton(e input.ButtonEvent) {
	if e.Code == input.MouseButtonLeft && e.State == input.Release {
		if t := c.transform(); t != nil {
			t.Reset()
		}
	}
}
