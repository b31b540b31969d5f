package scene

import (
	"fmt"

	"glscene/internal/logger"
	"glscene/pkg/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Space selects the basis a Transform mutation is expressed in.
type Space int

const (
	// SpaceLocal uses the node's own current orientation.
	SpaceLocal Space = iota
	// SpaceParent applies the delta directly in the parent's basis.
	SpaceParent
	// SpaceWorld is accepted but only translation has an effect, and the
	// delta is not brought into the parent's frame.
	SpaceWorld
)

func (s Space) String() string {
	switch s {
	case SpaceLocal:
		return "local"
	case SpaceParent:
		return "parent"
	case SpaceWorld:
		return "world"
	default:
		return fmt.Sprintf("space(%d)", int(s))
	}
}

const transformBufferSize = 64

var (
	axisX = mgl32.Vec3{1, 0, 0}
	axisY = mgl32.Vec3{0, 1, 0}
	axisZ = mgl32.Vec3{0, 0, 1}
)

// Transform holds the spatial state of a node.
//
// Two global matrices are kept. GlobalMatrix is the frame children are placed
// in and leaves out the node's own scale, so scale does not propagate down
// the tree. ModelMatrix is the parent's GlobalMatrix times LocalMatrix and is
// what gets uploaded for drawing.
type Transform struct {
	BaseComponent

	initTranslation mgl32.Vec3
	initRotation    mgl32.Quat
	initScale       mgl32.Vec3

	translation mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3

	local          mgl32.Mat4
	global         mgl32.Mat4
	model          mgl32.Mat4
	globalRotation mgl32.Quat

	buffer gpu.Buffer
}

// NewTransform returns a constructor for AddComponent. With a nil device the
// transform computes matrices but uploads nothing.
func NewTransform(dev gpu.Device) func(*Node) (*Transform, error) {
	return func(n *Node) (*Transform, error) {
		t := &Transform{
			BaseComponent:  NewBaseComponent(n, "transform"),
			initRotation:   mgl32.QuatIdent(),
			initScale:      mgl32.Vec3{1, 1, 1},
			rotation:       mgl32.QuatIdent(),
			scale:          mgl32.Vec3{1, 1, 1},
			local:          mgl32.Ident4(),
			global:         mgl32.Ident4(),
			model:          mgl32.Ident4(),
			globalRotation: mgl32.QuatIdent(),
		}
		if dev != nil {
			buf, err := dev.NewBuffer(transformBufferSize, gpu.UniformFlags)
			if err != nil {
				return nil, fmt.Errorf("transform buffer: %w", err)
			}
			t.buffer = buf
		}
		return t, nil
	}
}

func (t *Transform) changed() {
	t.node.NeedUpdate(true, true)
}

func (t *Transform) SetInitTranslation(v mgl32.Vec3) *Transform {
	t.initTranslation = v
	return t.SetLocalTranslation(v)
}

func (t *Transform) SetInitRotation(q mgl32.Quat) *Transform {
	t.initRotation = q
	return t.SetLocalRotation(q)
}

func (t *Transform) SetInitScale(v mgl32.Vec3) *Transform {
	t.initScale = v
	return t.SetLocalScale(v)
}

func (t *Transform) InitTranslation() mgl32.Vec3 { return t.initTranslation }
func (t *Transform) InitRotation() mgl32.Quat    { return t.initRotation }
func (t *Transform) InitScale() mgl32.Vec3       { return t.initScale }

// Reset restores the initial translation, rotation and scale.
func (t *Transform) Reset() {
	t.rotation = t.initRotation
	t.translation = t.initTranslation
	t.scale = t.initScale
	t.changed()
}

func (t *Transform) SetLocalTranslation(v mgl32.Vec3) *Transform {
	t.translation = v
	t.changed()
	return t
}

func (t *Transform) SetLocalRotation(q mgl32.Quat) *Transform {
	t.rotation = q
	t.changed()
	return t
}

func (t *Transform) SetLocalScale(v mgl32.Vec3) *Transform {
	t.scale = v
	t.changed()
	return t
}

func (t *Transform) LocalTranslation() mgl32.Vec3 { return t.translation }
func (t *Transform) LocalRotation() mgl32.Quat    { return t.rotation }
func (t *Transform) LocalScale() mgl32.Vec3       { return t.scale }

// Translate moves the node by d. In local space d follows the node's current
// global orientation as of the last update.
func (t *Transform) Translate(d mgl32.Vec3, space Space) *Transform {
	switch space {
	case SpaceLocal:
		t.translation = t.translation.Add(t.global.Mat3().Mul3x1(d))
	case SpaceParent, SpaceWorld:
		t.translation = t.translation.Add(d)
	default:
		return t
	}
	t.changed()
	return t
}

// Rotate applies q. Local space rotates about the node's own axes, parent
// space rotates the node's position and orientation about the parent origin.
// World space has no effect.
func (t *Transform) Rotate(q mgl32.Quat, space Space) *Transform {
	switch space {
	case SpaceLocal:
		t.rotation = t.rotation.Mul(q)
	case SpaceParent:
		t.translation = q.Rotate(t.translation)
		t.rotation = q.Mul(t.rotation)
	case SpaceWorld:
	default:
		return t
	}
	t.changed()
	return t
}

// RotateAxis rotates by rad radians about axis.
func (t *Transform) RotateAxis(axis mgl32.Vec3, rad float32, space Space) *Transform {
	return t.Rotate(mgl32.QuatRotate(rad, axis.Normalize()), space)
}

// Yaw rotates about the Y axis of the given space.
func (t *Transform) Yaw(rad float32, space Space) *Transform {
	return t.Rotate(mgl32.QuatRotate(rad, axisY), space)
}

// Pitch rotates about the X axis of the given space.
func (t *Transform) Pitch(rad float32, space Space) *Transform {
	return t.Rotate(mgl32.QuatRotate(rad, axisX), space)
}

// Roll rotates about the Z axis of the given space.
func (t *Transform) Roll(rad float32, space Space) *Transform {
	return t.Rotate(mgl32.QuatRotate(rad, axisZ), space)
}

// Scale multiplies the local scale by s. Parent space also folds the current
// scale in again. World space has no effect.
func (t *Transform) Scale(s mgl32.Vec3, space Space) *Transform {
	switch space {
	case SpaceLocal:
		t.scale = mulVec3(t.scale, s)
	case SpaceParent:
		t.scale = mulVec3(t.scale, mulVec3(s, t.scale))
	case SpaceWorld:
	default:
		return t
	}
	t.changed()
	return t
}

func mulVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// parentTransform returns the Transform of the parent node, nil when there is
// no parent or it carries none.
func (t *Transform) parentTransform() *Transform {
	p := t.node.Parent()
	if p == nil {
		return nil
	}
	pt, _ := GetComponent[*Transform](p)
	return pt
}

// Update recomputes the matrices from the parent's already updated frame and
// uploads the model matrix.
func (t *Transform) Update() {
	r := t.rotation.Mat4()
	tr := mgl32.Translate3D(t.translation[0], t.translation[1], t.translation[2])

	frame := tr.Mul4(r)
	t.local = frame.Mul4(mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2]))
	t.global = frame
	t.model = t.local
	t.globalRotation = t.rotation

	if pt := t.parentTransform(); pt != nil {
		t.global = pt.global.Mul4(frame)
		t.model = pt.global.Mul4(t.local)
		t.globalRotation = pt.globalRotation.Mul(t.rotation)
	}

	if t.buffer != nil {
		if err := t.buffer.Write(0, gpu.NewBlock(transformBufferSize).Mat4(t.model).Bytes()); err != nil {
			logger.Default().Warnf("upload transform of %s: %v", t.node, err)
		}
	}
}

// LocalMatrix is translation × rotation × scale.
func (t *Transform) LocalMatrix() mgl32.Mat4 { return t.local }

// GlobalMatrix is the node's frame in world space, without its own scale.
func (t *Transform) GlobalMatrix() mgl32.Mat4 { return t.global }

// ModelMatrix is the parent frame times LocalMatrix.
func (t *Transform) ModelMatrix() mgl32.Mat4 { return t.model }

func (t *Transform) GlobalRotation() mgl32.Quat { return t.globalRotation }

func (t *Transform) GlobalPosition() mgl32.Vec3 { return t.global.Col(3).Vec3() }

// Buffer returns the uniform buffer holding the model matrix, nil when
// headless.
func (t *Transform) Buffer() gpu.Buffer { return t.buffer }

// Bind binds the model matrix buffer to a uniform slot.
func (t *Transform) Bind(binding uint32) {
	if t.buffer != nil {
		t.buffer.BindUniform(binding)
	}
}

func (t *Transform) Destroy() {
	if t.buffer != nil {
		t.buffer.Release()
		t.buffer = nil
	}
}
