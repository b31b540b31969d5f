package scene

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-4

// Shape is a collision volume in the local space of its node.
type Shape interface {
	// ClosestPoint returns the point on the surface nearest to p.
	ClosestPoint(p mgl32.Vec3) mgl32.Vec3
	// Contains reports whether p lies inside the volume.
	Contains(p mgl32.Vec3) bool
}

// Sphere is a ball around Center.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

func (s Sphere) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	dir := p.Sub(s.Center)
	dist := dir.Len()
	if dist <= epsilon {
		return s.Center.Add(mgl32.Vec3{s.Radius, 0, 0})
	}
	return s.Center.Add(dir.Mul(s.Radius / dist))
}

func (s Sphere) Contains(p mgl32.Vec3) bool {
	return p.Sub(s.Center).Len() <= s.Radius
}

// Cylinder is a capped cylinder between the centres of its two caps.
type Cylinder struct {
	Base, Top mgl32.Vec3
	Radius    float32
}

// frame splits p into the height along the axis and the radial offset.
func (c Cylinder) frame(p mgl32.Vec3) (axis mgl32.Vec3, length, h float32, radial mgl32.Vec3) {
	span := c.Top.Sub(c.Base)
	length = span.Len()
	axis = mgl32.Vec3{0, 1, 0}
	if length > epsilon {
		axis = span.Mul(1 / length)
	}
	rel := p.Sub(c.Base)
	h = rel.Dot(axis)
	radial = rel.Sub(axis.Mul(h))
	return
}

func (c Cylinder) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	axis, length, h, radial := c.frame(p)
	r := radial.Len()
	var dir mgl32.Vec3
	if r > epsilon {
		dir = radial.Mul(1 / r)
	} else {
		perp := mgl32.Vec3{1, 0, 0}
		if abs(axis.Dot(perp)) > 0.9 {
			perp = mgl32.Vec3{0, 0, 1}
		}
		dir = axis.Cross(perp).Normalize()
	}

	if c.Contains(p) {
		// leave through the nearest of side, base cap and top cap
		side, base, top := c.Radius-r, h, length-h
		switch {
		case side <= base && side <= top:
			return c.Base.Add(axis.Mul(h)).Add(dir.Mul(c.Radius))
		case base <= top:
			return c.Base.Add(radial)
		default:
			return c.Top.Add(radial)
		}
	}
	h = mgl32.Clamp(h, 0, length)
	return c.Base.Add(axis.Mul(h)).Add(dir.Mul(min(r, c.Radius)))
}

func (c Cylinder) Contains(p mgl32.Vec3) bool {
	_, length, h, radial := c.frame(p)
	return h >= 0 && h <= length && radial.Len() <= c.Radius
}

// Box is an axis-aligned box in node space; the node's rotation orients it.
type Box struct {
	Center     mgl32.Vec3
	HalfExtent mgl32.Vec3
}

func (b Box) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	local := p.Sub(b.Center)
	var closest mgl32.Vec3
	for i := range 3 {
		closest[i] = mgl32.Clamp(local[i], -b.HalfExtent[i], b.HalfExtent[i])
	}
	if closest == local {
		// inside: snap to the nearest face
		best, axis, sign := float32(math.MaxFloat32), 0, float32(1)
		for i := range 3 {
			if d := b.HalfExtent[i] - local[i]; d < best {
				best, axis, sign = d, i, 1
			}
			if d := local[i] + b.HalfExtent[i]; d < best {
				best, axis, sign = d, i, -1
			}
		}
		closest[axis] = sign * b.HalfExtent[axis]
	}
	return closest.Add(b.Center)
}

func (b Box) Contains(p mgl32.Vec3) bool {
	local := p.Sub(b.Center)
	for i := range 3 {
		if local[i] < -b.HalfExtent[i] || local[i] > b.HalfExtent[i] {
			return false
		}
	}
	return true
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Collider places a Shape on its node. Queries take and return world
// positions; the shape follows the node's model matrix, scale included.
type Collider struct {
	BaseComponent
	Shape Shape
}

// NewCollider returns a constructor for a collider of shape. The node needs
// a Transform.
func NewCollider(shape Shape) func(*Node) (*Collider, error) {
	return func(n *Node) (*Collider, error) {
		if shape == nil {
			return nil, errors.New("collider needs a shape")
		}
		if _, ok := GetComponent[*Transform](n); !ok {
			return nil, errors.New("collider needs a transform on its node")
		}
		return &Collider{BaseComponent: NewBaseComponent(n, "collider"), Shape: shape}, nil
	}
}

func (c *Collider) toLocal(p mgl32.Vec3) mgl32.Vec3 {
	return c.transform().ModelMatrix().Inv().Mul4x1(p.Vec4(1)).Vec3()
}

func (c *Collider) toWorld(p mgl32.Vec3) mgl32.Vec3 {
	return c.transform().ModelMatrix().Mul4x1(p.Vec4(1)).Vec3()
}

// ClosestPoint returns the surface point nearest to p.
func (c *Collider) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	return c.toWorld(c.Shape.ClosestPoint(c.toLocal(p)))
}

func (c *Collider) Contains(p mgl32.Vec3) bool {
	return c.Shape.Contains(c.toLocal(p))
}

// Distance is the world distance from p to the surface, negative inside.
func (c *Collider) Distance(p mgl32.Vec3) float32 {
	d := p.Sub(c.ClosestPoint(p)).Len()
	if c.Contains(p) {
		return -d
	}
	return d
}

// Colliders returns every collider in the scene, depth first.
func (s *Scene) Colliders() []*Collider { return GetComponents[*Collider](s.root, nil, true) }

// ResolveCollision moves a sphere of radius at p out of every collider and
// returns the corrected position.
func (s *Scene) ResolveCollision(p mgl32.Vec3, radius float32) mgl32.Vec3 {
	for _, c := range s.Colliders() {
		closest := c.ClosestPoint(p)
		away := p.Sub(closest)
		dist := away.Len()
		if c.Contains(p) {
			out := closest.Sub(p)
			if dist <= epsilon {
				out = mgl32.Vec3{0, 1, 0}
			}
			p = closest.Add(out.Normalize().Mul(radius))
			continue
		}
		if dist < radius {
			if dist <= epsilon {
				away, dist = mgl32.Vec3{0, 1, 0}, 1
			}
			p = p.Add(away.Mul((radius - dist) / dist))
		}
	}
	return p
}

// IsPositionFree reports whether a sphere of radius at p touches no collider.
func (s *Scene) IsPositionFree(p mgl32.Vec3, radius float32) bool {
	for _, c := range s.Colliders() {
		if c.Distance(p) < radius {
			return false
		}
	}
	return true
}
