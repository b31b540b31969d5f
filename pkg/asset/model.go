// Package asset holds CPU-side model data: meshes, mesh views and a flattened
// node list that the scene turns into a node subtree.
package asset

import (
	"errors"
	"fmt"

	"glscene/pkg/gpu"
	"glscene/pkg/ident"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrBadParentIndex is returned by Validate for parent links that are out of
// range or form a cycle.
var ErrBadParentIndex = errors.New("asset: bad parent index")

// MaterialType selects the shading technique of a material.
type MaterialType int

const (
	BlinnPhong MaterialType = iota
	UnlitColor
	NumMaterialTypes
)

func (t MaterialType) String() string {
	switch t {
	case BlinnPhong:
		return "blinnphong"
	case UnlitColor:
		return "unlitcolor"
	default:
		return fmt.Sprintf("material(%d)", int(t))
	}
}

// Vertex attribute locations shared by every shader.
const (
	LocationPosition uint32 = iota
	LocationNormal
	LocationTexcoord
	LocationColor
)

// Primitive is one draw of a mesh.
type Primitive struct {
	Topology  gpu.Topology
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Texcoords []mgl32.Vec2
	Colors    []mgl32.Vec4
	Indices   []uint32
}

// Geometry returns the upload description of the primitive.
func (p *Primitive) Geometry() gpu.GeometryDesc {
	desc := gpu.GeometryDesc{Topology: p.Topology, Indices: p.Indices}
	desc.Streams = append(desc.Streams, gpu.VertexStream{Location: LocationPosition, Components: 3, Data: flatten3(p.Positions)})
	if len(p.Normals) > 0 {
		desc.Streams = append(desc.Streams, gpu.VertexStream{Location: LocationNormal, Components: 3, Data: flatten3(p.Normals)})
	}
	if len(p.Texcoords) > 0 {
		data := make([]float32, 0, 2*len(p.Texcoords))
		for _, v := range p.Texcoords {
			data = append(data, v[0], v[1])
		}
		desc.Streams = append(desc.Streams, gpu.VertexStream{Location: LocationTexcoord, Components: 2, Data: data})
	}
	if len(p.Colors) > 0 {
		data := make([]float32, 0, 4*len(p.Colors))
		for _, v := range p.Colors {
			data = append(data, v[0], v[1], v[2], v[3])
		}
		desc.Streams = append(desc.Streams, gpu.VertexStream{Location: LocationColor, Components: 4, Data: data})
	}
	return desc
}

func flatten3(vs []mgl32.Vec3) []float32 {
	data := make([]float32, 0, 3*len(vs))
	for _, v := range vs {
		data = append(data, v[0], v[1], v[2])
	}
	return data
}

// Mesh is a list of primitives drawn with one material.
type Mesh struct {
	ident.Object
	Name       string
	Primitives []Primitive
}

// NewMesh returns an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Object: ident.New(), Name: name}
}

// MeshView pairs a mesh with a material. A MaterialID of ident.Invalid means
// the default material of Fallback.
type MeshView struct {
	MeshIndex  int
	MaterialID ident.ID
	Fallback   MaterialType
}

// NodeAttribute is one entry of the flattened node list.
type NodeAttribute struct {
	Name string
	// MeshViewIndex is -1 for a node without geometry.
	MeshViewIndex int
	// ParentIndex is -1 for a root.
	ParentIndex int
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// Node returns an attribute with identity rotation and unit scale.
func Node(meshView, parent int) NodeAttribute {
	return NodeAttribute{
		MeshViewIndex: meshView,
		ParentIndex:   parent,
		Rotation:      mgl32.QuatIdent(),
		Scale:         mgl32.Vec3{1, 1, 1},
	}
}

// At sets the translation.
func (a NodeAttribute) At(x, y, z float32) NodeAttribute {
	a.Translation = mgl32.Vec3{x, y, z}
	return a
}

// Scaled sets the scale.
func (a NodeAttribute) Scaled(x, y, z float32) NodeAttribute {
	a.Scale = mgl32.Vec3{x, y, z}
	return a
}

// Named sets the node name.
func (a NodeAttribute) Named(name string) NodeAttribute {
	a.Name = name
	return a
}

// Model is a reusable description of a node hierarchy with meshes.
type Model struct {
	ident.Object
	Name      string
	Path      string
	Meshes    []*Mesh
	MeshViews []MeshView
	Nodes     []NodeAttribute
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{Object: ident.New(), Name: name}
}

// AddMesh appends a mesh and returns its index.
func (m *Model) AddMesh(mesh *Mesh) int {
	m.Meshes = append(m.Meshes, mesh)
	return len(m.Meshes) - 1
}

// AddMeshView appends a mesh view and returns its index.
func (m *Model) AddMeshView(view MeshView) int {
	m.MeshViews = append(m.MeshViews, view)
	return len(m.MeshViews) - 1
}

// AddNode appends a node and returns its index.
func (m *Model) AddNode(attr NodeAttribute) int {
	m.Nodes = append(m.Nodes, attr)
	return len(m.Nodes) - 1
}

// Roots returns the indices of nodes without a parent.
func (m *Model) Roots() []int {
	var roots []int
	for i, n := range m.Nodes {
		if n.ParentIndex < 0 {
			roots = append(roots, i)
		}
	}
	return roots
}

// Validate checks mesh and parent references. Parents may appear after their
// children in the list, but the links must form a forest.
func (m *Model) Validate() error {
	for i, v := range m.MeshViews {
		if v.MeshIndex < 0 || v.MeshIndex >= len(m.Meshes) {
			return fmt.Errorf("mesh view %d: mesh index %d out of range", i, v.MeshIndex)
		}
	}
	for i, n := range m.Nodes {
		if n.MeshViewIndex >= len(m.MeshViews) {
			return fmt.Errorf("node %d: mesh view index %d out of range", i, n.MeshViewIndex)
		}
		if n.ParentIndex >= len(m.Nodes) || n.ParentIndex < -1 {
			return fmt.Errorf("node %d: parent %d: %w", i, n.ParentIndex, ErrBadParentIndex)
		}
		if n.ParentIndex == i {
			return fmt.Errorf("node %d is its own parent: %w", i, ErrBadParentIndex)
		}
	}
	// 0 unvisited, 1 on the current chain, 2 known to reach a root
	state := make([]uint8, len(m.Nodes))
	for i := range m.Nodes {
		var chain []int
		j := i
		for j >= 0 && state[j] == 0 {
			state[j] = 1
			chain = append(chain, j)
			j = m.Nodes[j].ParentIndex
		}
		if j >= 0 && state[j] == 1 {
			return fmt.Errorf("node %d: parent chain loops: %w", i, ErrBadParentIndex)
		}
		for _, c := range chain {
			state[c] = 2
		}
	}
	return nil
}
