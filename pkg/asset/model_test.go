package asset

import (
	"testing"

	"glscene/pkg/gpu"
	"glscene/pkg/ident"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaterials struct {
	defaults [NumMaterialTypes]ident.ID
	created  []string
}

func newFakeMaterials() *fakeMaterials {
	f := &fakeMaterials{}
	for i := range f.defaults {
		f.defaults[i] = ident.Next()
	}
	return f
}

func (f *fakeMaterials) DefaultMaterial(t MaterialType) ident.ID { return f.defaults[t] }

func (f *fakeMaterials) CreateMaterial(t MaterialType, name string, _ mgl32.Vec4) ident.ID {
	f.created = append(f.created, name)
	return ident.Next()
}

func TestValidateRejectsBadParents(t *testing.T) {
	m := NewModel("bad")
	m.AddMesh(CubeMesh())
	m.AddMeshView(MeshView{MeshIndex: 0})

	m.Nodes = []NodeAttribute{Node(0, -1), Node(0, 5)}
	assert.ErrorIs(t, m.Validate(), ErrBadParentIndex)

	m.Nodes = []NodeAttribute{Node(0, -1), Node(0, 1)}
	assert.ErrorIs(t, m.Validate(), ErrBadParentIndex)

	m.Nodes = []NodeAttribute{Node(0, -1), Node(0, 2), Node(0, 1)}
	assert.ErrorIs(t, m.Validate(), ErrBadParentIndex)

	// parent listed after its child
	m.Nodes = []NodeAttribute{Node(0, 1), Node(0, -1)}
	assert.NoError(t, m.Validate())
}

func TestValidateRejectsBadMeshReferences(t *testing.T) {
	m := NewModel("bad")
	m.AddMeshView(MeshView{MeshIndex: 0})
	assert.Error(t, m.Validate())

	m = NewModel("bad")
	m.AddNode(Node(3, -1))
	assert.Error(t, m.Validate())
}

func TestBuildersProduceValidModels(t *testing.T) {
	ms := newFakeMaterials()
	models := []*Model{
		CubeModel(ms),
		SphereModel(ms),
		QuadModel(ms, mgl32.Vec2{10, 10}, 4, 4),
		LineModel(ms, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}),
		AxisModel(ms),
		PillarModel(ms),
		HierarchyModel(ms),
	}
	for _, m := range models {
		require.NoError(t, m.Validate(), m.Name)
		assert.Len(t, m.Roots(), 1, m.Name)
	}

	axis := models[4]
	assert.Equal(t, ms.defaults[UnlitColor], axis.MeshViews[0].MaterialID)

	creature := models[6]
	assert.Len(t, creature.Nodes, 9)
	assert.Equal(t, 7, creature.Nodes[8].ParentIndex)
	assert.Len(t, ms.created, 6)
}

func TestQuadMeshIndices(t *testing.T) {
	mesh := QuadMesh(mgl32.Vec2{2, 2}, 2, 1)
	p := mesh.Primitives[0]
	assert.Len(t, p.Positions, 6)
	assert.Len(t, p.Indices, 12)
	assert.Equal(t, mgl32.Vec3{-1, 0, -1}, p.Positions[0])
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, p.Positions[5])
}

func TestPrimitiveGeometryStreams(t *testing.T) {
	p := AxisMesh().Primitives[0]
	desc := p.Geometry()
	assert.Equal(t, gpu.Lines, desc.Topology)
	require.Len(t, desc.Streams, 2)
	assert.Equal(t, LocationPosition, desc.Streams[0].Location)
	assert.Equal(t, 6, desc.Streams[0].Count())
	assert.Equal(t, LocationColor, desc.Streams[1].Location)
	assert.Equal(t, 6, desc.Streams[1].Count())

	cube := CubeMesh().Primitives[0].Geometry()
	assert.Len(t, cube.Streams, 4)
}

func TestTerrainIsDeterministic(t *testing.T) {
	a := TerrainMesh(mgl32.Vec2{10, 10}, 8, 3, 2)
	b := TerrainMesh(mgl32.Vec2{10, 10}, 8, 3, 2)
	pa, pb := a.Primitives[0], b.Primitives[0]
	require.Len(t, pa.Positions, 81)
	assert.Equal(t, pa.Positions, pb.Positions)
	assert.Len(t, pa.Indices, 8*8*6)

	flat := true
	for i, pos := range pa.Positions {
		assert.LessOrEqual(t, pos.Y(), float32(2)+1e-4)
		assert.GreaterOrEqual(t, pos.Y(), float32(-2)-1e-4)
		assert.InDelta(t, 1, pa.Normals[i].Len(), 1e-4)
		assert.Positive(t, pa.Normals[i].Y())
		if pos.Y() != 0 {
			flat = false
		}
	}
	assert.False(t, flat)

	m := TerrainModel(newFakeMaterials(), 1)
	require.NoError(t, m.Validate())
	assert.Equal(t, "terrain", m.Nodes[0].Name)
}
