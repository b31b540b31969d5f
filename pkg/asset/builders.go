package asset

import (
	"math"

	noise "glscene/internal/math"
	"glscene/pkg/gpu"
	"glscene/pkg/ident"

	"github.com/go-gl/mathgl/mgl32"
)

// MaterialSource creates materials for the model builders.
type MaterialSource interface {
	DefaultMaterial(t MaterialType) ident.ID
	CreateMaterial(t MaterialType, name string, baseColor mgl32.Vec4) ident.ID
}

// CubeMesh returns a unit cube spanning [-1, 1] with per-face normals.
func CubeMesh() *Mesh {
	positions := []mgl32.Vec3{
		{-1, -1, -1}, {1, -1, 1}, {-1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, // bottom
		{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {-1, 1, -1}, {1, 1, 1}, {1, 1, -1}, // top
		{-1, -1, -1}, {1, 1, -1}, {1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, // back
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, -1, 1}, {1, 1, 1}, {-1, 1, 1}, // front
		{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, -1, -1}, {-1, 1, 1}, {-1, 1, -1}, // left
		{1, -1, -1}, {1, 1, 1}, {1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}, // right
	}
	faceNormals := []mgl32.Vec3{{0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}}

	p := Primitive{Topology: gpu.Triangles, Positions: positions}
	for i, pos := range positions {
		p.Normals = append(p.Normals, faceNormals[i/6])
		p.Colors = append(p.Colors, pos.Vec4(1))
		p.Texcoords = append(p.Texcoords, mgl32.Vec2{1, 1})
	}
	mesh := NewMesh("cube")
	mesh.Primitives = []Primitive{p}
	return mesh
}

// SphereMesh returns a unit UV sphere drawn as a triangle strip.
func SphereMesh() *Mesh {
	const xSegments = 64
	const ySegments = xSegments / 2

	count := xSegments * (ySegments + 1)
	p := Primitive{
		Topology:  gpu.TriangleStrip,
		Positions: make([]mgl32.Vec3, count),
		Normals:   make([]mgl32.Vec3, count),
		Texcoords: make([]mgl32.Vec2, count),
		Colors:    make([]mgl32.Vec4, count),
		Indices:   make([]uint32, 2*xSegments*(ySegments+1)),
	}
	for j := 0; j <= ySegments; j++ {
		for i := 0; i < xSegments; i++ {
			theta := float64(i) * 2 * math.Pi / xSegments
			phi := float64(j) * math.Pi / ySegments
			// bottom to top
			cosPhi, sinPhi := -math.Cos(phi), math.Sin(phi)
			v := mgl32.Vec3{float32(sinPhi * math.Cos(theta)), float32(cosPhi), float32(sinPhi * math.Sin(theta))}

			index := j*xSegments + i
			p.Positions[index] = v
			p.Normals[index] = v
			p.Texcoords[index] = mgl32.Vec2{float32(theta), float32(phi)}
			p.Colors[index] = mgl32.Vec4{1, 1, 1, 1}
		}
	}
	for j := 0; j <= ySegments; j++ {
		for i := 0; i < xSegments-1; i++ {
			p.Indices[i*2*(ySegments+1)+2*j] = uint32(j*xSegments + i + 1)
			p.Indices[i*2*(ySegments+1)+2*j+1] = uint32(j*xSegments + i)
		}
		p.Indices[(xSegments-1)*2*(ySegments+1)+2*j] = uint32(j * xSegments)
		p.Indices[(xSegments-1)*2*(ySegments+1)+2*j+1] = uint32(j*xSegments + xSegments - 1)
	}
	mesh := NewMesh("sphere")
	mesh.Primitives = []Primitive{p}
	return mesh
}

// QuadMesh returns a grid in the XZ plane facing +Y.
func QuadMesh(size mgl32.Vec2, countX, countY int) *Mesh {
	countX = max(countX, 1)
	countY = max(countY, 1)

	count := (countX + 1) * (countY + 1)
	p := Primitive{
		Topology:  gpu.Triangles,
		Positions: make([]mgl32.Vec3, count),
		Normals:   make([]mgl32.Vec3, count),
		Texcoords: make([]mgl32.Vec2, count),
		Colors:    make([]mgl32.Vec4, count),
	}
	hw, hh := size[0]/2, size[1]/2
	stepX, stepY := size[0]/float32(countX), size[1]/float32(countY)
	for j := 0; j <= countY; j++ {
		for i := 0; i <= countX; i++ {
			index := j*(countX+1) + i
			p.Positions[index] = mgl32.Vec3{-hw + stepX*float32(i), 0, -hh + stepY*float32(j)}
			p.Texcoords[index] = mgl32.Vec2{float32(i) / float32(countX), float32(j) / float32(countY)}
			p.Normals[index] = mgl32.Vec3{0, 1, 0}
			p.Colors[index] = mgl32.Vec4{1, 1, 1, 1}

			if i != countX && j != countY {
				idx := uint32(index)
				row := uint32(countX + 1)
				p.Indices = append(p.Indices, idx, idx+row, idx+row+1, idx, idx+row+1, idx+1)
			}
		}
	}
	mesh := NewMesh("quad")
	mesh.Primitives = []Primitive{p}
	return mesh
}

// TerrainMesh returns a QuadMesh whose heights follow fractal noise for
// seed, scaled to [-height, height]. Normals come from central differences.
func TerrainMesh(size mgl32.Vec2, count int, seed int64, height float32) *Mesh {
	mesh := QuadMesh(size, count, count)
	mesh.Name = "terrain"
	g := noise.NewGenerator(seed)
	const frequency = 0.15

	p := &mesh.Primitives[0]
	heightAt := func(x, z float32) float32 {
		return height * float32(g.FBM2D(float64(x)*frequency, float64(z)*frequency, 4, 2, 0.5))
	}
	eps := size[0] / float32(max(count, 1))
	for i, pos := range p.Positions {
		x, z := pos[0], pos[2]
		p.Positions[i][1] = heightAt(x, z)
		dx := heightAt(x+eps, z) - heightAt(x-eps, z)
		dz := heightAt(x, z+eps) - heightAt(x, z-eps)
		p.Normals[i] = mgl32.Vec3{-dx, 2 * eps, -dz}.Normalize()
		shade := 0.5 + 0.5*p.Positions[i][1]/max(height, 1e-3)
		p.Colors[i] = mgl32.Vec4{0.3 * shade, 0.6 * shade, 0.25 * shade, 1}
	}
	return mesh
}

// LineMesh returns a single segment.
func LineMesh(p0, p1 mgl32.Vec3) *Mesh {
	mesh := NewMesh("line")
	mesh.Primitives = []Primitive{{
		Topology:  gpu.Lines,
		Positions: []mgl32.Vec3{p0, p1},
		Colors:    []mgl32.Vec4{{1, 1, 1, 1}, {1, 1, 1, 1}},
		Texcoords: []mgl32.Vec2{{0, 0}, {1, 0}},
	}}
	return mesh
}

// AxisMesh returns the three unit axes coloured red, green and blue.
func AxisMesh() *Mesh {
	mesh := NewMesh("axis")
	mesh.Primitives = []Primitive{{
		Topology:  gpu.Lines,
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {0, 0, 0}, {0, 0, 1}},
		Colors:    []mgl32.Vec4{{0, 0, 0, 1}, {1, 0, 0, 1}, {0, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 0, 1}, {0, 0, 1, 1}},
	}}
	return mesh
}

func singleMeshModel(name string, mesh *Mesh, ms MaterialSource, t MaterialType) *Model {
	m := NewModel(name)
	mi := m.AddMesh(mesh)
	vi := m.AddMeshView(MeshView{MeshIndex: mi, MaterialID: ms.DefaultMaterial(t), Fallback: t})
	m.AddNode(Node(vi, -1).Named(name))
	return m
}

// CubeModel is one cube node with the default lit material.
func CubeModel(ms MaterialSource) *Model {
	return singleMeshModel("cube", CubeMesh(), ms, BlinnPhong)
}

// SphereModel is one sphere node with the default lit material.
func SphereModel(ms MaterialSource) *Model {
	return singleMeshModel("sphere", SphereMesh(), ms, BlinnPhong)
}

// QuadModel is one ground grid node with the default lit material.
func QuadModel(ms MaterialSource, size mgl32.Vec2, countX, countY int) *Model {
	return singleMeshModel("quad", QuadMesh(size, countX, countY), ms, BlinnPhong)
}

// LineModel is one line node with the default lit material.
func LineModel(ms MaterialSource, p0, p1 mgl32.Vec3) *Model {
	return singleMeshModel("line", LineMesh(p0, p1), ms, BlinnPhong)
}

// AxisModel is one axis gizmo node with the unlit colour material.
func AxisModel(ms MaterialSource) *Model {
	return singleMeshModel("axis", AxisMesh(), ms, UnlitColor)
}

// PillarModel is two stacked cubes, red and green.
func PillarModel(ms MaterialSource) *Model {
	m := NewModel("pillar")
	mesh := m.AddMesh(CubeMesh())
	red := m.AddMeshView(MeshView{MeshIndex: mesh, MaterialID: ms.CreateMaterial(BlinnPhong, "pillar.red", mgl32.Vec4{1, 0, 0, 1})})
	green := m.AddMeshView(MeshView{MeshIndex: mesh, MaterialID: ms.CreateMaterial(BlinnPhong, "pillar.green", mgl32.Vec4{0, 1, 0, 1})})

	m.AddNode(Node(red, -1).At(0, 2, 0).Scaled(0.2, 2, 0.2).Named("base"))
	m.AddNode(Node(green, 0).At(0, 3, 0).Scaled(0.2, 1, 0.2).Named("top"))
	return m
}

// TerrainModel is a 40×40 noise terrain sitting below the origin.
func TerrainModel(ms MaterialSource, seed int64) *Model {
	m := NewModel("terrain")
	mesh := m.AddMesh(TerrainMesh(mgl32.Vec2{40, 40}, 64, seed, 1.5))
	view := m.AddMeshView(MeshView{MeshIndex: mesh, MaterialID: ms.CreateMaterial(BlinnPhong, "terrain", mgl32.Vec4{1, 1, 1, 1})})
	m.AddNode(Node(view, -1).At(0, -2, 0).Named("terrain"))
	return m
}

// HierarchyModel is a body with two jointed arms and a three segment tail.
func HierarchyModel(ms MaterialSource) *Model {
	m := NewModel("creature")
	mesh := m.AddMesh(CubeMesh())

	white := ms.CreateMaterial(BlinnPhong, "creature.body", mgl32.Vec4{1, 1, 1, 1})
	red := ms.CreateMaterial(BlinnPhong, "creature.red", mgl32.Vec4{1, 0, 0, 1})
	green := ms.CreateMaterial(BlinnPhong, "creature.green", mgl32.Vec4{0, 1, 0, 1})
	blue := ms.CreateMaterial(BlinnPhong, "creature.blue", mgl32.Vec4{0, 0, 1, 1})

	for _, id := range []ident.ID{white, red, green, red, green, blue} {
		m.AddMeshView(MeshView{MeshIndex: mesh, MaterialID: id})
	}

	m.AddNode(Node(0, -1).Scaled(1, 1, 0.5).Named("body"))
	m.AddNode(Node(1, 0).At(2, 0, 0).Scaled(1, 0.6, 0.6).Named("arm.left.upper"))
	m.AddNode(Node(2, 1).At(2, 0, 0).Scaled(1, 0.3, 0.6).Named("arm.left.lower"))
	m.AddNode(Node(3, 0).At(-2, 0, 0).Scaled(1, 0.6, 0.6).Named("arm.right.upper"))
	m.AddNode(Node(4, 3).At(-2, 0, 0).Scaled(1, 0.3, 0.6).Named("arm.right.lower"))
	m.AddNode(Node(5, 0).At(0, -3, 0).Scaled(0.5, 2, 0.5).Named("tail.0"))
	m.AddNode(Node(1, 5).At(0, -2, 0).Scaled(0.5, 1, 0.5).Named("tail.1"))
	m.AddNode(Node(2, 6).At(0, -2, 0).Scaled(0.5, 1, 0.5).Named("tail.2"))
	m.AddNode(Node(1, 7).At(0, -2, 0).Scaled(0.5, 1, 0.5).Named("tail.3"))
	return m
}
