package render

import (
	"fmt"

	"glscene/pkg/asset"
	"glscene/pkg/gpu"
)

// Mesh is an uploaded asset.Mesh.
type Mesh struct {
	Source     *asset.Mesh
	geometries []gpu.Geometry
}

func uploadMesh(dev gpu.Device, src *asset.Mesh) (*Mesh, error) {
	m := &Mesh{Source: src}
	for i := range src.Primitives {
		g, err := dev.NewGeometry(src.Primitives[i].Geometry())
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("mesh %q primitive %d: %w", src.Name, i, err)
		}
		m.geometries = append(m.geometries, g)
	}
	return m, nil
}

// Draw issues one draw per primitive with the currently bound pipeline.
func (m *Mesh) Draw() {
	for _, g := range m.geometries {
		g.Draw()
	}
}

// Release frees the geometry.
func (m *Mesh) Release() {
	for _, g := range m.geometries {
		g.Release()
	}
	m.geometries = nil
}
