package scene

import (
	"errors"
	"fmt"

	"glscene/pkg/asset"
	"glscene/pkg/ident"
	"glscene/pkg/render"
)

// Renderer is a drawable component.
type Renderer interface {
	Component
	Draw(bindTechnique bool) error
}

// MeshRenderer draws an uploaded mesh with a material, placing it with the
// node's Transform.
type MeshRenderer struct {
	BaseComponent

	cache    *render.Cache
	mesh     *render.Mesh
	material render.Material
}

// NewMeshRenderer returns a constructor that uploads src through cache.
func NewMeshRenderer(cache *render.Cache, src *asset.Mesh) func(*Node) (*MeshRenderer, error) {
	return func(n *Node) (*MeshRenderer, error) {
		if cache == nil {
			return nil, errors.New("mesh renderer needs a render cache")
		}
		mesh, err := cache.Mesh(src)
		if err != nil {
			return nil, fmt.Errorf("mesh renderer: %w", err)
		}
		return &MeshRenderer{
			BaseComponent: NewBaseComponent(n, src.Name),
			cache:         cache,
			mesh:          mesh,
		}, nil
	}
}

func (r *MeshRenderer) Mesh() *render.Mesh { return r.mesh }

// Material returns the assigned material, nil when the default is used.
func (r *MeshRenderer) Material() render.Material { return r.material }

func (r *MeshRenderer) SetMaterial(m render.Material) { r.material = m }

// SetMaterialID assigns a material registered in the cache. Unknown ids keep
// the current material and report false.
func (r *MeshRenderer) SetMaterialID(id ident.ID) bool {
	m, ok := r.cache.Material(id)
	if ok {
		r.material = m
	}
	return ok
}

// Draw binds the material and the transform block, then draws every
// primitive. Without a material the default unlit one is used.
func (r *MeshRenderer) Draw(bindTechnique bool) error {
	m := r.material
	if m == nil {
		m, _ = r.cache.Material(r.cache.DefaultMaterial(asset.UnlitColor))
	}
	if err := m.Bind(bindTechnique); err != nil {
		return fmt.Errorf("draw %s: %w", r.node, err)
	}
	if t := r.transform(); t != nil {
		t.Bind(render.BindingTransform)
	}
	r.mesh.Draw()
	return nil
}
