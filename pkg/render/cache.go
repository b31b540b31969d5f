// Package render owns the GPU resources shared between scene components:
// techniques, materials and uploaded meshes.
//
// All of it hangs off an explicitly constructed Cache. A Cache is not safe for
// concurrent use; call it from the thread that owns the device.
package render

import (
	"errors"
	"fmt"
	"sort"

	"glscene/internal/logger"
	"glscene/pkg/asset"
	"glscene/pkg/gpu"
	"glscene/pkg/ident"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownMaterial is returned for material types the cache cannot build.
var ErrUnknownMaterial = errors.New("render: unknown material type")

// Cache holds techniques, materials and meshes for one device.
type Cache struct {
	dev gpu.Device
	log *logger.Logger

	sources      map[string]string
	sourceHashes map[string]uint64

	techniques [numTechniques]*Technique
	materials  map[ident.ID]Material
	defaults   [asset.NumMaterialTypes]ident.ID
	meshes     map[ident.ID]*Mesh
}

// NewCache returns a cache using the built-in shaders and one default
// material per material type.
func NewCache(dev gpu.Device, log *logger.Logger) (*Cache, error) {
	if dev == nil {
		return nil, errors.New("render: nil device")
	}
	if log == nil {
		log = logger.Nop()
	}
	c := &Cache{
		dev:          dev,
		log:          log,
		sources:      make(map[string]string),
		sourceHashes: make(map[string]uint64),
		materials:    make(map[ident.ID]Material),
		meshes:       make(map[ident.ID]*Mesh),
	}
	for name, code := range DefaultShaders() {
		c.sources[name] = code
		c.sourceHashes[name] = xxhash.Sum64String(code)
	}
	for t := asset.MaterialType(0); t < asset.NumMaterialTypes; t++ {
		m, err := c.NewMaterial(t, "default")
		if err != nil {
			return nil, err
		}
		c.defaults[t] = m.ID()
	}
	return c, nil
}

// Device returns the device resources are created on.
func (c *Cache) Device() gpu.Device { return c.dev }

func (c *Cache) techniqueHash(kind TechniqueKind) uint64 {
	l := techniqueLayouts[kind]
	d := xxhash.New()
	_, _ = d.WriteString(c.sources[l.vert])
	_, _ = d.WriteString(c.sources[l.frag])
	return d.Sum64()
}

func (c *Cache) buildTechnique(kind TechniqueKind) (*Technique, error) {
	l := techniqueLayouts[kind]
	desc := gpu.PipelineDesc{
		Name: kind.String(),
		Shaders: []gpu.ShaderSource{
			{Stage: gpu.StageVertex, Name: l.vert, Code: c.sources[l.vert]},
			{Stage: gpu.StageFragment, Name: l.frag, Code: c.sources[l.frag]},
		},
		Attribs: l.attribs,
	}
	p, err := c.dev.NewPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to build technique %s: %w", kind, err)
	}
	return &Technique{Kind: kind, pipeline: p, hash: c.techniqueHash(kind)}, nil
}

// Technique returns the pipeline for kind, building it on first use.
func (c *Cache) Technique(kind TechniqueKind) (*Technique, error) {
	if kind < 0 || kind >= numTechniques {
		return nil, fmt.Errorf("unknown technique %d", int(kind))
	}
	if t := c.techniques[kind]; t != nil {
		return t, nil
	}
	t, err := c.buildTechnique(kind)
	if err != nil {
		return nil, err
	}
	c.log.Debugf("built technique %s", kind)
	c.techniques[kind] = t
	return t, nil
}

// ShaderSource returns the current source of a shader file.
func (c *Cache) ShaderSource(name string) (string, bool) {
	code, ok := c.sources[name]
	return code, ok
}

// SetShaderSource replaces a shader source. Built techniques using it are
// rebuilt; if a rebuild fails the previous pipeline stays in use and the error
// is returned. Identical sources are detected by hash and ignored.
func (c *Cache) SetShaderSource(name, code string) (bool, error) {
	h := xxhash.Sum64String(code)
	if old, ok := c.sourceHashes[name]; ok && old == h {
		return false, nil
	}
	c.sources[name] = code
	c.sourceHashes[name] = h

	var errs []error
	for kind, t := range c.techniques {
		if t == nil {
			continue
		}
		l := techniqueLayouts[kind]
		if l.vert != name && l.frag != name {
			continue
		}
		if t.hash == c.techniqueHash(TechniqueKind(kind)) {
			continue
		}
		nt, err := c.buildTechnique(TechniqueKind(kind))
		if err != nil {
			c.log.Warnf("keeping previous %s pipeline: %v", TechniqueKind(kind), err)
			errs = append(errs, err)
			continue
		}
		t.release()
		c.techniques[kind] = nt
		c.log.Infof("reloaded technique %s after %s changed", TechniqueKind(kind), name)
	}
	return true, errors.Join(errs...)
}

// SetShaderSources applies every source and returns the names that changed,
// sorted.
func (c *Cache) SetShaderSources(sources map[string]string) ([]string, error) {
	var changed []string
	var errs []error
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ok, err := c.SetShaderSource(name, sources[name])
		if ok {
			changed = append(changed, name)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return changed, errors.Join(errs...)
}

// NewMaterial creates and registers a material of type t.
func (c *Cache) NewMaterial(t asset.MaterialType, name string) (Material, error) {
	base := materialBase{Object: ident.New(), name: name, typ: t, cache: c}
	var m Material
	switch t {
	case asset.BlinnPhong:
		m = &BlinnPhongMaterial{
			materialBase:      base,
			baseColor:         mgl32.Vec4{1, 1, 1, 1},
			shininess:         200,
			baseColorTexIndex: -1,
			normalTexIndex:    -1,
		}
	case asset.UnlitColor:
		m = &UnlitColorMaterial{materialBase: base}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMaterial, int(t))
	}
	c.materials[m.ID()] = m
	return m, nil
}

// CreateMaterial creates a material with a base colour and returns its id.
// Unknown types fall back to the default lit material.
func (c *Cache) CreateMaterial(t asset.MaterialType, name string, baseColor mgl32.Vec4) ident.ID {
	m, err := c.NewMaterial(t, name)
	if err != nil {
		c.log.Warnf("create material %q: %v", name, err)
		return c.defaults[asset.BlinnPhong]
	}
	if bp, ok := m.(*BlinnPhongMaterial); ok {
		bp.SetBaseColor(baseColor)
	}
	return m.ID()
}

// DefaultMaterial returns the id of the default material of type t.
func (c *Cache) DefaultMaterial(t asset.MaterialType) ident.ID {
	if t < 0 || t >= asset.NumMaterialTypes {
		t = asset.BlinnPhong
	}
	return c.defaults[t]
}

// Material looks a material up by id. ident.Invalid means the default lit
// material.
func (c *Cache) Material(id ident.ID) (Material, bool) {
	if id == ident.Invalid {
		id = c.defaults[asset.BlinnPhong]
	}
	m, ok := c.materials[id]
	return m, ok
}

// MaterialFor resolves the material of a mesh view, falling back to the
// default material of the view's type.
func (c *Cache) MaterialFor(view asset.MeshView) Material {
	if view.MaterialID != ident.Invalid {
		if m, ok := c.materials[view.MaterialID]; ok {
			return m
		}
	}
	m, _ := c.Material(c.DefaultMaterial(view.Fallback))
	return m
}

// Mesh uploads src once and returns the shared upload.
func (c *Cache) Mesh(src *asset.Mesh) (*Mesh, error) {
	if m, ok := c.meshes[src.ID()]; ok {
		return m, nil
	}
	m, err := uploadMesh(c.dev, src)
	if err != nil {
		return nil, err
	}
	c.meshes[src.ID()] = m
	return m, nil
}

// DrawGrid draws the ground grid.
func (c *Cache) DrawGrid() error {
	t, err := c.Technique(TechniqueGrid)
	if err != nil {
		return err
	}
	t.Bind()
	c.dev.DrawProcedural(6)
	return nil
}

// Close releases every resource owned by the cache.
func (c *Cache) Close() {
	for i, t := range c.techniques {
		if t != nil {
			t.release()
			c.techniques[i] = nil
		}
	}
	for id, m := range c.materials {
		m.Release()
		delete(c.materials, id)
	}
	for id, m := range c.meshes {
		m.Release()
		delete(c.meshes, id)
	}
}
