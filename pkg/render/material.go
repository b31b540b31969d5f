package render

import (
	"fmt"

	"glscene/pkg/asset"
	"glscene/pkg/gpu"
	"glscene/pkg/ident"

	"github.com/go-gl/mathgl/mgl32"
)

// Material binds a technique and its own parameters.
type Material interface {
	ID() ident.ID
	Name() string
	Type() asset.MaterialType
	// Prepare allocates GPU resources; calling it again is a no-op.
	Prepare() error
	Bind(bindTechnique bool) error
	Release()
}

type materialBase struct {
	ident.Object
	name     string
	typ      asset.MaterialType
	cache    *Cache
	prepared bool
}

func (m *materialBase) Name() string             { return m.name }
func (m *materialBase) Type() asset.MaterialType { return m.typ }

func (m *materialBase) bindTechnique() error {
	t, err := m.cache.Technique(techniqueFor(m.typ))
	if err != nil {
		return err
	}
	t.Bind()
	return nil
}

// UnlitColorMaterial shades with vertex colours only.
type UnlitColorMaterial struct {
	materialBase
}

func (m *UnlitColorMaterial) Prepare() error {
	m.prepared = true
	return nil
}

func (m *UnlitColorMaterial) Bind(bindTechnique bool) error {
	if !m.prepared {
		if err := m.Prepare(); err != nil {
			return err
		}
	}
	if bindTechnique {
		return m.bindTechnique()
	}
	return nil
}

func (m *UnlitColorMaterial) Release() {}

// BlinnPhongMaterial is the default lit material.
type BlinnPhongMaterial struct {
	materialBase

	baseColor         mgl32.Vec4
	shininess         float32
	baseColorTexIndex int32
	normalTexIndex    int32

	ubo   gpu.Buffer
	dirty bool
}

// SetBaseColor sets the albedo.
func (m *BlinnPhongMaterial) SetBaseColor(c mgl32.Vec4) {
	m.baseColor = c
	m.dirty = true
}

// BaseColor returns the albedo.
func (m *BlinnPhongMaterial) BaseColor() mgl32.Vec4 { return m.baseColor }

// SetShininess sets the specular exponent.
func (m *BlinnPhongMaterial) SetShininess(s float32) {
	m.shininess = s
	m.dirty = true
}

// Shininess returns the specular exponent.
func (m *BlinnPhongMaterial) Shininess() float32 { return m.shininess }

func (m *BlinnPhongMaterial) block() []byte {
	return gpu.NewBlock(32).
		Vec4(m.baseColor).
		Float(m.shininess).
		Int(m.baseColorTexIndex).
		Int(m.normalTexIndex).
		Bytes()
}

func (m *BlinnPhongMaterial) Prepare() error {
	if m.prepared {
		return nil
	}
	data := m.block()
	buf, err := m.cache.dev.NewBuffer(len(data), gpu.UniformFlags)
	if err != nil {
		return fmt.Errorf("material %q: failed to create uniform buffer: %w", m.name, err)
	}
	if err := buf.Write(0, data); err != nil {
		buf.Release()
		return err
	}
	m.ubo = buf
	m.prepared = true
	m.dirty = false
	return nil
}

func (m *BlinnPhongMaterial) Bind(bindTechnique bool) error {
	if err := m.Prepare(); err != nil {
		return err
	}
	if m.dirty {
		if err := m.ubo.Write(0, m.block()); err != nil {
			return err
		}
		m.dirty = false
	}
	if bindTechnique {
		if err := m.bindTechnique(); err != nil {
			return err
		}
	}
	m.ubo.BindUniform(BindingMaterial)
	return nil
}

func (m *BlinnPhongMaterial) Release() {
	if m.ubo != nil {
		m.ubo.Release()
		m.ubo = nil
	}
	m.prepared = false
}
