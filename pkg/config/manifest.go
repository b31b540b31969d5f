package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"glscene/internal/util"
)

// ModelKind names a procedural model builder
type ModelKind string

const (
	ModelCube     ModelKind = "cube"
	ModelSphere   ModelKind = "sphere"
	ModelQuad     ModelKind = "quad"
	ModelAxis     ModelKind = "axis"
	ModelPillar   ModelKind = "pillar"
	ModelCreature ModelKind = "creature"
	ModelTerrain  ModelKind = "terrain"
	ModelEmpty    ModelKind = "empty"
)

var modelKinds = []ModelKind{ModelCube, ModelSphere, ModelQuad, ModelAxis, ModelPillar, ModelCreature, ModelTerrain, ModelEmpty}

// ObjectSpec places one model in the scene
type ObjectSpec struct {
	ID       string     `yaml:"id" toml:"id" json:"id"`
	Model    ModelKind  `yaml:"model" toml:"model" json:"model"`
	Parent   string     `yaml:"parent,omitempty" toml:"parent,omitempty" json:"parent,omitempty"`
	Position [3]float32 `yaml:"position" toml:"position" json:"position"`
	Rotation [3]float32 `yaml:"rotation" toml:"rotation" json:"rotation"` // yaw, pitch, roll in degrees
	Scale    [3]float32 `yaml:"scale" toml:"scale" json:"scale"`          // zero means 1; applies to the model's top node
	Seed     int64      `yaml:"seed,omitempty" toml:"seed,omitempty" json:"seed,omitempty"`
	Script   string     `yaml:"script,omitempty" toml:"script,omitempty" json:"script,omitempty"`
	Sound    string     `yaml:"sound,omitempty" toml:"sound,omitempty" json:"sound,omitempty"` // hum or tone
	Tags     []string   `yaml:"tags,omitempty" toml:"tags,omitempty" json:"tags,omitempty"`
}

// LightSpec is one directional light
type LightSpec struct {
	Color     [3]float32 `yaml:"color" toml:"color" json:"color"`
	Intensity float32    `yaml:"intensity" toml:"intensity" json:"intensity"`
	Direction [3]float32 `yaml:"direction" toml:"direction" json:"direction"`
}

// Manifest describes the objects and lights of a scene
type Manifest struct {
	Ambient [3]float32   `yaml:"ambient" toml:"ambient" json:"ambient"`
	Lights  []LightSpec  `yaml:"lights" toml:"lights" json:"lights"`
	Objects []ObjectSpec `yaml:"objects" toml:"objects" json:"objects"`
}

// DefaultManifest is the demo scene: terrain, a pillar, a creature orbiting
// under a script and a humming sphere.
func DefaultManifest() *Manifest {
	return &Manifest{
		Ambient: [3]float32{0.1, 0.1, 0.12},
		Lights: []LightSpec{
			{Color: [3]float32{1, 1, 1}, Intensity: 1, Direction: [3]float32{1, 1, 0.5}},
		},
		Objects: []ObjectSpec{
			{ID: "ground", Model: ModelTerrain, Seed: 7, Tags: []string{"static"}},
			{ID: "axis", Model: ModelAxis, Tags: []string{"debug"}},
			{ID: "pillar", Model: ModelPillar, Position: [3]float32{-4, 0, -2}, Tags: []string{"static"}},
			{ID: "creature", Model: ModelCreature, Position: [3]float32{6, 6, -8}, Script: "spin", Tags: []string{"animated"}},
			{ID: "hum", Model: ModelSphere, Parent: "creature", Position: [3]float32{0, 3, 0}, Scale: [3]float32{0.5, 0.5, 0.5}, Sound: "hum", Tags: []string{"audio"}},
		},
	}
}

// Validate checks ids, parents and model kinds. Parents must be listed
// before their children.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Objects))
	for i, o := range m.Objects {
		if o.ID == "" {
			return fmt.Errorf("object %d: id cannot be empty", i)
		}
		if seen[o.ID] {
			return fmt.Errorf("object with id '%s' already exists", o.ID)
		}
		if !slices.Contains(modelKinds, o.Model) {
			return fmt.Errorf("object '%s': unknown model %q", o.ID, o.Model)
		}
		if o.Parent != "" && !seen[o.Parent] {
			return fmt.Errorf("object '%s': parent '%s' must be listed first", o.ID, o.Parent)
		}
		switch o.Sound {
		case "", "hum", "tone":
		default:
			return fmt.Errorf("object '%s': unknown sound %q", o.ID, o.Sound)
		}
		seen[o.ID] = true
	}
	return nil
}

// AddObject appends an object, refusing duplicate ids
func (m *Manifest) AddObject(o ObjectSpec) error {
	if o.ID == "" {
		return fmt.Errorf("object id cannot be empty")
	}
	if m.Object(o.ID) != nil {
		return fmt.Errorf("object with id '%s' already exists", o.ID)
	}
	m.Objects = append(m.Objects, o)
	return nil
}

// RemoveObject drops an object and every object parented to it
func (m *Manifest) RemoveObject(id string) error {
	if m.Object(id) == nil {
		return fmt.Errorf("object with id '%s' does not exist", id)
	}
	gone := map[string]bool{id: true}
	m.Objects = slices.DeleteFunc(m.Objects, func(o ObjectSpec) bool {
		if gone[o.ID] || gone[o.Parent] {
			gone[o.ID] = true
			return true
		}
		return false
	})
	return nil
}

// Object returns the object with id, nil when absent
func (m *Manifest) Object(id string) *ObjectSpec {
	for i := range m.Objects {
		if m.Objects[i].ID == id {
			return &m.Objects[i]
		}
	}
	return nil
}

// FindByTags returns the objects carrying all the given tags, in manifest
// order
func (m *Manifest) FindByTags(tags ...string) []*ObjectSpec {
	var result []*ObjectSpec
	for i := range m.Objects {
		o := &m.Objects[i]
		hasAll := true
		for _, tag := range tags {
			if !slices.Contains(o.Tags, tag) {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, o)
		}
	}
	return result
}

// ScaleOrOne returns the object's scale with zero components replaced by 1
func (o *ObjectSpec) ScaleOrOne() [3]float32 {
	s := o.Scale
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}

// LoadManifest reads a manifest as json, toml or yaml depending on the
// extension
func LoadManifest(filePath string) (*Manifest, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	m := &Manifest{}
	if err := decode(filePath, data, m); err != nil {
		return nil, fmt.Errorf("error parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", filePath, err)
	}
	return m, nil
}

// SaveManifest writes the manifest in the format its extension names
func SaveManifest(m *Manifest, filePath string) error {
	data, err := encode(filePath, m)
	if err != nil {
		return fmt.Errorf("error serializing manifest: %w", err)
	}
	if err := util.CreateDirIfNotExist(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing manifest file: %w", err)
	}
	return nil
}
