package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"glscene/internal/logger"
	"glscene/pkg/asset"
	"glscene/pkg/audio"
	"glscene/pkg/config"
	"glscene/pkg/input"
	"glscene/pkg/render"
	"glscene/pkg/scene"
	"glscene/pkg/script"
)

// WorldOptions carries what a manifest may ask for besides geometry
type WorldOptions struct {
	Input *input.Input
	// Audio plays object sounds. Nil skips them.
	Audio scene.AudioPlayer
	// Scripts maps script names to Lua sources. Nil skips scripts; a name
	// missing from a non-nil map is an error.
	Scripts map[string]string
	Log     *logger.Logger
}

// World is a manifest instantiated into a scene
type World struct {
	// Nodes maps object ids to their object nodes
	Nodes   map[string]*scene.Node
	Sources []*scene.AudioSource
	Scripts []*script.Behaviour
}

// modelFor builds the model of an object kind, nil for an empty object
func modelFor(kind config.ModelKind, cache *render.Cache, seed int64) *asset.Model {
	switch kind {
	case config.ModelCube:
		return asset.CubeModel(cache)
	case config.ModelSphere:
		return asset.SphereModel(cache)
	case config.ModelQuad:
		return asset.QuadModel(cache, mgl32.Vec2{10, 10}, 10, 10)
	case config.ModelAxis:
		return asset.AxisModel(cache)
	case config.ModelPillar:
		return asset.PillarModel(cache)
	case config.ModelCreature:
		return asset.HierarchyModel(cache)
	case config.ModelTerrain:
		return asset.TerrainModel(cache, seed)
	}
	return nil
}

// shapeFor is the collision shape fitted to each mesh node of a model kind
func shapeFor(kind config.ModelKind) scene.Shape {
	switch kind {
	case config.ModelCube, config.ModelCreature:
		return scene.Box{HalfExtent: mgl32.Vec3{1, 1, 1}}
	case config.ModelSphere:
		return scene.Sphere{Radius: 1}
	case config.ModelPillar:
		return scene.Cylinder{Base: mgl32.Vec3{0, -1, 0}, Top: mgl32.Vec3{0, 1, 0}, Radius: 1}
	}
	return nil
}

func soundFor(o *config.ObjectSpec) *audio.Sound {
	switch o.Sound {
	case "hum":
		return audio.NewSound(o.ID, audio.Hum(o.Seed, 4), true)
	case "tone":
		return audio.NewSound(o.ID, audio.Tone(440, 1), true)
	}
	return nil
}

// BuildWorld adds every object and light of m to s. Each object gets a node
// named after its id carrying the position and rotation; the model hangs
// below it with the object's scale applied to the model's top node.
func BuildWorld(s *scene.Scene, cache *render.Cache, m *config.Manifest, opts WorldOptions) (*World, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = logger.Default()
	}
	dev := s.Deps().Device

	if err := s.Environment.SetAmbientColor(mgl32.Vec3(m.Ambient)); err != nil {
		return nil, err
	}
	for i, spec := range m.Lights {
		n, err := s.CreateLight(nil)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		l, _ := scene.GetComponent[*scene.Light](n)
		l.SetColor(mgl32.Vec3(spec.Color)).
			SetIntensity(spec.Intensity).
			SetDirection(mgl32.Vec3(spec.Direction))
	}

	var listener *scene.Transform
	if s.CameraNode() != nil {
		listener, _ = scene.GetComponent[*scene.Transform](s.CameraNode())
	}

	w := &World{Nodes: make(map[string]*scene.Node, len(m.Objects))}
	for i := range m.Objects {
		o := &m.Objects[i]
		parent := s.Root()
		if o.Parent != "" {
			parent = w.Nodes[o.Parent]
		}

		n := parent.CreateChild(o.ID)
		t, err := scene.AddComponent(n, scene.NewTransform(dev))
		if err != nil {
			return nil, fmt.Errorf("object '%s': %w", o.ID, err)
		}
		rot := mgl32.AnglesToQuat(
			mgl32.DegToRad(o.Rotation[0]),
			mgl32.DegToRad(o.Rotation[1]),
			mgl32.DegToRad(o.Rotation[2]),
			mgl32.YXZ)
		t.SetInitTranslation(mgl32.Vec3(o.Position)).SetInitRotation(rot)
		w.Nodes[o.ID] = n

		if model := modelFor(o.Model, cache, o.Seed); model != nil {
			top, err := s.AddModel(model, n)
			if err != nil {
				return nil, fmt.Errorf("object '%s': %w", o.ID, err)
			}
			if tt, ok := scene.GetComponent[*scene.Transform](top); ok {
				scale := o.ScaleOrOne()
				tt.SetInitScale(mgl32.Vec3{
					tt.InitScale().X() * scale[0],
					tt.InitScale().Y() * scale[1],
					tt.InitScale().Z() * scale[2],
				})
			}
			if err := addColliders(top, shapeFor(o.Model)); err != nil {
				return nil, fmt.Errorf("object '%s': %w", o.ID, err)
			}
		}

		if o.Script != "" && opts.Scripts != nil {
			src, ok := opts.Scripts[o.Script]
			if !ok {
				return nil, fmt.Errorf("object '%s': unknown script %q", o.ID, o.Script)
			}
			b, err := scene.AddComponent(n, script.New(opts.Input, o.Script, src, log))
			if err != nil {
				return nil, fmt.Errorf("object '%s': %w", o.ID, err)
			}
			w.Scripts = append(w.Scripts, b)
		}

		if snd := soundFor(o); snd != nil && opts.Audio != nil {
			src, err := scene.AddComponent(n, scene.NewAudioSource(opts.Audio, snd))
			if err != nil {
				return nil, fmt.Errorf("object '%s': %w", o.ID, err)
			}
			src.Listener = listener
			w.Sources = append(w.Sources, src)
		}
	}
	log.Infof("built %d objects and %d lights", len(m.Objects), len(m.Lights))
	return w, nil
}

// addColliders fits shape to every node under top that draws a mesh
func addColliders(top *scene.Node, shape scene.Shape) error {
	if shape == nil {
		return nil
	}
	var err error
	top.Walk(func(n *scene.Node) {
		if err != nil {
			return
		}
		if _, ok := scene.GetComponent[*scene.MeshRenderer](n); ok {
			_, err = scene.AddComponent(n, scene.NewCollider(shape))
		}
	})
	return err
}
