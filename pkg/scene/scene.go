package scene

import (
	"errors"
	"fmt"

	"glscene/internal/logger"
	"glscene/pkg/asset"
	"glscene/pkg/gpu"
	"glscene/pkg/ident"
	"glscene/pkg/input"
	"glscene/pkg/render"
	"glscene/pkg/signal"

	"github.com/go-gl/mathgl/mgl32"
)

// ControllerKind selects the behaviour attached to the editor camera.
type ControllerKind int

const (
	EditController ControllerKind = iota
	OrbitController
	NoController
)

// CameraOptions configures the editor camera. Zero fields take defaults.
type CameraOptions struct {
	FovyDegrees float32
	Near, Far   float32
	Controller  ControllerKind
}

// Deps are the collaborators a scene draws on. Every field may be nil: a nil
// Device runs headless, a nil Input leaves behaviours without events, a nil
// Cache refuses models with meshes and a nil Audio refuses audio sources.
type Deps struct {
	Device gpu.Device
	Input  *input.Input
	Cache  *render.Cache
	Audio  AudioPlayer
	Log    *logger.Logger
	Camera CameraOptions
}

// Scene is the composition root: a node tree with a root Transform, an
// editor camera and the environment.
type Scene struct {
	ident.Object
	Name        string
	Environment *Environment

	// Updated fires once per frame after the node pass, with dt in seconds.
	Updated signal.Event[float32]

	deps       Deps
	root       *Node
	cameraNode *Node
	camera     *Camera
	fovy       float32

	life  *signal.Lifetime
	conns signal.Connections
}

// NewScene builds the root and the editor camera.
func NewScene(name string, deps Deps) (*Scene, error) {
	if deps.Log == nil {
		deps.Log = logger.Default()
	}
	opts := deps.Camera
	if opts.FovyDegrees <= 0 {
		opts.FovyDegrees = 60
	}
	if opts.Near <= 0 {
		opts.Near = 0.1
	}
	if opts.Far == 0 {
		opts.Far = 1000
	}

	s := &Scene{
		Object:      ident.New(),
		Name:        name,
		Environment: NewEnvironment(deps.Device),
		deps:        deps,
		root:        NewNode("root"),
		fovy:        mgl32.DegToRad(opts.FovyDegrees),
		life:        signal.NewLifetime(),
	}
	if _, err := AddComponent(s.root, NewTransform(deps.Device)); err != nil {
		return nil, err
	}

	aspect := float32(800) / 600
	if deps.Input != nil {
		if w, h := deps.Input.FramebufferSize(); w > 0 && h > 0 {
			aspect = float32(w) / float32(h)
		}
	}
	s.cameraNode = s.root.CreateChild("editor camera")
	if _, err := AddComponent(s.cameraNode, NewTransform(deps.Device)); err != nil {
		s.root.Destroy()
		return nil, err
	}
	cam, err := AddComponent(s.cameraNode, NewPerspectiveCamera(deps.Device, s.fovy, aspect, opts.Near, opts.Far))
	if err != nil {
		s.root.Destroy()
		return nil, err
	}
	s.camera = cam
	switch opts.Controller {
	case EditController:
		_, err = AddComponent(s.cameraNode, NewEditCameraController(deps.Input))
	case OrbitController:
		_, err = AddComponent(s.cameraNode, NewOrbitCameraController(deps.Input))
	}
	if err != nil {
		s.root.Destroy()
		return nil, err
	}

	if deps.Input != nil {
		s.conns = append(s.conns, signal.Bind(&deps.Input.FramebufferResize, s, (*Scene).OnFramebufferResize, signal.Track(s.life)))
	}
	return s, nil
}

// Root returns the root node. It carries an identity Transform.
func (s *Scene) Root() *Node { return s.root }

// CameraNode returns the editor camera's node.
func (s *Scene) CameraNode() *Node { return s.cameraNode }

// Camera returns the editor camera.
func (s *Scene) Camera() *Camera { return s.camera }

// Deps returns the collaborators the scene was built with.
func (s *Scene) Deps() Deps { return s.deps }

// Prepare runs the one-time Prepare of the environment, then of every
// Behaviour, then of every Light. It stops at the first error.
func (s *Scene) Prepare() error {
	if err := s.Environment.Prepare(); err != nil {
		return fmt.Errorf("prepare scene %q: %w", s.Name, err)
	}
	for _, b := range GetComponents[Behaviour](s.root, nil, true) {
		if err := b.Prepare(); err != nil {
			return fmt.Errorf("prepare %s of %s: %w", b.Name(), b.Node(), err)
		}
	}
	for _, l := range GetComponents[*Light](s.root, nil, true) {
		if err := l.Prepare(); err != nil {
			return fmt.Errorf("prepare light of %s: %w", l.Node(), err)
		}
	}
	return nil
}

// Update runs the node pass, fires Updated and then gives every Behaviour its
// per-frame update. Behaviours whose node is destroyed earlier in the frame
// are skipped.
func (s *Scene) Update(dt float32) {
	s.root.Update()
	s.Updated.Fire(dt)
	for _, b := range GetComponents[Behaviour](s.root, nil, true) {
		if b.Node().Destroyed() {
			continue
		}
		b.UpdatePerFrame(dt)
	}
}

// Behaviours returns every Behaviour in the tree, depth-first.
func (s *Scene) Behaviours() []Behaviour { return GetComponents[Behaviour](s.root, nil, true) }

// Lights returns every Light in the tree, depth-first.
func (s *Scene) Lights() []*Light { return GetComponents[*Light](s.root, nil, true) }

// Renderers returns every Renderer in the tree, depth-first.
func (s *Scene) Renderers() []Renderer { return GetComponents[Renderer](s.root, nil, true) }

func (s *Scene) parentOrRoot(parent *Node) *Node {
	if parent == nil {
		return s.root
	}
	return parent
}

// CreateLight adds a node with a Transform and a directional Light.
func (s *Scene) CreateLight(parent *Node) (*Node, error) {
	n := s.parentOrRoot(parent).CreateChild("light")
	if _, err := AddComponent(n, NewTransform(s.deps.Device)); err != nil {
		n.Parent().RemoveChild(n)
		return nil, err
	}
	if _, err := AddComponent(n, NewLight(s.deps.Device)); err != nil {
		n.Parent().RemoveChild(n)
		return nil, err
	}
	return n, nil
}

// CreateCamera adds a node with a Transform and a default perspective Camera.
func (s *Scene) CreateCamera(parent *Node) (*Node, error) {
	n := s.parentOrRoot(parent).CreateChild("camera")
	if _, err := AddComponent(n, NewTransform(s.deps.Device)); err != nil {
		n.Parent().RemoveChild(n)
		return nil, err
	}
	if _, err := AddComponent(n, NewPerspectiveCamera(s.deps.Device, mgl32.DegToRad(60), 1.777, 0.1, 10000)); err != nil {
		n.Parent().RemoveChild(n)
		return nil, err
	}
	return n, nil
}

// AddModel instantiates model under parent (the root when nil) and returns the
// subtree root. A model with several top-level nodes is wrapped in a node
// named after the model.
func (s *Scene) AddModel(model *asset.Model, parent *Node) (*Node, error) {
	if model == nil {
		return nil, errors.New("scene: nil model")
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("add model %q: %w", model.Name, err)
	}
	if len(model.Nodes) == 0 {
		return nil, fmt.Errorf("add model %q: no nodes", model.Name)
	}

	nodes := make([]*Node, len(model.Nodes))
	fail := func(err error) (*Node, error) {
		for _, n := range nodes {
			if n != nil && n.Parent() == nil {
				n.Destroy()
			}
		}
		return nil, fmt.Errorf("add model %q: %w", model.Name, err)
	}

	for i, attr := range model.Nodes {
		name := attr.Name
		if name == "" {
			name = fmt.Sprintf("%s/%d", model.Name, i)
		}
		n := NewNode(name)
		nodes[i] = n
		t, err := AddComponent(n, NewTransform(s.deps.Device))
		if err != nil {
			return fail(err)
		}
		t.SetInitRotation(attr.Rotation)
		t.SetInitTranslation(attr.Translation)
		t.SetInitScale(attr.Scale)

		if attr.MeshViewIndex < 0 {
			continue
		}
		view := model.MeshViews[attr.MeshViewIndex]
		r, err := AddComponent(n, NewMeshRenderer(s.deps.Cache, model.Meshes[view.MeshIndex]))
		if err != nil {
			return fail(err)
		}
		r.SetMaterial(s.deps.Cache.MaterialFor(view))
	}

	var roots []*Node
	for i, attr := range model.Nodes {
		if attr.ParentIndex < 0 {
			roots = append(roots, nodes[i])
			continue
		}
		if err := nodes[attr.ParentIndex].AddChild(nodes[i]); err != nil {
			return fail(err)
		}
	}

	root := roots[0]
	if len(roots) > 1 {
		root = NewNode(model.Name)
		if _, err := AddComponent(root, NewTransform(s.deps.Device)); err != nil {
			root.Destroy()
			return fail(err)
		}
		for _, r := range roots {
			root.attach(r)
		}
	}
	if err := s.parentOrRoot(parent).AddChild(root); err != nil {
		root.Destroy()
		return fail(err)
	}
	return root, nil
}

// OnFramebufferResize keeps the editor camera's aspect and the viewport in
// step with the framebuffer. A zero size (minimized window) is ignored.
func (s *Scene) OnFramebufferResize(e input.SizeEvent) {
	if e.Width <= 0 || e.Height <= 0 {
		return
	}
	s.camera.SetPerspective(s.fovy, float32(e.Width)/float32(e.Height))
	if s.deps.Device != nil {
		s.deps.Device.Viewport(0, 0, e.Width, e.Height)
	}
}

// Close destroys the tree and releases the environment.
func (s *Scene) Close() {
	s.life.End()
	s.conns.DisconnectAll()
	s.root.Destroy()
	s.Environment.Release()
	s.Updated.Close()
}
