package scene

import (
	"testing"

	"glscene/internal/logger"
	"glscene/pkg/asset"
	"glscene/pkg/audio"
	"glscene/pkg/gpu"
	"glscene/pkg/input"
	"glscene/pkg/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dev   *gpu.MemoryDevice
	in    *input.Input
	cache *render.Cache
	scene *Scene
}

func newFixture(t *testing.T, ctrl ControllerKind) *fixture {
	t.Helper()
	dev := gpu.NewMemoryDevice()
	cache, err := render.NewCache(dev, logger.Nop())
	require.NoError(t, err)
	in := input.New()
	s, err := NewScene("test", Deps{
		Device: dev,
		Input:  in,
		Cache:  cache,
		Log:    logger.Nop(),
		Camera: CameraOptions{Controller: ctrl},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		cache.Close()
	})
	return &fixture{dev: dev, in: in, cache: cache, scene: s}
}

type counterBehaviour struct {
	BaseBehaviour
	scrolls int
	frames  int
}

func (b *counterBehaviour) OnScroll(input.ScrollEvent) { b.scrolls++ }
func (b *counterBehaviour) UpdatePerFrame(float32)     { b.frames++ }

func newCounter(in *input.Input) func(*Node) (*counterBehaviour, error) {
	return func(n *Node) (*counterBehaviour, error) {
		b := &counterBehaviour{BaseBehaviour: NewBaseBehaviour(n, "counter", in)}
		b.Listen(b)
		return b, nil
	}
}

func TestNewSceneBuildsEditorCamera(t *testing.T) {
	f := newFixture(t, EditController)
	s := f.scene

	assert.Equal(t, "root", s.Root().Name())
	_, ok := GetComponent[*Transform](s.Root())
	assert.True(t, ok)
	assert.Same(t, s.Root(), s.CameraNode().Parent())
	assert.Same(t, s.Camera(), must(GetComponent[*Camera](s.CameraNode())))
	assert.InDelta(t, 800.0/600.0, s.Camera().Aspect(), 1e-6)
	assert.InDelta(t, mgl32.DegToRad(60), s.Camera().Fovy(), 1e-6)
	require.Len(t, s.Behaviours(), 1)
	assert.IsType(t, &EditCameraController{}, s.Behaviours()[0])
}

func must[T any](v T, ok bool) T {
	if !ok {
		panic("component missing")
	}
	return v
}

func TestScrollDolliesEditCamera(t *testing.T) {
	f := newFixture(t, EditController)
	s := f.scene
	ctrl := must(GetComponent[*EditCameraController](s.CameraNode()))
	ctrl.Start = mgl32.Vec3{0, 0, 5}

	require.NoError(t, s.Prepare())
	s.Update(0.016)
	camT := must(GetComponent[*Transform](s.CameraNode()))
	assert.InDelta(t, 5, camT.GlobalPosition().Len(), 1e-5)

	f.in.OnScroll(0, 1)
	s.Update(0)
	assert.InDelta(t, 4.5, camT.GlobalPosition().Len(), 1e-5)
	assertVec3(t, mgl32.Vec3{0, 0, 4.5}, s.Camera().EyePosition())
}

func TestKeysMoveEditCamera(t *testing.T) {
	f := newFixture(t, EditController)
	s := f.scene
	must(GetComponent[*EditCameraController](s.CameraNode())).Start = mgl32.Vec3{}
	require.NoError(t, s.Prepare())
	s.Update(0)

	f.in.OnKeyboard(input.KeyW, input.Press)
	s.Update(1)
	f.in.OnKeyboard(input.KeyW, input.Release)
	s.Update(1)

	camT := must(GetComponent[*Transform](s.CameraNode()))
	assertVec3(t, mgl32.Vec3{0, 0, -3}, camT.GlobalPosition())
}

func TestOrbitControllerStartsAtDistance(t *testing.T) {
	f := newFixture(t, OrbitController)
	s := f.scene
	require.NoError(t, s.Prepare())
	s.Update(0)

	camT := must(GetComponent[*Transform](s.CameraNode()))
	assertVec3(t, mgl32.Vec3{0, 0, 3}, camT.GlobalPosition())

	f.in.OnScroll(0, -1)
	s.Update(0)
	assert.InDelta(t, 2.9, camT.GlobalPosition().Len(), 1e-5)
}

func TestDestroyedBehaviourStopsReceiving(t *testing.T) {
	f := newFixture(t, EditController)
	s := f.scene
	n := s.Root().CreateChild("counted")
	b, err := AddComponent(n, newCounter(f.in))
	require.NoError(t, err)
	assert.Equal(t, 2, f.in.Scroll.ConnectionNum())

	f.in.OnScroll(0, 0)
	s.Update(0)
	assert.Equal(t, 1, b.scrolls)
	assert.Equal(t, 1, b.frames)

	require.NoError(t, s.Root().RemoveChild(n))
	assert.True(t, b.Lifetime().Expired())
	f.in.OnScroll(0, 0)
	s.Update(0)
	assert.Equal(t, 1, b.scrolls)
	assert.Equal(t, 1, b.frames)
	assert.Equal(t, 1, f.in.Scroll.ConnectionNum())
}

type removerBehaviour struct {
	BaseBehaviour
	victim *Node
}

func (b *removerBehaviour) UpdatePerFrame(float32) {
	if b.victim != nil && b.victim.Parent() != nil {
		_ = b.victim.Parent().RemoveChild(b.victim)
	}
}

func TestBehaviourRemovedMidFrameIsSkipped(t *testing.T) {
	f := newFixture(t, NoController)
	s := f.scene
	killer := s.Root().CreateChild("killer")
	victim := s.Root().CreateChild("victim")
	counted, err := AddComponent(victim, newCounter(f.in))
	require.NoError(t, err)
	_, err = AddComponent(killer, func(n *Node) (*removerBehaviour, error) {
		return &removerBehaviour{BaseBehaviour: NewBaseBehaviour(n, "remover", f.in), victim: victim}, nil
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() { s.Update(0.016) })
	assert.True(t, victim.Destroyed())
	assert.Zero(t, counted.frames)
	assert.Len(t, s.Behaviours(), 1)
}

type selfDestruct struct {
	BaseComponent
}

func (c *selfDestruct) Update() { _ = c.Node().Parent().RemoveChild(c.Node()) }

type updateCounter struct {
	BaseComponent
	updates int
}

func (c *updateCounter) Update() { c.updates++ }

func TestComponentDestroyingItsNodeStopsUpdate(t *testing.T) {
	root := NewNode("root")
	n := root.CreateChild("doomed")
	_, err := AddComponent(n, func(n *Node) (*selfDestruct, error) {
		return &selfDestruct{BaseComponent: NewBaseComponent(n, "self-destruct")}, nil
	})
	require.NoError(t, err)
	after, err := AddComponent(n, func(n *Node) (*updateCounter, error) {
		return &updateCounter{BaseComponent: NewBaseComponent(n, "counter")}, nil
	})
	require.NoError(t, err)

	assert.NotPanics(t, root.Update)
	assert.True(t, n.Destroyed())
	assert.Zero(t, after.updates)
	assert.Zero(t, root.ChildCount())
}

func TestCameraUploadsBlock(t *testing.T) {
	f := newFixture(t, EditController)
	s := f.scene
	require.NoError(t, s.Prepare())
	s.Update(0)

	s.Camera().Bind(render.BindingCamera)
	buf, ok := f.dev.Uniform(render.BindingCamera)
	require.True(t, ok)
	data := buf.Bytes()
	assertMat4(t, mgl32.Translate3D(0, -1, -5), gpu.ReadMat4(data, 0))
	assertMat4(t, s.Camera().ProjectionMatrix(), gpu.ReadMat4(data, 64))
	assertVec3(t, mgl32.Vec3{0, 1, 5}, gpu.ReadVec4(data, 128).Vec3())
	assert.InDelta(t, 0.1, gpu.ReadFloat(data, 140), 1e-6)
	assert.InDelta(t, 1000, gpu.ReadFloat(data, 144), 1e-3)
}

func TestLightAndEnvironmentUpload(t *testing.T) {
	f := newFixture(t, NoController)
	s := f.scene
	ln, err := s.CreateLight(nil)
	require.NoError(t, err)
	require.NoError(t, s.Prepare())
	light := must(GetComponent[*Light](ln))
	require.Len(t, s.Lights(), 1)

	light.SetIntensity(2).SetColor(mgl32.Vec3{1, 0, 0})
	s.Update(0)
	light.Bind(render.BindingLight)
	buf, ok := f.dev.Uniform(render.BindingLight)
	require.True(t, ok)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, gpu.ReadVec4(buf.Bytes(), 0).Vec3())
	assert.InDelta(t, 2, gpu.ReadFloat(buf.Bytes(), 12), 1e-6)

	require.NoError(t, s.Environment.SetAmbientIntensity(0.5))
	s.Environment.Bind(render.BindingEnvironment)
	env, ok := f.dev.Uniform(render.BindingEnvironment)
	require.True(t, ok)
	assert.InDelta(t, 0.5, gpu.ReadFloat(env.Bytes(), 12), 1e-6)

	s.Environment.SetClearColor(mgl32.Vec4{0, 0, 1, 1})
	s.Environment.Render()
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, f.dev.ClearColor())
}

func TestFramebufferResizeUpdatesCamera(t *testing.T) {
	f := newFixture(t, NoController)
	f.in.OnFramebufferResize(1600, 800)
	assert.InDelta(t, 2, f.scene.Camera().Aspect(), 1e-6)
	assert.Equal(t, [4]int{0, 0, 1600, 800}, f.dev.ViewportRect())

	f.in.OnFramebufferResize(0, 0)
	assert.InDelta(t, 2, f.scene.Camera().Aspect(), 1e-6)
}

func TestAddModelBuildsHierarchy(t *testing.T) {
	f := newFixture(t, NoController)
	s := f.scene

	pillar, err := s.AddModel(asset.PillarModel(f.cache), nil)
	require.NoError(t, err)
	assert.Equal(t, "base", pillar.Name())
	assert.Same(t, s.Root(), pillar.Parent())
	s.Update(0)

	top := pillar.Find("top")
	require.NotNil(t, top)
	assertVec3(t, mgl32.Vec3{0, 5, 0}, must(GetComponent[*Transform](top)).GlobalPosition())

	r := must(GetComponent[*MeshRenderer](top))
	bp, ok := r.Material().(*render.BlinnPhongMaterial)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, bp.BaseColor())
	assert.Len(t, s.Renderers(), 2)

	creature, err := s.AddModel(asset.HierarchyModel(f.cache), nil)
	require.NoError(t, err)
	s.Update(0)
	tail := creature.Find("tail.3")
	require.NotNil(t, tail)
	assertVec3(t, mgl32.Vec3{0, -9, 0}, must(GetComponent[*Transform](tail)).GlobalPosition())
	assert.Len(t, s.Renderers(), 11)

	require.NoError(t, r.Draw(true))
	assert.Equal(t, 1, f.dev.Draws())
}

func TestAddModelWrapsSeveralRoots(t *testing.T) {
	f := newFixture(t, NoController)
	m := asset.NewModel("pair")
	mesh := m.AddMesh(asset.CubeMesh())
	m.AddMeshView(asset.MeshView{MeshIndex: mesh, Fallback: asset.UnlitColor})
	m.AddNode(asset.Node(0, -1).At(1, 0, 0).Named("left"))
	m.AddNode(asset.Node(-1, -1).At(-1, 0, 0).Named("empty"))

	root, err := f.scene.AddModel(m, nil)
	require.NoError(t, err)
	assert.Equal(t, "pair", root.Name())
	assert.Equal(t, 2, root.ChildCount())
	_, ok := GetComponent[*MeshRenderer](root.Find("empty"))
	assert.False(t, ok)
	assert.Len(t, f.scene.Renderers(), 1)
}

func TestAddModelRejectsBadModels(t *testing.T) {
	f := newFixture(t, NoController)
	before := f.scene.Root().ChildCount()

	_, err := f.scene.AddModel(nil, nil)
	assert.Error(t, err)

	bad := asset.NewModel("bad")
	bad.AddNode(asset.Node(-1, 5))
	_, err = f.scene.AddModel(bad, nil)
	assert.ErrorIs(t, err, asset.ErrBadParentIndex)

	headless, err := NewScene("headless", Deps{Log: logger.Nop()})
	require.NoError(t, err)
	defer headless.Close()
	_, err = headless.AddModel(asset.CubeModel(f.cache), nil)
	assert.Error(t, err)
	assert.Equal(t, 1, headless.Root().ChildCount())

	assert.Equal(t, before, f.scene.Root().ChildCount())
}

func TestAudioSourceFollowsListener(t *testing.T) {
	mixer := audio.NewMixer(1)
	root := NewNode("root")
	ear := root.CreateChild("ear")
	speaker := root.CreateChild("speaker")
	listener := withTransform(t, ear, nil)
	st := withTransform(t, speaker, nil)
	st.SetLocalTranslation(mgl32.Vec3{3, 0, 4})

	src, err := AddComponent(speaker, NewAudioSource(mixer, audio.NewSound("hum", audio.Tone(220, 0.1), true)))
	require.NoError(t, err)
	src.Listener = listener
	root.Update()
	require.NoError(t, src.Prepare())

	assert.True(t, src.Playing())
	assert.Equal(t, []string{"hum"}, mixer.Playing())
	vol, pan := src.Gain()
	assert.InDelta(t, 0.5, vol, 1e-5)
	assert.InDelta(t, 0.6, pan, 1e-5)

	st.SetLocalTranslation(mgl32.Vec3{-3, 0, 4})
	root.Update()
	mvol, mpan, ok := mixer.Gain("hum")
	require.True(t, ok)
	assert.InDelta(t, 0.5, mvol, 1e-5)
	assert.InDelta(t, -0.6, mpan, 1e-5)

	speaker.Destroy()
	assert.Empty(t, mixer.Playing())

	_, err = AddComponent(NewNode("mute"), NewAudioSource(nil, nil))
	assert.Error(t, err)
}
