package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"glscene/internal/logger"
	"glscene/pkg/audio"
	"glscene/pkg/config"
	"glscene/pkg/scene"
)

const spinScript = `
turned = 0
function update(dt)
  node.rotate(0, 1, 0, 90 * dt)
  turned = turned + 90 * dt
end
`

func TestBuildWorldFromDefaultManifest(t *testing.T) {
	f := newRenderFixture(t)
	mixer := audio.NewMixer(1)

	w, err := BuildWorld(f.scene, f.cache, config.DefaultManifest(), WorldOptions{
		Audio:   mixer,
		Scripts: map[string]string{"spin": spinScript},
		Log:     logger.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, f.scene.Prepare())
	f.scene.Update(0.5)
	f.scene.Update(0)

	assert.Len(t, w.Nodes, 5)
	assert.Len(t, f.scene.Lights(), 1)
	assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.12}, f.scene.Environment.AmbientColor())

	// pillar 2, creature 9, hum 1; terrain and axis have none
	assert.Len(t, f.scene.Colliders(), 12)

	require.Len(t, w.Scripts, 1)
	assert.InDelta(t, 45, float64(w.Scripts[0].Global("turned").(lua.LNumber)), 1e-4)

	// the hum follows the creature, which has turned 45 degrees about Y
	hum, ok := scene.GetComponent[*scene.Transform](w.Nodes["hum"])
	require.True(t, ok)
	assertNear(t, mgl32.Vec3{6, 9, -8}, hum.GlobalPosition())

	require.Len(t, w.Sources, 1)
	assert.True(t, w.Sources[0].Playing())
	assert.Equal(t, []string{"hum"}, mixer.Playing())

	// the sphere model carries the object's scale
	sphere := w.Nodes["hum"].Children()[0]
	st, _ := scene.GetComponent[*scene.Transform](sphere)
	assertNear(t, mgl32.Vec3{0.5, 0.5, 0.5}, st.LocalScale())
}

func TestBuildWorldSkipsDisabledFeatures(t *testing.T) {
	f := newRenderFixture(t)
	w, err := BuildWorld(f.scene, f.cache, config.DefaultManifest(), WorldOptions{Log: logger.Nop()})
	require.NoError(t, err)
	assert.Empty(t, w.Scripts)
	assert.Empty(t, w.Sources)
}

func TestBuildWorldErrors(t *testing.T) {
	f := newRenderFixture(t)
	_, err := BuildWorld(f.scene, f.cache, config.DefaultManifest(), WorldOptions{
		Scripts: map[string]string{},
		Log:     logger.Nop(),
	})
	assert.ErrorContains(t, err, "spin")

	bad := &config.Manifest{Objects: []config.ObjectSpec{{ID: "x", Model: "teapot"}}}
	_, err = BuildWorld(f.scene, f.cache, bad, WorldOptions{Log: logger.Nop()})
	assert.Error(t, err)
}

func assertNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-4), "want %v, got %v", want, got)
}
