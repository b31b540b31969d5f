package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glscene/internal/logger"
	"glscene/pkg/config"
	"glscene/pkg/engine"
	"glscene/pkg/gpu"
	"glscene/pkg/scene"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = false
	cfg.Scripts.Dir = t.TempDir()
	return cfg
}

func TestViewerRunsHeadless(t *testing.T) {
	app := engine.NewHeadlessApp(testConfig(t), logger.Nop(), 4)
	v := newViewer()
	require.NoError(t, app.Run(v))

	assert.Equal(t, 4, app.Frames())
	require.NotNil(t, v.world)
	assert.Len(t, v.world.Nodes, 5)
	require.Len(t, v.world.Scripts, 1)

	dev := app.Device().(*gpu.MemoryDevice)
	assert.Equal(t, 4, dev.Clears())
	assert.Positive(t, dev.Draws())
}

func TestViewerPlaysSoundsHeadless(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audio.Enabled = true
	app := engine.NewHeadlessApp(cfg, logger.Nop(), 1)
	v := newViewer()
	require.NoError(t, v.Init(app))
	t.Cleanup(v.Close)

	require.Len(t, v.world.Sources, 1)
	assert.True(t, v.world.Sources[0].Playing())
	assert.Nil(t, v.audio)
}

func TestViewerPushesCameraOutOfObjects(t *testing.T) {
	dir := t.TempDir()
	manifest := &config.Manifest{Objects: []config.ObjectSpec{
		{ID: "box", Model: config.ModelCube, Position: [3]float32{0, 0, 5}},
	}}
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, config.SaveManifest(manifest, path))

	cfg := testConfig(t)
	cfg.Scene.Manifest = path
	app := engine.NewHeadlessApp(cfg, logger.Nop(), 1)
	v := newViewer()
	require.NoError(t, v.Init(app))
	t.Cleanup(v.Close)

	// the edit camera starts at (0, 0, 5), inside the box
	v.Update(0)
	cam, ok := scene.GetComponent[*scene.Transform](v.scene.CameraNode())
	require.True(t, ok)
	assert.True(t, mgl32.Vec3{1.3, 0, 5}.ApproxEqualThreshold(cam.LocalTranslation(), 1e-4), "%v", cam.LocalTranslation())
}

func TestLoadScriptsOverridesBuiltins(t *testing.T) {
	scripts, err := loadScripts("")
	require.NoError(t, err)
	assert.Contains(t, scripts["spin"], "node.rotate")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spin.lua"), []byte("-- mine"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bob.lua"), []byte("-- bob"), 0o644))
	scripts, err = loadScripts(dir)
	require.NoError(t, err)
	assert.Equal(t, "-- mine", scripts["spin"])
	assert.Equal(t, "-- bob", scripts["bob"])
}

func TestBrokenManifestFailsInit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scene.Manifest = filepath.Join(t.TempDir(), "missing.yaml")
	app := engine.NewHeadlessApp(cfg, logger.Nop(), 1)
	assert.Error(t, app.Run(newViewer()))
}

func TestFailedInitReleasesWhatItStarted(t *testing.T) {
	cfg := testConfig(t)
	cfg.Shaders.Dir = t.TempDir()
	cfg.Shaders.HotReload = true
	cfg.Scene.Manifest = filepath.Join(t.TempDir(), "missing.yaml")
	app := engine.NewHeadlessApp(cfg, logger.Nop(), 1)
	v := newViewer()

	require.Error(t, v.Init(app))
	require.NotNil(t, v.watcher)
	assert.Zero(t, v.watcher.Changed.ConnectionNum())
	require.NotNil(t, v.scene)
	assert.True(t, v.scene.Root().Destroyed())
}

func TestControllerKind(t *testing.T) {
	assert.Equal(t, scene.EditController, controllerKind("edit"))
	assert.Equal(t, scene.OrbitController, controllerKind("orbit"))
	assert.Equal(t, scene.NoController, controllerKind("none"))
}
