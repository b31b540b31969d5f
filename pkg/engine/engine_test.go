package engine

import (
	"errors"
	"testing"

	"glscene/internal/logger"
	"glscene/pkg/asset"
	"glscene/pkg/config"
	"glscene/pkg/gpu"
	"glscene/pkg/input"
	"glscene/pkg/render"
	"glscene/pkg/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGame struct {
	app      *App
	initErr  error
	inits    int
	updates  int
	renders  int
	closes   int
	dts      []float32
	onUpdate func(frame int)
}

func (g *countingGame) Init(app *App) error {
	g.app = app
	g.inits++
	return g.initErr
}

func (g *countingGame) Update(dt float32) {
	g.updates++
	g.dts = append(g.dts, dt)
	if g.onUpdate != nil {
		g.onUpdate(g.updates)
	}
}

func (g *countingGame) Render(float32) { g.renders++ }
func (g *countingGame) Close()         { g.closes++ }

func TestHeadlessAppRunsFrameBudget(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Window.FrameRate = 50
	app := NewHeadlessApp(cfg, logger.Nop(), 3)
	require.True(t, app.Headless())

	g := &countingGame{}
	require.NoError(t, app.Run(g))

	assert.Equal(t, 1, g.inits)
	assert.Equal(t, 3, g.updates)
	assert.Equal(t, 3, g.renders)
	assert.Equal(t, 1, g.closes)
	assert.Equal(t, 3, app.Frames())
	for _, dt := range g.dts {
		assert.InDelta(t, 0.02, dt, 1e-6)
	}
	// Render was disconnected when the loop ended
	assert.Equal(t, 0, app.RenderSignal.ConnectionNum())
}

func TestHeadlessAppInitErrorClosesNothing(t *testing.T) {
	app := NewHeadlessApp(config.DefaultConfig(), logger.Nop(), 3)
	g := &countingGame{initErr: errors.New("boom")}

	err := app.Run(g)
	assert.ErrorContains(t, err, "boom")
	assert.Zero(t, g.updates)
	assert.Zero(t, g.closes)
}

func TestEscapeStopsLoop(t *testing.T) {
	app := NewHeadlessApp(config.DefaultConfig(), logger.Nop(), 100)
	g := &countingGame{}
	g.onUpdate = func(frame int) {
		if frame == 2 {
			app.Input().OnKeyboard(input.KeyEscape, input.Press)
		}
	}

	require.NoError(t, app.Run(g))
	assert.Equal(t, 3, g.updates)
}

func TestStopAndPostedTasks(t *testing.T) {
	app := NewHeadlessApp(config.DefaultConfig(), logger.Nop(), 100)
	var ran []int
	g := &countingGame{}
	g.onUpdate = func(frame int) {
		switch frame {
		case 1:
			app.Post(func() { ran = append(ran, 1) })
		case 5:
			app.Post(func() { ran = append(ran, 5) })
			app.Stop()
		}
	}

	require.NoError(t, app.Run(g))
	assert.Equal(t, 5, g.updates)
	// tasks run at the start of the next frame, which never comes for 5
	assert.Equal(t, []int{1}, ran)
}

type renderFixture struct {
	dev   *gpu.MemoryDevice
	cache *render.Cache
	scene *scene.Scene
}

func newRenderFixture(t *testing.T) *renderFixture {
	t.Helper()
	dev := gpu.NewMemoryDevice()
	cache, err := render.NewCache(dev, logger.Nop())
	require.NoError(t, err)
	s, err := scene.NewScene("render", scene.Deps{
		Device: dev,
		Input:  input.New(),
		Cache:  cache,
		Log:    logger.Nop(),
		Camera: scene.CameraOptions{Controller: scene.NoController},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
		cache.Close()
	})
	return &renderFixture{dev: dev, cache: cache, scene: s}
}

func TestRenderServerDrawsOncePerLight(t *testing.T) {
	f := newRenderFixture(t)
	_, err := f.scene.AddModel(asset.PillarModel(f.cache), nil)
	require.NoError(t, err)
	require.NoError(t, f.scene.Prepare())
	f.scene.Update(0)

	server := NewRenderServer(f.cache, logger.Nop())
	require.NoError(t, server.Render(f.scene))
	assert.Equal(t, 1, server.Passes())
	assert.Equal(t, 2, f.dev.Draws())
	assert.Equal(t, 1, f.dev.Clears())
	_, ok := f.dev.Uniform(render.BindingCamera)
	assert.True(t, ok)
	_, ok = f.dev.Uniform(render.BindingEnvironment)
	assert.True(t, ok)

	for range 2 {
		_, err := f.scene.CreateLight(nil)
		require.NoError(t, err)
	}
	require.NoError(t, f.scene.Prepare())
	f.scene.Update(0)

	require.NoError(t, server.Render(f.scene))
	assert.Equal(t, 2, server.Passes())
	assert.Equal(t, 2+4, f.dev.Draws())
	_, ok = f.dev.Uniform(render.BindingLight)
	assert.True(t, ok)
}

func TestRenderServerGrid(t *testing.T) {
	f := newRenderFixture(t)
	require.NoError(t, f.scene.Prepare())

	server := NewRenderServer(f.cache, nil)
	server.Grid = true
	require.NoError(t, server.Render(f.scene))
	assert.Equal(t, 1, f.dev.Draws())
}
