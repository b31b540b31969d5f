package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"time"

	"glscene/internal/logger"
	"glscene/internal/util"
	"glscene/pkg/audio"
	"glscene/pkg/config"
	"glscene/pkg/engine"
	"glscene/pkg/render"
	"glscene/pkg/scene"
	"glscene/pkg/script"
)

//go:embed scripts/*.lua
var builtinScripts embed.FS

// viewer shows a manifest scene under the editor camera
type viewer struct {
	app   *engine.App
	log   *logger.Logger
	cache *render.Cache
	scene *scene.Scene
	world *engine.World

	server  *engine.RenderServer
	audio   *audio.Engine
	watcher *render.Watcher

	collisionRadius float32
}

func newViewer() *viewer {
	return &viewer{}
}

func controllerKind(name string) scene.ControllerKind {
	switch name {
	case "orbit":
		return scene.OrbitController
	case "none":
		return scene.NoController
	}
	return scene.EditController
}

// Init builds the scene. On failure everything started so far is closed
// again, since the app does not call Close after a failed Init.
func (v *viewer) Init(app *engine.App) (err error) {
	defer util.TimeTrack(app.Logger(), time.Now(), "viewer init")
	defer func() {
		if err != nil {
			v.Close()
		}
	}()
	cfg := app.Config()
	v.app = app
	v.log = app.Logger()
	v.collisionRadius = cfg.Camera.CollisionRadius

	cache, err := render.NewCache(app.Device(), v.log)
	if err != nil {
		return err
	}
	v.cache = cache
	if err := v.loadShaders(cfg.Shaders); err != nil {
		return err
	}

	player := v.openAudio(cfg.Audio)
	s, err := scene.NewScene(cfg.Window.Title, scene.Deps{
		Device: app.Device(),
		Input:  app.Input(),
		Cache:  cache,
		Audio:  player,
		Log:    v.log,
		Camera: scene.CameraOptions{
			FovyDegrees: cfg.Camera.FovyDegrees,
			Near:        cfg.Camera.Near,
			Far:         cfg.Camera.Far,
			Controller:  controllerKind(cfg.Camera.Controller),
		},
	})
	if err != nil {
		return err
	}
	v.scene = s
	if c, ok := scene.GetComponent[*scene.EditCameraController](s.CameraNode()); ok {
		c.Speed = cfg.Camera.Speed
		c.ScrollFactor = cfg.Camera.ScrollFactor
	}
	if c, ok := scene.GetComponent[*scene.OrbitCameraController](s.CameraNode()); ok {
		c.ScrollStep = cfg.Camera.ScrollFactor
	}

	manifest := config.DefaultManifest()
	if cfg.Scene.Manifest != "" {
		if manifest, err = config.LoadManifest(cfg.Scene.Manifest); err != nil {
			return err
		}
	}

	opts := engine.WorldOptions{Input: app.Input(), Audio: player, Log: v.log}
	if cfg.Scripts.Enabled {
		if opts.Scripts, err = loadScripts(cfg.Scripts.Dir); err != nil {
			return err
		}
	}
	if v.world, err = engine.BuildWorld(s, cache, manifest, opts); err != nil {
		return err
	}

	v.server = engine.NewRenderServer(cache, v.log)
	v.server.Grid = cfg.Scene.Grid

	return s.Prepare()
}

// openAudio returns nil when audio is off. Headless runs and machines
// without an output device mix into a silent Mixer.
func (v *viewer) openAudio(cfg config.AudioConfig) scene.AudioPlayer {
	if !cfg.Enabled {
		return nil
	}
	if v.app.Headless() {
		return audio.NewMixer(float32(cfg.Volume))
	}
	eng, err := audio.Open(float32(cfg.Volume), v.log)
	if err != nil {
		v.log.Warnf("audio disabled: %v", err)
		return audio.NewMixer(float32(cfg.Volume))
	}
	v.audio = eng
	return eng
}

// loadScripts merges the scripts in dir over the built-in ones
func loadScripts(dir string) (map[string]string, error) {
	scripts := make(map[string]string)
	entries, err := fs.ReadDir(builtinScripts, "scripts")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		src, err := fs.ReadFile(builtinScripts, "scripts/"+e.Name())
		if err != nil {
			return nil, err
		}
		scripts[util.FileNameWithoutExt(e.Name())] = string(src)
	}
	if dir == "" {
		return scripts, nil
	}
	user, err := script.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	maps.Copy(scripts, user)
	return scripts, nil
}

// loadShaders applies shader overrides from cfg.Dir and, with hot reload,
// keeps watching it. Reloads are posted to the frame loop.
func (v *viewer) loadShaders(cfg config.ShadersConfig) error {
	if cfg.Dir == "" {
		return nil
	}
	names := render.ShaderNames()
	sources, err := render.LoadShaderSources(context.Background(), cfg.Dir, names)
	if err != nil {
		return err
	}
	changed, err := v.cache.SetShaderSources(sources)
	if err != nil {
		return fmt.Errorf("shader overrides: %w", err)
	}
	if len(changed) > 0 {
		v.log.Infof("shader overrides: %v", changed)
	}
	if !cfg.HotReload {
		return nil
	}

	w, err := render.NewWatcher(cfg.Dir, names, v.log)
	if err != nil {
		return err
	}
	v.watcher = w
	w.Changed.Connect(func(c render.ShaderChange) {
		v.app.Post(func() {
			if _, err := v.cache.SetShaderSource(c.Name, c.Code); err != nil {
				v.log.Warnf("reload %s: %v", c.Name, err)
			}
		})
	})
	return nil
}

func (v *viewer) Update(dt float32) {
	v.scene.Update(dt)
	if v.collisionRadius <= 0 {
		return
	}
	// the camera hangs off the root, so local is global
	if t, ok := scene.GetComponent[*scene.Transform](v.scene.CameraNode()); ok {
		pos := t.LocalTranslation()
		if fixed := v.scene.ResolveCollision(pos, v.collisionRadius); fixed != pos {
			t.SetLocalTranslation(fixed)
		}
	}
}

func (v *viewer) Render(float32) {
	if err := v.server.Render(v.scene); err != nil {
		v.log.Warnf("render: %v", err)
	}
}

func (v *viewer) Close() {
	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			v.log.Warnf("closing shader watcher: %v", err)
		}
	}
	if v.scene != nil {
		v.scene.Close()
	}
	if v.cache != nil {
		v.cache.Close()
	}
	if v.audio != nil {
		if err := v.audio.Close(); err != nil {
			v.log.Warnf("closing audio: %v", err)
		}
	}
}
