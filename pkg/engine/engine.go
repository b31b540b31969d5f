package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"glscene/internal/logger"
	"glscene/pkg/config"
	"glscene/pkg/gpu"
	"glscene/pkg/gpu/gldevice"
	"glscene/pkg/input"
	"glscene/pkg/signal"
)

// Game is driven by App. Update runs before the frame's RenderSignal, to
// which Render is connected.
type Game interface {
	Init(app *App) error
	Update(dt float32)
	Render(dt float32)
	Close()
}

// App owns the window, the graphics device and the frame loop
type App struct {
	// RenderSignal fires once per frame with dt in seconds
	RenderSignal signal.Event[float32]

	window *glfw.Window // nil when headless
	device gpu.Device
	input  *input.Input
	config *config.Config
	logger *logger.Logger

	isRunning  bool
	lastUpdate time.Time
	frameRate  int
	// headless apps stop after this many frames
	frameLimit int
	frames     int

	mu    sync.Mutex
	tasks []func()
}

// NewApp opens a window with an OpenGL 4.5 core context
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 5)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor
	if cfg.Window.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	dev, err := gldevice.New(log)
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}

	in := input.New()
	input.AttachGLFW(window, in)

	app := &App{
		window:    window,
		device:    dev,
		input:     in,
		config:    cfg,
		logger:    log,
		frameRate: cfg.Window.FrameRate,
	}
	width, height := window.GetFramebufferSize()
	in.OnFramebufferResize(width, height)
	dev.Viewport(0, 0, width, height)
	return app, nil
}

// NewHeadlessApp runs frames on an in-memory device with a fixed time
// step and stops after frames frames.
func NewHeadlessApp(cfg *config.Config, log *logger.Logger, frames int) *App {
	in := input.New()
	in.OnFramebufferResize(cfg.Window.Width, cfg.Window.Height)
	return &App{
		device:     gpu.NewMemoryDevice(),
		input:      in,
		config:     cfg,
		logger:     log,
		frameRate:  cfg.Window.FrameRate,
		frameLimit: max(frames, 1),
	}
}

func (a *App) Device() gpu.Device     { return a.device }
func (a *App) Input() *input.Input    { return a.input }
func (a *App) Config() *config.Config { return a.config }
func (a *App) Logger() *logger.Logger { return a.logger }
func (a *App) Headless() bool         { return a.window == nil }
func (a *App) Frames() int            { return a.frames }

// Post queues fn to run on the frame loop goroutine before the next update.
// It is safe to call from any goroutine.
func (a *App) Post(fn func()) {
	a.mu.Lock()
	a.tasks = append(a.tasks, fn)
	a.mu.Unlock()
}

func (a *App) runTasks() {
	a.mu.Lock()
	tasks := a.tasks
	a.tasks = nil
	a.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
}

// Stop ends the loop after the current frame
func (a *App) Stop() { a.isRunning = false }

// Run initializes g and drives it until the window closes, ESC is pressed,
// Stop is called or the headless frame budget is spent.
func (a *App) Run(g Game) error {
	if err := g.Init(a); err != nil {
		a.cleanup(nil)
		return fmt.Errorf("failed to initialize game: %w", err)
	}
	a.RenderSignal.Connect(g.Render)

	a.isRunning = true
	a.lastUpdate = time.Now()

	for a.isRunning && !a.shouldClose() {
		currentTime := time.Now()
		deltaTime := a.delta(currentTime)
		a.lastUpdate = currentTime

		a.runTasks()
		a.processInput()

		g.Update(deltaTime)
		a.RenderSignal.Fire(deltaTime)
		a.input.EndFrame()
		a.frames++

		if a.window != nil {
			a.window.SwapBuffers()
			glfw.PollEvents()
		}

		// Cap the frame rate
		if a.window != nil && a.frameRate > 0 {
			frameTime := time.Since(currentTime)
			targetFrameTime := time.Second / time.Duration(a.frameRate)
			if frameTime < targetFrameTime {
				time.Sleep(targetFrameTime - frameTime)
			}
		}
	}

	a.cleanup(g)
	return nil
}

func (a *App) shouldClose() bool {
	if a.window == nil {
		return a.frames >= a.frameLimit
	}
	return a.window.ShouldClose()
}

// delta is wall time when windowed and a fixed step when headless
func (a *App) delta(now time.Time) float32 {
	if a.window == nil {
		if a.frameRate > 0 {
			return 1 / float32(a.frameRate)
		}
		return 1.0 / 60
	}
	return float32(now.Sub(a.lastUpdate).Seconds())
}

func (a *App) processInput() {
	// Close when ESC is pressed
	if a.input.IsDown(input.KeyEscape) {
		a.isRunning = false
	}
}

func (a *App) cleanup(g Game) {
	a.logger.Info("Shutting down engine...")
	if g != nil {
		g.Close()
	}
	a.RenderSignal.Close()
	if err := a.device.Close(); err != nil {
		a.logger.Warnf("closing device: %v", err)
	}
	if a.window != nil {
		a.window.Destroy()
		glfw.Terminate()
	}
}
