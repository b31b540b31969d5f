package engine

import (
	"errors"

	"glscene/internal/logger"
	"glscene/pkg/render"
	"glscene/pkg/scene"
)

// RenderServer draws a scene: it clears through the environment, binds the
// camera and environment blocks, then draws every renderer once per light.
type RenderServer struct {
	// Grid draws the ground grid after the scene
	Grid bool

	cache  *render.Cache
	logger *logger.Logger
	passes int
}

// NewRenderServer draws with the techniques and materials of cache
func NewRenderServer(cache *render.Cache, log *logger.Logger) *RenderServer {
	if log == nil {
		log = logger.Default()
	}
	return &RenderServer{cache: cache, logger: log}
}

// Passes returns how many light passes the last Render issued
func (r *RenderServer) Passes() int { return r.passes }

// Render draws s. Errors from single renderers do not stop the frame; they
// are joined and returned.
func (r *RenderServer) Render(s *scene.Scene) error {
	s.Environment.Render()
	s.Camera().Bind(render.BindingCamera)
	s.Environment.Bind(render.BindingEnvironment)

	renderers := s.Renderers()
	var errs []error
	drawAll := func() {
		for _, rd := range renderers {
			if err := rd.Draw(true); err != nil {
				errs = append(errs, err)
			}
		}
	}

	lights := s.Lights()
	r.passes = 0
	if len(lights) == 0 {
		// unlit scenes still show their geometry
		drawAll()
		r.passes = 1
	}
	for _, l := range lights {
		l.Bind(render.BindingLight)
		drawAll()
		r.passes++
	}

	if r.Grid {
		if err := r.cache.DrawGrid(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
