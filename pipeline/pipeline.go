/*
Package pipeline runs one visualization request end to end: it resolves a
fresh case context for the requested level, clips the walls, resolves the
supply flow and the latest time step, computes the metric on the sampled
plane and packs the three representations.
*/
package pipeline

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/smartair/casedir"
	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/geometry"
	"github.com/notargets/smartair/payload"
	"github.com/notargets/smartair/readers"
)

type Config struct {
	Root   string // directory holding the cases
	Logger log.FieldLogger
}

func (cfg *Config) logger() log.FieldLogger {
	if cfg.Logger == nil {
		return log.StandardLogger()
	}
	return cfg.Logger
}

// View is everything the front end needs to draw one request
type View struct {
	Request       Request                 `json:"request"`
	Walls         *payload.Representation `json:"walls"`
	Edges         *payload.Representation `json:"edges"`
	Plane         *payload.Representation `json:"plane"`
	Background    []float64               `json:"background"`
	FreshAirLabel string                  `json:"freshAirLabel"`
	CeilingHeight float64                 `json:"ceilingHeight"`
	TotalFlowRate float64                 `json:"totalFlowRate,omitempty"`
	Timestep      string                  `json:"timestep"`

	Sources Sources `json:"-"`
}

// Sources are the meshes the representations were packed from
type Sources struct {
	Walls *geometry.Walls
	Plane *fields.Field
}

/*
Run executes req against the case tree under cfg.Root. Nothing is shared
between calls, so Run may be called concurrently. The context is only
checked between stages.
*/
func Run(ctx context.Context, cfg *Config, req Request) (view *View, err error) {
	var (
		start = time.Now()
		l     = cfg.logger().WithFields(log.Fields{
			"case":  req.Case,
			"level": req.Level,
			"field": req.Field,
		})
	)
	defer func() {
		if err != nil {
			l.WithError(err).Warn("request failed")
			return
		}
		l.WithField("elapsed", time.Since(start)).Info("view ready")
	}()

	req = req.withDefaults()
	if err = req.Validate(); err != nil {
		return
	}
	var c *casedir.Case
	if c, err = casedir.Resolve(cfg.Root, req.Case, req.Level); err != nil {
		return
	}

	var walls *geometry.Walls
	if walls, err = geometry.Clip(c, req.Geometry); err != nil {
		return
	}
	l.WithFields(log.Fields{
		"ceilingHeight": walls.CeilingHeight,
		"triangles":     len(walls.Surface.Triangles),
		"edges":         len(walls.Edges.Lines),
	}).Debug("walls clipped")
	if err = ctx.Err(); err != nil {
		return
	}

	view = &View{
		Request:       req,
		Background:    payload.White,
		FreshAirLabel: FreshAirLabel(req.FreshAir),
		CeilingHeight: walls.CeilingHeight,
	}
	if req.Field.Derived() {
		if view.TotalFlowRate, err = c.ResolveFlowRate(); err != nil {
			return nil, err
		}
		l.WithField("totalFlowRate", view.TotalFlowRate).Debug("supply flow resolved")
	}

	if view.Timestep, err = c.LatestTimestep(); err != nil {
		return nil, err
	}
	planeFile := c.FieldFile(view.Timestep, req.Field.Spec().Primitive)
	plane, err := readers.ReadSurfaceFile(planeFile)
	if err != nil {
		return nil, err
	}
	l.WithFields(log.Fields{"timestep": view.Timestep, "file": planeFile}).Debug("field plane loaded")
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	var field *fields.Field
	if field, err = fields.Compute(plane, req.Field, c, req.FreshAir); err != nil {
		return nil, err
	}
	if view.Walls, view.Edges, view.Plane, err = pack(req, walls, field); err != nil {
		return nil, err
	}
	view.Sources = Sources{Walls: walls, Plane: field}
	return
}

func pack(req Request, walls *geometry.Walls, field *fields.Field) (w, e, p *payload.Representation, err error) {
	var ws, es, ps *payload.MeshState
	if ws, err = payload.Pack(walls.Surface, ""); err != nil {
		return
	}
	if es, err = payload.Pack(walls.Edges, ""); err != nil {
		return
	}
	if ps, err = payload.Pack(field.Mesh, field.ArrayName); err != nil {
		return
	}
	w = payload.Walls(req.Geometry, ws, req.Opacity)
	e = payload.Edges(req.Geometry+"edges", es, req.Opacity)
	p = payload.FieldPlane(ps, field.ColorPreset, field.DisplayRange)
	return
}
