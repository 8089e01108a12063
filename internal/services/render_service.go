package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"paydash/internal/core"
	applog "paydash/internal/log"
	"paydash/internal/report"
)

const recordTimeout = 5 * time.Second

// Recorder is told about every finished render cycle.
type Recorder interface {
	Record(ctx context.Context, o core.RenderOutcome) error
}

// Result is what one render cycle produced.
type Result struct {
	ID      string
	Report  report.Report
	Records []core.PaymentRecord
}

// RenderService runs load, aggregate and build as one cycle.
// Simultaneous calls share a single cycle; nothing survives it.
type RenderService struct {
	source    string
	generator report.Generator
	recorders []Recorder
	logger    *applog.Logger
	renderLog *applog.RenderLogger

	group singleflight.Group
	newID func() string
	now   func() time.Time
}

// NewRenderService creates a service reading source on every render.
// Nil recorders are ignored.
func NewRenderService(source string, gen report.Generator, logger *applog.Logger, recorders ...Recorder) *RenderService {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &RenderService{
		source:    source,
		generator: gen,
		logger:    logger.WithComponent(applog.ComponentReport),
		renderLog: applog.NewRenderLogger(logger),
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, r := range recorders {
		if r != nil {
			s.recorders = append(s.recorders, r)
		}
	}
	return s
}

// Source returns the input file path.
func (s *RenderService) Source() string {
	return s.source
}

// Variant returns the report variant this service builds.
func (s *RenderService) Variant() report.Variant {
	return s.generator.Variant
}

// Render reads the source and builds a fresh report. On failure the
// returned Result still carries the render ID.
func (s *RenderService) Render(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	v, err, _ := s.group.Do(s.source, func() (any, error) {
		return s.render(ctx)
	})
	res, _ := v.(Result)
	return res, err
}

func (s *RenderService) render(ctx context.Context) (Result, error) {
	id := s.newID()
	start := s.now()
	outcome := core.RenderOutcome{
		ID:      id,
		Source:  s.source,
		Variant: string(s.generator.Variant),
		At:      start.UTC(),
	}

	records, err := report.LoadFile(s.source)
	if err != nil {
		outcome.Status = core.StatusFailed
		outcome.ErrorKind = core.Kind(err)
		outcome.Duration = s.now().Sub(start)
		s.renderLog.LogFailed(ctx, id, s.source, outcome.Variant, err, outcome.ErrorKind, outcome.Duration)
		s.notify(ctx, outcome)
		return Result{ID: id}, fmt.Errorf("render %s: %w", id, err)
	}

	rep := s.generator.Build(records)

	outcome.Status = core.StatusOK
	outcome.Records = len(records)
	outcome.Users = report.Headline(records).Users
	outcome.Duration = s.now().Sub(start)
	s.renderLog.LogRendered(ctx, id, s.source, outcome.Variant, outcome.Records, outcome.Users, outcome.Duration)
	s.notify(ctx, outcome)

	return Result{ID: id, Report: rep, Records: records}, nil
}

// notify hands the outcome to every recorder. A recorder failure is
// logged and does not change the render result.
func (s *RenderService) notify(ctx context.Context, o core.RenderOutcome) {
	if len(s.recorders) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	for _, r := range s.recorders {
		if err := r.Record(ctx, o); err != nil {
			s.logger.WarnContext(ctx, "Failed to record render outcome",
				applog.FieldRenderID, o.ID,
				applog.FieldOperation, applog.OpRecord,
				applog.FieldError, err.Error())
		}
	}
}

// Close closes every recorder that holds resources.
func (s *RenderService) Close() error {
	var errs []error
	for _, r := range s.recorders {
		if c, ok := r.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close render service: %w", errors.Join(errs...))
	}
	return nil
}
