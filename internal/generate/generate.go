// Package generate runs the artifact emitters over one schema index and
// operation list and collects their output.
package generate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/emitter/componentemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/fixtureemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/hookemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/mockemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/serviceemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/typeemitter"
	"github.com/mark3labs/swagger2client/internal/emitter/validatoremitter"
	"github.com/mark3labs/swagger2client/internal/emitter/viewemitter"
	"github.com/mark3labs/swagger2client/internal/render"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Emitters maps every kind to its emitter.
var Emitters = map[emitter.Kind]emitter.Emitter{
	emitter.KindTypes:      emitter.Func{K: emitter.KindTypes, F: typeemitter.Emit},
	emitter.KindSchemas:    emitter.Func{K: emitter.KindSchemas, F: validatoremitter.Emit},
	emitter.KindServices:   emitter.Func{K: emitter.KindServices, F: serviceemitter.Emit},
	emitter.KindViews:      emitter.Func{K: emitter.KindViews, F: viewemitter.Emit},
	emitter.KindHooks:      emitter.Func{K: emitter.KindHooks, F: hookemitter.Emit},
	emitter.KindComponents: emitter.Func{K: emitter.KindComponents, F: componentemitter.Emit},
	emitter.KindMocks:      emitter.Func{K: emitter.KindMocks, F: mockemitter.Emit},
	emitter.KindFixtures:   emitter.Func{K: emitter.KindFixtures, F: fixtureemitter.Emit},
}

// Stages orders the kinds. Kinds of one stage run concurrently; a stage
// starts only after the previous one finished. Hooks and components build
// on services and schemas.
var Stages = [][]emitter.Kind{
	{emitter.KindTypes, emitter.KindSchemas, emitter.KindServices, emitter.KindViews},
	{emitter.KindHooks, emitter.KindComponents},
	{emitter.KindMocks, emitter.KindFixtures},
}

// EventType names a generation event.
type EventType string

const (
	GenerationStarted   EventType = "generation_started"
	GenerationCompleted EventType = "generation_completed"
)

// Event reports the progress of one kind.
type Event struct {
	Type      EventType
	Kind      emitter.Kind
	Artifacts int
	Warnings  int
	Duration  time.Duration
}

type options struct {
	kinds    map[emitter.Kind]bool
	emitOpts emitter.Options
	renderer *render.Renderer
	logger   *zap.Logger
	events   chan<- Event
}

// Option configures Generate.
type Option func(*options)

// WithKinds limits generation to kinds. No kinds means every kind.
func WithKinds(kinds ...emitter.Kind) Option {
	return func(o *options) {
		if len(kinds) == 0 {
			return
		}
		o.kinds = make(map[emitter.Kind]bool, len(kinds))
		for _, k := range kinds {
			o.kinds[k] = true
		}
	}
}

// WithOptions sets the emitter options. The default is emitter.DefaultOptions.
func WithOptions(opts emitter.Options) Option { return func(o *options) { o.emitOpts = opts } }

// WithRenderer sets the template renderer, typically one built with
// overrides.
func WithRenderer(r *render.Renderer) Option { return func(o *options) { o.renderer = r } }

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithEvents publishes start and completion events of every kind to ch.
// Sends never block; events are dropped when ch is full.
func WithEvents(ch chan<- Event) Option { return func(o *options) { o.events = ch } }

// Result is everything one run produced.
type Result struct {
	Artifacts *emitter.ArtifactSet
	// Warnings are the recoverable errors of every emitter, in kind order.
	Warnings []error
}

// Counts returns the number of artifacts per kind.
func (r *Result) Counts() map[emitter.Kind]int {
	counts := make(map[emitter.Kind]int)
	for _, a := range r.Artifacts.Artifacts() {
		counts[a.Kind]++
	}
	return counts
}

// Generate runs the enabled emitters over idx and ops. The shared inputs
// are only read. Output is identical across runs for identical inputs.
func Generate(ctx context.Context, idx *spec.SchemaIndex, ops []spec.OperationRecord, opts ...Option) (*Result, error) {
	o := options{emitOpts: emitter.DefaultOptions(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if idx == nil {
		return nil, fmt.Errorf("generate: nil schema index")
	}
	in := &emitter.Input{Index: idx, Operations: ops, Options: o.emitOpts, Renderer: o.renderer}

	outputs := make(map[emitter.Kind]*emitter.Output)
	for _, stage := range Stages {
		var enabled []emitter.Kind
		for _, k := range stage {
			if o.kinds == nil || o.kinds[k] {
				enabled = append(enabled, k)
			}
		}
		results := make([]*emitter.Output, len(enabled))
		g, gctx := errgroup.WithContext(ctx)
		for i, kind := range enabled {
			g.Go(func() error {
				out, err := o.run(gctx, kind, in)
				if err != nil {
					return err
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i, kind := range enabled {
			outputs[kind] = results[i]
		}
	}

	res := &Result{Artifacts: emitter.NewArtifactSet()}
	for _, kind := range emitter.AllKinds {
		out, ok := outputs[kind]
		if !ok {
			continue
		}
		res.Artifacts.AddAll(out.Artifacts)
		res.Warnings = append(res.Warnings, out.Warnings...)
	}
	return res, nil
}

func (o *options) run(ctx context.Context, kind emitter.Kind, in *emitter.Input) (*emitter.Output, error) {
	e, ok := Emitters[kind]
	if !ok {
		return nil, fmt.Errorf("generate: no emitter for kind %q", kind)
	}
	log := o.logger.With(zap.String("kind", string(kind)))
	o.publish(Event{Type: GenerationStarted, Kind: kind})
	log.Debug("emitting")

	start := time.Now()
	out, err := e.Emit(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", kind, err)
	}
	elapsed := time.Since(start)
	for _, w := range out.Warnings {
		log.Warn("recoverable emit error", zap.Error(w))
	}
	log.Info("emitted",
		zap.Int("artifacts", len(out.Artifacts)),
		zap.Int("warnings", len(out.Warnings)),
		zap.Duration("duration", elapsed),
	)
	o.publish(Event{Type: GenerationCompleted, Kind: kind, Artifacts: len(out.Artifacts), Warnings: len(out.Warnings), Duration: elapsed})
	return out, nil
}

func (o *options) publish(ev Event) {
	if o.events == nil {
		return
	}
	select {
	case o.events <- ev:
	default:
	}
}
