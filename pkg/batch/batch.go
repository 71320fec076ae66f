// Package batch drives the compositor across multiple target images with
// bounded concurrency.
//
// Targets are partitioned into consecutive groups of the concurrency
// limit; all tasks in a group run concurrently, and the next group starts
// only after every task in the current group has settled. This group
// barrier is deliberately simpler to reason about than a continuous
// pipeline: at any instant at most C compositing tasks are in flight, and
// each task owns an independent output buffer, so no locking is needed.
//
// Per-image failures are isolated: one undecodable target produces a
// failure record for that image and never affects or aborts its siblings.
// Results always preserve the input ordering regardless of internal
// completion order.
package batch

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/compose"
	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/observability"
)

// Defaults for batch execution.
const (
	// DefaultConcurrency is the per-group concurrency bound.
	DefaultConcurrency = 6

	// DefaultMaxImages caps how many targets one batch may carry.
	DefaultMaxImages = 10
)

// Target is one encoded image to composite onto.
type Target struct {
	Name string
	Data []byte
}

// Result is the settled outcome for one target, at the same index as its
// input. Exactly one of Image or Err is set.
type Result struct {
	Index    int
	Name     string
	Image    *image.NRGBA
	Warnings []compose.Warning
	Err      error
}

// Failed reports whether this image's task failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Compositor is the per-image compositing dependency. *compose.Compositor
// satisfies it; tests substitute fakes.
type Compositor interface {
	Composite(ctx context.Context, target image.Image, cfg *brand.Config) (*image.NRGBA, []compose.Warning, error)
}

// Orchestrator runs batches. Configure it once and reuse it; it is
// stateless across runs.
type Orchestrator struct {
	compositor  Compositor
	logger      *log.Logger
	concurrency int
	maxImages   int
	squareCrop  bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency sets the per-group concurrency bound.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithMaxImages sets the batch size cap.
func WithMaxImages(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxImages = n
		}
	}
}

// WithAutoSquareCrop crops each target to a centered square of side
// min(width, height) before compositing.
func WithAutoSquareCrop(enabled bool) Option {
	return func(o *Orchestrator) { o.squareCrop = enabled }
}

// WithLogger sets the orchestrator's logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator around the given compositor.
func New(c Compositor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		compositor:  c,
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		concurrency: DefaultConcurrency,
		maxImages:   DefaultMaxImages,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run composites cfg onto every target and returns one Result per target,
// in input order. The returned error is non-nil only for invalid input
// (too many targets); execution failures, including cancellation, are
// captured per image and never escape.
func (o *Orchestrator) Run(ctx context.Context, targets []Target, cfg *brand.Config) ([]Result, error) {
	if len(targets) > o.maxImages {
		return nil, errors.New(errors.ErrCodeBatchSize, "batch of %d targets exceeds limit %d", len(targets), o.maxImages)
	}

	start := time.Now()
	results := make([]Result, len(targets))
	for i, tgt := range targets {
		results[i] = Result{Index: i, Name: tgt.Name}
	}

	group := 0
	for lo := 0; lo < len(targets); lo += o.concurrency {
		hi := min(lo+o.concurrency, len(targets))

		// Cancellation is checked once per group boundary; a cancelled
		// batch marks all remaining targets instead of erroring out.
		if err := ctx.Err(); err != nil {
			for i := lo; i < len(targets); i++ {
				results[i].Err = errors.Wrap(errors.ErrCodeCancelled, err, "batch cancelled before %q", targets[i].Name)
			}
			break
		}

		observability.Batch().OnGroupStart(ctx, group, hi-lo)
		o.logger.Debug("starting batch group", "group", group, "size", hi-lo)

		var g errgroup.Group
		for i := lo; i < hi; i++ {
			i := i
			g.Go(func() error {
				results[i] = o.runOne(ctx, i, targets[i], cfg)
				observability.Batch().OnImageComplete(ctx, i, results[i].Err)
				return nil
			})
		}
		// Tasks always return nil; failures live in their Result.
		_ = g.Wait()
		group++
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	observability.Batch().OnBatchComplete(ctx, len(targets), failed, time.Since(start))
	o.logger.Info("batch settled", "targets", len(targets), "failed", failed, "duration", time.Since(start).Round(time.Millisecond))

	return results, nil
}

// runOne decodes, optionally crops, and composites a single target.
// Every failure is folded into the Result.
func (o *Orchestrator) runOne(ctx context.Context, idx int, tgt Target, cfg *brand.Config) Result {
	res := Result{Index: idx, Name: tgt.Name}

	img, err := compose.DecodeTargetBytes(tgt.Data)
	if err != nil {
		res.Err = errors.Wrap(errors.ErrCodeTargetDecode, err, "target %q", tgt.Name)
		o.logger.Warn("target failed to decode", "target", tgt.Name, "err", err)
		return res
	}

	if o.squareCrop {
		img = compose.SquareCrop(img)
	}

	out, warnings, err := o.compositor.Composite(ctx, img, cfg)
	if err != nil {
		res.Err = err
		return res
	}
	res.Image = out
	res.Warnings = warnings
	return res
}
