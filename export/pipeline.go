// Package export runs high resolution renders on a single background worker
// so the caller's interactive loop never waits on them.
package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stewi1014/juliaset/fractal"
	"github.com/stewi1014/juliaset/logger"
)

var ErrClosed = errors.New("export pipeline is closed")

type Option func(*Pipeline)

// WithRenderer sets the renderer used for jobs.
func WithRenderer(r fractal.Renderer) Option {
	return func(p *Pipeline) {
		p.renderer = r
	}
}

// WithEncoder replaces Save as the function that writes finished images.
func WithEncoder(encode func(path string, img image.Image) error) Option {
	return func(p *Pipeline) {
		p.encode = encode
	}
}

// Pipeline executes Jobs one at a time, in submission order, on one worker
// goroutine. Submit and Poll never block.
type Pipeline struct {
	ctx      context.Context
	log      *slog.Logger
	renderer fractal.Renderer
	encode   func(path string, img image.Image) error

	jobs    *queue[Job]
	results *queue[Result]
	pending atomic.Int64

	// Row progress of the job being rendered; total is 0 when idle.
	rowsDone  atomic.Int64
	rowsTotal atomic.Int64

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// New starts a pipeline. Cancelling ctx tears it down: the job in hand is
// finished and anything still queued is dropped.
func New(ctx context.Context, log *slog.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}

	p := &Pipeline{
		ctx:     ctx,
		log:     log.With("component", "export"),
		encode:  Save,
		jobs:    newQueue[Job](),
		results: newQueue[Result](),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	go p.run()
	return p
}

// Submit queues job behind any jobs already submitted.
func (p *Pipeline) Submit(job Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid export job: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, context.Cause(p.ctx))
	}

	p.pending.Add(1)
	p.jobs.push(job)
	p.log.Debug("export queued", "job_id", job.ID.String(), "path", job.Path, "pending", p.pending.Load())
	return nil
}

// Poll returns the oldest result not yet collected, if any.
func (p *Pipeline) Poll() (Result, bool) {
	return p.results.tryPop()
}

// Pending returns the number of submitted jobs that have not finished.
func (p *Pipeline) Pending() int {
	return int(p.pending.Load())
}

// Progress reports the fraction of rows rendered for the job in hand. ok is
// false when the worker is idle.
func (p *Pipeline) Progress() (fraction float64, ok bool) {
	total := p.rowsTotal.Load()
	if total == 0 {
		return 0, false
	}
	return min(float64(p.rowsDone.Load())/float64(total), 1), true
}

// Shutdown stops accepting jobs and waits until every job submitted before
// it has been executed. Results of those jobs remain available to Poll.
func (p *Pipeline) Shutdown() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		p.jobs.push(Job{stop: true})
	}
	p.mu.Unlock()

	<-p.done
}

// Done is closed once the worker has exited.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

func (p *Pipeline) run() {
	defer close(p.done)

	for {
		job, ok := p.next()
		if !ok {
			dropped := p.jobs.len()
			p.pending.Store(0)
			p.log.Warn("export worker torn down", "cause", context.Cause(p.ctx), "dropped", dropped)
			return
		}
		if job.stop {
			p.log.Debug("export worker stopped")
			return
		}

		p.results.push(p.execute(job))
		p.pending.Add(-1)
	}
}

// next blocks until a job is available or the pipeline context ends.
func (p *Pipeline) next() (Job, bool) {
	for {
		if p.ctx.Err() != nil {
			return Job{}, false
		}
		if job, ok := p.jobs.tryPop(); ok {
			return job, true
		}

		select {
		case <-p.jobs.ready:
		case <-p.ctx.Done():
		}
	}
}

func (p *Pipeline) execute(job Job) Result {
	log := p.log.With("job_id", job.ID.String(), "path", job.Path)
	log.Info("export started",
		"width", job.Options.Width,
		"height", job.Options.Height,
		"max_iterations", job.Options.MaxIterations,
		"supersample", job.supersample(),
	)

	p.rowsDone.Store(0)
	p.rowsTotal.Store(int64(job.Options.Height * job.supersample()))
	defer p.rowsTotal.Store(0)

	start := time.Now()
	err := p.renderAndSave(job)
	res := Result{
		JobID:   job.ID,
		Path:    job.Path,
		Elapsed: time.Since(start),
		Err:     err,
	}

	if err != nil {
		log.Error("export failed", "error", err.Error(), "elapsed_ms", res.ElapsedMS())
	} else {
		log.Info("export finished", "elapsed_ms", res.ElapsedMS())
	}
	return res
}

func (p *Pipeline) renderAndSave(job Job) (err error) {
	defer catchPanic(&err)

	renderer := p.renderer
	renderer.Rows = &p.rowsDone
	img, err := renderer.RenderSupersampled(job.Options, job.Color, job.supersample())
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return p.encode(job.Path, img)
}
