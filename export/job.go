package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stewi1014/juliaset/fractal"
)

// Job is one export request. It is copied into the pipeline on Submit and
// executed exactly once.
type Job struct {
	ID      uuid.UUID
	Path    string
	Options fractal.Options
	Color   fractal.Color

	// Supersample renders at this many times the resolution per axis and
	// scales down before encoding. 0 and 1 both disable it.
	Supersample int

	stop bool
}

func NewJob(path string, opts fractal.Options, c fractal.Color) Job {
	return Job{
		ID:          uuid.New(),
		Path:        path,
		Options:     opts,
		Color:       c,
		Supersample: 1,
	}
}

func (j Job) Validate() error {
	if j.Path == "" {
		return errors.New("export path is empty")
	}
	if err := j.Options.Validate(); err != nil {
		return err
	}
	if s := j.supersample(); s > fractal.MaxSupersample {
		return fmt.Errorf("%w: supersample factor must be at most %v, got %v", fractal.ErrInvalidOptions, fractal.MaxSupersample, s)
	}
	ss := j.Options
	ss.Width *= j.supersample()
	ss.Height *= j.supersample()
	if err := ss.Validate(); err != nil {
		return fmt.Errorf("supersampled size: %w", err)
	}
	return nil
}

func (j Job) supersample() int {
	if j.Supersample < 1 {
		return 1
	}
	return j.Supersample
}

// Result reports a finished Job. Err is set when rendering or writing the
// file failed.
type Result struct {
	JobID   uuid.UUID
	Path    string
	Elapsed time.Duration
	Err     error
}

// ElapsedMS returns the wall-clock time taken by the job in milliseconds.
func (r Result) ElapsedMS() float64 {
	return float64(r.Elapsed.Microseconds()) / 1000
}
