// Package settings holds the controller's persistent state: the preview
// render options, the palette and the export overrides.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/stewi1014/juliaset/export"
	"github.com/stewi1014/juliaset/fractal"
)

type Settings struct {
	Preview fractal.Options `json:"preview"`
	Color   fractal.Color   `json:"color"`

	// ExportMultiplier scales the preview resolution for exports.
	ExportMultiplier int    `json:"export_multiplier"`
	ExportIterations int    `json:"export_iterations"`
	ExportName       string `json:"export_name"`
	Supersample      int    `json:"supersample"`
}

func Default() Settings {
	return Settings{
		Preview: fractal.Options{
			Width:         512,
			Height:        512,
			UnitWidth:     4.0,
			MaxIterations: 128,
			CX:            -0.981,
			CY:            -0.277,
			Fill:          fractal.Bright,
		},
		Color:            fractal.Color{R: 12, G: 5, B: 10},
		ExportMultiplier: 8,
		ExportIterations: 512,
		ExportName:       "julia_set.png",
		Supersample:      1,
	}
}

// ExportOptions returns the options an export of the current preview uses.
func (s Settings) ExportOptions() fractal.Options {
	opts := s.Preview
	opts.Width *= s.ExportMultiplier
	opts.Height *= s.ExportMultiplier
	opts.MaxIterations = s.ExportIterations
	return opts
}

// ExportJob builds the job for exporting to path, or to ExportName when path
// is empty.
func (s Settings) ExportJob(path string) export.Job {
	if path == "" {
		path = s.ExportName
	}
	job := export.NewJob(path, s.ExportOptions(), s.Color)
	job.Supersample = s.Supersample
	return job
}

func (s Settings) Validate() error {
	if err := s.Preview.Validate(); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if s.ExportMultiplier < 1 {
		return fmt.Errorf("export multiplier must be at least 1, got %v", s.ExportMultiplier)
	}
	if s.Supersample < 1 || s.Supersample > fractal.MaxSupersample {
		return fmt.Errorf("supersample must be in [1, %v], got %v", fractal.MaxSupersample, s.Supersample)
	}
	if err := export.CheckPath(s.ExportName); err != nil {
		return fmt.Errorf("export name: %w", err)
	}
	if err := s.ExportOptions().Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// Load reads settings from path. A missing file yields Default.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}

	if err := sonic.ConfigStd.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("parsing %v: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("%v: %w", path, err)
	}
	return s, nil
}

// Save writes s to path, replacing any existing file only once the new one
// is fully written.
func (s Settings) Save(path string) error {
	data, err := sonic.ConfigStd.MarshalIndent(s, "", "\t")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
