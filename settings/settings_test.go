package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stewi1014/juliaset/fractal"
)

func TestDefault(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	opts := s.ExportOptions()
	if opts.Width != 4096 || opts.Height != 4096 || opts.MaxIterations != 512 {
		t.Errorf("export options = %+v", opts)
	}
	if opts.UnitWidth != s.Preview.UnitWidth || opts.CX != s.Preview.CX || opts.Fill != s.Preview.Fill {
		t.Errorf("export changed the view: %+v", opts)
	}
	if s.Preview.Width != 512 || s.Preview.MaxIterations != 128 {
		t.Errorf("ExportOptions modified the preview: %+v", s.Preview)
	}
}

func TestExportJob(t *testing.T) {
	s := Default()
	s.Supersample = 2

	job := s.ExportJob("")
	if job.Path != "julia_set.png" || job.Supersample != 2 || job.Options != s.ExportOptions() || job.Color != s.Color {
		t.Errorf("job = %+v", job)
	}
	if other := s.ExportJob("other.tiff"); other.Path != "other.tiff" || other.ID == job.ID {
		t.Errorf("job = %+v", other)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "julia.json")

	s := Default()
	s.Preview.CX = 0.285
	s.Preview.CY = 0.01
	s.Preview.Fill = fractal.Black
	s.Color = fractal.Color{R: 1, G: 2, B: 3}
	s.ExportName = "big.tiff"
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"black"`) {
		t.Errorf("fill style not written as text:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != s {
		t.Errorf("loaded %+v, want %+v", loaded, s)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s, err := Load(filepath.Join(t.TempDir(), "none.json"))
		if err != nil {
			t.Fatal(err)
		}
		if s != Default() {
			t.Errorf("got %+v, want defaults", s)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "partial.json")
		os.WriteFile(path, []byte(`{"export_multiplier": 2}`), 0o644)
		s, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		want := Default()
		want.ExportMultiplier = 2
		if s != want {
			t.Errorf("got %+v", s)
		}
	})

	for name, body := range map[string]string{
		"malformed":        `{"preview": `,
		"bad fill":         `{"preview": {"fill_style": "grey"}}`,
		"zero unit width":  `{"preview": {"width": 64, "height": 64, "unit_width": 0, "max_iterations": 8}}`,
		"zero multiplier":  `{"export_multiplier": 0}`,
		"bad export name":  `{"export_name": "out.gif"}`,
		"supersample zero": `{"supersample": 0}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			os.WriteFile(path, []byte(body), 0o644)
			s, err := Load(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if s != Default() {
				t.Errorf("failed load returned %+v, want defaults", s)
			}
		})
	}
}
