package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/stewi1014/juliaset/export"
	"github.com/stewi1014/juliaset/fractal"
	"github.com/stewi1014/juliaset/settings"
)

const helpText = `commands:
  show                      print the current settings
  set <field> <value...>    change a setting; fields:
                              cx, cy, unit, iter, width, height, size WxH,
                              fill bright|black, color R G B,
                              multiplier, export-iter, name, supersample
  preview [overlay]         render the preview, optionally marking c
  export [path]             queue an export render in the background
  status                    show background export state
  save                      write settings to disk
  help                      show this text
  quit                      wait for queued exports and exit
`

// Controller is the interactive front end: it owns the settings, renders
// previews synchronously and hands exports to the pipeline.
type Controller struct {
	Settings     settings.Settings
	SettingsPath string
	PreviewPath  string

	// AutoPreview re-renders the preview after every change to the view.
	AutoPreview bool

	renderer fractal.Renderer
	pipeline *export.Pipeline
	log      *slog.Logger
	out      io.Writer

	previewElapsed time.Duration
	lastExport     *export.Result
}

func NewController(
	s settings.Settings,
	renderer fractal.Renderer,
	pipeline *export.Pipeline,
	log *slog.Logger,
	out io.Writer,
) *Controller {
	return &Controller{
		Settings:    s,
		AutoPreview: true,
		renderer:    renderer,
		pipeline:    pipeline,
		log:         log.With("component", "controller"),
		out:         out,
	}
}

// Run reads commands from in until quit, EOF or ctx is done. The pipeline is
// always shut down before Run returns.
func (c *Controller) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	defer c.close()

	for {
		c.pollResults()
		fmt.Fprint(c.out, "> ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			quit, err := c.Execute(line)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *Controller) close() {
	if n := c.pipeline.Pending(); n > 0 {
		fmt.Fprintf(c.out, "waiting for %d export(s)\n", n)
	}
	c.pipeline.Shutdown()
	c.pollResults()
}

// Execute runs one command line. quit reports whether the session should end.
func (c *Controller) Execute(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "help", "?":
		fmt.Fprint(c.out, helpText)
	case "show":
		c.show()
	case "set":
		return false, c.set(args)
	case "preview":
		overlay := len(args) > 0 && args[0] == "overlay"
		return false, c.preview(overlay)
	case "export":
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return false, c.export(path)
	case "status":
		c.status()
	case "save":
		if err := c.Settings.Save(c.SettingsPath); err != nil {
			return false, fmt.Errorf("saving settings: %w", err)
		}
		fmt.Fprintf(c.out, "settings written to %v\n", c.SettingsPath)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}
	return false, nil
}

func (c *Controller) show() {
	s := c.Settings
	p := s.Preview
	fmt.Fprintf(c.out, "c = %v %+vi\n", p.CX, p.CY)
	fmt.Fprintf(c.out, "unit width %v, fill %v, color %v %v %v\n", p.UnitWidth, p.Fill, s.Color.R, s.Color.G, s.Color.B)
	fmt.Fprintf(c.out, "preview %vx%v, %v iterations\n", p.Width, p.Height, p.MaxIterations)
	e := s.ExportOptions()
	fmt.Fprintf(c.out, "export %vx%v (x%v), %v iterations, supersample %v, to %q\n",
		e.Width, e.Height, s.ExportMultiplier, e.MaxIterations, s.Supersample, s.ExportName)
}

func (c *Controller) set(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: set <field> <value...>")
	}

	next := c.Settings
	field, values := args[0], args[1:]
	viewChanged := true

	var err error
	switch field {
	case "cx":
		next.Preview.CX, err = parseFloat(values)
	case "cy":
		next.Preview.CY, err = parseFloat(values)
	case "unit":
		next.Preview.UnitWidth, err = parseFloat(values)
	case "iter":
		next.Preview.MaxIterations, err = parseInt(values)
	case "width":
		next.Preview.Width, err = parseInt(values)
	case "height":
		next.Preview.Height, err = parseInt(values)
	case "size":
		next.Preview.Width, next.Preview.Height, err = parseSize(values)
	case "fill":
		next.Preview.Fill, err = fractal.ParseFillStyle(values[0])
	case "color":
		next.Color, err = parseColor(values)
	case "multiplier":
		viewChanged = false
		next.ExportMultiplier, err = parseInt(values)
	case "export-iter":
		viewChanged = false
		next.ExportIterations, err = parseInt(values)
	case "name":
		viewChanged = false
		next.ExportName = values[0]
	case "supersample":
		viewChanged = false
		next.Supersample, err = parseInt(values)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	if err != nil {
		return fmt.Errorf("%v: %w", field, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	c.Settings = next
	c.log.Debug("setting changed", "field", field, "value", strings.Join(values, " "))

	if viewChanged && c.AutoPreview {
		return c.preview(false)
	}
	return nil
}

func (c *Controller) preview(overlay bool) error {
	start := time.Now()
	raster, err := c.renderer.Render(c.Settings.Preview, c.Settings.Color)
	if err != nil {
		return fmt.Errorf("rendering preview: %w", err)
	}
	if overlay {
		raster = fractal.Overlay(raster, c.Settings.Preview)
	}
	c.previewElapsed = time.Since(start)

	if c.PreviewPath != "" {
		if err := export.Save(c.PreviewPath, raster); err != nil {
			return fmt.Errorf("writing preview: %w", err)
		}
	}
	fmt.Fprintf(c.out, "last preview render took %.2fms\n", float64(c.previewElapsed.Microseconds())/1000)
	return nil
}

func (c *Controller) export(path string) error {
	job := c.Settings.ExportJob(path)
	if err := export.CheckPath(job.Path); err != nil {
		return err
	}
	if err := c.pipeline.Submit(job); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "rendering %vx%v to %q in the background (%d queued)\n",
		job.Options.Width, job.Options.Height, job.Path, c.pipeline.Pending())
	return nil
}

func (c *Controller) status() {
	if n := c.pipeline.Pending(); n > 0 {
		fmt.Fprintf(c.out, "%d export(s) in progress\n", n)
		if fraction, ok := c.pipeline.Progress(); ok {
			fmt.Fprintf(c.out, "current export %.0f%% rendered\n", 100*fraction)
		}
	} else {
		fmt.Fprintln(c.out, "no exports in progress")
	}
	if c.lastExport == nil {
		fmt.Fprintln(c.out, "last exported render took NaNms")
	} else {
		fmt.Fprintf(c.out, "last exported render took %.2fms\n", c.lastExport.ElapsedMS())
	}
}

// pollResults reports every export that finished since the last call. It
// never blocks.
func (c *Controller) pollResults() {
	for {
		res, ok := c.pipeline.Poll()
		if !ok {
			return
		}
		c.lastExport = &res
		if res.Err != nil {
			fmt.Fprintf(c.out, "export to %q failed: %v\n", res.Path, res.Err)
			continue
		}
		fmt.Fprintf(c.out, "exported %q, render took %.2fms\n", res.Path, res.ElapsedMS())
	}
}

func parseFloat(values []string) (float64, error) {
	return strconv.ParseFloat(values[0], 64)
}

func parseInt(values []string) (int, error) {
	return strconv.Atoi(values[0])
}

func parseSize(values []string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.ToLower(values[0]), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q is not WxH", values[0])
	}
	if width, err = strconv.Atoi(w); err != nil {
		return 0, 0, err
	}
	if height, err = strconv.Atoi(h); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func parseColor(values []string) (fractal.Color, error) {
	if len(values) != 3 {
		return fractal.Color{}, errors.New("want three channel multipliers")
	}
	var ch [3]uint8
	for i, v := range values {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return fractal.Color{}, err
		}
		ch[i] = uint8(n)
	}
	return fractal.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}
