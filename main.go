package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gops/agent"

	"github.com/stewi1014/juliaset/export"
	"github.com/stewi1014/juliaset/fractal"
	"github.com/stewi1014/juliaset/logger"
	"github.com/stewi1014/juliaset/settings"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	logCfg := logger.DefaultConfig()
	logCfg.Output = stderr

	flags := flag.NewFlagSet("julia", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: julia [flags] [render [path]]\n\n")
		fmt.Fprintf(flags.Output(), "Without a command, starts an interactive session on stdin.\n\n")
		flags.PrintDefaults()
	}
	settingsPath := flags.String("settings", "julia.json", "settings file, created by the save command")
	previewPath := flags.String("preview", "preview.png", "file the preview render is written to, empty to skip")
	workers := flags.Int("workers", 0, "rows rendered in parallel, 0 for one per CPU")
	manual := flags.Bool("manual-preview", false, "only render the preview on the preview command")
	gops := flags.Bool("gops", false, "start the gops diagnostics agent")
	flags.StringVar(&logCfg.Level, "log-level", logCfg.Level, "debug, info, warn or error")
	flags.StringVar(&logCfg.Format, "log-format", logCfg.Format, "text or json")
	if err := flags.Parse(args); err != nil {
		return err
	}

	log := logger.New(logCfg)

	if *gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fmt.Errorf("starting gops agent: %w", err)
		}
		defer agent.Close()
	}

	s, err := settings.Load(*settingsPath)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	renderer := fractal.Renderer{Workers: *workers}
	pipeline := export.New(ctx, log, export.WithRenderer(renderer))

	switch cmd := flags.Arg(0); cmd {
	case "render":
		return renderOnce(pipeline, s, flags.Arg(1), stdout, log)
	case "":
		c := NewController(s, renderer, pipeline, log, stdout)
		c.SettingsPath = *settingsPath
		c.PreviewPath = *previewPath
		c.AutoPreview = !*manual
		return c.Run(ctx, stdin)
	default:
		pipeline.Shutdown()
		flags.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// renderOnce exports the current settings and waits for the result.
func renderOnce(pipeline *export.Pipeline, s settings.Settings, path string, stdout io.Writer, log *slog.Logger) error {
	job := s.ExportJob(path)
	if err := export.CheckPath(job.Path); err != nil {
		pipeline.Shutdown()
		return err
	}
	if err := pipeline.Submit(job); err != nil {
		pipeline.Shutdown()
		return err
	}
	log.Debug("waiting for export", "job_id", job.ID.String())
	pipeline.Shutdown()

	res, ok := pipeline.Poll()
	if !ok {
		return errors.New("export interrupted")
	}
	if res.Err != nil {
		return fmt.Errorf("export to %v: %w", res.Path, res.Err)
	}
	fmt.Fprintf(stdout, "exported %q, render took %.2fms\n", res.Path, res.ElapsedMS())
	return nil
}
