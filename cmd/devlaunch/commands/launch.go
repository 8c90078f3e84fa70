package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/devlaunch/internal/config"
	"git.home.luguber.info/inful/devlaunch/internal/errors"
	"git.home.luguber.info/inful/devlaunch/internal/launcher"
	"git.home.luguber.info/inful/devlaunch/internal/metrics"
)

// CLI is the single devlaunch command: check, build if needed, serve.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: devlaunch.yaml in the working directory, optional)."`
	Verbose bool             `short:"v" help:"Enable verbose logging."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit."`

	Rebuild bool `help:"Force a rebuild even if a build already exists."`
	DryRun  bool `name:"dry-run" help:"Print the build decision and commands without running anything."`

	WorkDir         string        `name:"workdir" help:"Project directory (default: current directory)."`
	BuildDir        string        `name:"build-dir" help:"Build output directory, relative to the project (default: .next)."`
	BuildIDFile     string        `name:"build-id-file" help:"Marker file inside the build directory (default: BUILD_ID)."`
	PackageManager  string        `name:"package-manager" help:"Package manager used to run scripts (default: pnpm)."`
	BuildScript     string        `name:"build-script" help:"Script that produces the build (default: build)."`
	ServeScript     string        `name:"serve-script" help:"Script that starts the local server (default: start:local)."`
	ShutdownTimeout time.Duration `name:"shutdown-timeout" help:"Grace period for the server after an interrupt (default: 10s)."`
	LogFormat       string        `name:"log-format" help:"Log format: text or json (default: text)."`
	MetricsListen   string        `name:"metrics-listen" help:"Serve Prometheus metrics on this address while running (e.g. :9464)."`
}

func (c *CLI) overrides() config.Overrides {
	return config.Overrides{
		WorkDir:         c.WorkDir,
		BuildDir:        c.BuildDir,
		BuildIDFile:     c.BuildIDFile,
		PackageManager:  c.PackageManager,
		BuildScript:     c.BuildScript,
		ServeScript:     c.ServeScript,
		ShutdownTimeout: c.ShutdownTimeout,
		LogFormat:       c.LogFormat,
		MetricsListen:   c.MetricsListen,
		Verbose:         c.Verbose,
		Rebuild:         c.Rebuild,
	}
}

// configPath returns the file to load and whether the user named it.
func (c *CLI) configPath() (string, bool) {
	if c.Config != "" {
		return c.Config, true
	}
	return filepath.Join(c.WorkDir, config.DefaultFile), false
}

// LoadConfig resolves the effective configuration for this invocation.
func (c *CLI) LoadConfig() (*config.Config, error) {
	path, explicit := c.configPath()
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(c.overrides())
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *CLI) Run(g *Global) error {
	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log, g.stderr())
	slog.SetDefault(logger)

	l := launcher.New(cfg, g.runner()).
		WithLogger(logger).
		WithOutput(g.stdout(), g.stderr())
	if g != nil && g.Signals != nil {
		l = l.WithSignals(g.Signals)
	}

	if c.DryRun {
		return printPlan(g.stdout(), cfg, l.Plan())
	}

	if cfg.Metrics.Listen != "" {
		reg := prom.NewRegistry()
		srv, err := metrics.Listen(cfg.Metrics.Listen, reg)
		if err != nil {
			return errors.Wrap(err, errors.CategoryRuntime, errors.SeverityFatal, "metrics listener").
				WithContext("addr", cfg.Metrics.Listen)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logger.Info("Serving metrics", slog.String("addr", srv.Addr()))
		l = l.WithRecorder(metrics.NewPrometheusRecorder(reg))
	}

	return l.Run(context.Background())
}

func printPlan(w io.Writer, cfg *config.Config, d launcher.Decision) error {
	state := func(ok bool) string {
		if ok {
			return "present"
		}
		return "missing"
	}
	action := "serve existing build"
	if d.ShouldBuild {
		action = "build, then serve"
	}
	_, err := fmt.Fprintf(w,
		"Build directory:  %s (%s)\nBuild identifier: %s (%s)\nDecision:         %s (%s)\nBuild command:    %s\nServe command:    %s\n",
		d.Presence.Dir, state(d.Presence.DirExists),
		d.Presence.IDFile, state(d.Presence.FileExists),
		action, d.Reason,
		cfg.BuildCommand(), cfg.ServeCommand())
	return err
}
