// Package launcher runs the check, build, serve sequence for a local
// development server and relays interrupts to the server process.
package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/devlaunch/internal/buildstate"
	"git.home.luguber.info/inful/devlaunch/internal/config"
	"git.home.luguber.info/inful/devlaunch/internal/errors"
	"git.home.luguber.info/inful/devlaunch/internal/logfields"
	"git.home.luguber.info/inful/devlaunch/internal/metrics"
	"git.home.luguber.info/inful/devlaunch/internal/process"
)

// Launcher owns at most one child process at a time.
type Launcher struct {
	cfg      *config.Config
	runner   process.Runner
	signals  SignalSource
	recorder metrics.Recorder
	logger   *slog.Logger
	out      io.Writer
	errOut   io.Writer
}

// New creates a launcher with OS signals, no metrics, and the default logger.
func New(cfg *config.Config, runner process.Runner) *Launcher {
	return &Launcher{
		cfg:      cfg,
		runner:   runner,
		signals:  NewOSSignals(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		out:      os.Stdout,
		errOut:   os.Stderr,
	}
}

// WithSignals replaces the interrupt subscription (tests).
func (l *Launcher) WithSignals(s SignalSource) *Launcher {
	l.signals = s
	return l
}

// WithRecorder sets the metrics recorder.
func (l *Launcher) WithRecorder(r metrics.Recorder) *Launcher {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	l.recorder = r
	return l
}

// WithLogger sets the structured logger.
func (l *Launcher) WithLogger(logger *slog.Logger) *Launcher {
	l.logger = logger
	return l
}

// WithOutput sets where status lines go. Failures go to errOut.
func (l *Launcher) WithOutput(out, errOut io.Writer) *Launcher {
	l.out, l.errOut = out, errOut
	return l
}

// Plan probes the filesystem and decides whether to build.
func (l *Launcher) Plan() Decision {
	p := buildstate.Probe(l.cfg.BuildDirPath(), l.cfg.BuildIDPath())
	return Decide(p, l.cfg.Rebuild)
}

// Run executes the full sequence. A nil error means exit code 0; otherwise
// the error carries the code to exit with (see errors.CLIErrorAdapter).
func (l *Launcher) Run(ctx context.Context) error {
	log := l.logger.With(logfields.RunID(uuid.NewString()))
	d := l.Plan()
	log.Debug("Build presence checked",
		logfields.Path(d.Presence.IDFile),
		slog.Bool("dir_exists", d.Presence.DirExists),
		slog.Bool("id_file_exists", d.Presence.FileExists),
		logfields.Reason(string(d.Reason)))

	if d.ShouldBuild {
		if err := l.build(ctx, log, d); err != nil {
			return err
		}
	} else {
		l.say("Existing build found in %s, skipping build", l.cfg.BuildDir)
		l.recorder.IncStageResult(metrics.StageBuild, metrics.ResultSkipped)
	}

	return l.serve(ctx, log)
}

type waitResult struct {
	exit process.Exit
	err  error
}

func wait(p process.Process) <-chan waitResult {
	done := make(chan waitResult, 1)
	go func() {
		exit, err := p.Wait()
		done <- waitResult{exit: exit, err: err}
	}()
	return done
}

func (l *Launcher) build(ctx context.Context, log *slog.Logger, d Decision) error {
	if d.Reason == ReasonRebuildRequested {
		l.say("Rebuild requested, building...")
	} else {
		l.say("No build found in %s, building...", l.cfg.BuildDir)
	}

	spec := l.spec(l.cfg.BuildCommand())
	log = log.With(logfields.Stage(metrics.StageBuild), logfields.Command(spec.String()))
	start := time.Now()

	proc, err := l.runner.Start(ctx, spec)
	if err != nil {
		l.recorder.IncStageResult(metrics.StageBuild, metrics.ResultFailed)
		return errors.SpawnFailed(spec.String(), err)
	}
	log.Info("Build started", logfields.PID(proc.PID()))
	done := wait(proc)

	var res waitResult
	select {
	case res = <-done:
	case <-ctx.Done():
		_ = proc.Kill()
		<-done
		l.recorder.IncStageResult(metrics.StageBuild, metrics.ResultInterrupted)
		return errors.Wrap(ctx.Err(), errors.CategoryRuntime, errors.SeverityFatal, "build canceled")
	}

	elapsed := time.Since(start)
	l.recorder.ObserveStageDuration(metrics.StageBuild, elapsed)
	if res.err != nil {
		l.recorder.IncStageResult(metrics.StageBuild, metrics.ResultFailed)
		return errors.InternalError("wait for build", res.err)
	}
	l.recorder.SetChildExitCode(metrics.StageBuild, res.exit.Code)

	if res.exit.Code != 0 {
		l.recorder.IncStageResult(metrics.StageBuild, metrics.ResultFailed)
		log.Error("Build failed", logfields.ExitCode(res.exit.Code), logfields.DurationMS(ms(elapsed)))
		l.fail("Build failed with exit code %d", res.exit.Code)
		return errors.BuildFailed(res.exit.Code)
	}

	l.recorder.IncStageResult(metrics.StageBuild, metrics.ResultSuccess)
	log.Info("Build finished", logfields.DurationMS(ms(elapsed)))
	l.say("Build completed successfully")
	return nil
}

func (l *Launcher) serve(ctx context.Context, log *slog.Logger) error {
	spec := l.spec(l.cfg.ServeCommand())
	log = log.With(logfields.Stage(metrics.StageServe), logfields.Command(spec.String()))

	sigs := make(chan os.Signal, 1)
	l.signals.Notify(sigs)
	defer l.signals.Stop(sigs)

	l.say("Starting server: %s", spec)
	start := time.Now()
	proc, err := l.runner.Start(ctx, spec)
	if err != nil {
		l.recorder.IncStageResult(metrics.StageServe, metrics.ResultFailed)
		return errors.SpawnFailed(spec.String(), err)
	}
	log.Info("Server started", logfields.PID(proc.PID()))
	done := wait(proc)

	select {
	case res := <-done:
		l.recorder.ObserveStageDuration(metrics.StageServe, time.Since(start))
		return l.serverExited(log, res)
	case sig := <-sigs:
		return l.shutdown(log, proc, sig, sigs, done, start)
	case <-ctx.Done():
		return l.shutdown(log, proc, os.Interrupt, sigs, done, start)
	}
}

func (l *Launcher) serverExited(log *slog.Logger, res waitResult) error {
	if res.err != nil {
		l.recorder.IncStageResult(metrics.StageServe, metrics.ResultFailed)
		return errors.InternalError("wait for server", res.err)
	}
	code := res.exit.Code
	l.recorder.SetChildExitCode(metrics.StageServe, code)
	l.say("Server exited with code %d", code)
	log.Info("Server exited", logfields.ExitCode(code), logfields.Signal(res.exit.Signal))

	if code != 0 {
		l.recorder.IncStageResult(metrics.StageServe, metrics.ResultFailed)
		return errors.ServeExited(code)
	}
	l.recorder.IncStageResult(metrics.StageServe, metrics.ResultSuccess)
	return nil
}

// shutdown relays sig to the server and waits up to ShutdownTimeout for it
// to exit. The launcher itself always exits 0 on this path.
func (l *Launcher) shutdown(log *slog.Logger, proc process.Process, sig os.Signal, sigs <-chan os.Signal, done <-chan waitResult, start time.Time) error {
	l.say("Received %s, shutting down server...", sig)
	log.Info("Forwarding signal to server", logfields.Signal(sig.String()), logfields.PID(proc.PID()))
	l.recorder.IncSignalForwarded(sig.String())
	if err := proc.Signal(sig); err != nil {
		// Windows cannot deliver os.Interrupt to another process.
		log.Warn("Signal delivery failed, killing server", logfields.Error(err))
		_ = proc.Kill()
	}

	timer := time.NewTimer(l.cfg.ShutdownTimeout)
	defer timer.Stop()

	var res waitResult
	select {
	case res = <-done:
	case <-sigs:
		log.Warn("Second signal received, killing server")
		_ = proc.Kill()
		res = <-done
	case <-timer.C:
		log.Warn("Server did not exit in time, killing it", slog.Duration("timeout", l.cfg.ShutdownTimeout))
		_ = proc.Kill()
		res = <-done
	}

	l.recorder.ObserveStageDuration(metrics.StageServe, time.Since(start))
	l.recorder.IncStageResult(metrics.StageServe, metrics.ResultInterrupted)
	if res.err == nil {
		l.recorder.SetChildExitCode(metrics.StageServe, res.exit.Code)
		l.say("Server exited with code %d", res.exit.Code)
	}
	log.Info("Server stopped")
	return nil
}

func (l *Launcher) spec(c config.CommandConfig) process.Spec {
	spec := process.Spec{
		Name: c.Command,
		Args: c.Args,
		Dir:  l.cfg.WorkDir,
	}
	for _, k := range slices.Sorted(maps.Keys(c.Env)) {
		spec.Env = append(spec.Env, k+"="+c.Env[k])
	}
	return spec
}

func (l *Launcher) say(format string, args ...any) {
	_, _ = fmt.Fprintf(l.out, format+"\n", args...)
}

func (l *Launcher) fail(format string, args ...any) {
	_, _ = fmt.Fprintf(l.errOut, format+"\n", args...)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
