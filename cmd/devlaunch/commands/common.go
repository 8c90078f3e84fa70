package commands

import (
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/devlaunch/internal/config"
	"git.home.luguber.info/inful/devlaunch/internal/launcher"
	"git.home.luguber.info/inful/devlaunch/internal/process"
)

// Global carries process-wide dependencies into the command. Zero values
// mean the real terminal, os/exec and OS signals.
type Global struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Runner  process.Runner
	Signals launcher.SignalSource
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) stderr() io.Writer {
	if g == nil || g.Stderr == nil {
		return os.Stderr
	}
	return g.Stderr
}

func (g *Global) runner() process.Runner {
	if g == nil || g.Runner == nil {
		return process.NewExecRunner()
	}
	return g.Runner
}

// NewLogger builds the slog logger for cfg, writing to w.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
