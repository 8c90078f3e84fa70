package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes for launcher-internal failures (sysexits.h where one fits).
const (
	ExitGeneral  = 1
	ExitUsage    = 64
	ExitInternal = 70
	ExitConfig   = 78
	ExitSpawn    = 127
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// WithOutput redirects formatted messages (tests).
func (a *CLIErrorAdapter) WithOutput(w io.Writer) *CLIErrorAdapter {
	a.out = w
	return a
}

// WithExit replaces os.Exit (tests).
func (a *CLIErrorAdapter) WithExit(fn func(int)) *CLIErrorAdapter {
	a.exit = fn
	return a
}

// ExitCodeFor determines the appropriate exit code for an error.
// Child outcomes are mirrored verbatim.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if le, ok := As(err); ok {
		return a.exitCodeFromLaunch(le)
	}

	return ExitGeneral
}

func (a *CLIErrorAdapter) exitCodeFromLaunch(err *LaunchError) int {
	if err.HasExitCode() {
		if err.Category == CategoryBuild && err.ExitCode == 0 {
			// A failed build must never look like success.
			return ExitGeneral
		}
		return err.ExitCode
	}

	switch err.Category {
	case CategoryValidation:
		return ExitUsage
	case CategoryConfig:
		return ExitConfig
	case CategorySpawn:
		return ExitSpawn
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitGeneral
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if le, ok := As(err); ok {
		return a.formatLaunch(le)
	}

	return fmt.Sprintf("Error: %v", err)
}

func (a *CLIErrorAdapter) formatLaunch(err *LaunchError) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategoryValidation:
		if err.Cause != nil {
			return fmt.Sprintf("%s: %v", err.Message, err.Cause)
		}
		return err.Message
	case CategoryBuild, CategoryServe:
		return fmt.Sprintf("%s: %s (exit code %d)", err.Category, err.Message, err.ExitCode)
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

// HandleError processes an error and exits the program with appropriate code.
// Serve exits were already reported by the launcher, so they are not
// printed again.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	if !IsCategory(err, CategoryServe) {
		_, _ = fmt.Fprintf(a.out, "%s\n", a.FormatError(err))
	}
	a.exit(exitCode)
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if le, ok := As(err); ok {
		return le.Category == CategoryInternal ||
			le.Category == CategoryRuntime ||
			le.Category == CategorySpawn
	}

	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	if le, ok := As(err); ok {
		level := slogLevelFromSeverity(le.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(le.Category)),
		}
		if le.HasExitCode() {
			attrs = append(attrs, slog.Int("exit_code", le.ExitCode))
		}
		if le.Cause != nil {
			attrs = append(attrs, slog.String("error", le.Cause.Error()))
		}

		a.logger.LogAttrs(context.Background(), level, le.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
