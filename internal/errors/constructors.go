package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *LaunchError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *LaunchError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *LaunchError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Child process outcomes

// BuildFailed reports a build command that exited non-zero.
func BuildFailed(code int) *LaunchError {
	e := New(CategoryBuild, SeverityFatal, "build command failed").
		WithContext("exit_code", code)
	e.ExitCode = code
	return e
}

// ServeExited reports the serve command exiting on its own. A zero code is
// still surfaced so the caller can mirror it.
func ServeExited(code int) *LaunchError {
	severity := SeverityError
	if code == 0 {
		severity = SeverityInfo
	}
	e := New(CategoryServe, severity, "serve command exited").
		WithContext("exit_code", code)
	e.ExitCode = code
	return e
}

func SpawnFailed(command string, cause error) *LaunchError {
	return Wrap(cause, CategorySpawn, SeverityFatal, "failed to start command").
		WithContext("command", command)
}

// Internal errors

func InternalError(message string, cause error) *LaunchError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
