package config

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/devlaunch/internal/errors"
)

// Finalize resolves WorkDir, normalizes enums and validates the result.
func (c *Config) Finalize() error {
	if c.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.InternalError("resolve working directory", err)
		}
		c.WorkDir = wd
	} else if !filepath.IsAbs(c.WorkDir) {
		abs, err := filepath.Abs(c.WorkDir)
		if err != nil {
			return errors.InternalError("resolve working directory", err)
		}
		c.WorkDir = abs
	}

	level, err := logLevelNormalizer.NormalizeWithError(string(c.Log.Level))
	if err != nil {
		return errors.ValidationFailed("log.level", err.Error())
	}
	c.Log.Level = level
	format, err := logFormatNormalizer.NormalizeWithError(string(c.Log.Format))
	if err != nil {
		return errors.ValidationFailed("log.format", err.Error())
	}
	c.Log.Format = format

	return c.Validate()
}

// Validate checks the fields the launcher depends on.
func (c *Config) Validate() error {
	if c.BuildDir == "" {
		return errors.ValidationFailed("build_dir", "must not be empty")
	}
	if c.BuildIDFile == "" {
		return errors.ValidationFailed("build_id_file", "must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.ValidationFailed("shutdown_timeout", "must be positive")
	}
	if cmd := c.BuildCommand(); cmd.Command == "" {
		return errors.ValidationFailed("build", "no build command: set package_manager or build.command")
	}
	if cmd := c.ServeCommand(); cmd.Command == "" {
		return errors.ValidationFailed("serve", "no serve command: set package_manager or serve.command")
	}
	if c.Build == nil || c.Build.Command == "" {
		if c.BuildScript == "" {
			return errors.ValidationFailed("build_script", "must not be empty")
		}
	}
	if c.Serve == nil || c.Serve.Command == "" {
		if c.ServeScript == "" {
			return errors.ValidationFailed("serve_script", "must not be empty")
		}
	}
	return nil
}
