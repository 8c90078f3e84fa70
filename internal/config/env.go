package config

import (
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	derrors "git.home.luguber.info/inful/devlaunch/internal/errors"
)

// Environment variables recognized by ApplyEnv.
const (
	EnvWorkDir         = "DEVLAUNCH_WORKDIR"
	EnvBuildDir        = "DEVLAUNCH_BUILD_DIR"
	EnvBuildIDFile     = "DEVLAUNCH_BUILD_ID_FILE"
	EnvPackageManager  = "DEVLAUNCH_PACKAGE_MANAGER"
	EnvBuildScript     = "DEVLAUNCH_BUILD_SCRIPT"
	EnvServeScript     = "DEVLAUNCH_SERVE_SCRIPT"
	EnvShutdownTimeout = "DEVLAUNCH_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "DEVLAUNCH_LOG_LEVEL"
	EnvLogFormat       = "DEVLAUNCH_LOG_FORMAT"
	EnvMetricsListen   = "DEVLAUNCH_METRICS_LISTEN"
	EnvRebuild         = "DEVLAUNCH_REBUILD"
)

// envFiles in precedence order. godotenv never overrides a variable that is
// already set, so the earlier file wins.
var envFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads .env.local and .env from dir if present. Existing
// process environment variables are not overwritten.
func LoadEnvFiles(dir string) error {
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); stdErrors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays DEVLAUNCH_* variables onto cfg.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	strs := []struct {
		key string
		dst *string
	}{
		{EnvWorkDir, &cfg.WorkDir},
		{EnvBuildDir, &cfg.BuildDir},
		{EnvBuildIDFile, &cfg.BuildIDFile},
		{EnvPackageManager, &cfg.PackageManager},
		{EnvBuildScript, &cfg.BuildScript},
		{EnvServeScript, &cfg.ServeScript},
		{EnvMetricsListen, &cfg.Metrics.Listen},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = LogLevel(v)
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = LogFormat(v)
	}
	if v, ok := lookup(EnvShutdownTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return derrors.ValidationFailed(EnvShutdownTimeout, err.Error())
		}
		cfg.ShutdownTimeout = d
	}
	if v, ok := lookup(EnvRebuild); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return derrors.ValidationFailed(EnvRebuild, err.Error())
		}
		cfg.Rebuild = b
	}
	return nil
}
