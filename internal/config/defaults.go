package config

import "time"

// Defaults match a Next.js project driven by pnpm.
const (
	DefaultBuildDir        = ".next"
	DefaultBuildIDFile     = "BUILD_ID"
	DefaultPackageManager  = "pnpm"
	DefaultBuildScript     = "build"
	DefaultServeScript     = "start:local"
	DefaultShutdownTimeout = 10 * time.Second
)

// Defaults returns a fully populated configuration.
func Defaults() *Config {
	return &Config{
		BuildDir:        DefaultBuildDir,
		BuildIDFile:     DefaultBuildIDFile,
		PackageManager:  DefaultPackageManager,
		BuildScript:     DefaultBuildScript,
		ServeScript:     DefaultServeScript,
		ShutdownTimeout: DefaultShutdownTimeout,
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}
