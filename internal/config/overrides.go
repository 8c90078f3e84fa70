package config

import "time"

// Overrides carries CLI flag values. Zero values leave the config untouched.
type Overrides struct {
	WorkDir         string
	BuildDir        string
	BuildIDFile     string
	PackageManager  string
	BuildScript     string
	ServeScript     string
	ShutdownTimeout time.Duration
	LogFormat       string
	MetricsListen   string
	Verbose         bool
	Rebuild         bool
}

// ApplyOverrides applies flag values, the highest precedence layer.
func (c *Config) ApplyOverrides(o Overrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.WorkDir, o.WorkDir)
	set(&c.BuildDir, o.BuildDir)
	set(&c.BuildIDFile, o.BuildIDFile)
	set(&c.PackageManager, o.PackageManager)
	set(&c.BuildScript, o.BuildScript)
	set(&c.ServeScript, o.ServeScript)
	set(&c.Metrics.Listen, o.MetricsListen)
	if o.LogFormat != "" {
		c.Log.Format = LogFormat(o.LogFormat)
	}
	if o.ShutdownTimeout > 0 {
		c.ShutdownTimeout = o.ShutdownTimeout
	}
	if o.Verbose {
		c.Log.Level = LogLevelDebug
	}
	// A flag can force a rebuild but never cancel one requested via env.
	c.Rebuild = c.Rebuild || o.Rebuild
}
