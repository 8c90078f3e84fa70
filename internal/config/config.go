package config

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/devlaunch/internal/errors"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "devlaunch.yaml"

// Config represents the launcher configuration.
type Config struct {
	// WorkDir is where build artifacts are probed and children run. Empty means
	// the process working directory.
	WorkDir string `yaml:"workdir,omitempty"`

	BuildDir    string `yaml:"build_dir"`
	BuildIDFile string `yaml:"build_id_file"`

	PackageManager string `yaml:"package_manager"`
	BuildScript    string `yaml:"build_script"`
	ServeScript    string `yaml:"serve_script"`

	// Explicit command overrides; when set they replace "<pm> run <script>".
	Build *CommandConfig `yaml:"build,omitempty"`
	Serve *CommandConfig `yaml:"serve,omitempty"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Rebuild is an invocation flag, never read from the file.
	Rebuild bool `yaml:"-"`
}

// CommandConfig describes an external command.
type CommandConfig struct {
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// String renders the command line for logs and status messages.
func (c CommandConfig) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}
	return c.Command + " " + strings.Join(c.Args, " ")
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// BuildDirPath resolves the build-output directory against WorkDir.
func (c *Config) BuildDirPath() string {
	return c.resolve(c.BuildDir)
}

// BuildIDPath resolves the build-identifier file inside the build-output directory.
func (c *Config) BuildIDPath() string {
	if filepath.IsAbs(c.BuildIDFile) {
		return c.BuildIDFile
	}
	return filepath.Join(c.BuildDirPath(), c.BuildIDFile)
}

// BuildCommand returns the command that produces the build output.
func (c *Config) BuildCommand() CommandConfig {
	if c.Build != nil && c.Build.Command != "" {
		return *c.Build
	}
	return CommandConfig{Command: c.PackageManager, Args: []string{"run", c.BuildScript}}
}

// ServeCommand returns the long-running local server command.
func (c *Config) ServeCommand() CommandConfig {
	if c.Serve != nil && c.Serve.Command != "" {
		return *c.Serve
	}
	return CommandConfig{Command: c.PackageManager, Args: []string{"run", c.ServeScript}}
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.WorkDir == "" {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// Load builds the effective configuration: defaults, then the YAML file,
// then DEVLAUNCH_* environment variables (after .env files are loaded).
// A missing file is only an error when explicit is true.
func Load(path string, explicit bool) (*Config, error) {
	if err := LoadEnvFiles(filepath.Dir(path)); err != nil {
		return nil, derrors.ConfigInvalid(path, err)
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, derrors.ConfigInvalid(path, err)
		}
	case stdErrors.Is(err, os.ErrNotExist):
		if explicit {
			return nil, derrors.ConfigNotFound(path)
		}
	default:
		return nil, derrors.ConfigInvalid(path, fmt.Errorf("read config: %w", err))
	}

	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode expands environment variables and rejects unknown keys.
func decode(data []byte, cfg *Config) error {
	expanded := os.ExpandEnv(string(data))
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stdErrors.Is(err, io.EOF) {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}
