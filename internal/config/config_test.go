package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/devlaunch/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_MissingImplicitFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, DefaultFile), false)
	require.NoError(t, err)

	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "custom.yaml"), true)
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEVLAUNCH_TEST_PORT", "4000")
	path := writeFile(t, dir, DefaultFile, `
build_dir: dist
build_id_file: .build-stamp
package_manager: npm
shutdown_timeout: 3s
serve:
  command: node
  args: ["server.js", "--port", "${DEVLAUNCH_TEST_PORT}"]
log:
  level: debug
  format: json
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)

	want := Defaults()
	want.BuildDir = "dist"
	want.BuildIDFile = ".build-stamp"
	want.PackageManager = "npm"
	want.ShutdownTimeout = 3 * time.Second
	want.Serve = &CommandConfig{Command: "node", Args: []string{"server.js", "--port", "4000"}}
	want.Log = LogConfig{Level: LogLevelDebug, Format: LogFormatJSON}

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "npm run build", cfg.BuildCommand().String())
	assert.Equal(t, "node server.js --port 4000", cfg.ServeCommand().String())
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultFile, "build_directory: dist\n")

	_, err := Load(path, true)
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, DefaultFile, "")

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, DefaultBuildDir, cfg.BuildDir)
}

func TestPaths(t *testing.T) {
	cfg := Defaults()
	cfg.WorkDir = "/srv/web"

	assert.Equal(t, "/srv/web/.next", cfg.BuildDirPath())
	assert.Equal(t, "/srv/web/.next/BUILD_ID", cfg.BuildIDPath())

	cfg.BuildDir = "/abs/out"
	assert.Equal(t, "/abs/out/BUILD_ID", cfg.BuildIDPath())
}

func TestDefaultCommands(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, CommandConfig{Command: "pnpm", Args: []string{"run", "build"}}, cfg.BuildCommand())
	assert.Equal(t, CommandConfig{Command: "pnpm", Args: []string{"run", "start:local"}}, cfg.ServeCommand())
}

func TestApplyOverrides(t *testing.T) {
	cfg := Defaults()
	cfg.Rebuild = true
	cfg.ApplyOverrides(Overrides{
		BuildDir:        "out",
		ServeScript:     "dev",
		ShutdownTimeout: time.Second,
		Verbose:         true,
	})

	assert.Equal(t, "out", cfg.BuildDir)
	assert.Equal(t, DefaultBuildIDFile, cfg.BuildIDFile)
	assert.Equal(t, "pnpm run dev", cfg.ServeCommand().String())
	assert.Equal(t, time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, LogLevelDebug, cfg.Log.Level)
	assert.True(t, cfg.Rebuild, "flag absence must not clear an env-requested rebuild")
}
