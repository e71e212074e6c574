package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/fxmesh/internal/config"
	"github.com/Faultbox/fxmesh/internal/export"
	"github.com/Faultbox/fxmesh/internal/preset"
	"github.com/Faultbox/fxmesh/pkg/ringmesh"
)

func TestParseArgsInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	out := fs.String("o", "", "")
	format := fs.String("format", "", "")

	positional, err := parseArgs(fs, []string{"ring.yaml", "-o", "x.obj", "extra", "-format", "fxm"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ring.yaml", "extra"}, positional)
	assert.Equal(t, "x.obj", *out)
	assert.Equal(t, "fxm", *format)
}

func TestParseArgsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	_, err := parseArgs(fs, []string{"ring.yaml", "-nope"})
	assert.Error(t, err)
}

func TestPresetPathFallback(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "", presetPath(cfg, nil))

	cfg.Generation.Preset = "default.yaml"
	assert.Equal(t, "default.yaml", presetPath(cfg, nil))
	assert.Equal(t, "given.yaml", presetPath(cfg, []string{"given.yaml"}))
}

func TestPrintInfo(t *testing.T) {
	p := preset.Default()
	p.Channels.UV0 = preset.Channel{Mode: preset.ModeGradient}
	m := &ringmesh.Mesh{}

	var buf bytes.Buffer
	printInfo(&buf, p, m)
	out := buf.String()

	assert.Contains(t, out, "Preset:      FXMesh")
	assert.Contains(t, out, "uv0=gradient")
	assert.Contains(t, out, p.Fingerprint())
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestUsageError(t *testing.T) {
	err := error(usageError("info <preset>"))
	assert.EqualError(t, err, "usage: fxmesh info <preset>")
}

// isolateUserConfig points every OS config root at a temp directory.
func isolateUserConfig(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("HOME", root)
	t.Setenv("APPDATA", root)
}

func writePreset(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name+".yaml")
	p := preset.Default()
	p.Name = name
	require.NoError(t, p.Save(path))
	return path
}

func TestExportTarget(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Dir = "exports"
	dir := t.TempDir()

	target, folder := exportTarget(cfg, "", "halo", export.FormatOBJ)
	assert.Equal(t, filepath.Join("exports", "halo.obj"), target)
	assert.Empty(t, folder)

	target, folder = exportTarget(cfg, dir, "halo", export.FormatFrame)
	assert.Equal(t, filepath.Join(dir, "halo.fxm"), target)
	assert.Equal(t, dir, folder)

	target, folder = exportTarget(cfg, "new/", "halo", export.FormatOBJ)
	assert.Equal(t, filepath.Join("new", "halo.obj"), target)
	assert.Equal(t, "new/", folder)

	target, folder = exportTarget(cfg, filepath.Join(dir, "mesh.obj"), "halo", export.FormatOBJ)
	assert.Equal(t, filepath.Join(dir, "mesh.obj"), target)
	assert.Empty(t, folder)
}

func TestGenerateRemembersExportDir(t *testing.T) {
	isolateUserConfig(t)
	path := writePreset(t, "halo")
	outDir := t.TempDir()

	require.NoError(t, cmdGenerate(config.Default(), []string{path, "-o", outDir}))
	assert.FileExists(t, filepath.Join(outDir, "halo.obj"))

	saved := &config.Config{}
	data, err := os.ReadFile(config.UserConfigPath())
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, saved))
	assert.Equal(t, outDir, saved.Export.Dir)
}

func TestGenerateFileTargetKeepsConfig(t *testing.T) {
	isolateUserConfig(t)
	path := writePreset(t, "halo")
	target := filepath.Join(t.TempDir(), "custom.fxm")

	require.NoError(t, cmdGenerate(config.Default(), []string{path, "-o", target, "-format", "fxm"}))
	assert.FileExists(t, target)
	assert.NoFileExists(t, config.UserConfigPath())
}

func TestGenerateRefusesOverwrite(t *testing.T) {
	isolateUserConfig(t)
	path := writePreset(t, "halo")
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	target := filepath.Join(cfg.Export.Dir, "halo.obj")

	require.NoError(t, cmdGenerate(cfg, []string{path}))
	require.NoError(t, os.WriteFile(target, []byte("keep"), 0644))

	err := cmdGenerate(cfg, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	require.NoError(t, cmdGenerate(cfg, []string{"-f", path}))
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# fxmesh"))
}
