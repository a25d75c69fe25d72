package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDirCompilesManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "regions.cue", `
		tool: genomeRegions: {
			accepts: ["ids"]
			classes: ["Gene"]
			version: 2
		}
	`)
	writeManifest(t, dir, "upload.cue", `
		tool: listUpload: {
			accepts: ["ids", "records"]
		}
	`)

	cfgs, errs := LoadDir(dir)
	require.Empty(t, errs)
	require.Len(t, cfgs, 2)

	// filepath.Walk visits lexically, so regions.cue loads before upload.cue.
	assert.Equal(t, "genomeRegions", cfgs[0].Name)
	assert.Equal(t, "listUpload", cfgs[1].Name)
}

func TestLoadDirMissingDirectory(t *testing.T) {
	cfgs, errs := LoadDir(filepath.Join(t.TempDir(), "absent"))

	assert.Nil(t, cfgs)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadDirNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.cue")
	require.NoError(t, os.WriteFile(file, []byte("tool: x: {accepts: [\"ids\"]}"), 0o644))

	_, errs := LoadDir(file)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadDirNoManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "notes.txt", "not a manifest")

	_, errs := LoadDir(dir)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadDirBrokenManifestDoesNotHideOthers(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bad.cue", `tool: broken: { accepts: [`)
	writeManifest(t, dir, "good.cue", `tool: fine: { accepts: ["ids"] }`)

	cfgs, errs := LoadDir(dir)
	require.Len(t, errs, 1)
	require.Len(t, cfgs, 1)
	assert.Equal(t, "fine", cfgs[0].Name)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeLoad, loadErr.Code)
	assert.Contains(t, loadErr.Path, "bad.cue")
}

func TestLoadDirManifestWithoutTools(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "empty.cue", `other: 42`)

	cfgs, errs := LoadDir(dir)
	assert.Empty(t, cfgs)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeGeneric, loadErr.Code)
}

func TestLoadDirSkipsCueModDirectory(t *testing.T) {
	dir := t.TempDir()
	modDir := filepath.Join(dir, "cue.mod")
	require.NoError(t, os.Mkdir(modDir, 0o755))
	writeManifest(t, modDir, "module.cue", `module: "example.com/tools"`)
	writeManifest(t, dir, "tools.cue", `tool: fine: { accepts: ["ids"] }`)

	cfgs, errs := LoadDir(dir)
	require.Empty(t, errs)
	require.Len(t, cfgs, 1)
	assert.Equal(t, "fine", cfgs[0].Name)
}

func TestFindManifestFilesRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeManifest(t, dir, "a.cue", "tool: a: {accepts: [\"ids\"]}")
	writeManifest(t, sub, "b.cue", "tool: b: {accepts: [\"ids\"]}")
	writeManifest(t, dir, "ignore.yaml", "nope")

	files, err := FindManifestFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, files[0], "a.cue")
	assert.Contains(t, files[1], "b.cue")
}
