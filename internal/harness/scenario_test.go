package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeToolsDir creates a manifest directory with one minimal valid tool.
func writeToolsDir(t *testing.T, dir string) string {
	t.Helper()
	toolsDir := filepath.Join(dir, "tools")
	require.NoError(t, os.MkdirAll(toolsDir, 0755))

	manifest := `tool: listUpload: {
	accepts: ["ids"]
	version: 2
}
`
	require.NoError(t, os.WriteFile(filepath.Join(toolsDir, "tools.cue"), []byte(manifest), 0644))
	return toolsDir
}

// writeScenario writes scenario YAML next to the tools directory.
func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "basic.yaml", `
name: round_trip
description: "Scenario loading round-trip"
tools_dir: tools
release: "5.1"
model:
  - Gene
  - Gene.symbol
entities:
  Gene:
    class: Gene
    format: ids
    value: [1, 2]
query: |
  <query view="Gene.symbol"/>
expect:
  tools:
    - listUpload
  entities:
    listUpload: [Gene]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "round_trip", scenario.Name)
	assert.Equal(t, "Scenario loading round-trip", scenario.Description)
	assert.Equal(t, filepath.Join(dir, "tools"), scenario.ToolsDir)
	assert.Equal(t, "5.1", scenario.Release)
	assert.Equal(t, []string{"Gene", "Gene.symbol"}, scenario.Model)
	assert.Equal(t, "Gene", scenario.Entities["Gene"].Class)
	assert.Equal(t, "ids", scenario.Entities["Gene"].Format)
	assert.Equal(t, "<query view=\"Gene.symbol\"/>\n", scenario.Query)
	assert.Equal(t, []string{"listUpload"}, scenario.Expect.Tools)
	assert.Equal(t, []string{"Gene"}, scenario.Expect.Entities["listUpload"])
}

func TestLoadScenario_AbsoluteToolsDir(t *testing.T) {
	dir := t.TempDir()
	toolsDir := writeToolsDir(t, dir)

	path := writeScenario(t, dir, "abs.yaml", `
name: absolute
description: "Absolute manifest paths stay untouched"
tools_dir: `+toolsDir+`
expect:
  tools: []
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, toolsDir, scenario.ToolsDir)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "typo.yaml", `
name: typo
description: "Typo'd expect key"
tools_dir: tools
expects:
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "expects")
}

func TestLoadScenario_MissingName(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "unnamed.yaml", `
description: "Missing name"
tools_dir: tools
expect:
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestLoadScenario_BadName(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "badname.yaml", `
name: 2fast
description: "Name starting with a digit"
tools_dir: tools
expect:
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a letter")
}

func TestLoadScenario_MissingDescription(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "undescribed.yaml", `
name: undescribed
tools_dir: tools
expect:
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestLoadScenario_MissingToolsDir(t *testing.T) {
	dir := t.TempDir()

	path := writeScenario(t, dir, "toolless.yaml", `
name: toolless
description: "No manifest directory"
expect:
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tools_dir is required")
}

func TestLoadScenario_ToolsDirNotFound(t *testing.T) {
	dir := t.TempDir()

	path := writeScenario(t, dir, "lost.yaml", `
name: lost
description: "Manifest directory does not exist"
tools_dir: no-such-dir
expect:
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tools_dir not found")
}

func TestLoadScenario_EntityMissingClass(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "classless.yaml", `
name: classless
description: "Entity without a class"
tools_dir: tools
entities:
  Gene:
    format: ids
expect:
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entities[Gene]: class is required")
}

func TestLoadScenario_EntityMissingFormat(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "formatless.yaml", `
name: formatless
description: "Entity without a format"
tools_dir: tools
entities:
  Gene:
    class: Gene
expect:
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entities[Gene]: format is required")
}

func TestLoadScenario_BadParseErrorCode(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "badcode.yaml", `
name: badcode
description: "Unknown parse failure code"
tools_dir: tools
query: |
  <query/>
expect:
  parse_error: E999
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a parse failure code")
}

func TestLoadScenario_ParseErrorWithoutQuery(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	path := writeScenario(t, dir, "queryless.yaml", `
name: queryless
description: "Expects a parse failure with nothing to parse"
tools_dir: tools
expect:
  parse_error: E201
  tools: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no query")
}

func TestLoadScenarios_FilenameOrder(t *testing.T) {
	dir := t.TempDir()
	writeToolsDir(t, dir)

	scenariosDir := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(scenariosDir, 0755))

	writeScenario(t, scenariosDir, "b-second.yaml", `
name: b-second
description: "Ordering fixture"
tools_dir: ../tools
expect:
  tools: []
`)
	writeScenario(t, scenariosDir, "a-first.yml", `
name: a-first
description: "Ordering fixture"
tools_dir: ../tools
expect:
  tools: []
`)
	// Non-YAML files are ignored.
	writeScenario(t, scenariosDir, "notes.txt", "not a scenario")

	scenarios, err := LoadScenarios(scenariosDir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a-first", scenarios[0].Name)
	assert.Equal(t, "b-second", scenarios[1].Name)
}

func TestLoadScenarios_MissingDir(t *testing.T) {
	_, err := LoadScenarios("/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario directory")
}
