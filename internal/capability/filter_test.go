package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(fields ...string) DataModel {
	m := make(DataModel, len(fields))
	for _, f := range fields {
		m[f] = struct{}{}
	}
	return m
}

func testEntities() EntitySet {
	return EntitySet{
		"Gene":    {Class: "Gene", Format: "ids", Value: []any{101, 204}},
		"Protein": {Class: "Protein", Format: "ids", Value: []any{77}},
		"Author":  {Class: "Author", Format: "rows"},
	}
}

func idTool() *ToolConfig {
	return &ToolConfig{
		Name:    "regionViewer",
		Accepts: []string{"ids"},
		Classes: AllClasses(),
		Version: APIVersion,
	}
}

func TestSuitableEntitiesNilConfig(t *testing.T) {
	got, ok := SuitableEntities(testModel("Gene"), testEntities(), nil)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestSuitableEntitiesVersionGate(t *testing.T) {
	tests := []struct {
		name    string
		version int
		ok      bool
	}{
		{"current api", APIVersion, true},
		{"older api", APIVersion - 1, false},
		{"newer api", APIVersion + 1, false},
		{"unset defaults to 1", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := idTool()
			cfg.Version = tt.version
			_, ok := SuitableEntities(testModel(), testEntities(), cfg)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSuitableEntitiesVersionCheckIsExactEquality(t *testing.T) {
	// A tool ahead of the host is just as incompatible as one behind it;
	// this is not the ordered release comparison.
	cfg := idTool()
	cfg.Version = APIVersion + 3
	_, ok := SuitableEntities(testModel(), testEntities(), cfg)
	assert.False(t, ok)
}

func TestSuitableEntitiesDepends(t *testing.T) {
	cfg := idTool()
	cfg.Depends = []string{"Gene.homologues", "Gene.goAnnotation"}

	model := testModel("Gene.homologues", "Gene.goAnnotation", "Gene.symbol")
	got, ok := SuitableEntities(model, testEntities(), cfg)
	require.True(t, ok)
	assert.Len(t, got, 2)

	// One missing dependency fails the whole tool, entities notwithstanding.
	_, ok = SuitableEntities(testModel("Gene.homologues"), testEntities(), cfg)
	assert.False(t, ok)

	// Empty depends always passes.
	cfg.Depends = nil
	_, ok = SuitableEntities(DataModel{}, testEntities(), cfg)
	assert.True(t, ok)
}

func TestSuitableEntitiesFormatFilter(t *testing.T) {
	cfg := idTool()
	got, ok := SuitableEntities(testModel(), testEntities(), cfg)
	require.True(t, ok)

	// Author has format "rows", which this tool does not accept.
	assert.Len(t, got, 2)
	assert.Contains(t, got, "Gene")
	assert.Contains(t, got, "Protein")
	assert.NotContains(t, got, "Author")
}

func TestSuitableEntitiesMultipleFormats(t *testing.T) {
	cfg := idTool()
	cfg.Accepts = []string{"ids", "rows"}

	got, ok := SuitableEntities(testModel(), testEntities(), cfg)
	require.True(t, ok)
	assert.Len(t, got, 3)
}

func TestSuitableEntitiesClassScope(t *testing.T) {
	tests := []struct {
		name    string
		scope   ClassScope
		classes []string
	}{
		{"wildcard keeps all accepted", AllClasses(), []string{"Gene", "Protein"}},
		{"restriction to one class", Classes("Gene"), []string{"Gene"}},
		{"restriction ignores unknown names", Classes("Gene", "Pathway"), []string{"Gene"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := idTool()
			cfg.Classes = tt.scope

			got, ok := SuitableEntities(testModel(), testEntities(), cfg)
			require.True(t, ok)
			require.Len(t, got, len(tt.classes))
			for _, class := range tt.classes {
				assert.Contains(t, got, class)
			}
		})
	}
}

func TestSuitableEntitiesEmptyResultIsAbsent(t *testing.T) {
	cfg := idTool()
	cfg.Classes = Classes("Pathway") // not among the candidates

	got, ok := SuitableEntities(testModel(), testEntities(), cfg)
	assert.False(t, ok)
	assert.Nil(t, got)

	// Same through the format route.
	cfg = idTool()
	cfg.Accepts = []string{"table"}
	got, ok = SuitableEntities(testModel(), testEntities(), cfg)
	assert.False(t, ok)
	assert.Nil(t, got)

	// And with no candidates at all.
	_, ok = SuitableEntities(testModel(), EntitySet{}, idTool())
	assert.False(t, ok)
}

func TestSuitableEntitiesZeroValueScopeAcceptsNothing(t *testing.T) {
	cfg := idTool()
	cfg.Classes = ClassScope{}
	_, ok := SuitableEntities(testModel(), testEntities(), cfg)
	assert.False(t, ok)
}

func TestSuitableEntitiesDoesNotMutateInputs(t *testing.T) {
	model := testModel("Gene.symbol")
	entities := testEntities()
	cfg := idTool()
	cfg.Classes = Classes("Gene")

	got, ok := SuitableEntities(model, entities, cfg)
	require.True(t, ok)

	// The narrowed set is a fresh map tied to neither input.
	got["Injected"] = Entity{Format: "ids"}
	assert.Len(t, entities, 3)
	assert.NotContains(t, entities, "Injected")
	assert.Len(t, model, 1)
}

func TestSuitableEntitiesEntityValuesPassThrough(t *testing.T) {
	entities := EntitySet{
		"Gene": {Class: "Gene", Format: "ids", Value: []any{101, 204}},
	}

	got, ok := SuitableEntities(testModel(), entities, idTool())
	require.True(t, ok)
	assert.Equal(t, entities["Gene"], got["Gene"])
}
