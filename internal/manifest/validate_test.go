package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quenault/pathmine/internal/capability"
)

func validTool(name string) capability.ToolConfig {
	return capability.ToolConfig{
		Name:    name,
		Accepts: []string{"ids"},
		Classes: capability.AllClasses(),
		Version: 1,
	}
}

func codesOf(errs []ValidationError) []string {
	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	return codes
}

func TestValidateAcceptsWellFormedTools(t *testing.T) {
	cfgs := []capability.ToolConfig{
		validTool("genomeRegions"),
		{
			Name:     "idResolver",
			Accepts:  []string{"ids", "records"},
			Classes:  capability.Classes("Gene", "Protein"),
			Depends:  []string{"Gene.symbol"},
			Version:  2,
			Requires: "5.0",
		},
	}

	assert.Empty(t, Validate(cfgs))
}

func TestValidateCodes(t *testing.T) {
	tests := []struct {
		name string
		cfgs []capability.ToolConfig
		want []string
	}{
		{
			name: "duplicate tool name",
			cfgs: []capability.ToolConfig{validTool("dup"), validTool("dup")},
			want: []string{ErrDuplicateTool},
		},
		{
			name: "empty accepts",
			cfgs: []capability.ToolConfig{{
				Name:    "noFormats",
				Classes: capability.AllClasses(),
				Version: 1,
			}},
			want: []string{ErrEmptyAccepts},
		},
		{
			name: "blank class in restricted scope",
			cfgs: []capability.ToolConfig{{
				Name:    "blankClass",
				Accepts: []string{"ids"},
				Classes: capability.Classes("Gene", "  "),
				Version: 1,
			}},
			want: []string{ErrBlankClass},
		},
		{
			name: "version below one",
			cfgs: func() []capability.ToolConfig {
				cfg := validTool("ancient")
				cfg.Version = 0
				return []capability.ToolConfig{cfg}
			}(),
			want: []string{ErrBadVersion},
		},
		{
			name: "requires without digits",
			cfgs: func() []capability.ToolConfig {
				cfg := validTool("vague")
				cfg.Requires = "latest"
				return []capability.ToolConfig{cfg}
			}(),
			want: []string{ErrMalformedRequire},
		},
		{
			name: "blank tool name",
			cfgs: func() []capability.ToolConfig {
				cfg := validTool("")
				return []capability.ToolConfig{cfg}
			}(),
			want: []string{ErrBadToolName},
		},
		{
			name: "tool name with spaces",
			cfgs: []capability.ToolConfig{validTool("not a name")},
			want: []string{ErrBadToolName},
		},
		{
			name: "blank dependency path",
			cfgs: func() []capability.ToolConfig {
				cfg := validTool("needy")
				cfg.Depends = []string{"Gene.symbol", ""}
				return []capability.ToolConfig{cfg}
			}(),
			want: []string{ErrBlankDependency},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.cfgs)
			assert.Equal(t, tt.want, codesOf(got))
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfgs := []capability.ToolConfig{
		{Name: "", Version: 0},
		validTool("fine"),
		validTool("fine"),
	}

	got := Validate(cfgs)
	codes := codesOf(got)
	assert.Contains(t, codes, ErrBadToolName)
	assert.Contains(t, codes, ErrEmptyAccepts)
	assert.Contains(t, codes, ErrBadVersion)
	assert.Contains(t, codes, ErrDuplicateTool)
}

func TestValidationErrorString(t *testing.T) {
	err := ValidationError{
		Field:   "tools[0].accepts",
		Message: `tool "x" must accept at least one format`,
		Code:    ErrEmptyAccepts,
	}

	require.Equal(t, `[E102] tools[0].accepts: tool "x" must accept at least one format`, err.Error())
}

func TestValidateRequiresWithDigitsPasses(t *testing.T) {
	cfg := validTool("pinned")
	cfg.Requires = "release-5.0"

	assert.Empty(t, Validate([]capability.ToolConfig{cfg}))
}
