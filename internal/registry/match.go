package registry

import (
	"github.com/quenault/pathmine/internal/capability"
	"github.com/quenault/pathmine/internal/version"
)

// Match pairs an eligible tool with the subset of environment entities it
// can consume.
type Match struct {
	Tool     capability.ToolConfig
	Entities capability.EntitySet
}

// Match runs every registered tool against the environment and returns
// the eligible ones in name order.
//
// A tool is skipped when its minimum service release is not satisfied, or
// when the capability filter finds nothing for it to work on. Skipping is
// the normal outcome for most tools on most pages; it is never an error.
func (r *Registry) Match(env capability.Environment) []Match {
	var matches []Match
	for _, cfg := range r.All() {
		if cfg.Requires != "" && !version.CompatibleStrings(cfg.Requires, env.Release) {
			continue
		}

		entities, ok := capability.SuitableEntities(env.Model, env.Entities, &cfg)
		if !ok {
			continue
		}

		matches = append(matches, Match{Tool: cfg, Entities: entities})
	}
	return matches
}
