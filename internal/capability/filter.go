package capability

// SuitableEntities decides whether a tool can run in the given environment
// and narrows the candidate entities to the subset it may operate on.
//
// The bool is false when the tool is not applicable: nil config, tool API
// version mismatch, unmet model dependency, or no entity surviving the
// format and class restrictions. An empty survivor set reports as not
// applicable, never as an empty map, so presence doubles as the
// "show this tool at all" check.
//
// Inputs are never mutated; the returned set is freshly allocated.
func SuitableEntities(model DataModel, entities EntitySet, cfg *ToolConfig) (EntitySet, bool) {
	if cfg == nil {
		return nil, false
	}

	v := cfg.Version
	if v == 0 {
		v = 1
	}
	if v != APIVersion {
		return nil, false
	}

	for _, dep := range cfg.Depends {
		if !model.Has(dep) {
			return nil, false
		}
	}

	accepts := make(map[string]struct{}, len(cfg.Accepts))
	for _, format := range cfg.Accepts {
		accepts[format] = struct{}{}
	}

	suitable := make(EntitySet)
	for class, entity := range entities {
		if _, ok := accepts[entity.Format]; !ok {
			continue
		}
		if !cfg.Classes.Contains(class) {
			continue
		}
		suitable[class] = entity
	}

	if len(suitable) == 0 {
		return nil, false
	}
	return suitable, true
}
