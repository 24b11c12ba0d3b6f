package catalog

// Merge combines the user-level catalog with the project-level catalog,
// project entries winning on conflict. A disabled project entry removes the
// name outright; overrideTriggers replaces the trigger set wholesale; the
// default conflict behavior keeps the project entry's fields with both
// layers' trigger lists concatenated user-first, duplicates preserved.
// Disabled user entries never make it into the result. Neither input is
// mutated; absent (nil) inputs are treated as empty.
func Merge(user, project Catalog) Catalog {
	merged := make(Catalog, len(user)+len(project))
	for key, ue := range user {
		if ue.Disabled {
			continue
		}
		ue.Origin = OriginUser
		merged[key] = ue
	}
	for key, pe := range project {
		if pe.Disabled {
			delete(merged, key)
			continue
		}
		existing, ok := merged[key]
		if !ok || pe.OverrideTriggers {
			pe.Origin = OriginProject
			merged[key] = pe
			continue
		}
		pe.Triggers = concatTriggers(existing.Triggers, pe.Triggers)
		pe.Origin = OriginMerged
		merged[key] = pe
	}
	return merged
}

func concatTriggers(user, project TriggerSet) TriggerSet {
	return TriggerSet{
		FilePatterns: concat(user.FilePatterns, project.FilePatterns),
		Imports:      concat(user.Imports, project.Imports),
		Dependencies: concat(user.Dependencies, project.Dependencies),
		Keywords:     concat(user.Keywords, project.Keywords),
	}
}

func concat(a, b []string) []string {
	if len(a)+len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
