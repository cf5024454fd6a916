package vectorindex

// Historical registries were indexed under either a "category" or a "type"
// tag depending on the upload tool version, so the family filter matches both.
const (
	CategoryFamily = "famille"
	typeFamily     = "family"
)

// FamilyFilter builds the metadata filter for family/charity records.
// When neighborhood is non-empty it is added as an equality constraint.
func FamilyFilter(neighborhood string) map[string]any {
	family := map[string]any{
		"$or": []any{
			map[string]any{"category": map[string]any{"$eq": CategoryFamily}},
			map[string]any{"type": map[string]any{"$eq": typeFamily}},
		},
	}

	if neighborhood == "" {
		return family
	}

	return map[string]any{
		"$and": []any{
			family,
			map[string]any{"neighborhood": map[string]any{"$eq": neighborhood}},
		},
	}
}
