package facematch

// Plan flattens the duplicates of every group into one removal list, keeping
// group order and within-group order. Primaries are never included.
func Plan(groups []DuplicateGroup) CleanupPlan {
	plan := CleanupPlan{}
	for _, g := range groups {
		plan = append(plan, g.Duplicates...)
	}
	return plan
}

// Members returns the number of identities covered by groups (primaries and duplicates).
func Members(groups []DuplicateGroup) int {
	n := 0
	for _, g := range groups {
		n += 1 + len(g.Duplicates)
	}
	return n
}
