package facematch

import "fmt"

// ClusterPolicy selects how duplicate groups are formed
type ClusterPolicy string

const (
	// PolicyGreedy is one-pass greedy single linkage in name order. It is not a
	// transitive closure: if A~B and B~C but not A~C, C stays out of A's group.
	PolicyGreedy ClusterPolicy = "greedy"
	// PolicyTransitive groups connected components of the within-tolerance relation.
	PolicyTransitive ClusterPolicy = "transitive"
)

// ParseClusterPolicy parses a policy name; empty means PolicyGreedy.
func ParseClusterPolicy(s string) (ClusterPolicy, error) {
	switch ClusterPolicy(s) {
	case "", PolicyGreedy:
		return PolicyGreedy, nil
	case PolicyTransitive:
		return PolicyTransitive, nil
	default:
		return "", fmt.Errorf("unknown cluster policy %q (want %q or %q)", s, PolicyGreedy, PolicyTransitive)
	}
}

// Cluster partitions entries into duplicate groups. Identities with no
// duplicate are omitted, and no identity appears in more than one group.
// Both policies cost O(n²) distance computations.
func Cluster(entries []Entry, tolerance float64, policy ClusterPolicy) []DuplicateGroup {
	sorted := SortEntries(entries)
	if policy == PolicyTransitive {
		return clusterTransitive(sorted, tolerance)
	}
	return clusterGreedy(sorted, tolerance)
}

func clusterGreedy(entries []Entry, tolerance float64) []DuplicateGroup {
	consumed := make([]bool, len(entries))
	var groups []DuplicateGroup

	for i := range entries {
		if consumed[i] {
			continue
		}
		// An unconsumed j < i was already compared against i when j was the
		// candidate primary, so only later entries can still join.
		var duplicates []string
		for j := i + 1; j < len(entries); j++ {
			if consumed[j] {
				continue
			}
			if Within(entries[i].Encoding, entries[j].Encoding, tolerance) {
				duplicates = append(duplicates, entries[j].Name)
				consumed[j] = true
			}
		}
		if len(duplicates) > 0 {
			consumed[i] = true
			groups = append(groups, DuplicateGroup{Primary: entries[i].Name, Duplicates: duplicates})
		}
	}

	return groups
}

func clusterTransitive(entries []Entry, tolerance float64) []DuplicateGroup {
	uf := newUnionFind(len(entries))
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if Within(entries[i].Encoding, entries[j].Encoding, tolerance) {
				uf.union(i, j)
			}
		}
	}

	// Walking in name order makes the first member of each component its primary.
	groupIndex := make(map[int]int)
	var groups []DuplicateGroup
	for i := range entries {
		root := uf.find(i)
		if uf.size[root] < 2 {
			continue
		}
		idx, ok := groupIndex[root]
		if !ok {
			groupIndex[root] = len(groups)
			groups = append(groups, DuplicateGroup{Primary: entries[i].Name})
			continue
		}
		groups[idx].Duplicates = append(groups[idx].Duplicates, entries[i].Name)
	}

	return groups
}

type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), size: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}
