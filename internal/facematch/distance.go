package facematch

import (
	"math"
	"slices"
	"strings"

	"github.com/coder/hnsw"
)

// Distance returns the Euclidean distance between two encodings.
// Encodings of different (or zero) length are infinitely far apart.
// Components are float32, so a tolerance is compared against the distance of
// the stored values, not of the extractor's original float64 output.
func Distance(a, b Encoding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	return float64(hnsw.EuclideanDistance(a, b))
}

// Within reports whether two encodings are within tolerance of each other.
func Within(a, b Encoding, tolerance float64) bool {
	return Distance(a, b) <= tolerance
}

// SortEntries returns a copy of entries in scan order (name ascending, byte-wise).
// Every scan in this package goes through it so results never depend on the
// order a storage backend happened to return.
func SortEntries(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return sorted
}
