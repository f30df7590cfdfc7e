package facematch

// Match scans entries in name order and returns the first one whose encoding is
// within tolerance of query. It is not a nearest-neighbour search: a later entry
// may be closer, but the first qualifying one wins.
func Match(query Encoding, entries []Entry, tolerance float64) MatchResult {
	for _, e := range SortEntries(entries) {
		if d := Distance(query, e.Encoding); d <= tolerance {
			return MatchResult{Status: Matched, Identity: e.Name, Distance: d}
		}
	}
	return MatchResult{Status: NoMatch}
}

// MatchFirst applies the extractor contract: only the first encoding is used,
// and an empty slice means no face was detected.
func MatchFirst(encodings []Encoding, entries []Entry, tolerance float64) MatchResult {
	if len(encodings) == 0 {
		return MatchResult{Status: NoFaceDetected}
	}
	return Match(encodings[0], entries, tolerance)
}
