package facematch

// Admit decides whether name may be enrolled with encoding. The checks run in a
// fixed order: empty name, then name collision, then face similarity. Admit does
// not write anything; on Admitted the caller stores (result.Name, encoding).
func Admit(name string, encoding Encoding, entries []Entry, tolerance float64) AdmitResult {
	name = CanonicalName(name)
	if name == "" {
		return AdmitResult{Status: RejectedEmptyName}
	}

	for _, e := range entries {
		if e.Name == name {
			return AdmitResult{Status: RejectedNameTaken, Name: name}
		}
	}

	if m := Match(encoding, entries, tolerance); m.Status == Matched {
		return AdmitResult{
			Status:   RejectedFaceAlreadyKnown,
			Name:     name,
			Existing: m.Identity,
			Distance: m.Distance,
		}
	}

	return AdmitResult{Status: Admitted, Name: name}
}
