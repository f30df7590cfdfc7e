package facematch

import (
	"math"
	"testing"
)

const testDim = 128

// encodingAt returns a testDim encoding that is zero except for the given axis offsets.
func encodingAt(offsets map[int]float32) Encoding {
	e := make(Encoding, testDim)
	for axis, v := range offsets {
		e[axis] = v
	}
	return e
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        Encoding
		b        Encoding
		expected float64
	}{
		{
			name:     "identical",
			a:        encodingAt(map[int]float32{0: 1}),
			b:        encodingAt(map[int]float32{0: 1}),
			expected: 0,
		},
		{
			name:     "single axis",
			a:        encodingAt(nil),
			b:        encodingAt(map[int]float32{3: 0.5}),
			expected: 0.5,
		},
		{
			name:     "pythagorean",
			a:        encodingAt(nil),
			b:        encodingAt(map[int]float32{0: 0.3, 1: 0.4}),
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Distance(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 1e-6 {
				t.Errorf("Distance() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDistance_InvalidInput(t *testing.T) {
	if d := Distance(Encoding{1, 2}, Encoding{1, 2, 3}); !math.IsInf(d, 1) {
		t.Errorf("Distance() with mismatched dims = %v, want +Inf", d)
	}
	if d := Distance(nil, nil); !math.IsInf(d, 1) {
		t.Errorf("Distance() with empty encodings = %v, want +Inf", d)
	}
}

func TestMatch_EmptyStore(t *testing.T) {
	queries := []Encoding{
		encodingAt(nil),
		encodingAt(map[int]float32{0: 1}),
		encodingAt(map[int]float32{5: -2, 9: 0.1}),
	}
	for _, q := range queries {
		result := Match(q, nil, 0.4)
		if result.Status != NoMatch {
			t.Errorf("Match() on empty store = %s, want %s", result.Status, NoMatch)
		}
	}
}

func TestMatch_Tolerance(t *testing.T) {
	frank := encodingAt(nil)
	entries := []Entry{{Name: "frank", Encoding: frank}}

	tests := []struct {
		name     string
		query    Encoding
		expected MatchStatus
	}{
		{"within tolerance", encodingAt(map[int]float32{0: 0.35}), Matched},
		{"outside tolerance", encodingAt(map[int]float32{0: 0.45}), NoMatch},
		{"far outside tolerance", encodingAt(map[int]float32{0: 2}), NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Match(tt.query, entries, 0.4)
			if result.Status != tt.expected {
				t.Errorf("Match() status = %s, want %s", result.Status, tt.expected)
			}
			if tt.expected == Matched && result.Identity != "frank" {
				t.Errorf("Match() identity = %q, want %q", result.Identity, "frank")
			}
		})
	}
}

func TestMatch_BoundaryIsInclusive(t *testing.T) {
	entries := []Entry{{Name: "frank", Encoding: encodingAt(nil)}}
	result := Match(encodingAt(map[int]float32{0: 0.5}), entries, 0.5)
	if result.Status != Matched {
		t.Errorf("Match() at distance == tolerance = %s, want %s", result.Status, Matched)
	}
}

func TestMatch_ComparesStoredFloat32Values(t *testing.T) {
	// 0.4 is not representable in float32; the stored component is slightly larger.
	entries := []Entry{{Name: "frank", Encoding: encodingAt(nil)}}
	query := encodingAt(map[int]float32{0: 0.4})

	if got := Match(query, entries, 0.4).Status; got != NoMatch {
		t.Errorf("Match() with tolerance 0.4 = %s, want %s", got, NoMatch)
	}
	if got := Match(query, entries, float64(float32(0.4))).Status; got != Matched {
		t.Errorf("Match() with tolerance float32(0.4) = %s, want %s", got, Matched)
	}
}

func TestMatch_FirstCandidateInNameOrder(t *testing.T) {
	// zed is the closest entry, but both qualify and "amy" sorts first.
	entries := []Entry{
		{Name: "zed", Encoding: encodingAt(map[int]float32{0: 0.01})},
		{Name: "amy", Encoding: encodingAt(map[int]float32{0: 0.3})},
		{Name: "bob", Encoding: encodingAt(map[int]float32{0: 0.2})},
	}
	query := encodingAt(nil)

	result := Match(query, entries, 0.4)
	if result.Status != Matched || result.Identity != "amy" {
		t.Errorf("Match() = %+v, want first candidate amy", result)
	}

	// Same store in a different backend order gives the same answer.
	reversed := []Entry{entries[2], entries[1], entries[0]}
	if again := Match(query, reversed, 0.4); again.Identity != result.Identity {
		t.Errorf("Match() depends on input order: %q vs %q", again.Identity, result.Identity)
	}
}

func TestMatch_SkipsMismatchedDimensions(t *testing.T) {
	entries := []Entry{
		{Name: "short", Encoding: Encoding{0, 0}},
		{Name: "zoe", Encoding: encodingAt(nil)},
	}
	result := Match(encodingAt(nil), entries, 0.4)
	if result.Identity != "zoe" {
		t.Errorf("Match() identity = %q, want zoe", result.Identity)
	}
}

func TestMatchFirst(t *testing.T) {
	entries := []Entry{{Name: "frank", Encoding: encodingAt(nil)}}

	if r := MatchFirst(nil, entries, 0.4); r.Status != NoFaceDetected {
		t.Errorf("MatchFirst(nil) = %s, want %s", r.Status, NoFaceDetected)
	}
	if r := MatchFirst([]Encoding{}, nil, 0.4); r.Status != NoFaceDetected {
		t.Errorf("MatchFirst(empty) = %s, want %s", r.Status, NoFaceDetected)
	}

	// Only the first encoding counts, even if the second would match.
	encs := []Encoding{encodingAt(map[int]float32{0: 2}), encodingAt(nil)}
	if r := MatchFirst(encs, entries, 0.4); r.Status != NoMatch {
		t.Errorf("MatchFirst() = %s, want %s", r.Status, NoMatch)
	}
}
