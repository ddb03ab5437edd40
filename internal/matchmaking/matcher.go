// internal/matchmaking/matcher.go
// Compatibility filtering and embedding similarity ranking

package matchmaking

import "math"

type Matcher struct {
	threshold float64
}

func NewMatcher(threshold float64) *Matcher {
	return &Matcher{threshold: threshold}
}

// FindMatch picks the best waiting partner for a candidate, or nil.
// Hard filters must all pass; survivors are ranked by cosine similarity
// and the winner must strictly exceed the threshold. When several
// survivors share the top score, the earliest-queued one wins. A
// candidate without a rankable embedding, absent or the zero-norm
// neutral fallback, takes the first survivor unranked.
// The call mutates nothing.
func (m *Matcher) FindMatch(candidate *QueueEntry, waiting []*QueueEntry) (*QueueEntry, float64) {
	var best *QueueEntry
	bestScore := m.threshold
	ranked := hasSignal(candidate.Embedding)

	for _, other := range waiting {
		if other.UserID == candidate.UserID {
			continue
		}
		if !m.compatible(candidate, other) {
			continue
		}

		if !ranked {
			// No embedding to rank with: hard filters decide
			return other, 0
		}

		score := CosineSimilarity(candidate.Embedding, other.Embedding)
		if score > bestScore {
			bestScore = score
			best = other
		}
	}

	if best == nil {
		return nil, 0
	}
	return best, bestScore
}

// compatible applies the hard filters in both directions
func (m *Matcher) compatible(a, b *QueueEntry) bool {
	if a.IntentMode != b.IntentMode {
		return false
	}
	if !wantsGender(a.GenderPreference, b) || !wantsGender(b.GenderPreference, a) {
		return false
	}
	if a.City != "" && b.City != "" && a.CityKey() != b.CityKey() {
		return false
	}
	return true
}

// wantsGender checks one direction of the gender preference.
// A flexible counterpart (unknown or OTHER gender) passes any preference.
func wantsGender(pref GenderPreference, other *QueueEntry) bool {
	if pref == "" || pref == PreferAll {
		return true
	}
	if other.Flexible() {
		return true
	}
	return string(pref) == string(other.Gender)
}

// hasSignal reports whether a vector can rank candidates. The neutral
// fallback vector the embedding provider emits on failure is all zeros,
// scores 0 against everything, and must not suppress filter-only matching.
func hasSignal(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return true
		}
	}
	return false
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||).
// Mismatched lengths or a zero-norm vector score 0 rather than erroring.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
