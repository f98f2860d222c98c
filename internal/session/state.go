package session

import "strings"

// SessionState is one user's progress through one test: answers keyed by
// question index (option letter for mcq, free text for desc), the last
// viewed question, and the one-way completed flag. Answered and Total are
// caches recomputed from Answers before every persist; they are never
// trusted across loads. DescriptiveScores holds admin-assigned grades for
// desc questions; a missing entry means ungraded, not zero.
type SessionState struct {
	Answers           map[int]string  `json:"answers"`
	CurrentIndex      int             `json:"currentIndex"`
	Answered          int             `json:"answered"`
	Total             int             `json:"total"`
	Completed         bool            `json:"completed"`
	DescriptiveScores map[int]float64 `json:"descriptiveScores,omitempty"`
}

// UserTests maps test ID -> session state; persisted per user as a single
// serialized blob.
type UserTests map[string]SessionState

// Fresh returns an empty session for a test with the given question count.
func Fresh(total int) SessionState {
	return SessionState{
		Answers:      map[int]string{},
		CurrentIndex: 0,
		Answered:     0,
		Total:        total,
		Completed:    false,
	}
}

// RecomputeProgress refreshes the derived Answered/Total caches.
func (s *SessionState) RecomputeProgress(total int) {
	n := 0
	for _, a := range s.Answers {
		if a != "" {
			n++
		}
	}
	s.Answered = n
	s.Total = total
}

// HasAnswers reports whether at least one non-empty answer is recorded.
func (s SessionState) HasAnswers() bool {
	for _, a := range s.Answers {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; stores hand these out so callers cannot alias
// internal maps.
func (s SessionState) Clone() SessionState {
	out := s
	out.Answers = make(map[int]string, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	if s.DescriptiveScores != nil {
		out.DescriptiveScores = make(map[int]float64, len(s.DescriptiveScores))
		for k, v := range s.DescriptiveScores {
			out.DescriptiveScores[k] = v
		}
	}
	return out
}

// Clone deep-copies the whole mapping.
func (m UserTests) Clone() UserTests {
	out := make(UserTests, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}
