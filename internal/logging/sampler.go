package logging

// AttemptSampler suppresses repetitive per-attempt poll logs. A poll may run
// a hundred attempts; logging each one drowns the interesting lines, so only
// the first few attempts and then every power-of-two attempt are emitted.
type AttemptSampler struct {
	head int
}

// NewAttemptSampler constructs a sampler that always emits the first head
// attempts (default 3).
func NewAttemptSampler(head int) *AttemptSampler {
	if head <= 0 {
		head = 3
	}
	return &AttemptSampler{head: head}
}

// ShouldLog reports whether the given 1-based attempt should be logged.
// A nil sampler logs everything.
func (s *AttemptSampler) ShouldLog(attempt int) bool {
	if s == nil {
		return true
	}
	if attempt <= s.head {
		return true
	}
	return attempt&(attempt-1) == 0
}
