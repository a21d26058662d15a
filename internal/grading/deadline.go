package grading

import "time"

const DefaultLatePenaltyPercent = 80

type DeadlinePolicy struct {
	// PenaltyPercent is the share of the score a late submission keeps.
	PenaltyPercent int
}

func DefaultDeadlinePolicy() DeadlinePolicy {
	return DeadlinePolicy{PenaltyPercent: DefaultLatePenaltyPercent}
}

// IsLate reports whether submittedAt is strictly after deadline. A missing
// deadline is never late.
func IsLate(deadline *time.Time, submittedAt time.Time) bool {
	if deadline == nil {
		return false
	}
	return submittedAt.After(*deadline)
}

func (p DeadlinePolicy) IsLate(deadline *time.Time, submittedAt time.Time) bool {
	return IsLate(deadline, submittedAt)
}

// Apply returns floor(score * PenaltyPercent / 100), clamped to [0, total].
func (p DeadlinePolicy) Apply(score, total int) int {
	if score <= 0 {
		return 0
	}

	pct := min(max(p.PenaltyPercent, 0), 100)
	penalized := score * pct / 100

	if total >= 0 && penalized > total {
		return total
	}
	return penalized
}
