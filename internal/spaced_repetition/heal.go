package spaced_repetition

import (
	"fmt"

	"github.com/example/petwords/pkg/models"
)

// Heal repairs a stored record that breaks the record invariants and returns
// the repaired record with one message per repair. A valid record comes back
// unchanged with no messages.
//
// Repairs, in order: out-of-range level is clamped; negative counters become 0;
// reviewCount is reset to correct+incorrect; a record answered correctly but
// never missed is raised to at least FAMILIAR (older clients did not apply the
// first-correct jump); history is trimmed to the newest entries; nextReview is
// recomputed from lastReviewed.
func Heal(rec models.WordRecord) (models.WordRecord, []string) {
	var issues []string
	fixed := rec.Clone()

	if !fixed.MasteryLevel.Valid() {
		clamped := ClampLevel(fixed.MasteryLevel)
		issues = append(issues, fmt.Sprintf("mastery level %d clamped to %d", fixed.MasteryLevel, clamped))
		fixed.MasteryLevel = clamped
	}

	if fixed.CorrectCount < 0 {
		issues = append(issues, fmt.Sprintf("correct count %d reset to 0", fixed.CorrectCount))
		fixed.CorrectCount = 0
	}
	if fixed.IncorrectCount < 0 {
		issues = append(issues, fmt.Sprintf("incorrect count %d reset to 0", fixed.IncorrectCount))
		fixed.IncorrectCount = 0
	}
	if sum := fixed.CorrectCount + fixed.IncorrectCount; fixed.ReviewCount != sum {
		issues = append(issues, fmt.Sprintf("review count %d reset to %d", fixed.ReviewCount, sum))
		fixed.ReviewCount = sum
	}

	if fixed.CorrectCount > 0 && fixed.IncorrectCount == 0 && fixed.MasteryLevel < models.MasteryFamiliar {
		issues = append(issues, fmt.Sprintf("mastery level %d raised to %d after correct answers", fixed.MasteryLevel, models.MasteryFamiliar))
		fixed.MasteryLevel = models.MasteryFamiliar
	}

	if len(fixed.History) > models.MaxHistory {
		issues = append(issues, fmt.Sprintf("history trimmed from %d to %d entries", len(fixed.History), models.MaxHistory))
		fixed.History = trimHistory(fixed.History)
	}

	if fixed.LastReviewed.Valid() {
		if want := NextReview(fixed.MasteryLevel, fixed.LastReviewed); fixed.NextReview != want {
			issues = append(issues, fmt.Sprintf("next review %q recomputed to %q", fixed.NextReview, want))
			fixed.NextReview = want
		}
	}

	return fixed, issues
}
