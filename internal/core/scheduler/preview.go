package scheduler

import (
	"time"

	"github.com/snapdeck/snapdeck-review-engine/internal/core/domain"
)

// PreviewEntry is the outcome one rating would produce, without anything
// being persisted.
type PreviewEntry struct {
	State domain.ReviewState `json:"state"`
	Label string             `json:"label"`
}

// Preview runs Next once per rating against the same previous state and
// labels each outcome with its formatted interval. It never mutates prev;
// hosts use it to annotate the four rating buttons.
func Preview(prev *domain.ReviewState, cfg Config, now time.Time) map[domain.Rating]PreviewEntry {
	out := make(map[domain.Rating]PreviewEntry, len(domain.Ratings))
	for _, r := range domain.Ratings {
		next := Next(prev, r, cfg, now)
		out[r] = PreviewEntry{
			State: next,
			Label: FormatInterval(next.IntervalDays),
		}
	}
	return out
}
