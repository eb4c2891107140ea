// Package progress computes completion over a work item's direct children.
// The result is never cached or persisted; callers recompute it at read time.
package progress

import (
	"math"

	"github.com/backlog-studio/engine/internal/models"
)

// Summary is the completion roll-up of one level of children. A leaf (no
// children) yields the zero Summary, rendered by clients as indeterminate.
type Summary struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Compute counts Done children among direct children only. Percentage is
// rounded half-up.
func Compute(children []models.WorkItem) Summary {
	if len(children) == 0 {
		return Summary{}
	}
	done := 0
	for _, c := range children {
		if c.Status == models.StatusDone {
			done++
		}
	}
	pct := int(math.Round(float64(done) * 100 / float64(len(children))))
	return Summary{Completed: done, Total: len(children), Percentage: pct}
}
