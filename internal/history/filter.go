package history

import (
	"time"

	"github.com/kapu/chess-guru-go/pkg/chessdto"
)

// TimeBound is an optional inclusive [From, To] UTC range. Nil ends are
// unbounded. Bounds are normalized to UTC on construction and read-only
// afterwards.
type TimeBound struct {
	From *time.Time
	To   *time.Time
}

// NewTimeBound normalizes both ends to UTC.
func NewTimeBound(from, to *time.Time) TimeBound {
	return TimeBound{From: toUTC(from), To: toUTC(to)}
}

func toUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// IsZero reports whether no bound is set at all.
func (b TimeBound) IsZero() bool { return b.From == nil && b.To == nil }

// Validate rejects an inverted range.
func (b TimeBound) Validate() error {
	if b.From != nil && b.To != nil && b.From.After(*b.To) {
		return chessdto.NewValidationError("from must be <= to")
	}
	return nil
}

// filterMonths keeps the archives whose (year, month) can contain in-range
// games, preserving order. Boundary months always survive; the per-game
// filter tightens the cut afterwards.
func filterMonths(refs []ArchiveRef, bound TimeBound) []ArchiveRef {
	if bound.IsZero() {
		return refs
	}
	kept := make([]ArchiveRef, 0, len(refs))
	for _, ref := range refs {
		if bound.From != nil && ref.beforeYM(bound.From.Year(), int(bound.From.Month())) {
			continue
		}
		if bound.To != nil && ref.afterYM(bound.To.Year(), int(bound.To.Month())) {
			continue
		}
		kept = append(kept, ref)
	}
	return kept
}

// gameInRange applies the bound at per-game granularity. With any bound set,
// a game without an end_time is excluded: there is nothing to compare.
func gameInRange(g *chessdto.GameRecord, bound TimeBound) bool {
	if bound.IsZero() {
		return true
	}
	if g.EndTime == nil {
		return false
	}
	ended := time.Unix(*g.EndTime, 0).UTC()
	if bound.From != nil && ended.Before(*bound.From) {
		return false
	}
	if bound.To != nil && ended.After(*bound.To) {
		return false
	}
	return true
}
