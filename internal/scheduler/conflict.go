package scheduler

import (
	"sort"
	"time"
)

// Window is one concrete time span occupied by a calendar entry.
type Window struct {
	ID    int
	Name  string
	Start time.Time
	End   time.Time
}

// ConflictType describes the type of conflict detected between windows.
type ConflictType string

const (
	// ConflictTypeOverlap indicates the windows partially overlap.
	ConflictTypeOverlap ConflictType = "overlap"
	// ConflictTypeSameWindow indicates the windows start and end together.
	ConflictTypeSameWindow ConflictType = "same_window"
)

// Conflict details an overlapping entry that callers can present to users.
type Conflict struct {
	WithID   int
	WithName string
	Type     ConflictType
	Start    time.Time
	End      time.Time
}

// Overlaps reports whether two half-open windows share any instant.
func Overlaps(a, b Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// DetectConflicts identifies conflicts for the candidate window against existing ones.
// Windows with the candidate's ID and empty windows are ignored. The result is
// ordered by start time, then ID.
func DetectConflicts(existing []Window, candidate Window) []Conflict {
	if !candidate.Start.Before(candidate.End) {
		return nil
	}

	var conflicts []Conflict
	for _, w := range existing {
		if w.ID == candidate.ID || !w.Start.Before(w.End) {
			continue
		}
		if !Overlaps(w, candidate) {
			continue
		}
		kind := ConflictTypeOverlap
		if w.Start.Equal(candidate.Start) && w.End.Equal(candidate.End) {
			kind = ConflictTypeSameWindow
		}
		conflicts = append(conflicts, Conflict{
			WithID:   w.ID,
			WithName: w.Name,
			Type:     kind,
			Start:    w.Start,
			End:      w.End,
		})
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		if !conflicts[i].Start.Equal(conflicts[j].Start) {
			return conflicts[i].Start.Before(conflicts[j].Start)
		}
		return conflicts[i].WithID < conflicts[j].WithID
	})
	return conflicts
}
