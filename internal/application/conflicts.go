package application

import (
	"context"
	"sort"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/recurrence"
	"github.com/example/lifetracker/internal/scheduler"
)

// conflictsFor reports active events overlapping the event with the given
// id within the conflict horizon. Tasks and archived entries have none.
func (t *Tracker) conflictsFor(ctx context.Context, id int) []ConflictWarning {
	if id <= 0 {
		return nil
	}
	candidate, err := t.list.Get(id)
	if err != nil || candidate.Kind().IsTask() || !candidate.IsActive() {
		return nil
	}

	from := candidate.AnchorStart()
	if now := t.now(); from.Before(now) {
		from = now
	}
	to := t.horizon.AddTo(from)
	if !candidate.IsRecurring() {
		to = candidate.AnchorEnd()
	}
	if !to.After(from) {
		return nil
	}

	key := buildWarningCacheKey(t.version, id, from, to)
	if cached, ok := t.cache.Get(key); ok {
		return cached
	}

	logger := t.loggerWith(ctx, "DetectConflicts", "entry_id", id)
	own, err := t.engine.Between(candidate, from, to)
	if err != nil {
		logger.WarnContext(ctx, "failed to expand candidate", "error", err, "error_kind", ErrorKind(err))
		return nil
	}
	var existing []scheduler.Window
	for _, e := range t.list.ActiveEvents() {
		if e.ID() == id {
			continue
		}
		occurrences, err := t.engine.Between(e, from, to)
		if err != nil {
			logger.WarnContext(ctx, "failed to expand event", "with_id", e.ID(), "error", err, "error_kind", ErrorKind(err))
			continue
		}
		existing = append(existing, toWindows(occurrences)...)
	}

	seen := make(map[int]bool)
	var warnings []ConflictWarning
	for _, w := range toWindows(own) {
		for _, warning := range toConflictWarnings(id, scheduler.DetectConflicts(existing, w)) {
			if seen[warning.WithID] {
				continue
			}
			seen[warning.WithID] = true
			warnings = append(warnings, warning)
		}
	}
	sort.SliceStable(warnings, func(i, j int) bool {
		if !warnings[i].Start.Equal(warnings[j].Start) {
			return warnings[i].Start.Before(warnings[j].Start)
		}
		return warnings[i].WithID < warnings[j].WithID
	})

	t.cache.Store(key, warnings)
	if len(warnings) > 0 {
		logger.With("warning_count", len(warnings)).DebugContext(ctx, "conflicts detected")
	}
	return warnings
}

// Conflicts reports the conflict warnings of one event.
func (t *Tracker) Conflicts(ctx context.Context, id int) ([]ConflictWarning, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.list.Get(id); err != nil {
		return nil, err
	}
	return t.conflictsFor(ctx, id), nil
}

func toWindows(occurrences []recurrence.Occurrence) []scheduler.Window {
	windows := make([]scheduler.Window, 0, len(occurrences))
	for _, o := range occurrences {
		if o.Kind != calendar.KindEvent && o.Kind != calendar.KindRecurringEvent {
			continue
		}
		windows = append(windows, scheduler.Window{ID: o.EntryID, Name: o.Name, Start: o.Start, End: o.End})
	}
	return windows
}

func toConflictWarnings(entryID int, conflicts []scheduler.Conflict) []ConflictWarning {
	if len(conflicts) == 0 {
		return nil
	}

	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, ConflictWarning{
			EntryID:  entryID,
			WithID:   conflict.WithID,
			WithName: conflict.WithName,
			Type:     string(conflict.Type),
			Start:    conflict.Start,
			End:      conflict.End,
		})
	}
	return warnings
}
