package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/lifetracker/internal/calendar"
	"github.com/example/lifetracker/internal/command"
	"github.com/example/lifetracker/internal/export"
	"github.com/example/lifetracker/internal/parser"
	"github.com/example/lifetracker/internal/persistence"
	"github.com/example/lifetracker/internal/recurrence"
)

// DefaultHistoryLimit is the number of commands kept for undo when the
// options leave it unset.
const DefaultHistoryLimit = 50

// DefaultConflictHorizon bounds how far ahead recurring events are expanded
// when looking for conflicts.
var DefaultConflictHorizon = calendar.Weeks(4)

// TrackerOptions tunes a Tracker. Zero values pick the defaults.
type TrackerOptions struct {
	HistoryLimit    int
	Location        *time.Location
	ConflictHorizon calendar.Period
}

type historyItem struct {
	verb string
	cmd  command.Command
	// view is the list displayed before a view command ran.
	view *calendar.List
}

// Tracker owns the canonical list, the undo history and the list currently
// displayed. It serialises every operation.
type Tracker struct {
	mu sync.Mutex

	entries persistence.EntryRepository
	journal persistence.JournalRepository
	engine  *recurrence.Engine
	cache   *warningCache

	idGenerator  func() string
	now          func() time.Time
	location     *time.Location
	historyLimit int
	horizon      calendar.Period
	logger       *slog.Logger

	list      *calendar.List
	view      *calendar.List
	history   []historyItem
	highlight map[int]bool
	version   uint64
}

// NewTracker wires a tracker over the given repositories. Either repository
// may be nil, in which case that concern is skipped.
func NewTracker(entries persistence.EntryRepository, journal persistence.JournalRepository, opts TrackerOptions, idGenerator func() string, now func() time.Time) *Tracker {
	return NewTrackerWithLogger(entries, journal, opts, idGenerator, now, nil)
}

// NewTrackerWithLogger constructs a Tracker with a specified logger.
func NewTrackerWithLogger(entries persistence.EntryRepository, journal persistence.JournalRepository, opts TrackerOptions, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Tracker {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ConflictHorizon.IsZero() {
		opts.ConflictHorizon = DefaultConflictHorizon
	}
	return &Tracker{
		entries:      entries,
		journal:      journal,
		engine:       recurrence.NewEngine(opts.Location),
		cache:        newWarningCache(time.Minute, 256, now),
		idGenerator:  idGenerator,
		now:          now,
		location:     opts.Location,
		historyLimit: opts.HistoryLimit,
		horizon:      opts.ConflictHorizon,
		logger:       defaultLogger(logger),
		list:         calendar.NewList(now),
	}
}

func (t *Tracker) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, t.logger, "Tracker", operation, attrs...)
}

// Load replaces the in-memory list with the persisted one and clears the
// undo history. Records that no longer satisfy the entry invariants are
// reported together and nothing is loaded.
func (t *Tracker) Load(ctx context.Context) error {
	if t == nil {
		return fmt.Errorf("Tracker is nil")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	logger := t.loggerWith(ctx, "Load")
	list := calendar.NewList(t.now)
	if t.entries != nil {
		records, err := t.entries.ListEntries(ctx)
		if err != nil {
			err = mapEntryRepoError(err)
			logger.ErrorContext(ctx, "failed to load entries", "error", err, "error_kind", ErrorKind(err))
			return err
		}
		vErr := &ValidationError{}
		for _, rec := range records {
			e, recErr := validateRecord(rec)
			if recErr != nil {
				vErr.merge(recErr)
				continue
			}
			if _, err := list.Insert(e); err != nil {
				vErr.add(fmt.Sprintf("entry %d", rec.ID), err.Error())
			}
		}
		if vErr.HasErrors() {
			err := fmt.Errorf("%w: %w", ErrStorage, vErr)
			logger.ErrorContext(ctx, "stored entries are invalid", "error", err, "error_kind", ErrorKind(err))
			return err
		}
	}

	t.list = list
	t.view = nil
	t.history = nil
	t.highlight = nil
	t.bump()
	logger.With("result_count", list.Len()).InfoContext(ctx, "entries loaded")
	return nil
}

// Get returns a copy of the entry with the given id. It lets the tracker
// act as a parser.Resolver.
func (t *Tracker) Get(id int) (*calendar.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.list.Get(id)
}

// Handle parses one input line and carries out the resulting intent.
func (t *Tracker) Handle(ctx context.Context, line string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	intent, err := parser.Parse(line, t.now(), t.list)
	if err != nil {
		t.loggerWith(ctx, "Handle").DebugContext(ctx, "input rejected", "error", err, "error_kind", ErrorKind(err))
		return t.failure(err), err
	}
	return t.dispatch(ctx, intent)
}

// Dispatch carries out an already parsed intent.
func (t *Tracker) Dispatch(ctx context.Context, intent parser.Intent) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dispatch(ctx, intent)
}

func (t *Tracker) dispatch(ctx context.Context, intent parser.Intent) (Result, error) {
	var (
		result Result
		err    error
	)
	switch intent.Action {
	case parser.ActionExecute:
		result, err = t.execute(ctx, intent.Verb, intent.Command)
	case parser.ActionUndo:
		result, err = t.undo(ctx)
	case parser.ActionList:
		result = t.showAll()
	case parser.ActionAgenda:
		result, err = t.agenda(ctx, intent.Window)
	case parser.ActionExport:
		result, err = t.exportFile(ctx, intent.Arg)
	case parser.ActionHistory:
		result, err = t.historyOf(ctx, intent.Count)
	}
	result.Action = intent.Action
	return result, err
}

// Execute runs cmd against the list, persists the outcome and records it
// for undo.
func (t *Tracker) Execute(ctx context.Context, cmd command.Command) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.execute(ctx, verbOf(cmd), cmd)
}

func (t *Tracker) execute(ctx context.Context, verb string, cmd command.Command) (Result, error) {
	if cmd == nil {
		return Result{}, errors.New("application: nil command")
	}
	commandID := t.idGenerator()
	logger := t.loggerWith(ctx, "Execute", "command_id", commandID, "verb", verb)

	if _, ok := cmd.(command.View); ok {
		prior := t.view
		shown, err := cmd.Execute(t.list)
		if err != nil {
			logger.WarnContext(ctx, "command rejected", "error", err, "error_kind", ErrorKind(err))
			return t.failure(err), err
		}
		t.view = shown
		t.push(historyItem{verb: verb, cmd: cmd, view: prior})
		t.record(ctx, logger, commandID, verb, cmd, false)
		logger.With("result_count", shown.Len()).InfoContext(ctx, "view changed")
		return t.render(cmd.Comment()), nil
	}

	working := t.list.Clone()
	if _, err := cmd.Execute(working); err != nil {
		logger.WarnContext(ctx, "command rejected", "error", err, "error_kind", ErrorKind(err))
		return t.failure(err), err
	}
	if err := t.persist(ctx, working); err != nil {
		logger.ErrorContext(ctx, "failed to persist entries", "error", err, "error_kind", ErrorKind(err))
		return t.failure(err), err
	}

	t.list = working
	t.view = nil
	t.bump()
	t.push(historyItem{verb: verb, cmd: cmd})
	if h, ok := cmd.(command.Highlighter); ok {
		t.highlight = make(map[int]bool)
		for _, id := range h.Highlighted() {
			t.highlight[id] = true
		}
	}
	t.record(ctx, logger, commandID, verb, cmd, false)

	subject := subjectOf(cmd)
	result := t.render(cmd.Comment())
	result.Warnings = t.conflictsFor(ctx, subject)
	logger.With("entry_id", subject, "warning_count", len(result.Warnings)).InfoContext(ctx, "command executed")
	return result, nil
}

// Undo reverts the most recent command.
func (t *Tracker) Undo(ctx context.Context) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.undo(ctx)
}

func (t *Tracker) undo(ctx context.Context) (Result, error) {
	if len(t.history) == 0 {
		return t.failure(ErrNothingToUndo), ErrNothingToUndo
	}
	item := t.history[len(t.history)-1]
	commandID := t.idGenerator()
	logger := t.loggerWith(ctx, "Undo", "command_id", commandID, "verb", item.verb)

	if _, ok := item.cmd.(command.View); ok {
		if _, err := item.cmd.Undo(t.list); err != nil {
			logger.ErrorContext(ctx, "failed to undo view", "error", err, "error_kind", ErrorKind(err))
			return t.failure(err), err
		}
		t.history = t.history[:len(t.history)-1]
		t.view = item.view
		t.record(ctx, logger, commandID, item.verb, item.cmd, true)
		logger.InfoContext(ctx, "view restored")
		return t.render(item.cmd.Comment()), nil
	}

	working := t.list.Clone()
	if _, err := item.cmd.Undo(working); err != nil {
		logger.ErrorContext(ctx, "failed to undo command", "error", err, "error_kind", ErrorKind(err))
		return t.failure(err), err
	}
	// The command has consumed its memento, so it leaves the history even
	// when the result cannot be stored.
	t.history = t.history[:len(t.history)-1]
	if err := t.persist(ctx, working); err != nil {
		logger.ErrorContext(ctx, "failed to persist entries", "error", err, "error_kind", ErrorKind(err))
		return t.failure(err), err
	}

	t.list = working
	t.view = nil
	t.bump()
	t.record(ctx, logger, commandID, item.verb, item.cmd, true)
	logger.With("entry_id", subjectOf(item.cmd)).InfoContext(ctx, "command undone")
	return t.render(item.cmd.Comment()), nil
}

// List clears any search and shows the whole list.
func (t *Tracker) List(ctx context.Context) Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loggerWith(ctx, "List").DebugContext(ctx, "list requested")
	return t.showAll()
}

func (t *Tracker) showAll() Result {
	t.view = nil
	return t.render("Displaying all entries.")
}

// Agenda lists the occurrences of active deadlines and events between now
// and now plus window, ordered by start.
func (t *Tracker) Agenda(ctx context.Context, window calendar.Period) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.agenda(ctx, window)
}

func (t *Tracker) agenda(ctx context.Context, window calendar.Period) (Result, error) {
	logger := t.loggerWith(ctx, "Agenda", "window", window.String())
	if window.IsZero() {
		vErr := &ValidationError{}
		vErr.add("window", "agenda window must be positive")
		return t.failure(vErr), vErr
	}

	from := t.now()
	to := window.AddTo(from)
	var occurrences []recurrence.Occurrence
	for _, e := range t.list.All() {
		if !e.IsActive() {
			continue
		}
		found, err := t.engine.Between(e, from, to)
		if err != nil {
			logger.ErrorContext(ctx, "failed to expand entry", "entry_id", e.ID(), "error", err, "error_kind", ErrorKind(err))
			return t.failure(err), err
		}
		occurrences = append(occurrences, found...)
	}
	sort.SliceStable(occurrences, func(i, j int) bool {
		if !occurrences[i].Start.Equal(occurrences[j].Start) {
			return occurrences[i].Start.Before(occurrences[j].Start)
		}
		return occurrences[i].EntryID < occurrences[j].EntryID
	})

	result := Result{
		Comment: fmt.Sprintf("%d occurrences until %s.", len(occurrences), to.In(t.location).Format("02 Jan 2006 15:04")),
		Agenda:  occurrences,
	}
	logger.With("result_count", len(occurrences)).InfoContext(ctx, "agenda listed")
	return result, nil
}

// Export writes the list as an iCalendar document to w.
func (t *Tracker) Export(ctx context.Context, w io.Writer, includeArchived bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.export(ctx, w, includeArchived)
}

func (t *Tracker) export(ctx context.Context, w io.Writer, includeArchived bool) error {
	logger := t.loggerWith(ctx, "Export")
	err := export.Write(w, t.list.All(), export.Options{
		Now:             t.now(),
		Location:        t.location,
		IncludeArchived: includeArchived,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to export entries", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.With("result_count", t.list.Len()).InfoContext(ctx, "entries exported")
	return nil
}

// ExportFile writes the active entries to the file at path.
func (t *Tracker) ExportFile(ctx context.Context, path string) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exportFile(ctx, path)
}

func (t *Tracker) exportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return t.failure(err), err
	}
	if err := t.export(ctx, f, false); err != nil {
		_ = f.Close()
		return t.failure(err), err
	}
	if err := f.Close(); err != nil {
		return t.failure(err), err
	}
	return Result{Comment: fmt.Sprintf("Exported to %s.", path)}, nil
}

// History returns the latest n journal records, newest first.
func (t *Tracker) History(ctx context.Context, n int) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.historyOf(ctx, n)
}

func (t *Tracker) historyOf(ctx context.Context, n int) (Result, error) {
	logger := t.loggerWith(ctx, "History", "limit", n)
	if t.journal == nil {
		return Result{Comment: "No history recorded."}, nil
	}
	records, err := t.journal.ListJournal(ctx, n)
	if err != nil {
		err = mapEntryRepoError(err)
		logger.ErrorContext(ctx, "failed to list journal", "error", err, "error_kind", ErrorKind(err))
		return t.failure(err), err
	}
	items := make([]HistoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, HistoryItem{
			ID:         rec.ID,
			Verb:       rec.Verb,
			Comment:    rec.Comment,
			Undo:       rec.Undo,
			EntryID:    rec.EntryID,
			RecordedAt: rec.RecordedAt,
		})
	}
	logger.With("result_count", len(items)).DebugContext(ctx, "history listed")
	return Result{Comment: fmt.Sprintf("Showing %d commands.", len(items)), History: items}, nil
}

// UndoDepth reports how many commands can currently be undone.
func (t *Tracker) UndoDepth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.history)
}

func (t *Tracker) persist(ctx context.Context, list *calendar.List) error {
	if t.entries == nil {
		return nil
	}
	return mapEntryRepoError(t.entries.ReplaceEntries(ctx, toRecords(list, t.now())))
}

// record appends to the journal. Failures are logged and otherwise ignored;
// the journal is informational.
func (t *Tracker) record(ctx context.Context, logger *slog.Logger, id, verb string, cmd command.Command, undo bool) {
	if t.journal == nil {
		return
	}
	rec := persistence.JournalRecord{
		ID:         id,
		Verb:       verb,
		Comment:    cmd.Comment(),
		Undo:       undo,
		EntryID:    subjectOf(cmd),
		RecordedAt: t.now(),
	}
	if err := t.journal.AppendJournal(ctx, rec); err != nil {
		err = mapEntryRepoError(err)
		logger.WarnContext(ctx, "failed to record journal entry", "error", err, "error_kind", ErrorKind(err))
	}
}

func (t *Tracker) push(item historyItem) {
	t.history = append(t.history, item)
	if len(t.history) > t.historyLimit {
		t.history = slices.Delete(t.history, 0, len(t.history)-t.historyLimit)
	}
}

func (t *Tracker) bump() {
	t.version++
	t.cache.Invalidate()
}

func (t *Tracker) failure(err error) Result {
	return Result{Comment: err.Error()}
}

// render builds the lines of the displayed list: active entries in due
// order, then archived ones, most recent first.
func (t *Tracker) render(comment string) Result {
	now := t.now()
	shown := t.list
	if t.view != nil {
		shown = t.view
	}
	tasks := shown.TaskList()
	events := shown.EventList()

	result := Result{Comment: comment}
	for _, e := range tasks {
		result.Tasks = append(result.Tasks, taskLine(e, now, t.highlight[e.ID()]))
	}
	for _, e := range events {
		result.Events = append(result.Events, eventLine(e, now, t.highlight[e.ID()]))
	}
	t.highlight = nil
	return result
}

func taskLine(e *calendar.Entry, now time.Time, isNew bool) TaskLine {
	remaining, _ := e.OccurrenceLimit()
	until, _ := e.LimitDate()
	return TaskLine{
		ID:        e.ID(),
		Name:      e.Name(),
		Kind:      e.Kind(),
		Due:       e.End(now),
		Period:    e.Period(),
		Remaining: remaining,
		Until:     until,
		Overdue:   e.IsActive() && e.IsOver(now),
		Active:    e.IsActive(),
		New:       isNew,
	}
}

func eventLine(e *calendar.Entry, now time.Time, isNew bool) EventLine {
	remaining, _ := e.OccurrenceLimit()
	until, _ := e.LimitDate()
	return EventLine{
		ID:        e.ID(),
		Name:      e.Name(),
		Kind:      e.Kind(),
		Start:     e.Start(now),
		End:       e.End(now),
		Period:    e.Period(),
		Remaining: remaining,
		Until:     until,
		Over:      e.IsOver(now),
		Ongoing:   e.IsOngoing(now),
		Active:    e.IsActive(),
		New:       isNew,
	}
}

func subjectOf(cmd command.Command) int {
	if h, ok := cmd.(command.Highlighter); ok {
		if ids := h.Highlighted(); len(ids) > 0 {
			return ids[0]
		}
	}
	if target, ok := cmd.(command.Targeted); ok {
		return target.Target()
	}
	return 0
}

func verbOf(cmd command.Command) string {
	switch cmd.(type) {
	case *command.Add:
		return "add"
	case *command.Delete:
		return "delete"
	case *command.Mark:
		return "mark"
	case *command.Find:
		return "find"
	case *command.Today:
		return "today"
	case nil:
		return ""
	default:
		return "edit"
	}
}
