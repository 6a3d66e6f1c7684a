package testfixtures

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/example/lifetracker/internal/application"
	"github.com/example/lifetracker/internal/persistence"
	"github.com/example/lifetracker/internal/persistence/memory"
)

// ServiceFactory assists tests with constructing trackers using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// TrackerDeps captures dependencies for constructing a tracker. Nil
// repositories are replaced by one shared in-memory store.
type TrackerDeps struct {
	Entries     persistence.EntryRepository
	Journal     persistence.JournalRepository
	Options     application.TrackerOptions
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTracker builds a tracker using the supplied dependencies combined with
// the factory defaults. The tracker is loaded before it is returned.
func (f *ServiceFactory) NewTracker(tb testing.TB, deps TrackerDeps) *application.Tracker {
	tb.Helper()

	if deps.Entries == nil || deps.Journal == nil {
		store := memory.New()
		if deps.Entries == nil {
			deps.Entries = store
		}
		if deps.Journal == nil {
			deps.Journal = store
		}
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	if deps.Options.Location == nil {
		deps.Options.Location = time.UTC
	}
	tracker := application.NewTrackerWithLogger(
		deps.Entries,
		deps.Journal,
		deps.Options,
		idGen,
		now,
		deps.Logger,
	)
	if err := tracker.Load(context.Background()); err != nil {
		tb.Fatalf("failed to load tracker: %v", err)
	}
	return tracker
}
