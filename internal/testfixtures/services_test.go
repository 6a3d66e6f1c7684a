package testfixtures

import (
	"context"
	"testing"
)

func TestServiceFactoryNewTracker(t *testing.T) {
	factory := NewServiceFactory()
	journal := NewSQLiteHarness(t).Journal

	tracker := factory.NewTracker(t, TrackerDeps{Journal: journal})
	result, err := tracker.Handle(context.Background(), "add read a book")
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(result.Tasks) != 1 || !result.Tasks[0].New {
		t.Fatalf("expected one new task, got %+v", result.Tasks)
	}

	records, err := journal.ListJournal(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListJournal returned error: %v", err)
	}
	if len(records) != 1 || records[0].ID != "id-1" {
		t.Fatalf("expected journal record id-1, got %+v", records)
	}
	if !records[0].RecordedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), records[0].RecordedAt)
	}
}
