package recurrence

import (
	"testing"
	"time"

	"github.com/example/lifetracker/internal/calendar"
)

func BenchmarkEngineBetween(b *testing.B) {
	engine := NewEngine(time.UTC)
	start := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	rule, err := calendar.NewRecurringEvent("standup", start, start.Add(90*time.Minute), calendar.Days(1), calendar.NoLimit)
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	stepped, err := calendar.NewRecurringEvent("rent", start.AddDate(0, 0, 25), start.AddDate(0, 0, 25).Add(time.Hour), calendar.Months(1), calendar.NoLimit)
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	until := start.AddDate(1, 0, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, entry := range []*calendar.Entry{rule, stepped} {
			occurrences, err := engine.Between(entry, start, until)
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if len(occurrences) == 0 {
				b.Fatal("expected occurrences to be generated")
			}
		}
	}
}
