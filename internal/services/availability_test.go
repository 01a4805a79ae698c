package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDateRangeOverlaps(t *testing.T) {
	base := DateRange{Start: date(2030, 5, 10), End: date(2030, 5, 15)}

	cases := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"inside", DateRange{date(2030, 5, 11), date(2030, 5, 12)}, true},
		{"covering", DateRange{date(2030, 5, 1), date(2030, 5, 30)}, true},
		{"touching end", DateRange{date(2030, 5, 15), date(2030, 5, 20)}, true},
		{"touching start", DateRange{date(2030, 5, 5), date(2030, 5, 10)}, true},
		{"day after", DateRange{date(2030, 5, 16), date(2030, 5, 20)}, false},
		{"day before", DateRange{date(2030, 5, 1), date(2030, 5, 9)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Fatalf("reverse Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewDateRangeRejectsInvertedAndZero(t *testing.T) {
	if _, err := NewDateRange(date(2030, 5, 2), date(2030, 5, 1)); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange for inverted range, got %v", err)
	}
	if _, err := NewDateRange(time.Time{}, date(2030, 5, 1)); !errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidInput for zero start, got %v", err)
	}

	period, err := NewDateRange(date(2030, 5, 1), date(2030, 5, 1))
	if err != nil {
		t.Fatalf("single-day range: %v", err)
	}
	if !period.Start.Equal(period.End) {
		t.Fatalf("expected equal ends, got %+v", period)
	}
}

func TestTruncateToDateKeepsLocalCalendarDay(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2030, 1, 2, 1, 30, 0, 0, zone)

	got := TruncateToDate(ts)
	want := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("TruncateToDate = %v, want %v", got, want)
	}
}

type stubOverlapFinder struct {
	overlap bool
	err     error
	calls   int
}

func (f *stubOverlapFinder) HasOverlap(_ context.Context, _ int64, _, _ time.Time) (bool, error) {
	f.calls++
	return f.overlap, f.err
}

func TestAvailabilityCheckerIsAvailable(t *testing.T) {
	period := DateRange{Start: date(2030, 5, 1), End: date(2030, 5, 3)}

	finder := &stubOverlapFinder{overlap: true}
	available, err := NewAvailabilityChecker(finder).IsAvailable(context.Background(), 1, period)
	if err != nil {
		t.Fatalf("IsAvailable: %v", err)
	}
	if available {
		t.Fatal("expected booked room to be unavailable")
	}

	failing := &stubOverlapFinder{err: errors.New("db down")}
	if _, err := NewAvailabilityChecker(failing).IsAvailable(context.Background(), 1, period); err == nil {
		t.Fatal("expected repository error to be returned")
	}
}
