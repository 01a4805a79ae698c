package services

import (
	"context"
	"time"
)

// DateRange is a closed interval of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to calendar dates and rejects inverted ranges.
// A single-day range (start == end) is valid.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, ErrInvalidInput
	}
	period := DateRange{Start: TruncateToDate(start), End: TruncateToDate(end)}
	if period.Start.After(period.End) {
		return DateRange{}, ErrInvalidDateRange
	}
	return period, nil
}

// TruncateToDate keeps the calendar date as written in the value's own location and
// returns it as UTC midnight.
func TruncateToDate(ts time.Time) time.Time {
	year, month, day := ts.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the two ranges share at least one day. Touching ends count.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End) && !r.End.Before(other.Start)
}

type overlapFinder interface {
	HasOverlap(ctx context.Context, roomID int64, dateStart, dateEnd time.Time) (bool, error)
}

type AvailabilityChecker struct {
	reservations overlapFinder
}

func NewAvailabilityChecker(reservations overlapFinder) *AvailabilityChecker {
	return &AvailabilityChecker{reservations: reservations}
}

func (c *AvailabilityChecker) IsAvailable(ctx context.Context, roomID int64, period DateRange) (bool, error) {
	hasOverlap, err := c.reservations.HasOverlap(ctx, roomID, period.Start, period.End)
	if err != nil {
		return false, err
	}
	return !hasOverlap, nil
}
