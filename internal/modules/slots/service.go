package slots

import (
	"context"
	"errors"
	"sort"
	"time"

	"adscreen/internal/domain"

	"gorm.io/gorm"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrScreenNotFound = errors.New("screen not found")
)

type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotBooked    SlotStatus = "BOOKED"
)

// Slot is one contiguous stretch of a screen's active-hours window.
// Consecutive slots never share a status; the sequence covers the window
// exactly, and instants outside active hours are omitted entirely.
type Slot struct {
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Status SlotStatus `json:"status"`
}

// BookingReader is the live view over booking rows. Occupancy is derived
// from them on every call; the slot index keeps no state of its own that
// could drift.
type BookingReader interface {
	OccupiedRanges(ctx context.Context, screenID int64, from, to, now time.Time) ([]domain.Booking, error)
}

type ScreenReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Screen, error)
}

type Service struct {
	bookings BookingReader
	screens  ScreenReader
	now      func() time.Time
}

func NewService(bookings BookingReader, screens ScreenReader) *Service {
	return &Service{bookings: bookings, screens: screens, now: time.Now}
}

// WithClock substitutes the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetSlots partitions the screen's active-hours window on the given date
// into BOOKED ranges (CONFIRMED or live HELD bookings) and AVAILABLE gaps.
func (s *Service) GetSlots(ctx context.Context, screenID int64, dateStr string) ([]Slot, error) {
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrValidation
	}

	screen, err := s.screens.GetByID(ctx, screenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScreenNotFound
		}
		return nil, err
	}

	open, close, ok := activeWindow(screen, day)
	if !ok {
		return []Slot{}, nil
	}

	now := s.now().UTC()
	occupied, err := s.bookings.OccupiedRanges(ctx, screenID, open, close, now)
	if err != nil {
		return nil, err
	}

	busy := make([]Slot, 0, len(occupied))
	for _, b := range occupied {
		busy = append(busy, Slot{Start: b.StartDatetime, End: b.EndDatetime, Status: SlotBooked})
	}
	return partition(open, close, busy), nil
}

// activeWindow resolves the screen's operating hours on a concrete day.
// An unconfigured window spans the whole day.
func activeWindow(screen *domain.Screen, day time.Time) (time.Time, time.Time, bool) {
	y, m, d := day.Date()
	open := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	close := open.Add(24 * time.Hour)

	if screen.ActiveFrom != "" && screen.ActiveTo != "" {
		from, err := time.Parse("15:04", screen.ActiveFrom)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		to, err := time.Parse("15:04", screen.ActiveTo)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		open = time.Date(y, m, d, from.Hour(), from.Minute(), 0, 0, time.UTC)
		close = time.Date(y, m, d, to.Hour(), to.Minute(), 0, 0, time.UTC)
	}

	if !close.After(open) {
		return time.Time{}, time.Time{}, false
	}
	return open, close, true
}

// partition merges the busy ranges, clamps them to the window and fills
// the gaps with AVAILABLE slots, returning an ordered alternating cover.
func partition(open, close time.Time, busy []Slot) []Slot {
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	merged := make([]Slot, 0, len(busy))
	for _, b := range busy {
		if !b.End.After(open) || !b.Start.Before(close) {
			continue
		}
		if b.Start.Before(open) {
			b.Start = open
		}
		if b.End.After(close) {
			b.End = close
		}

		if len(merged) > 0 && !b.Start.After(merged[len(merged)-1].End) {
			if b.End.After(merged[len(merged)-1].End) {
				merged[len(merged)-1].End = b.End
			}
			continue
		}
		merged = append(merged, b)
	}

	out := make([]Slot, 0, 2*len(merged)+1)
	cur := open
	for _, b := range merged {
		if b.Start.After(cur) {
			out = append(out, Slot{Start: cur, End: b.Start, Status: SlotAvailable})
		}
		out = append(out, b)
		cur = b.End
	}
	if cur.Before(close) {
		out = append(out, Slot{Start: cur, End: close, Status: SlotAvailable})
	}
	return out
}
