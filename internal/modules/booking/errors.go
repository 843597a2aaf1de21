package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrSlotConflict       = errors.New("slot conflict")
	ErrScreenUnavailable  = errors.New("screen unavailable")
	ErrContentNotBookable = errors.New("content not bookable")
	ErrNotFound           = errors.New("booking not found")
	ErrForbidden          = errors.New("forbidden")
	ErrNotHeld            = errors.New("booking is not held")
)

// SlotConflictError carries the range the caller lost to, so the UI can
// point at the busy slot instead of forcing a full availability refetch.
// errors.Is(err, ErrSlotConflict) matches it.
type SlotConflictError struct {
	ConflictStart time.Time
	ConflictEnd   time.Time
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot conflict: overlaps booking from %s to %s",
		e.ConflictStart.Format(time.RFC3339), e.ConflictEnd.Format(time.RFC3339))
}

func (e *SlotConflictError) Is(target error) bool { return target == ErrSlotConflict }
