package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"adscreen/internal/domain"
	"adscreen/internal/modules/pricing"
	"adscreen/internal/pkg/keylock"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const defaultHoldWindow = 15 * time.Minute

// Service is the hold manager: it turns an availability claim on a screen
// into a provisional HELD booking, expires stale holds, and handles the
// user-initiated cancel transition.
type Service struct {
	bookings BookingRepository
	screens  ScreenReader
	contents ContentReader
	settings SettingsProvider

	screenLocks *keylock.KeyedMutex
	holdWindow  time.Duration
	now         func() time.Time
}

type Option func(*Service)

// WithHoldWindow overrides the default 15 minute payment window.
func WithHoldWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.holdWindow = d
		}
	}
}

// WithClock substitutes the time source, used by tests to move holds past
// their deadline without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(bookings BookingRepository, screens ScreenReader, contents ContentReader, settings SettingsProvider, opts ...Option) *Service {
	s := &Service{
		bookings:    bookings,
		screens:     screens,
		contents:    contents,
		settings:    settings,
		screenLocks: keylock.New(),
		holdWindow:  defaultHoldWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateHold validates the request against the settings snapshot, screen
// state and content approval, then atomically checks for overlap and
// inserts the HELD booking. The check-and-insert runs under a per-screen
// lock; on PostgreSQL the bookings_no_overlap exclusion constraint backs it
// up, so two racing holds for intersecting ranges can never both land.
func (s *Service) CreateHold(ctx context.Context, req CreateHoldRequest, advertiserID int64) (*domain.Booking, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if settings.MaintenanceMode {
		return nil, ErrScreenUnavailable
	}

	screen, err := s.screens.GetByID(ctx, req.ScreenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScreenUnavailable
		}
		return nil, err
	}
	if screen.Status != domain.ScreenActive {
		return nil, ErrScreenUnavailable
	}

	content, err := s.contents.GetByID(ctx, req.ContentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotBookable
		}
		return nil, err
	}
	if content.Status != domain.ContentApproved || content.UploaderID != advertiserID {
		return nil, ErrContentNotBookable
	}

	start := req.StartDatetime.UTC()
	end := req.EndDatetime.UTC()
	now := s.now().UTC()

	if !end.After(start) {
		return nil, ErrValidation
	}
	if start.Before(now) {
		return nil, ErrValidation
	}
	minDuration := time.Duration(settings.MinimumBookingDurationMinutes) * time.Minute
	if end.Sub(start) < minDuration {
		return nil, ErrValidation
	}
	if !withinActiveHours(screen, start, end) {
		return nil, ErrValidation
	}

	quote := pricing.Compute(screen.HourlyRate, start, end, settings.CommissionPercentage)

	s.screenLocks.Lock(screen.ID)
	defer s.screenLocks.Unlock(screen.ID)

	// A stale hold would otherwise trip the exclusion constraint even
	// though its range is free again.
	if _, err := s.bookings.ExpireStaleForScreen(ctx, screen.ID, now); err != nil {
		return nil, err
	}

	conflict, err := s.bookings.FindConflicting(ctx, screen.ID, start, end, now)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &SlotConflictError{
			ConflictStart: conflict.StartDatetime,
			ConflictEnd:   conflict.EndDatetime,
		}
	}

	expiresAt := now.Add(s.holdWindow)
	b := &domain.Booking{
		ScreenID:          screen.ID,
		AdvertiserID:      advertiserID,
		ContentID:         content.ID,
		StartDatetime:     start,
		EndDatetime:       end,
		Status:            domain.BookingHeld,
		PriceAmount:       quote.PriceAmount,
		OwnerEarnings:     quote.OwnerEarnings,
		CommissionAmount:  quote.CommissionAmount,
		CommissionPercent: settings.CommissionPercentage,
		HoldExpiresAt:     &expiresAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for attempt := 0; ; attempt++ {
		b.Reference = newReference()
		err = s.bookings.Create(ctx, b)
		if err == nil {
			return b, nil
		}
		if isReferenceCollision(err) && attempt < 2 {
			continue
		}
		if isOverlapViolation(err) {
			return nil, &SlotConflictError{ConflictStart: start, ConflictEnd: end}
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
}

// ExpireStaleHolds transitions every HELD booking past its deadline to
// EXPIRED and reports how many rows were freed. The underlying UPDATE is
// conditional on status, so it never touches a row a concurrent payment
// verification has already confirmed.
func (s *Service) ExpireStaleHolds(ctx context.Context) (int64, error) {
	return s.bookings.ExpireStale(ctx, s.now().UTC())
}

// RunSweeper expires stale holds on a fixed interval until ctx is done.
// One minute keeps availability staleness inside the design target.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ExpireStaleHolds(ctx)
			if err != nil {
				log.Printf("level=error msg=hold sweep failed err=%v", err)
				continue
			}
			if n > 0 {
				log.Printf("level=info msg=expired stale holds count=%d", n)
			}
		}
	}
}

// CancelHold is the user-initiated HELD -> CANCELLED transition before
// payment. Same compare-and-swap as expiry, so it loses cleanly to a
// concurrent confirmation.
func (s *Service) CancelHold(ctx context.Context, bookingID, advertiserID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.AdvertiserID != advertiserID {
		return nil, ErrForbidden
	}

	ok, err := s.bookings.CancelIfHeld(ctx, bookingID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotHeld
	}
	return s.bookings.GetByID(ctx, bookingID)
}

// CancelConfirmed is the admin/owner-side CONFIRMED -> CANCELLED
// transition. Refund mechanics live outside this engine.
func (s *Service) CancelConfirmed(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	ok, err := s.bookings.CancelConfirmed(ctx, bookingID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotHeld
	}
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *Service) GetBooking(ctx context.Context, bookingID, advertiserID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.AdvertiserID != advertiserID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) GetByReference(ctx context.Context, ref string) (*domain.Booking, error) {
	b, err := s.bookings.GetByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) ListMyBookings(ctx context.Context, advertiserID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.bookings.ListByAdvertiser(ctx, advertiserID, limit, offset)
}

// Now exposes the service clock so handlers derive the COMPLETED label from
// the same time source the transitions use.
func (s *Service) Now() time.Time { return s.now() }

// withinActiveHours checks that the requested range lies inside the
// screen's daily operating window. Both endpoints must fall on the same
// calendar day; overnight windows are not supported. A screen with no
// configured window accepts any time of day.
func withinActiveHours(screen *domain.Screen, start, end time.Time) bool {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	sameDay := sy == ey && sm == em && sd == ed
	// An end of exactly midnight closes the previous day.
	if !sameDay && !(end.Equal(time.Date(sy, sm, sd+1, 0, 0, 0, 0, end.Location()))) {
		return false
	}

	if screen.ActiveFrom == "" || screen.ActiveTo == "" {
		return true
	}
	from, err := time.Parse("15:04", screen.ActiveFrom)
	if err != nil {
		return false
	}
	to, err := time.Parse("15:04", screen.ActiveTo)
	if err != nil {
		return false
	}

	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()
	if !sameDay {
		endMin = 24 * 60
	}
	fromMin := from.Hour()*60 + from.Minute()
	toMin := to.Hour()*60 + to.Minute()
	// A window closing at 00:00 closes at midnight, not at the day's open.
	if toMin == 0 {
		toMin = 24 * 60
	}

	return startMin >= fromMin && endMin <= toMin
}

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newReference builds a BK-XXXXXX code. Collisions are caught by the
// unique index and retried in CreateHold.
func newReference() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return "BK-" + string(buf)
}

// isOverlapViolation recognizes the PostgreSQL exclusion constraint firing
// underneath a race the per-screen lock could not see (e.g. multiple API
// replicas sharing one database).
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap"
	}
	return false
}

// isReferenceCollision recognizes a unique-index violation on the reference
// column. On sqlite the reference is the table's only unique index, so any
// unique-constraint code on the insert is a collision.
func isReferenceCollision(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "reference")
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
