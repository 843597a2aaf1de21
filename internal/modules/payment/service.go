package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"adscreen/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotHeld     = errors.New("booking is not held")
	ErrHoldExpired        = errors.New("hold expired before verification")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrOrderMismatch      = errors.New("order does not belong to booking")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
)

const defaultCurrency = "INR"

// Service bridges a HELD booking to the payment gateway: it opens orders
// idempotently and reconciles the signed verification callback into the
// booking's CONFIRMED transition.
type Service struct {
	orders    orderRepo
	bookings  bookingRepo
	gateway   GatewayClient
	keySecret string
	currency  string
	loggerf   func(format string, args ...any)
	now       func() time.Time
}

func NewService(orders orderRepo, bookings bookingRepo, gateway GatewayClient, keySecret string, loggerf func(format string, args ...any)) *Service {
	if loggerf == nil {
		loggerf = func(string, ...any) {}
	}
	return &Service{
		orders:    orders,
		bookings:  bookings,
		gateway:   gateway,
		keySecret: keySecret,
		currency:  defaultCurrency,
		loggerf:   loggerf,
		now:       time.Now,
	}
}

// WithClock substitutes the time source for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Now exposes the service clock so the handler reports status from the same
// time source the transitions use.
func (s *Service) Now() time.Time { return s.now() }

// CreateOrder opens a gateway order for a booking that is still HELD and
// unexpired, re-validated here because the hold may have lapsed since the
// client last looked. Idempotent: an existing CREATED order is reused; only
// a FAILED order permits opening a fresh one.
func (s *Service) CreateOrder(ctx context.Context, bookingID, advertiserID int64) (*domain.PaymentOrder, error) {
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

	now := s.now().UTC()
	if !b.OccupiesSlot(now) || b.Status != domain.BookingHeld {
		return nil, ErrBookingNotHeld
	}

	if existing, err := s.orders.FindOpenByBooking(ctx, bookingID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	amountMinor := int64(math.Round(b.PriceAmount * 100))
	receipt := "bk-" + uuid.NewString()
	gw, err := s.gateway.CreateOrder(ctx, amountMinor, s.currency, receipt)
	if err != nil {
		return nil, err
	}

	order := &domain.PaymentOrder{
		BookingID:      bookingID,
		GatewayOrderID: gw.ID,
		Amount:         b.PriceAmount,
		Currency:       gw.Currency,
		Status:         domain.PaymentOrderCreated,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("save payment order failed: %w", err)
	}
	return order, nil
}

// VerifyAndConfirm applies the gateway's completion callback. The order is
// resolved and matched against the claimed booking before anything mutates,
// so a caller quoting someone else's order id cannot flip its state. The
// signature check itself is lock-free; only the final HELD -> CONFIRMED
// transition is the short conditional update, so a race against the expiry
// sweep has exactly one winner.
func (s *Service) VerifyAndConfirm(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string, bookingID int64) (*domain.Booking, error) {
	now := s.now().UTC()

	order, err := s.orders.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.BookingID != bookingID {
		return nil, ErrOrderMismatch
	}

	if !VerifySignature(gatewayOrderID, gatewayPaymentID, signature, s.keySecret) {
		s.loggerf("level=error msg=payment signature verification failed booking_id=%d gateway_order_id=%s", bookingID, gatewayOrderID)
		_ = s.orders.MarkFailed(ctx, gatewayOrderID, "invalid signature", now)
		return nil, ErrInvalidSignature
	}

	confirmed, err := s.bookings.ConfirmIfHeld(ctx, bookingID, now)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if confirmed {
		if err := s.orders.MarkVerified(ctx, gatewayOrderID, gatewayPaymentID, now); err != nil {
			s.loggerf("level=error msg=failed to mark payment order verified gateway_order_id=%s err=%v", gatewayOrderID, err)
		}
		s.loggerf("level=info msg=payment verified and booking confirmed booking_id=%d reference=%s", b.ID, b.Reference)
		return b, nil
	}

	if b.Status == domain.BookingConfirmed {
		// Duplicate callback for an already-confirmed booking.
		s.loggerf("level=info msg=idempotent verification for confirmed booking booking_id=%d", b.ID)
		return b, nil
	}

	// Money was captured but the hold had already lapsed. This engine never
	// revives the slot; reconciliation triggers the refund out of band.
	s.loggerf("level=error msg=payment captured for expired hold refund_required=true booking_id=%d reference=%s gateway_order_id=%s gateway_payment_id=%s",
		b.ID, b.Reference, gatewayOrderID, gatewayPaymentID)
	_ = s.orders.MarkFailed(ctx, gatewayOrderID, "hold expired before verification", now)
	return nil, ErrHoldExpired
}
