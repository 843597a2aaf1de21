package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"adscreen/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// Mock repositories and gateway
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) ConfirmIfHeld(ctx context.Context, bookingID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, bookingID, now)
	return args.Bool(0), args.Error(1)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, o *domain.PaymentOrder) error {
	args := m.Called(ctx, o)
	if o != nil {
		o.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockOrderRepo) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}

func (m *MockOrderRepo) FindOpenByBooking(ctx context.Context, bookingID int64) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}

func (m *MockOrderRepo) MarkVerified(ctx context.Context, gatewayOrderID, gatewayPaymentID string, now time.Time) error {
	args := m.Called(ctx, gatewayOrderID, gatewayPaymentID, now)
	return args.Error(0)
}

func (m *MockOrderRepo) MarkFailed(ctx context.Context, gatewayOrderID, reason string, now time.Time) error {
	args := m.Called(ctx, gatewayOrderID, reason, now)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	args := m.Called(ctx, amountMinor, currency, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GatewayOrder), args.Error(1)
}

const testKeySecret = "test_key_secret"

var testNow = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func heldBooking(expiresIn time.Duration) *domain.Booking {
	exp := testNow.Add(expiresIn)
	return &domain.Booking{
		ID:            1,
		Reference:     "BK-7GK2MQ",
		ScreenID:      1,
		AdvertiserID:  201,
		ContentID:     10,
		Status:        domain.BookingHeld,
		PriceAmount:   1000,
		HoldExpiresAt: &exp,
	}
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Fixed vector so a regression in the signing scheme cannot hide behind a
// matching bug in the test helper.
func TestVerifySignature_KnownAnswer(t *testing.T) {
	const (
		orderID   = "order_MkzFz0001"
		paymentID = "pay_29QQoUBi66xm2f"
		want      = "3d67cf17fdc6029b4504ff4595ca2766963616611d6a174c709151cec230e251"
	)
	assert.True(t, VerifySignature(orderID, paymentID, want, testKeySecret))
	assert.Equal(t, want, sign(orderID, paymentID))

	assert.False(t, VerifySignature(orderID, paymentID, want, "wrong_secret"))
	assert.False(t, VerifySignature(orderID, "pay_other", want, testKeySecret))
	assert.False(t, VerifySignature(orderID, paymentID, "", testKeySecret))
}

func TestCreateOrder_OpensGatewayOrderInMinorUnits(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	gateway := new(MockGateway)
	svc := NewService(orders, bookings, gateway, testKeySecret, nil).WithClock(fixedClock)

	bookings.On("GetByID", mock.Anything, int64(1)).Return(heldBooking(10*time.Minute), nil)
	orders.On("FindOpenByBooking", mock.Anything, int64(1)).Return(nil, nil)
	gateway.On("CreateOrder", mock.Anything, int64(100000), "INR", mock.AnythingOfType("string")).
		Return(&GatewayOrder{ID: "order_abc", Amount: 100000, Currency: "INR"}, nil)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.PaymentOrder")).Return(nil)

	order, err := svc.CreateOrder(context.Background(), 1, 201)

	assert.NoError(t, err)
	assert.Equal(t, "order_abc", order.GatewayOrderID)
	assert.Equal(t, 1000.0, order.Amount)
	assert.Equal(t, domain.PaymentOrderCreated, order.Status)
	gateway.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestCreateOrder_ReusesOpenOrder(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	gateway := new(MockGateway)
	svc := NewService(orders, bookings, gateway, testKeySecret, nil).WithClock(fixedClock)

	existing := &domain.PaymentOrder{ID: 5, BookingID: 1, GatewayOrderID: "order_abc", Status: domain.PaymentOrderCreated}
	bookings.On("GetByID", mock.Anything, int64(1)).Return(heldBooking(10*time.Minute), nil)
	orders.On("FindOpenByBooking", mock.Anything, int64(1)).Return(existing, nil)

	order, err := svc.CreateOrder(context.Background(), 1, 201)

	assert.NoError(t, err)
	assert.Equal(t, existing, order)
	gateway.AssertNotCalled(t, "CreateOrder")
}

func TestCreateOrder_RejectsExpiredHold(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	gateway := new(MockGateway)
	svc := NewService(orders, bookings, gateway, testKeySecret, nil).WithClock(fixedClock)

	bookings.On("GetByID", mock.Anything, int64(1)).Return(heldBooking(-time.Minute), nil)

	_, err := svc.CreateOrder(context.Background(), 1, 201)

	assert.ErrorIs(t, err, ErrBookingNotHeld)
	gateway.AssertNotCalled(t, "CreateOrder")
}

func TestCreateOrder_RejectsNonHeldStatuses(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingConfirmed, domain.BookingCancelled, domain.BookingExpired} {
		t.Run(string(status), func(t *testing.T) {
			bookings := new(MockBookingRepo)
			orders := new(MockOrderRepo)
			gateway := new(MockGateway)
			svc := NewService(orders, bookings, gateway, testKeySecret, nil).WithClock(fixedClock)

			b := heldBooking(10 * time.Minute)
			b.Status = status
			if status != domain.BookingHeld {
				b.HoldExpiresAt = nil
			}
			bookings.On("GetByID", mock.Anything, int64(1)).Return(b, nil)

			_, err := svc.CreateOrder(context.Background(), 1, 201)
			assert.ErrorIs(t, err, ErrBookingNotHeld)
		})
	}
}

func TestCreateOrder_OwnershipAndNotFound(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	gateway := new(MockGateway)
	svc := NewService(orders, bookings, gateway, testKeySecret, nil).WithClock(fixedClock)

	bookings.On("GetByID", mock.Anything, int64(1)).Return(heldBooking(10*time.Minute), nil)
	bookings.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.CreateOrder(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CreateOrder(context.Background(), 404, 201)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOrder_GatewayFailurePropagates(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	gateway := new(MockGateway)
	svc := NewService(orders, bookings, gateway, testKeySecret, nil).WithClock(fixedClock)

	bookings.On("GetByID", mock.Anything, int64(1)).Return(heldBooking(10*time.Minute), nil)
	orders.On("FindOpenByBooking", mock.Anything, int64(1)).Return(nil, nil)
	gateway.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, ErrGatewayUnavailable)

	_, err := svc.CreateOrder(context.Background(), 1, 201)

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	orders.AssertNotCalled(t, "Create")
}

func TestVerifyAndConfirm_Success(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	svc := NewService(orders, bookings, new(MockGateway), testKeySecret, nil).WithClock(fixedClock)

	order := &domain.PaymentOrder{ID: 5, BookingID: 1, GatewayOrderID: "order_abc", Status: domain.PaymentOrderCreated}
	confirmed := heldBooking(10 * time.Minute)
	confirmed.Status = domain.BookingConfirmed
	confirmed.HoldExpiresAt = nil

	orders.On("GetByGatewayOrderID", mock.Anything, "order_abc").Return(order, nil)
	bookings.On("ConfirmIfHeld", mock.Anything, int64(1), testNow).Return(true, nil)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(confirmed, nil)
	orders.On("MarkVerified", mock.Anything, "order_abc", "pay_123", testNow).Return(nil)

	b, err := svc.VerifyAndConfirm(context.Background(), "order_abc", "pay_123", sign("order_abc", "pay_123"), 1)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	orders.AssertExpectations(t)
	bookings.AssertExpectations(t)
}

func TestVerifyAndConfirm_InvalidSignature(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	svc := NewService(orders, bookings, new(MockGateway), testKeySecret, nil).WithClock(fixedClock)

	order := &domain.PaymentOrder{ID: 5, BookingID: 1, GatewayOrderID: "order_abc", Status: domain.PaymentOrderCreated}
	orders.On("GetByGatewayOrderID", mock.Anything, "order_abc").Return(order, nil)
	orders.On("MarkFailed", mock.Anything, "order_abc", "invalid signature", testNow).Return(nil)

	_, err := svc.VerifyAndConfirm(context.Background(), "order_abc", "pay_123", "deadbeef", 1)

	assert.ErrorIs(t, err, ErrInvalidSignature)
	bookings.AssertNotCalled(t, "ConfirmIfHeld")
	orders.AssertExpectations(t)
}

// A forged callback quoting another booking's order id must not fail that
// order: the mismatch is rejected before any state changes, so the real
// holder can still complete payment against it.
func TestVerifyAndConfirm_MismatchedOrderIsLeftUntouched(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	svc := NewService(orders, bookings, new(MockGateway), testKeySecret, nil).WithClock(fixedClock)

	order := &domain.PaymentOrder{ID: 5, BookingID: 77, GatewayOrderID: "order_victim", Status: domain.PaymentOrderCreated}
	orders.On("GetByGatewayOrderID", mock.Anything, "order_victim").Return(order, nil)

	_, err := svc.VerifyAndConfirm(context.Background(), "order_victim", "pay_x", "garbage", 1)

	assert.ErrorIs(t, err, ErrOrderMismatch)
	orders.AssertNotCalled(t, "MarkFailed")
	bookings.AssertNotCalled(t, "ConfirmIfHeld")
}

func TestVerifyAndConfirm_OrderMismatch(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	svc := NewService(orders, bookings, new(MockGateway), testKeySecret, nil).WithClock(fixedClock)

	order := &domain.PaymentOrder{ID: 5, BookingID: 77, GatewayOrderID: "order_abc", Status: domain.PaymentOrderCreated}
	orders.On("GetByGatewayOrderID", mock.Anything, "order_abc").Return(order, nil)

	_, err := svc.VerifyAndConfirm(context.Background(), "order_abc", "pay_123", sign("order_abc", "pay_123"), 1)

	assert.ErrorIs(t, err, ErrOrderMismatch)
	bookings.AssertNotCalled(t, "ConfirmIfHeld")
}

// A duplicate callback after the booking is already CONFIRMED succeeds
// without touching the order again.
func TestVerifyAndConfirm_IdempotentOnConfirmed(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	svc := NewService(orders, bookings, new(MockGateway), testKeySecret, nil).WithClock(fixedClock)

	order := &domain.PaymentOrder{ID: 5, BookingID: 1, GatewayOrderID: "order_abc", Status: domain.PaymentOrderVerified}
	confirmed := heldBooking(0)
	confirmed.Status = domain.BookingConfirmed
	confirmed.HoldExpiresAt = nil

	orders.On("GetByGatewayOrderID", mock.Anything, "order_abc").Return(order, nil)
	bookings.On("ConfirmIfHeld", mock.Anything, int64(1), testNow).Return(false, nil)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(confirmed, nil)

	b, err := svc.VerifyAndConfirm(context.Background(), "order_abc", "pay_123", sign("order_abc", "pay_123"), 1)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	orders.AssertNotCalled(t, "MarkVerified")
	orders.AssertNotCalled(t, "MarkFailed")
}

// Valid payment for a hold the sweep already expired: the slot is not
// revived and the order is flagged for refund reconciliation.
func TestVerifyAndConfirm_ExpiredHoldLoses(t *testing.T) {
	bookings := new(MockBookingRepo)
	orders := new(MockOrderRepo)
	svc := NewService(orders, bookings, new(MockGateway), testKeySecret, nil).WithClock(fixedClock)

	order := &domain.PaymentOrder{ID: 5, BookingID: 1, GatewayOrderID: "order_abc", Status: domain.PaymentOrderCreated}
	expired := heldBooking(0)
	expired.Status = domain.BookingExpired
	expired.HoldExpiresAt = nil

	orders.On("GetByGatewayOrderID", mock.Anything, "order_abc").Return(order, nil)
	bookings.On("ConfirmIfHeld", mock.Anything, int64(1), testNow).Return(false, nil)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(expired, nil)
	orders.On("MarkFailed", mock.Anything, "order_abc", "hold expired before verification", testNow).Return(nil)

	_, err := svc.VerifyAndConfirm(context.Background(), "order_abc", "pay_123", sign("order_abc", "pay_123"), 1)

	assert.ErrorIs(t, err, ErrHoldExpired)
	orders.AssertNotCalled(t, "MarkVerified")
	orders.AssertExpectations(t)
}
