package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"adscreen/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:order_repo_test_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(
		sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	db.Exec("PRAGMA busy_timeout = 5000")
	if err := db.AutoMigrate(PaymentOrderModel()); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

// Only a CREATED order counts as open. Once the order fails or verifies,
// FindOpenByBooking reports nothing, which is what lets the service open a
// fresh gateway order after a failed attempt.
func TestFindOpenByBooking(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewPaymentOrderRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	first := &domain.PaymentOrder{
		BookingID:      1,
		GatewayOrderID: "order_a",
		Amount:         1000,
		Currency:       "INR",
		Status:         domain.PaymentOrderCreated,
	}
	require.NoError(t, repo.Create(ctx, first))

	open, err := repo.FindOpenByBooking(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, "order_a", open.GatewayOrderID)

	open, err = repo.FindOpenByBooking(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, open)

	require.NoError(t, repo.MarkFailed(ctx, "order_a", "invalid signature", now))
	open, err = repo.FindOpenByBooking(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, open)

	second := &domain.PaymentOrder{
		BookingID:      1,
		GatewayOrderID: "order_b",
		Amount:         1000,
		Currency:       "INR",
		Status:         domain.PaymentOrderCreated,
	}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.MarkVerified(ctx, "order_b", "pay_1", now))
	open, err = repo.FindOpenByBooking(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, open)
}
