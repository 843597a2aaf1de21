package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"

	"adscreen/internal/database"
	"adscreen/internal/middleware"
	"adscreen/internal/modules/booking"
	"adscreen/internal/modules/payment"
	"adscreen/internal/modules/slots"
	jwtsvc "adscreen/internal/pkg/jwt"
	"adscreen/internal/repository"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}
	gatewayKeyID := os.Getenv("GATEWAY_KEY_ID")
	gatewayKeySecret := os.Getenv("GATEWAY_KEY_SECRET")
	if gatewayKeyID == "" || gatewayKeySecret == "" {
		log.Fatal("GATEWAY_KEY_ID / GATEWAY_KEY_SECRET are empty")
	}
	gatewayURL := envOrDefault("GATEWAY_BASE_URL", "https://api.razorpay.com")

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(
		repository.ScreenModel(),
		repository.ContentModel(),
		repository.PlatformSettingsModel(),
		repository.BookingModel(),
		repository.PaymentOrderModel(),
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := database.EnsureBookingExclusion(db); err != nil {
		log.Fatalf("exclusion constraint setup failed: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(db)
	screenRepo := repository.NewScreenRepository(db)
	contentRepo := repository.NewContentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	orderRepo := repository.NewPaymentOrderRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	holdWindow := time.Duration(envInt("HOLD_WINDOW_MINUTES", 15)) * time.Minute
	bookingService := booking.NewService(bookingRepo, screenRepo, contentRepo, settingsRepo,
		booking.WithHoldWindow(holdWindow))
	bookingHandler := booking.NewHandler(bookingService)

	slotService := slots.NewService(bookingRepo, screenRepo)
	slotHandler := slots.NewHandler(slotService)

	gateway := payment.NewHTTPGatewayClient(gatewayKeyID, gatewayKeySecret, gatewayURL)
	paymentService := payment.NewService(orderRepo, bookingRepo, gateway, gatewayKeySecret, log.Printf)
	paymentHandler := payment.NewHandler(paymentService)

	// Background sweep keeps freed slots visible within a minute even when
	// nobody touches the stale screen.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bookingService.RunSweeper(ctx, time.Minute)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public availability
		slotHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)
		}
	}

	if err := r.Run(":" + envOrDefault("PORT", "8080")); err != nil {
		log.Fatal(err)
	}
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
