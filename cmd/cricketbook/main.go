package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cricketbook/internal/analytics"
	"cricketbook/internal/analytics/analytics_api"
	"cricketbook/internal/auth"
	"cricketbook/internal/auth/auth_api"
	"cricketbook/internal/booking"
	"cricketbook/internal/booking/booking_api"
	"cricketbook/internal/config"
	"cricketbook/internal/feed"
	"cricketbook/internal/kafka"
	"cricketbook/internal/logger"
	"cricketbook/internal/mail"
	"cricketbook/internal/matches"
	"cricketbook/internal/matches/match_api"
	"cricketbook/internal/scan"
	"cricketbook/internal/scan/scan_api"
	"cricketbook/internal/sse"
	"cricketbook/internal/store"
	"cricketbook/internal/tickets/qr"
	tickettpl "cricketbook/internal/tickets/template"
	"cricketbook/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newGateway(cfg config.PaymentConfig, logger *logger.Logger) booking.Gateway {
	if cfg.Provider == "stripe" {
		logger.Info("PAYMENT", "Using Stripe payment gateway")
		return booking.NewStripeGateway(cfg, logger)
	}
	logger.Warn("PAYMENT", fmt.Sprintf("Using sandbox payment gateway (PAYMENT_PROVIDER=%s)", cfg.Provider))
	return booking.NewSandboxGateway(cfg.Currency)
}

// requestLogger writes one API line per request.
func requestLogger(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", ww.Status()), time.Since(start).String())
		})
	}
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting CricketBook initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	if cfg.Auth.AdminEmail == "" {
		logger.Warn("CONFIG", "ADMIN_EMAIL not set, nobody will be granted the admin role at sign-up")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to open %s store: %v", cfg.Store.Driver, err))
	}
	defer repos.Close()

	redisClient, err := auth.NewRedisClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	defer redisClient.Close()

	hub := sse.NewHub()
	instanceID := utils.GenerateUUID()

	var producer feed.ChangeProducer
	if cfg.Kafka.Enabled {
		if cfg.Kafka.CreateTopics {
			if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topic}, cfg.Kafka.NumPartitions, logger); err != nil {
				logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
			}
		}

		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer kafkaProducer.Close()
		producer = kafkaProducer

		groupID := cfg.Kafka.GroupPrefix + "-" + instanceID
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, groupID, logger)
		defer consumer.Close()
		go consumer.Start(ctx, feed.Relay(hub))
		logger.Info("KAFKA", fmt.Sprintf("Live feeds relayed through %s (group %s)", cfg.Kafka.Topic, groupID))
	} else {
		logger.Info("KAFKA", "Kafka disabled, live feeds are local to this instance")
	}
	broadcaster := feed.NewBroadcaster(hub, producer, instanceID, logger)

	authService := auth.NewAuthService(repos.Users, auth.NewRedisSessionStore(redisClient), cfg.Auth, logger)
	matchService := matches.NewMatchService(repos.Matches, broadcaster, logger)
	bookingService := booking.NewBookingService(
		repos.Bookings,
		repos.Matches,
		repos.Users,
		newGateway(cfg.Payment, logger),
		mail.NewSender(cfg.Email, logger),
		qr.NewGenerator(cfg.Tickets.QRSize),
		tickettpl.NewTicketPDFGenerator(cfg.Tickets.FontPath),
		broadcaster,
		booking.SeatRules{SeatMapSize: cfg.Tickets.SeatMapSize, MaxSeats: cfg.Tickets.MaxSeats},
		cfg.Payment.Currency,
		logger,
	)
	scanService := scan.NewScanService(repos.Scans, repos.Bookings, repos.Matches, repos.Users, broadcaster, logger)
	analyticsService := analytics.NewAnalyticsService(repos.Bookings, repos.Matches, logger)

	authHandler := auth_api.NewHandler(authService, logger)
	matchHandler := match_api.NewHandler(matchService, hub, logger)
	bookingHandler := booking_api.NewHandler(bookingService, logger)
	scanHandler := scan_api.NewHandler(scanService, logger)
	analyticsHandler := analytics_api.NewHandler(analyticsService, hub, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, "ok", nil)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/payments/stripe/webhook", bookingHandler.HandleStripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))

		r.Route("/api/auth", authHandler.Routes)
		r.Route("/api/matches", matchHandler.PublicRoutes)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Route("/api/bookings", bookingHandler.Routes)
		})

		r.Route("/api/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Route("/matches", matchHandler.AdminRoutes)
			r.Route("/bookings", bookingHandler.AdminRoutes)
			r.Route("/stats", analyticsHandler.Routes)
			scanHandler.Routes(r)
		})
	})
	logger.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("CricketBook running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	<-ctx.Done()

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "CricketBook shutdown complete")
	}
}
