package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"ticketly/internal/auth"
	"ticketly/internal/config"
	"ticketly/internal/database"
	"ticketly/internal/database/migrations"
	"ticketly/internal/kafka"
	"ticketly/internal/logger"
	"ticketly/internal/models"
	"ticketly/internal/notify"
	"ticketly/internal/payments"
	"ticketly/internal/payments/api"
	paymentsdb "ticketly/internal/payments/db"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load("payments-service")
	log := logger.NewLogger("payments-service")
	defer log.Close()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if err := migrations.Run(bunDB, "migrations/payments", log); err != nil {
		log.Fatal("DATABASE", err.Error())
	}

	var tokenCache *auth.RedisTokenCache
	if redisClient, err := auth.InitializeTokenCache(cfg.Redis.Addr, log); err == nil {
		tokenCache = auth.NewRedisTokenCache(redisClient, cfg.Auth.ServiceName)
		defer redisClient.Close()
	}

	minter := auth.NewMinter([]byte(cfg.Auth.InternalSecret), cfg.Auth.ServiceName, cfg.Auth.InternalTTL, tokenCache)
	httpClient := &http.Client{Timeout: 10 * time.Second}

	db := &paymentsdb.DB{Bun: bunDB}
	service := payments.NewPaymentService(db, log)
	handler := &api.Handler{PaymentService: service}

	sweeper := &payments.Sweeper{
		DB:       db,
		Tickets:  &payments.TicketsClient{BaseURL: cfg.Services.TicketsURL, Client: httpClient, Tokens: minter},
		Notifier: &notify.Client{BaseURL: cfg.Services.NotificationsURL, Client: httpClient, Tokens: minter},
		Log:      log,
		Interval: cfg.Sweep.Interval,
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		sweeper.Publisher = producer
	}

	ctx, cancelSweep := context.WithCancel(context.Background())
	go sweeper.Run(ctx)

	verifier := &auth.Verifier{
		InternalSecret: []byte(cfg.Auth.InternalSecret),
		ExternalSecret: []byte(cfg.Auth.ExternalSecret),
	}

	r := chi.NewRouter()
	r.Route("/api/payments", func(r chi.Router) {
		r.With(verifier.RequireExternal(models.RoleAdmin, models.RoleOperator)).Get("/", handler.ListPayments)
		r.With(verifier.RequireExternal()).Get("/{id}", handler.GetPayment)
		r.With(verifier.RequireExternal(models.RoleAdmin)).Delete("/{id}", handler.DeletePayment)

		r.With(verifier.RequireInternal).Post("/", handler.CreatePayment)
		r.With(verifier.RequireInternal).Patch("/{id}", handler.UpdatePaymentStatus)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Payments service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancelSweep()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Payments service shutdown complete")
}
