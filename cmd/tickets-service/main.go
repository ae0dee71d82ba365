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
	"ticketly/internal/tickets"
	"ticketly/internal/tickets/api"
	ticketsdb "ticketly/internal/tickets/db"
	"ticketly/internal/tickets/qr"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load("tickets-service")
	log := logger.NewLogger("tickets-service")
	defer log.Close()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if err := migrations.Run(bunDB, "migrations/tickets", log); err != nil {
		log.Fatal("DATABASE", err.Error())
	}

	// The internal-token cache is best-effort: without Redis every outbound
	// call mints its own token.
	var tokenCache *auth.RedisTokenCache
	if redisClient, err := auth.InitializeTokenCache(cfg.Redis.Addr, log); err == nil {
		tokenCache = auth.NewRedisTokenCache(redisClient, cfg.Auth.ServiceName)
		defer redisClient.Close()
	}

	minter := auth.NewMinter([]byte(cfg.Auth.InternalSecret), cfg.Auth.ServiceName, cfg.Auth.InternalTTL, tokenCache)
	httpClient := &http.Client{Timeout: 10 * time.Second}

	service := tickets.NewTicketService(
		&ticketsdb.DB{Bun: bunDB},
		&tickets.EventsClient{BaseURL: cfg.Services.EventsURL, Client: httpClient, Tokens: minter},
		&tickets.PaymentsClient{BaseURL: cfg.Services.PaymentsURL, Client: httpClient, Tokens: minter},
		&notify.Client{BaseURL: cfg.Services.NotificationsURL, Client: httpClient, Tokens: minter},
		log,
	)
	service.StrictDelete = cfg.Tickets.StrictDelete
	if cfg.Tickets.QRSecret != "" {
		service.QR = qr.NewGenerator(cfg.Tickets.QRSecret)
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		service.Publisher = producer
	}

	handler := &api.Handler{TicketService: service}

	verifier := &auth.Verifier{
		InternalSecret: []byte(cfg.Auth.InternalSecret),
		ExternalSecret: []byte(cfg.Auth.ExternalSecret),
	}

	r := chi.NewRouter()
	r.Route("/api/tickets", func(r chi.Router) {
		r.With(verifier.RequireExternal()).Get("/", handler.ListTickets)
		r.With(verifier.RequireExternal()).Post("/", handler.CreateTicket)
		r.With(verifier.RequireExternal()).Get("/{id}", handler.GetTicket)
		r.With(verifier.RequireExternal()).Patch("/{id}/cancel", handler.CancelTicket)
		r.With(verifier.RequireExternal()).Patch("/{id}/refund", handler.RefundTicket)
		r.With(verifier.RequireExternal()).Patch("/{id}/seat", handler.UpdateSeatNumber)
		r.With(verifier.RequireExternal(models.RoleAdmin)).Delete("/{id}", handler.DeleteTicket)

		// Activation is the settlement sweep's callback.
		r.With(verifier.RequireInternal).Patch("/{id}/active", handler.ActivateTicket)
	})

	ctx, cancelReconciler := context.WithCancel(context.Background())
	reconciler := &tickets.Reconciler{
		DB:        service.DB,
		Publisher: service.Publisher,
		Log:       log,
		Interval:  cfg.Sweep.ReconcileInterval,
		MaxAge:    cfg.Sweep.ReconcileMaxAge,
	}
	go reconciler.Run(ctx)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Tickets service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancelReconciler()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Tickets service shutdown complete")
}
