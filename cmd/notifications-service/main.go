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
	"ticketly/internal/logger"
	"ticketly/internal/notifications"
	"ticketly/internal/notifications/api"
	notificationsdb "ticketly/internal/notifications/db"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load("notifications-service")
	log := logger.NewLogger("notifications-service")
	defer log.Close()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if err := migrations.Run(bunDB, "migrations/notifications", log); err != nil {
		log.Fatal("DATABASE", err.Error())
	}

	service := notifications.NewNotificationService(&notificationsdb.DB{Bun: bunDB}, log)
	handler := &api.Handler{NotificationService: service}

	verifier := &auth.Verifier{
		InternalSecret: []byte(cfg.Auth.InternalSecret),
		ExternalSecret: []byte(cfg.Auth.ExternalSecret),
	}

	r := chi.NewRouter()
	r.Route("/api/notifications", func(r chi.Router) {
		r.With(verifier.RequireInternal).Post("/", handler.Dispatch)
		r.With(verifier.RequireExternal()).Get("/", handler.ListNotifications)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Notifications service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Notifications service shutdown complete")
}
