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
	"ticketly/internal/events"
	"ticketly/internal/events/api"
	eventsdb "ticketly/internal/events/db"
	"ticketly/internal/logger"
	"ticketly/internal/models"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load("events-service")
	log := logger.NewLogger("events-service")
	defer log.Close()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if err := migrations.Run(bunDB, "migrations/events", log); err != nil {
		log.Fatal("DATABASE", err.Error())
	}

	service := events.NewEventService(&eventsdb.DB{Bun: bunDB}, log)
	handler := &api.Handler{EventService: service}

	verifier := &auth.Verifier{
		InternalSecret: []byte(cfg.Auth.InternalSecret),
		ExternalSecret: []byte(cfg.Auth.ExternalSecret),
	}

	r := chi.NewRouter()
	r.Route("/api/events", func(r chi.Router) {
		r.Get("/", handler.ListEvents)
		r.Get("/{id}", handler.GetEvent)

		r.With(verifier.RequireExternal(models.RoleAdmin, models.RoleEventCreator)).Post("/", handler.CreateEvent)
		r.With(verifier.RequireExternal(models.RoleAdmin, models.RoleEventCreator)).Put("/{id}", handler.UpdateEvent)
		r.With(verifier.RequireExternal(models.RoleAdmin, models.RoleEventCreator)).Delete("/{id}", handler.DeleteEvent)

		// Seat inventory mutation path, internal callers only.
		r.With(verifier.RequireInternal).Patch("/{id}/update-seats", handler.UpdateSeats)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Events service on %s", cfg.Server.Port))
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
	log.Info("SERVER", "Events service shutdown complete")
}
