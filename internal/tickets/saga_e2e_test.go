package tickets_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ticketly/internal/auth"
	"ticketly/internal/events"
	eventsapi "ticketly/internal/events/api"
	eventsdb "ticketly/internal/events/db"
	"ticketly/internal/models"
	"ticketly/internal/notifications"
	notificationsapi "ticketly/internal/notifications/api"
	notificationsdb "ticketly/internal/notifications/db"
	"ticketly/internal/notify"
	"ticketly/internal/payments"
	paymentsapi "ticketly/internal/payments/api"
	paymentsdb "ticketly/internal/payments/db"
	"ticketly/internal/tickets"
	ticketsapi "ticketly/internal/tickets/api"
	ticketsdb "ticketly/internal/tickets/db"
)

var (
	e2eInternalSecret = []byte("e2e-internal-secret")
	e2eExternalSecret = []byte("e2e-external-secret")
)

// sagaEnv wires all four services with real HTTP clients against httptest
// servers, each backed by its own in-memory database.
type sagaEnv struct {
	eventsDB        *eventsdb.DB
	ticketsDB       *ticketsdb.DB
	paymentsDB      *paymentsdb.DB
	notificationsDB *notificationsdb.DB

	eventsSvc  *events.EventService
	ticketsSvc *tickets.TicketService

	ticketsServer  *httptest.Server
	paymentsServer *httptest.Server

	sweeper *payments.Sweeper
}

func newMemDB(t *testing.T, model interface{}) *bun.DB {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := bunDB.NewCreateTable().Model(model).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })
	return bunDB
}

func newSagaEnv(t *testing.T) *sagaEnv {
	env := &sagaEnv{
		eventsDB:        &eventsdb.DB{Bun: newMemDB(t, (*models.Event)(nil))},
		ticketsDB:       &ticketsdb.DB{Bun: newMemDB(t, (*models.Ticket)(nil))},
		paymentsDB:      &paymentsdb.DB{Bun: newMemDB(t, (*models.Payment)(nil))},
		notificationsDB: &notificationsdb.DB{Bun: newMemDB(t, (*models.Notification)(nil))},
	}

	verifier := &auth.Verifier{
		InternalSecret: e2eInternalSecret,
		ExternalSecret: e2eExternalSecret,
	}

	// Events service.
	env.eventsSvc = events.NewEventService(env.eventsDB, nil)
	eventsHandler := &eventsapi.Handler{EventService: env.eventsSvc}
	eventsRouter := chi.NewRouter()
	eventsRouter.Route("/api/events", func(r chi.Router) {
		r.Get("/{id}", eventsHandler.GetEvent)
		r.With(verifier.RequireInternal).Patch("/{id}/update-seats", eventsHandler.UpdateSeats)
	})
	eventsServer := httptest.NewServer(eventsRouter)
	t.Cleanup(eventsServer.Close)

	// Notifications service.
	notificationsSvc := notifications.NewNotificationService(env.notificationsDB, nil)
	notificationsHandler := &notificationsapi.Handler{NotificationService: notificationsSvc}
	notificationsRouter := chi.NewRouter()
	notificationsRouter.With(verifier.RequireInternal).Post("/api/notifications", notificationsHandler.Dispatch)
	notificationsServer := httptest.NewServer(notificationsRouter)
	t.Cleanup(notificationsServer.Close)

	// Payments service.
	paymentsSvc := payments.NewPaymentService(env.paymentsDB, nil)
	paymentsHandler := &paymentsapi.Handler{PaymentService: paymentsSvc}
	paymentsRouter := chi.NewRouter()
	paymentsRouter.With(verifier.RequireInternal).Post("/api/payments", paymentsHandler.CreatePayment)
	env.paymentsServer = httptest.NewServer(paymentsRouter)
	t.Cleanup(env.paymentsServer.Close)

	httpClient := &http.Client{Timeout: 5 * time.Second}
	minter := auth.NewMinter(e2eInternalSecret, "tickets-service", 5*time.Minute, nil)

	notifier := &notify.Client{
		BaseURL: notificationsServer.URL,
		Client:  httpClient,
		Tokens:  minter,
	}

	// Tickets service, talking to the others over HTTP.
	env.ticketsSvc = tickets.NewTicketService(
		env.ticketsDB,
		&tickets.EventsClient{BaseURL: eventsServer.URL, Client: httpClient, Tokens: minter},
		&tickets.PaymentsClient{BaseURL: env.paymentsServer.URL, Client: httpClient, Tokens: minter},
		notifier,
		nil,
	)
	ticketsHandler := &ticketsapi.Handler{TicketService: env.ticketsSvc}
	ticketsRouter := chi.NewRouter()
	ticketsRouter.Route("/api/tickets", func(r chi.Router) {
		r.With(verifier.RequireExternal()).Post("/", ticketsHandler.CreateTicket)
		r.With(verifier.RequireExternal()).Patch("/{id}/refund", ticketsHandler.RefundTicket)
		r.With(verifier.RequireExternal()).Patch("/{id}/cancel", ticketsHandler.CancelTicket)
		r.With(verifier.RequireInternal).Patch("/{id}/active", ticketsHandler.ActivateTicket)
	})
	env.ticketsServer = httptest.NewServer(ticketsRouter)
	t.Cleanup(env.ticketsServer.Close)

	sweepMinter := auth.NewMinter(e2eInternalSecret, "payments-service", 5*time.Minute, nil)
	env.sweeper = &payments.Sweeper{
		DB: env.paymentsDB,
		Tickets: &payments.TicketsClient{
			BaseURL: env.ticketsServer.URL,
			Client:  httpClient,
			Tokens:  sweepMinter,
		},
		Notifier: &notify.Client{
			BaseURL: notificationsServer.URL,
			Client:  httpClient,
			Tokens:  sweepMinter,
		},
	}

	return env
}

func (env *sagaEnv) seedEvent(t *testing.T, capacity uint) *models.Event {
	event, err := env.eventsSvc.CreateEvent(context.Background(), models.CreateEventRequest{
		Title:    "Go Conference",
		Location: "Berlin",
		Capacity: capacity,
		Price:    4500,
		Date:     time.Now().Add(48 * time.Hour),
	}, uuid.New().String())
	if err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	return event
}

func (env *sagaEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, models.Ticket) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, env.ticketsServer.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&envelope)

	var ticket models.Ticket
	if envelope.Data != nil {
		_ = json.Unmarshal(envelope.Data, &ticket)
	}
	return resp, ticket
}

func userToken(t *testing.T, userID string) string {
	token, err := auth.EncodeExternalJWT(e2eExternalSecret, userID, models.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign user token: %v", err)
	}
	return token
}

// The full reservation saga against real HTTP boundaries: a purchase leaves a
// Pending ticket and an empty event, the settlement sweep activates it, and a
// refund returns the seat.
func TestReservationSagaEndToEnd(t *testing.T) {
	env := newSagaEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, 1)
	userID := uuid.New().String()
	token := userToken(t, userID)

	resp, ticket := env.do(t, http.MethodPost, "/api/tickets", token, models.CreateTicketRequest{
		EventID:        event.ID,
		UserID:         userID,
		SeatNumber:     1,
		Currency:       models.CurrencyEUR,
		CardNumber:     "4242424242424242",
		ExpirationDate: time.Now().Add(365 * 24 * time.Hour),
		CVV:            "123",
		CardHolder:     "Jane Doe",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.TicketPending, ticket.Status)

	// The seat is gone and a pending payment is waiting for the sweep.
	got, err := env.eventsDB.GetEventByID(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint(0), got.RemainingSeats)

	pending, err := env.paymentsDB.ListPendingPayments(ctx)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, ticket.ID, pending[0].TicketID)

	// Settlement pass: payment Success, ticket Active, payer notified.
	assert.NoError(t, env.sweeper.Sweep(ctx))

	payment, err := env.paymentsDB.GetPaymentByID(ctx, pending[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentSuccess, payment.Status)

	active, err := env.ticketsDB.GetTicketByID(ctx, ticket.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, models.TicketActive, active.Status)

	notificationsSent, err := env.notificationsDB.ListNotificationsByUser(ctx, userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, notificationsSent)

	// A second pass finds nothing pending.
	assert.NoError(t, env.sweeper.Sweep(ctx))
	pending, err = env.paymentsDB.ListPendingPayments(ctx)
	assert.NoError(t, err)
	assert.Empty(t, pending)

	// Refund gives the seat back and terminates the ticket.
	resp, refunded := env.do(t, http.MethodPatch, "/api/tickets/"+ticket.ID+"/refund", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.TicketRefunded, refunded.Status)

	got, err = env.eventsDB.GetEventByID(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), got.RemainingSeats)

	// Terminal tickets cannot be refunded again.
	resp, _ = env.do(t, http.MethodPatch, "/api/tickets/"+ticket.ID+"/refund", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// With the payments service down, the purchase fails with a gateway error but
// the Pending ticket stays and the seat is still consumed. This pins the
// weak-consistency gap the reconciler reports on.
func TestReservationSagaPaymentOutage(t *testing.T) {
	env := newSagaEnv(t)
	ctx := context.Background()

	event := env.seedEvent(t, 3)
	userID := uuid.New().String()
	token := userToken(t, userID)

	env.paymentsServer.Close()

	resp, _ := env.do(t, http.MethodPost, "/api/tickets", token, models.CreateTicketRequest{
		EventID:        event.ID,
		UserID:         userID,
		SeatNumber:     2,
		Currency:       models.CurrencyUSD,
		CardNumber:     "4242424242424242",
		ExpirationDate: time.Now().Add(365 * 24 * time.Hour),
		CVV:            "123",
		CardHolder:     "Jane Doe",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// The ticket row survives the failed payment call.
	mine, err := env.ticketsDB.ListTicketsByUser(ctx, userID)
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, models.TicketPending, mine[0].Status)

	// And the seat decrement fired anyway.
	got, err := env.eventsDB.GetEventByID(ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, uint(2), got.RemainingSeats)

	// The orphan shows up once it ages past the reporting window.
	reconciler := &tickets.Reconciler{DB: env.ticketsDB, MaxAge: 0}
	time.Sleep(10 * time.Millisecond)
	orphans, err := reconciler.ReportOrphans(ctx)
	assert.NoError(t, err)
	assert.Len(t, orphans, 1)
	assert.Equal(t, mine[0].ID, orphans[0].ID)
}
