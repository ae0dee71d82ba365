package tickets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ticketly/internal/auth"
	"ticketly/internal/models"
	"ticketly/internal/svcerr"
	"ticketly/internal/utils"
)

// EventsClient talks to the events service over its internal HTTP API.
type EventsClient struct {
	BaseURL string
	Client  *http.Client
	Tokens  auth.TokenProvider
}

func (c *EventsClient) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/events/%s", c.BaseURL, eventID), nil)
	if err != nil {
		return nil, svcerr.Upstreamf("failed to build event request: %v", err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, svcerr.Upstreamf("events service error: %v", err)
	}
	defer resp.Body.Close()

	var envelope utils.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, svcerr.Upstreamf("events service returned an unexpected shape: %v", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, svcerr.Upstreamf("no event was found with this id: %s", envelope.Error)
	}

	var event models.Event
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		return nil, svcerr.Upstreamf("events service returned an unexpected shape: %v", err)
	}
	return &event, nil
}

func (c *EventsClient) ApplySeatDelta(ctx context.Context, eventID string, delta int) error {
	body, _ := json.Marshal(models.UpdateSeatsRequest{Delta: delta})
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		fmt.Sprintf("%s/api/events/%s/update-seats", c.BaseURL, eventID), bytes.NewBuffer(body))
	if err != nil {
		return svcerr.Upstreamf("failed to build seat-delta request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return svcerr.Upstreamf("events service error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return svcerr.Upstreamf("seat delta rejected: status %d", resp.StatusCode)
	}
	return nil
}

func (c *EventsClient) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return svcerr.Upstreamf("failed to mint internal token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// PaymentsClient records pending charges with the payments service.
type PaymentsClient struct {
	BaseURL string
	Client  *http.Client
	Tokens  auth.TokenProvider
}

func (c *PaymentsClient) CreatePayment(ctx context.Context, payment models.CreatePaymentRequest) error {
	body, _ := json.Marshal(payment)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/payments", bytes.NewBuffer(body))
	if err != nil {
		return svcerr.Upstreamf("failed to build payment request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return svcerr.Upstreamf("failed to mint internal token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return svcerr.Upstreamf("payments service error: %v", err)
	}
	defer resp.Body.Close()

	var envelope utils.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return svcerr.Upstreamf("payments service returned an unexpected shape: %v", err)
	}
	if !envelope.Success {
		return svcerr.Upstreamf("payment creation rejected: %s", envelope.Error)
	}
	return nil
}
