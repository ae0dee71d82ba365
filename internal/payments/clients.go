package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ticketly/internal/auth"
	"ticketly/internal/svcerr"
	"ticketly/internal/utils"
)

// TicketsClient lets the settlement sweep call back into the tickets service.
type TicketsClient struct {
	BaseURL string
	Client  *http.Client
	Tokens  auth.TokenProvider
}

func (c *TicketsClient) ActivateTicket(ctx context.Context, ticketID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		fmt.Sprintf("%s/api/tickets/%s/active", c.BaseURL, ticketID), nil)
	if err != nil {
		return svcerr.Upstreamf("failed to build activation request: %v", err)
	}

	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return svcerr.Upstreamf("failed to mint internal token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return svcerr.Upstreamf("tickets service error: %v", err)
	}
	defer resp.Body.Close()

	var envelope utils.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return svcerr.Upstreamf("tickets service returned an unexpected shape: %v", err)
	}
	if !envelope.Success {
		return svcerr.Upstreamf("ticket activation rejected: %s", envelope.Error)
	}
	return nil
}
