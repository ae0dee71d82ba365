// Package notify is the outbound side of notification dispatch: a
// fire-and-forget POST to the notifications service. Callers decide whether a
// dispatch failure matters.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"ticketly/internal/auth"
	"ticketly/internal/models"
	"ticketly/internal/svcerr"
)

type Client struct {
	BaseURL string
	Client  *http.Client
	Tokens  auth.TokenProvider
}

func (c *Client) Notify(ctx context.Context, userID, message string) error {
	body, _ := json.Marshal(models.TriggerNotificationRequest{
		Message: message,
		UserID:  userID,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/notifications", bytes.NewBuffer(body))
	if err != nil {
		return svcerr.Upstreamf("failed to build notification request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return svcerr.Upstreamf("failed to mint internal token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return svcerr.Upstreamf("notifications service error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return svcerr.Upstreamf("notification rejected: status %d", resp.StatusCode)
	}
	return nil
}
