package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"ticketly/internal/models"
)

// Generator renders HMAC-signed entry passes. The gate scanner re-derives the
// signature with the shared secret instead of calling back into the service.
type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

func (g *Generator) payload(t models.Ticket) string {
	return fmt.Sprintf("%s|%s|%s|%d", t.ID, t.EventID, t.UserID, t.SeatNumber)
}

func (g *Generator) sign(payload string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SignedPayload is the string encoded into the QR image: the ticket identity
// followed by its signature.
func (g *Generator) SignedPayload(t models.Ticket) string {
	payload := g.payload(t)
	return fmt.Sprintf("%s|%s", payload, g.sign(payload))
}

// EntryPass returns a PNG QR encoding the ticket identity and its signature.
func (g *Generator) EntryPass(t models.Ticket) ([]byte, error) {
	png, err := qrcode.Encode(g.SignedPayload(t), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR: %w", err)
	}
	return png, nil
}

// Verify checks a scanned payload against its signature.
func (g *Generator) Verify(scanned string) bool {
	idx := -1
	for i := len(scanned) - 1; i >= 0; i-- {
		if scanned[i] == '|' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	payload, sig := scanned[:idx], scanned[idx+1:]
	return hmac.Equal([]byte(g.sign(payload)), []byte(sig))
}
