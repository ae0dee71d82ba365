package qr_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"ticketly/internal/models"
	"ticketly/internal/tickets/qr"
)

func testTicket() models.Ticket {
	return models.Ticket{
		ID:         uuid.New().String(),
		EventID:    uuid.New().String(),
		UserID:     uuid.New().String(),
		SeatNumber: 7,
		Status:     models.TicketActive,
	}
}

func TestEntryPassIsPNG(t *testing.T) {
	gen := qr.NewGenerator("test-secret")

	png, err := gen.EntryPass(testTicket())
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte{0x89, 0x50, 0x4e, 0x47}), "expected PNG magic bytes")
}

func TestEntryPassIsDeterministic(t *testing.T) {
	gen := qr.NewGenerator("test-secret")
	ticket := testTicket()

	first, err := gen.EntryPass(ticket)
	assert.NoError(t, err)
	second, err := gen.EntryPass(ticket)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVerify(t *testing.T) {
	gen := qr.NewGenerator("test-secret")
	ticket := testTicket()

	payload := gen.SignedPayload(ticket)
	assert.True(t, gen.Verify(payload))

	// A different secret cannot validate the pass.
	other := qr.NewGenerator("other-secret")
	assert.False(t, other.Verify(payload))

	// Swapping the seat while keeping the old signature must fail.
	tampered := ticket
	tampered.SeatNumber = 1
	sig := payload[strings.LastIndexByte(payload, '|')+1:]
	forged := gen.SignedPayload(tampered)
	forged = forged[:strings.LastIndexByte(forged, '|')+1] + sig
	assert.False(t, gen.Verify(forged))

	assert.False(t, gen.Verify("no-separator"))
}
