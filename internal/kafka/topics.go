package kafka

// Topics carry best-effort observational events. The saga itself coordinates
// over point-to-point HTTP; nothing consumes these streams to make progress.
const (
	TopicTicketLifecycle      = "ticketly.tickets.lifecycle"
	TopicPaymentSettled       = "ticketly.payments.settled"
	TopicTicketReconciliation = "ticketly.tickets.reconciliation"
)
