package middleware

// Context keys used to store request and client metadata.
const (
	ContextKeyClientID    = "client_id"
	ContextKeyClientEmail = "client_email"
	ContextKeyRequestID   = "request_id"
)
