package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// RequestID is the context key for the per-request correlation id.
	RequestID contextKey = "requestID"
	// Subject is the context key for the authenticated token subject.
	Subject contextKey = "subject"
)
