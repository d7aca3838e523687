package handlers

// Client-facing error messages
const (
	ErrNotFound            = "Not found"
	ErrInvalidJSON         = "Invalid JSON body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInvalidCSRF         = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests"
	ErrSessionBusy         = "Session is busy, try again"
	ErrInternalServerError = "Internal server error"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20
