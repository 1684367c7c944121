package transcriber

import "errors"

// Failure classes surfaced to the user when a transcription cannot complete.
var (
	ErrInvalidKey  = errors.New("transcription API key rejected")
	ErrInvalidFile = errors.New("audio file missing or unreadable")
	ErrNetwork     = errors.New("transcription service unreachable")
	ErrDecoding    = errors.New("transcription response malformed")
)

// APIError carries the provider's own error message for failures the service
// reported explicitly.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e == nil || e.Message == "" {
		return "transcription API error"
	}
	return "transcription API error: " + e.Message
}

func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
