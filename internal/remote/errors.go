package remote

import "fmt"

// CallError is a non-auth remote failure carrying the HTTP status and response
// body. It surfaces as a failed sync/poll phase but never forces a logout.
type CallError struct {
	Status int
	Body   string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("remote call failed: status %d: %s", e.Status, e.Body)
}
