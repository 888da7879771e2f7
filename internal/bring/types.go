package bring

import "fmt"

// Item is one entry on the shopping list. Items have no identity beyond
// their name; equality against requested names is exact and case-sensitive.
type Item struct {
	Name          string `json:"name"`
	Specification string `json:"specification"`
}

// listResponse is the Bring API representation of one list.
type listResponse struct {
	UUID     string `json:"uuid"`
	Status   string `json:"status"`
	Purchase []Item `json:"purchase"`
	Recently []Item `json:"recently"`
}

// TransportError reports a failed exchange with the Bring API: connection
// failures, authentication rejections, and unexpected status codes.
type TransportError struct {
	// Op is the logical operation that failed: "current_items", "add_item",
	// "mark_consumed".
	Op string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Message is the server-provided or transport-level detail.
	Message string

	// Err is the underlying error, if any.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bring: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("bring: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("bring: %s: %s", e.Op, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
