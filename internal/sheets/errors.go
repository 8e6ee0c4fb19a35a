package sheets

import (
	"fmt"

	"github.com/hugh/member-sync/internal/member"
)

var (
	// ErrUnauthorized means the target row does not belong to the caller.
	ErrUnauthorized = member.ErrRowNotOwned
	// ErrNoRow means a direct-cell write had no row to address.
	ErrNoRow = member.ErrNoRow
)

// FetchError is a network failure or non-success status from the spreadsheet host.
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Failed to fetch spreadsheet: %d", e.StatusCode)
	}
	return fmt.Sprintf("Failed to fetch spreadsheet: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
