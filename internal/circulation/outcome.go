package circulation

import (
	"errors"
	"fmt"

	"libracatalog/internal/catalog"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrAlreadyIssued = errors.New("item is already issued")
	ErrNotIssued     = errors.New("item was not issued")
	ErrNotBorrower   = errors.New("item is issued to another user")
	ErrStillIssued   = errors.New("item is issued and cannot be removed")

	ErrMissingTitle  = errors.New("title is required")
	ErrMissingKind   = errors.New("item kind is required")
	ErrMissingUserID = errors.New("user ID is required")
	ErrDuplicateUser = errors.New("user ID already registered")
)

// Status is the result of a catalog operation.
type Status string

const (
	StatusIssued        Status = "issued"
	StatusReturned      Status = "returned"
	StatusFound         Status = "found"
	StatusRemoved       Status = "removed"
	StatusNotFound      Status = "not_found"
	StatusUserNotFound  Status = "user_not_found"
	StatusAlreadyIssued Status = "already_issued"
	StatusNotIssued     Status = "not_issued"
	StatusNotBorrower   Status = "not_borrower"
	StatusStillIssued   Status = "still_issued"
	StatusFailed        Status = "failed"
)

// Outcome reports what an operation did. Domain conditions such as a
// missing item are outcomes, not failures: the manager keeps working.
type Outcome struct {
	Status Status       `json:"status"`
	Kind   catalog.Kind `json:"kind,omitempty"`
	Title  string       `json:"title,omitempty"`
	UserID string       `json:"user_id,omitempty"`

	cause error
}

func outcome(status Status, item catalog.Item, userID string) Outcome {
	return Outcome{Status: status, Kind: item.Type(), Title: item.Title, UserID: userID}
}

func failed(title string, err error) Outcome {
	return Outcome{Status: StatusFailed, Title: title, cause: err}
}

// OK reports whether the operation changed or found what was asked for.
func (o Outcome) OK() bool {
	switch o.Status {
	case StatusIssued, StatusReturned, StatusFound, StatusRemoved:
		return true
	}
	return false
}

// Err maps the outcome onto a sentinel error usable with errors.Is, or
// nil for successful outcomes.
func (o Outcome) Err() error {
	var sentinel error
	switch o.Status {
	case StatusNotFound:
		sentinel = ErrItemNotFound
	case StatusUserNotFound:
		return fmt.Errorf("%w: %q", ErrUserNotFound, o.UserID)
	case StatusAlreadyIssued:
		sentinel = ErrAlreadyIssued
	case StatusNotIssued:
		sentinel = ErrNotIssued
	case StatusNotBorrower:
		sentinel = ErrNotBorrower
	case StatusStillIssued:
		sentinel = ErrStillIssued
	case StatusFailed:
		return o.cause
	default:
		return nil
	}
	return fmt.Errorf("%w: %q", sentinel, o.Title)
}

// String is the message shown to the person at the desk.
func (o Outcome) String() string {
	switch o.Status {
	case StatusIssued:
		return fmt.Sprintf("%s issued successfully to %s!", o.Kind, o.UserID)
	case StatusReturned:
		return o.Title + " returned successfully!"
	case StatusFound:
		return "Item found!"
	case StatusRemoved:
		return o.Title + " removed from the catalog!"
	case StatusNotFound:
		return "Item not found!"
	case StatusUserNotFound:
		return "User not found!"
	case StatusAlreadyIssued:
		return fmt.Sprintf("%s is already issued!", o.Kind)
	case StatusNotIssued:
		return fmt.Sprintf("%s was not issued!", o.Kind)
	case StatusNotBorrower:
		return fmt.Sprintf("%s is issued to another user!", o.Kind)
	case StatusStillIssued:
		return fmt.Sprintf("%s is issued and cannot be removed!", o.Kind)
	case StatusFailed:
		return fmt.Sprintf("Operation failed: %v", o.cause)
	}
	return string(o.Status)
}
