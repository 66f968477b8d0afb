package membership

import (
	"github.com/google/uuid"

	"libracatalog/internal/catalog"
)

// Loan is a user's handle on a borrowed catalog item.
type Loan struct {
	ItemID uuid.UUID `json:"item_id"`
	Title  string    `json:"title"`
}

// User represents a library patron.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Borrowed []Loan `json:"borrowed"`
}

// NewUser creates a user with nothing borrowed.
func NewUser(name, id string) User {
	return User{ID: id, Name: name}
}

// BorrowItem records item as borrowed. Duplicates are not checked.
func (u *User) BorrowItem(item catalog.Item) {
	u.Borrowed = append(u.Borrowed, Loan{ItemID: item.ID, Title: item.Title})
}

// ReturnItem drops the first loan matching title and reports whether
// one was found.
func (u *User) ReturnItem(title string) bool {
	for i, loan := range u.Borrowed {
		if loan.Title == title {
			u.Borrowed = append(u.Borrowed[:i], u.Borrowed[i+1:]...)
			return true
		}
	}
	return false
}

// HasBorrowed reports whether the user holds an item with this title.
func (u User) HasBorrowed(title string) bool {
	for _, loan := range u.Borrowed {
		if loan.Title == title {
			return true
		}
	}
	return false
}

// Titles lists the borrowed titles in borrowing order.
func (u User) Titles() []string {
	titles := make([]string, 0, len(u.Borrowed))
	for _, loan := range u.Borrowed {
		titles = append(titles, loan.Title)
	}
	return titles
}

// Display renders the user listing line.
func (u User) Display() string {
	return "Name: " + u.Name + ", User ID: " + u.ID
}

// Clone returns a copy that shares no loan storage with u.
func (u User) Clone() User {
	u.Borrowed = append([]Loan(nil), u.Borrowed...)
	return u
}

// UserRegisteredEvent is published when a new user is added.
type UserRegisteredEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
