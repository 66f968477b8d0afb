package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind tags the item variant.
type Kind string

const (
	KindBook     Kind = "Book"
	KindMagazine Kind = "Magazine"
	KindDVD      Kind = "DVD"
)

// Status is the availability state of an item.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusIssued    Status = "Issued"
)

// Details is the variant-specific payload of an Item. The set of
// implementations is closed: BookDetails, MagazineDetails, DVDDetails.
type Details interface {
	Kind() Kind
	summary() string
}

// BookDetails holds the fields only books have.
type BookDetails struct {
	ISBN  string `json:"isbn"`
	Genre Genre  `json:"genre"`
}

func (BookDetails) Kind() Kind { return KindBook }

func (d BookDetails) summary() string {
	return fmt.Sprintf(", ISBN: %s, Genre: %s", d.ISBN, d.Genre)
}

// MagazineDetails holds the fields only magazines have.
type MagazineDetails struct {
	IssueNumber string `json:"issue_number"`
}

func (MagazineDetails) Kind() Kind { return KindMagazine }

func (d MagazineDetails) summary() string {
	return fmt.Sprintf(", Issue Number: %s", d.IssueNumber)
}

// DVDDetails holds the fields only DVDs have. Duration is in minutes.
type DVDDetails struct {
	Duration string `json:"duration"`
}

func (DVDDetails) Kind() Kind { return KindDVD }

func (d DVDDetails) summary() string {
	return fmt.Sprintf(", Duration: %s", d.Duration)
}

// Item is a single catalog entry. Each title is one physical unit.
type Item struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Status     Status    `json:"status"`
	BorrowerID string    `json:"borrower_id,omitempty"`
	Details    Details   `json:"details"`
	Version    int       `json:"version"`
}

// NewBook builds an available book.
func NewBook(title, author, isbn string, genre Genre) Item {
	return newItem(title, author, BookDetails{ISBN: isbn, Genre: genre})
}

// NewMagazine builds an available magazine.
func NewMagazine(title, author, issueNumber string) Item {
	return newItem(title, author, MagazineDetails{IssueNumber: issueNumber})
}

// NewDVD builds an available DVD.
func NewDVD(title, author, duration string) Item {
	return newItem(title, author, DVDDetails{Duration: duration})
}

func newItem(title, author string, details Details) Item {
	return Item{
		Title:   title,
		Author:  author,
		Status:  StatusAvailable,
		Details: details,
	}
}

// Type returns the variant tag ("Book", "Magazine" or "DVD").
func (i Item) Type() Kind {
	if i.Details == nil {
		return ""
	}
	return i.Details.Kind()
}

// IsIssued reports whether the item is currently lent out.
func (i Item) IsIssued() bool {
	return i.Status == StatusIssued
}

// Issue marks the item as lent to borrowerID. Callers check IsIssued first.
func (i *Item) Issue(borrowerID string) {
	i.Status = StatusIssued
	i.BorrowerID = borrowerID
}

// Return marks the item as available again.
func (i *Item) Return() {
	i.Status = StatusAvailable
	i.BorrowerID = ""
}

// Display renders a one-line summary including the variant fields.
func (i Item) Display() string {
	var extra string
	if i.Details != nil {
		extra = i.Details.summary()
	}
	return fmt.Sprintf("%s - Title: %s, Author: %s%s, Status: %s",
		i.Type(), i.Title, i.Author, extra, i.status())
}

func (i Item) status() Status {
	if i.IsIssued() {
		return StatusIssued
	}
	return StatusAvailable
}
