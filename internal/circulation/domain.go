package circulation

import (
	"github.com/google/uuid"

	"libracatalog/internal/catalog"
)

// Aggregate and event type names recorded in the journal.
const (
	aggregateItem = "item"
	aggregateUser = "user"

	EventItemAdded      = "ItemAdded"
	EventItemIssued     = "ItemIssued"
	EventItemReturned   = "ItemReturned"
	EventItemRemoved    = "ItemRemoved"
	EventUserRegistered = "UserRegistered"
)

// ItemAddedEvent is published when an item enters the catalog.
type ItemAddedEvent struct {
	ID     uuid.UUID    `json:"id"`
	Kind   catalog.Kind `json:"kind"`
	Title  string       `json:"title"`
	Author string       `json:"author"`
}

// ItemIssuedEvent is published when an item is lent to a user.
type ItemIssuedEvent struct {
	ItemID uuid.UUID `json:"item_id"`
	UserID string    `json:"user_id"`
	Title  string    `json:"title"`
}

// ItemReturnedEvent is published when the borrower brings an item back.
type ItemReturnedEvent struct {
	ItemID uuid.UUID `json:"item_id"`
	UserID string    `json:"user_id"`
	Title  string    `json:"title"`
}

// ItemRemovedEvent is published when an item leaves the catalog.
type ItemRemovedEvent struct {
	ItemID uuid.UUID `json:"item_id"`
	Title  string    `json:"title"`
}

var userNamespace = uuid.MustParse("5b0f3c1e-7a0d-4c55-9a57-8f1d2f0b6a11")

// userAggregateID maps a user identifier onto a stable journal key.
func userAggregateID(userID string) uuid.UUID {
	return uuid.NewSHA1(userNamespace, []byte(userID))
}
