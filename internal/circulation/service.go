package circulation

import (
	"context"

	"github.com/google/uuid"

	"libracatalog/internal/catalog"
	"libracatalog/internal/membership"
	"libracatalog/pkg/eventstore"
)

// Service defines the catalog manager: the only component that mutates
// items and users.
type Service interface {
	AddItem(ctx context.Context, item catalog.Item) (catalog.Item, error)
	AddUser(ctx context.Context, user membership.User) (membership.User, error)
	GetUser(ctx context.Context, id string) (membership.User, bool)

	Items(ctx context.Context) []catalog.Item
	Users(ctx context.Context) []membership.User
	DisplayItems(ctx context.Context) []string
	DisplayUsers(ctx context.Context) []string
	SearchItem(ctx context.Context, title string) ([]catalog.Item, Outcome)

	IssueItem(ctx context.Context, title, userID string) Outcome
	ReturnItem(ctx context.Context, title, userID string) Outcome
	RemoveItem(ctx context.Context, title string) Outcome

	History(ctx context.Context, itemID uuid.UUID) ([]eventstore.Event, error)
}
