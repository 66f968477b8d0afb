package circulation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"libracatalog/internal/catalog"
	"libracatalog/internal/logger"
	"libracatalog/internal/membership"
	"libracatalog/pkg/eventstore"
)

// service implements the Service interface.
type service struct {
	mu    sync.RWMutex
	items []*catalog.Item
	users []*membership.User

	eventStore *eventstore.EventStore
	log        logger.Logger
	tracer     trace.Tracer
	outcomes   metric.Int64Counter
}

// NewService creates an empty catalog manager recording its changes in es.
func NewService(es *eventstore.EventStore, log logger.Logger) Service {
	outcomes, err := otel.Meter("libracatalog/circulation").Int64Counter(
		"circulation.outcomes",
		metric.WithDescription("Catalog operations by outcome status"),
	)
	if err != nil {
		log.Warn("outcome counter unavailable", logger.Error(err))
		outcomes = noop.Int64Counter{}
	}

	return &service{
		eventStore: es,
		log:        log,
		tracer:     otel.Tracer("libracatalog/circulation"),
		outcomes:   outcomes,
	}
}

// AddItem assigns the item an ID and appends it to the catalog.
func (s *service) AddItem(ctx context.Context, item catalog.Item) (catalog.Item, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.add_item")
	defer span.End()

	if strings.TrimSpace(item.Title) == "" {
		return catalog.Item{}, ErrMissingTitle
	}
	if item.Details == nil {
		return catalog.Item{}, ErrMissingKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = uuid.New()
	item.Return()
	item.Version = 0

	err := s.record(ctx, item.ID, aggregateItem, item.Version, EventItemAdded, ItemAddedEvent{
		ID:     item.ID,
		Kind:   item.Type(),
		Title:  item.Title,
		Author: item.Author,
	})
	if err != nil {
		return catalog.Item{}, err
	}
	item.Version++

	if s.findItem(item.Title) >= 0 {
		s.log.Warn("catalog already holds this title, later copies cannot be issued",
			logger.String("title", item.Title))
	}

	stored := item
	s.items = append(s.items, &stored)
	span.SetAttributes(attribute.String("item.id", item.ID.String()))
	s.log.Debug("item added", logger.String("title", item.Title), logger.Stringer("id", item.ID))

	return item, nil
}

// AddUser registers a user under a unique, non-empty ID.
func (s *service) AddUser(ctx context.Context, user membership.User) (membership.User, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.add_user")
	defer span.End()

	if strings.TrimSpace(user.ID) == "" {
		return membership.User{}, ErrMissingUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUser(user.ID) != nil {
		return membership.User{}, fmt.Errorf("%w: %q", ErrDuplicateUser, user.ID)
	}

	user.Borrowed = nil
	err := s.record(ctx, userAggregateID(user.ID), aggregateUser, 0, EventUserRegistered, membership.UserRegisteredEvent{
		ID:   user.ID,
		Name: user.Name,
	})
	if err != nil {
		return membership.User{}, err
	}

	stored := user
	s.users = append(s.users, &stored)
	s.log.Debug("user added", logger.String("user_id", user.ID))

	return user, nil
}

// GetUser looks a user up by identifier.
func (s *service) GetUser(_ context.Context, id string) (membership.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.findUser(id)
	if user == nil {
		return membership.User{}, false
	}
	return user.Clone(), true
}

// Items returns the catalog in insertion order.
func (s *service) Items(_ context.Context) []catalog.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]catalog.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, *item)
	}
	return items
}

// Users returns all users in insertion order.
func (s *service) Users(_ context.Context) []membership.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]membership.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user.Clone())
	}
	return users
}

func (s *service) DisplayItems(ctx context.Context) []string {
	items := s.Items(ctx)
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Display())
	}
	return lines
}

func (s *service) DisplayUsers(ctx context.Context) []string {
	users := s.Users(ctx)
	lines := make([]string, 0, len(users))
	for _, user := range users {
		lines = append(lines, user.Display())
	}
	return lines
}

// SearchItem returns every item whose title matches exactly.
func (s *service) SearchItem(ctx context.Context, title string) ([]catalog.Item, Outcome) {
	_, span := s.tracer.Start(ctx, "circulation.search", trace.WithAttributes(attribute.String("item.title", title)))
	defer span.End()

	s.mu.RLock()
	var matches []catalog.Item
	for _, item := range s.items {
		if item.Title == title {
			matches = append(matches, *item)
		}
	}
	s.mu.RUnlock()

	result := Outcome{Status: StatusFound, Title: title}
	if len(matches) == 0 {
		result.Status = StatusNotFound
	}
	span.SetAttributes(attribute.Int("search.matches", len(matches)))
	s.count(ctx, "search", result)
	return matches, result
}

// IssueItem lends the first item titled title to the user.
func (s *service) IssueItem(ctx context.Context, title, userID string) Outcome {
	ctx, span := s.tracer.Start(ctx, "circulation.issue", trace.WithAttributes(
		attribute.String("item.title", title),
		attribute.String("user.id", userID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.issue(ctx, title, userID)
	span.SetAttributes(attribute.String("outcome", string(result.Status)))
	s.count(ctx, "issue", result)
	return result
}

func (s *service) issue(ctx context.Context, title, userID string) Outcome {
	user := s.findUser(userID)
	if user == nil {
		return Outcome{Status: StatusUserNotFound, Title: title, UserID: userID}
	}

	idx := s.findItem(title)
	if idx < 0 {
		return Outcome{Status: StatusNotFound, Title: title, UserID: userID}
	}
	item := s.items[idx]

	switch item.Details.(type) {
	case catalog.BookDetails, catalog.MagazineDetails, catalog.DVDDetails:
		if item.IsIssued() {
			return outcome(StatusAlreadyIssued, *item, userID)
		}
	default:
		return failed(title, fmt.Errorf("unsupported item variant %T", item.Details))
	}

	err := s.record(ctx, item.ID, aggregateItem, item.Version, EventItemIssued, ItemIssuedEvent{
		ItemID: item.ID,
		UserID: userID,
		Title:  item.Title,
	})
	if err != nil {
		return failed(title, err)
	}
	item.Version++

	item.Issue(userID)
	user.BorrowItem(*item)
	s.log.Debug("item issued", logger.String("title", title), logger.String("user_id", userID))

	return outcome(StatusIssued, *item, userID)
}

// ReturnItem takes back the first item titled title from its borrower.
func (s *service) ReturnItem(ctx context.Context, title, userID string) Outcome {
	ctx, span := s.tracer.Start(ctx, "circulation.return", trace.WithAttributes(
		attribute.String("item.title", title),
		attribute.String("user.id", userID),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.giveBack(ctx, title, userID)
	span.SetAttributes(attribute.String("outcome", string(result.Status)))
	s.count(ctx, "return", result)
	return result
}

func (s *service) giveBack(ctx context.Context, title, userID string) Outcome {
	user := s.findUser(userID)
	if user == nil {
		return Outcome{Status: StatusUserNotFound, Title: title, UserID: userID}
	}

	idx := s.findItem(title)
	if idx < 0 {
		return Outcome{Status: StatusNotFound, Title: title, UserID: userID}
	}
	item := s.items[idx]

	switch item.Details.(type) {
	case catalog.BookDetails, catalog.MagazineDetails, catalog.DVDDetails:
		if !item.IsIssued() {
			return outcome(StatusNotIssued, *item, userID)
		}
		if item.BorrowerID != userID {
			return outcome(StatusNotBorrower, *item, userID)
		}
	default:
		return failed(title, fmt.Errorf("unsupported item variant %T", item.Details))
	}

	err := s.record(ctx, item.ID, aggregateItem, item.Version, EventItemReturned, ItemReturnedEvent{
		ItemID: item.ID,
		UserID: userID,
		Title:  item.Title,
	})
	if err != nil {
		return failed(title, err)
	}
	item.Version++

	item.Return()
	if !user.ReturnItem(title) {
		s.log.Warn("returned item was missing from the borrower's list",
			logger.String("title", title), logger.String("user_id", userID))
	}
	s.log.Debug("item returned", logger.String("title", title), logger.String("user_id", userID))

	return outcome(StatusReturned, *item, userID)
}

// RemoveItem drops the first item titled title, provided nobody holds it.
func (s *service) RemoveItem(ctx context.Context, title string) Outcome {
	ctx, span := s.tracer.Start(ctx, "circulation.remove", trace.WithAttributes(attribute.String("item.title", title)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.remove(ctx, title)
	span.SetAttributes(attribute.String("outcome", string(result.Status)))
	s.count(ctx, "remove", result)
	return result
}

func (s *service) remove(ctx context.Context, title string) Outcome {
	idx := s.findItem(title)
	if idx < 0 {
		return Outcome{Status: StatusNotFound, Title: title}
	}
	item := s.items[idx]
	if item.IsIssued() {
		return outcome(StatusStillIssued, *item, item.BorrowerID)
	}

	err := s.record(ctx, item.ID, aggregateItem, item.Version, EventItemRemoved, ItemRemovedEvent{
		ItemID: item.ID,
		Title:  item.Title,
	})
	if err != nil {
		return failed(title, err)
	}

	s.items = slices.Delete(s.items, idx, idx+1)
	s.log.Debug("item removed", logger.String("title", title))

	return outcome(StatusRemoved, *item, "")
}

// History returns the journal entries of one item, oldest first.
func (s *service) History(ctx context.Context, itemID uuid.UUID) ([]eventstore.Event, error) {
	events, err := s.eventStore.LoadEvents(ctx, itemID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load item history: %w", err)
	}
	return events, nil
}

func (s *service) record(ctx context.Context, aggregateID uuid.UUID, aggregateType string, version int, eventType string, data interface{}) error {
	event, err := eventstore.NewEvent(eventType, data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if err := s.eventStore.AppendEvents(ctx, aggregateID, aggregateType, version, []eventstore.Event{event}); err != nil {
		s.log.Warn("journal append failed",
			logger.String("event_type", eventType),
			logger.Stringer("aggregate_id", aggregateID),
			logger.Error(err))
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *service) count(ctx context.Context, op string, result Outcome) {
	s.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", string(result.Status)),
	))
}

func (s *service) findItem(title string) int {
	for i, item := range s.items {
		if item.Title == title {
			return i
		}
	}
	return -1
}

func (s *service) findUser(id string) *membership.User {
	for _, user := range s.users {
		if user.ID == id {
			return user
		}
	}
	return nil
}
