package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
	ErrEmptyEventType      = errors.New("event type is required")
)

// Event represents a domain event with full metadata
type Event struct {
	ID            int64                  `json:"id"`
	AggregateID   uuid.UUID              `json:"aggregate_id"`
	AggregateType string                 `json:"aggregate_type"`
	EventType     string                 `json:"event_type"`
	EventData     json.RawMessage        `json:"event_data"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Version       int                    `json:"version"`
	CreatedAt     time.Time              `json:"created_at"`
}

// NewEvent encodes data as the event payload.
func NewEvent(eventType string, data interface{}) (Event, error) {
	payload, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{EventType: eventType, EventData: payload}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v interface{}) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(e.EventData, v)
}

// EventStore is an append-only in-memory journal with per-aggregate
// optimistic concurrency control. Nothing survives a restart.
type EventStore struct {
	mu       sync.RWMutex
	events   []Event
	versions map[uuid.UUID]int
	nextID   int64
	now      func() time.Time
	tracer   trace.Tracer
}

// NewEventStore creates an empty event store
func NewEventStore() *EventStore {
	return &EventStore{
		versions: make(map[uuid.UUID]int),
		nextID:   1,
		now:      func() time.Time { return time.Now().UTC() },
		tracer:   otel.Tracer("libracatalog/eventstore"),
	}
}

// AppendEvents atomically appends events with optimistic concurrency control
func (es *EventStore) AppendEvents(ctx context.Context, aggregateID uuid.UUID, aggregateType string, expectedVersion int, events []Event) error {
	_, span := es.tracer.Start(ctx, "eventstore.append",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.String("aggregate.type", aggregateType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("event.count", len(events)),
		),
	)
	defer span.End()

	if expectedVersion < 0 {
		return ErrInvalidVersion
	}
	for _, event := range events {
		if event.EventType == "" {
			return ErrEmptyEventType
		}
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	currentVersion := es.versions[aggregateID]
	if currentVersion != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", currentVersion),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	createdAt := es.now()
	for i, event := range events {
		version := expectedVersion + i + 1
		event.ID = es.nextID
		event.AggregateID = aggregateID
		event.AggregateType = aggregateType
		event.Version = version
		event.CreatedAt = createdAt
		es.nextID++
		es.events = append(es.events, event)

		span.AddEvent("event.appended", trace.WithAttributes(
			attribute.Int64("event.id", event.ID),
			attribute.Int("event.version", version),
			attribute.String("event.type", event.EventType),
		))
	}
	es.versions[aggregateID] = expectedVersion + len(events)

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

// LoadEvents retrieves the events of an aggregate in version order.
// A toVersion of zero means no upper bound.
func (es *EventStore) LoadEvents(ctx context.Context, aggregateID uuid.UUID, fromVersion, toVersion int) ([]Event, error) {
	_, span := es.tracer.Start(ctx, "eventstore.load",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
			attribute.Int("from.version", fromVersion),
			attribute.Int("to.version", toVersion),
		),
	)
	defer span.End()

	if fromVersion < 0 || toVersion < 0 {
		return nil, ErrInvalidVersion
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	var events []Event
	for _, event := range es.events {
		if event.AggregateID != aggregateID || event.Version < fromVersion {
			continue
		}
		if toVersion > 0 && event.Version > toVersion {
			continue
		}
		events = append(events, event)
	}

	span.SetAttributes(attribute.Int("events.loaded", len(events)))
	return events, nil
}

// GetCurrentVersion returns the latest version for an aggregate
func (es *EventStore) GetCurrentVersion(ctx context.Context, aggregateID uuid.UUID) (int, error) {
	_, span := es.tracer.Start(ctx, "eventstore.get_version",
		trace.WithAttributes(
			attribute.String("aggregate.id", aggregateID.String()),
		),
	)
	defer span.End()

	es.mu.RLock()
	version := es.versions[aggregateID]
	es.mu.RUnlock()

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}

// StreamEvents provides a cursor-based event stream across all aggregates
func (es *EventStore) StreamEvents(ctx context.Context, fromID int64, batchSize int) ([]Event, error) {
	_, span := es.tracer.Start(ctx, "eventstore.stream",
		trace.WithAttributes(
			attribute.Int64("from.id", fromID),
			attribute.Int("batch.size", batchSize),
		),
	)
	defer span.End()

	es.mu.RLock()
	defer es.mu.RUnlock()

	var events []Event
	for _, event := range es.events {
		if event.ID <= fromID {
			continue
		}
		if batchSize > 0 && len(events) == batchSize {
			break
		}
		events = append(events, event)
	}

	span.SetAttributes(attribute.Int("events.streamed", len(events)))
	return events, nil
}
