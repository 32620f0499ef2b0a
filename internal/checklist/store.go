package checklist

import "context"

// Key selects a single checklist. Non-empty members must all match; UserID is
// compared as a normalized string so numeric ids from older payloads still hit.
type Key struct {
	ID          string
	PublicToken string
	UserID      string
}

// Filter narrows List. Zero values mean "any".
type Filter struct {
	UserID string
	Status Status
}

// Patch carries the fields Update is allowed to touch. Nil members are left as-is.
type Patch struct {
	ClientName  *string
	ClientEmail *string
	ServiceType *string
	Status      *Status
	Responses   *Responses
}

// Store is the persistence port for checklists. Implementations live in
// internal/store; the JSON-file adapter is the default, Postgres the production one.
type Store interface {
	Get(ctx context.Context, key Key) (*Checklist, error)
	List(ctx context.Context, f Filter) ([]Checklist, error)
	Create(ctx context.Context, c *Checklist) (*Checklist, error)
	Update(ctx context.Context, key Key, p Patch) (*Checklist, error)
	Delete(ctx context.Context, key Key) (*Checklist, error)
}

// EventSink receives fire-and-forget usage events. Tracking must never fail a
// request, so implementations do not return errors.
type EventSink interface {
	Track(eventType, userID string, data map[string]any)
}
