package checklist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"checkclient/internal/notify"
)

// Service is the ownership-checked lifecycle surface used by the dashboard API.
type Service struct {
	store  Store
	events EventSink
	mailer notify.Mailer
	log    *zap.Logger

	baseURL string

	now      func() time.Time
	newToken func() (string, error)
}

func NewService(store Store, events EventSink, mailer notify.Mailer, log *zap.Logger, baseURL string) *Service {
	return &Service{
		store:    store,
		events:   events,
		mailer:   mailer,
		log:      log,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
		newToken: randomToken,
	}
}

type CreateInput struct {
	UserID      string
	ClientName  string
	ClientEmail string
	ServiceType string
	Fields      []Field
}

func (in CreateInput) validate() error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return fmt.Errorf("%w: userId is required", ErrValidation)
	case strings.TrimSpace(in.ClientName) == "":
		return fmt.Errorf("%w: clientName is required", ErrValidation)
	case strings.TrimSpace(in.ClientEmail) == "":
		return fmt.Errorf("%w: clientEmail is required", ErrValidation)
	case strings.TrimSpace(in.ServiceType) == "":
		return fmt.Errorf("%w: serviceType is required", ErrValidation)
	case len(in.Fields) == 0:
		return fmt.Errorf("%w: at least one field is required", ErrValidation)
	}
	for i, f := range in.Fields {
		if strings.TrimSpace(f.Label) == "" {
			return fmt.Errorf("%w: field %d has no label", ErrValidation, i)
		}
		if f.Type != FieldText && f.Type != FieldFile {
			return fmt.Errorf("%w: field %q has unknown type %q", ErrValidation, f.Label, f.Type)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Checklist, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	token, err := uniqueToken(ctx, s.store, s.newToken)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &Checklist{
		ID:          "cl_" + uuid.Must(uuid.NewV4()).String(),
		UserID:      strings.TrimSpace(in.UserID),
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
		ServiceType: in.ServiceType,
		Fields:      in.Fields,
		PublicToken: token,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.store.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create checklist: %w", err)
	}

	s.events.Track("checklist_created", created.UserID, map[string]any{
		"checklistId": created.ID,
		"publicToken": created.PublicToken,
	})

	link := s.baseURL + "/share/" + created.PublicToken
	if err := s.mailer.Send(ctx, notify.ShareInvite(created.ClientEmail, created.ClientName, created.ServiceType, link)); err != nil {
		// Mail failures must not fail creation.
		s.log.Warn("share invite mail failed",
			zap.String("checklistId", created.ID),
			zap.Error(err),
		)
	}

	return created, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*Checklist, error) {
	c, err := s.store.Get(ctx, Key{ID: id, UserID: userID})
	if err != nil {
		return nil, err
	}
	s.events.Track("checklist_viewed", userID, map[string]any{"checklistId": c.ID})
	return c, nil
}

func (s *Service) List(ctx context.Context, userID string, status Status) ([]Checklist, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	return s.store.List(ctx, Filter{UserID: userID, Status: status})
}

// ownerSettable lists the statuses an owner may target directly. Responded is
// reachable only through the public submission path.
var ownerSettable = map[Status]bool{
	StatusPending:   true,
	StatusInReview:  true,
	StatusCompleted: true,
	StatusCanceled:  true,
}

func (s *Service) UpdateStatus(ctx context.Context, id, userID string, status Status) (*Checklist, error) {
	if !ownerSettable[status] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	cur, err := s.store.Get(ctx, Key{ID: id, UserID: userID})
	if err != nil {
		return nil, err
	}
	if !CanTransition(cur.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, status)
	}

	updated, err := s.store.Update(ctx, Key{ID: id, UserID: userID}, Patch{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.events.Track("checklist_updated", userID, map[string]any{
		"checklistId": id,
		"status":      string(status),
	})
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.store.Get(ctx, Key{ID: id, UserID: userID}); err != nil {
		return err
	}
	if _, err := s.store.Delete(ctx, Key{ID: id, UserID: userID}); err != nil {
		return fmt.Errorf("delete checklist: %w", err)
	}
	s.events.Track("checklist_deleted", userID, map[string]any{"checklistId": id})
	return nil
}
