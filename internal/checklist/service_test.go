package checklist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checkclient/internal/notify"
)

type fakeStore struct {
	items []Checklist
}

var _ Store = (*fakeStore)(nil)

func (f *fakeStore) match(c *Checklist, key Key) bool {
	if key.ID != "" && c.ID != key.ID {
		return false
	}
	if key.PublicToken != "" && c.PublicToken != key.PublicToken {
		return false
	}
	if key.UserID != "" && strings.TrimSpace(c.UserID) != strings.TrimSpace(key.UserID) {
		return false
	}
	return true
}

func (f *fakeStore) Get(_ context.Context, key Key) (*Checklist, error) {
	for i := range f.items {
		if f.match(&f.items[i], key) {
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) List(_ context.Context, fl Filter) ([]Checklist, error) {
	var out []Checklist
	for _, c := range f.items {
		if fl.UserID != "" && c.UserID != fl.UserID {
			continue
		}
		if fl.Status != "" && c.Status != fl.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) Create(_ context.Context, c *Checklist) (*Checklist, error) {
	stored := *c
	stored.Responses = nil
	f.items = append(f.items, stored)
	return &stored, nil
}

func (f *fakeStore) Update(_ context.Context, key Key, p Patch) (*Checklist, error) {
	for i := range f.items {
		if f.match(&f.items[i], key) {
			if p.Status != nil {
				f.items[i].Status = *p.Status
			}
			if p.Responses != nil {
				f.items[i].Responses = p.Responses
			}
			f.items[i].UpdatedAt = time.Now()
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, key Key) (*Checklist, error) {
	for i := range f.items {
		if f.match(&f.items[i], key) {
			removed := f.items[i]
			f.items = append(f.items[:i], f.items[i+1:]...)
			return &removed, nil
		}
	}
	return nil, ErrNotFound
}

type fakeSink struct {
	events []string
}

func (f *fakeSink) Track(eventType, _ string, _ map[string]any) {
	f.events = append(f.events, eventType)
}

type fakeMailer struct {
	sent []notify.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, m notify.Message) error {
	f.sent = append(f.sent, m)
	return f.err
}

func newTestService(store Store) (*Service, *fakeSink, *fakeMailer) {
	sink := &fakeSink{}
	mailer := &fakeMailer{}
	svc := NewService(store, sink, mailer, zap.NewNop(), "http://app.local/")
	return svc, sink, mailer
}

func validInput() CreateInput {
	return CreateInput{
		UserID:      "1",
		ClientName:  "Ana",
		ClientEmail: "ana@example.com",
		ServiceType: "Website",
		Fields:      []Field{{Label: "Name", Type: FieldText, Required: true}},
	}
}

func TestCreate_Defaults(t *testing.T) {
	store := &fakeStore{}
	svc, sink, mailer := newTestService(store)

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, c.Status)
	assert.Nil(t, c.Responses)
	assert.True(t, strings.HasPrefix(c.ID, "cl_"))
	assert.Len(t, c.PublicToken, tokenLength)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, []string{"checklist_created"}, sink.events)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTML, "http://app.local/share/"+c.PublicToken)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(&fakeStore{})

	cases := []func(*CreateInput){
		func(in *CreateInput) { in.UserID = " " },
		func(in *CreateInput) { in.ClientName = "" },
		func(in *CreateInput) { in.ClientEmail = "" },
		func(in *CreateInput) { in.ServiceType = "" },
		func(in *CreateInput) { in.Fields = nil },
		func(in *CreateInput) { in.Fields = []Field{{Label: "", Type: FieldText}} },
		func(in *CreateInput) { in.Fields = []Field{{Label: "X", Type: "dropdown"}} },
	}
	for i, mutate := range cases {
		in := validInput()
		mutate(&in)
		_, err := svc.Create(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation, "case %d", i)
	}
}

func TestCreate_MailFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{}
	svc, _, mailer := newTestService(store)
	mailer.err = errors.New("smtp down")

	_, err := svc.Create(context.Background(), validInput())
	assert.NoError(t, err)
}

func TestCreate_TokenCollisionRetries(t *testing.T) {
	store := &fakeStore{items: []Checklist{{ID: "cl_1", UserID: "9", PublicToken: "taken00000"}}}
	svc, _, _ := newTestService(store)

	tokens := []string{"taken00000", "fresh00000"}
	svc.newToken = func() (string, error) {
		tok := tokens[0]
		tokens = tokens[1:]
		return tok, nil
	}

	c, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "fresh00000", c.PublicToken)
}

func TestGet_ConflatesMissingAndForeign(t *testing.T) {
	store := &fakeStore{items: []Checklist{{ID: "cl_1", UserID: "2", PublicToken: "tok"}}}
	svc, _, _ := newTestService(store)

	_, err := svc.Get(context.Background(), "cl_missing", "1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), "cl_1", "1")
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := svc.Get(context.Background(), "cl_1", "2")
	require.NoError(t, err)
	assert.Equal(t, "cl_1", c.ID)
}

func TestUpdateStatus(t *testing.T) {
	store := &fakeStore{items: []Checklist{{ID: "cl_1", UserID: "1", Status: StatusPending}}}
	svc, sink, _ := newTestService(store)
	ctx := context.Background()

	// Responded is never owner-settable.
	_, err := svc.UpdateStatus(ctx, "cl_1", "1", StatusResponded)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, "cl_1", "1", "Bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// Pending -> Completed skips review.
	_, err = svc.UpdateStatus(ctx, "cl_1", "1", StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := svc.UpdateStatus(ctx, "cl_1", "1", StatusInReview)
	require.NoError(t, err)
	assert.Equal(t, StatusInReview, updated.Status)

	updated, err = svc.UpdateStatus(ctx, "cl_1", "1", StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)

	// Completed is terminal on this surface.
	_, err = svc.UpdateStatus(ctx, "cl_1", "1", StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, []string{"checklist_updated", "checklist_updated"}, sink.events)
}

func TestUpdateStatus_WrongOwner(t *testing.T) {
	store := &fakeStore{items: []Checklist{{ID: "cl_1", UserID: "1", Status: StatusPending}}}
	svc, _, _ := newTestService(store)

	_, err := svc.UpdateStatus(context.Background(), "cl_1", "2", StatusInReview)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := &fakeStore{items: []Checklist{{ID: "cl_1", UserID: "1", Status: StatusPending}}}
	svc, sink, _ := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "cl_1", "1"))
	assert.Contains(t, sink.events, "checklist_deleted")

	_, err := svc.Get(ctx, "cl_1", "1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, "cl_1", "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_RequiresUser(t *testing.T) {
	svc, _, _ := newTestService(&fakeStore{})
	_, err := svc.List(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrValidation)
}
