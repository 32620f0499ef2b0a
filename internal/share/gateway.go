// Package share is the unauthenticated surface scoped by public token.
package share

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"checkclient/internal/checklist"
	"checkclient/internal/upload"
)

const MaxFileSize = 10 << 20 // 10 MB per file

var (
	ErrNotFound        = errors.New("checklist not found")
	ErrChecklistClosed = errors.New("checklist is closed")
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = fmt.Errorf("file exceeds %d bytes", int64(MaxFileSize))
	ErrMissingRequired = errors.New("missing required field")
)

// PublicChecklist is the reduced projection shown to the client. No owner id,
// no previously submitted responses.
type PublicChecklist struct {
	ID          string            `json:"id"`
	ClientName  string            `json:"clientName"`
	ServiceType string            `json:"serviceType"`
	Fields      []checklist.Field `json:"fields"`
	Status      checklist.Status  `json:"status"`
}

// UploadedFile is one incoming file, already detached from the transport.
type UploadedFile struct {
	Filename string
	Mimetype string
	Size     int64
	Content  io.Reader
}

type Gateway struct {
	store  checklist.Store
	files  upload.Store
	events checklist.EventSink
	log    *zap.Logger

	now func() time.Time
}

func NewGateway(store checklist.Store, files upload.Store, events checklist.EventSink, log *zap.Logger) *Gateway {
	return &Gateway{store: store, files: files, events: events, log: log, now: time.Now}
}

func (g *Gateway) GetByToken(ctx context.Context, token string) (*PublicChecklist, error) {
	c, err := g.store.Get(ctx, checklist.Key{PublicToken: token})
	if errors.Is(err, checklist.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &PublicChecklist{
		ID:          c.ID,
		ClientName:  c.ClientName,
		ServiceType: c.ServiceType,
		Fields:      c.Fields,
		Status:      c.Status,
	}, nil
}

// SubmitResponse stores the uploaded files, writes the responses payload and
// moves the checklist to Responded. A repeat submission overwrites the previous
// one; the status stays Responded. Completed and Canceled checklists are
// closed to further submissions.
func (g *Gateway) SubmitResponse(ctx context.Context, token string, text map[string]string, files map[string]UploadedFile) error {
	c, err := g.store.Get(ctx, checklist.Key{PublicToken: token})
	if errors.Is(err, checklist.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if c.Status == checklist.StatusCompleted || c.Status == checklist.StatusCanceled {
		return ErrChecklistClosed
	}

	if err := validateRequired(c.Fields, text); err != nil {
		return err
	}

	saved := make(map[string]checklist.FileMeta, len(files))
	for fieldName, f := range files {
		if f.Size == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyFile, fieldName)
		}
		if f.Size > MaxFileSize {
			return fmt.Errorf("%w: %q", ErrFileTooLarge, fieldName)
		}

		sf, err := g.files.Save(ctx, f.Filename, io.LimitReader(f.Content, MaxFileSize))
		if err != nil {
			return fmt.Errorf("store upload %q: %w", fieldName, err)
		}
		saved[fieldName] = checklist.FileMeta{
			Filename: f.Filename,
			Path:     sf.Path,
			Mimetype: f.Mimetype,
			Size:     sf.Size,
		}
	}

	responses := &checklist.Responses{
		Text:        text,
		Files:       saved,
		SubmittedAt: g.now(),
	}
	status := checklist.StatusResponded
	if _, err := g.store.Update(ctx, checklist.Key{PublicToken: token}, checklist.Patch{
		Status:    &status,
		Responses: responses,
	}); err != nil {
		return fmt.Errorf("save responses: %w", err)
	}

	g.events.Track("response_completed", c.UserID, map[string]any{
		"checklistId": c.ID,
	})
	g.log.Info("response submitted",
		zap.String("checklistId", c.ID),
		zap.Int("textFields", len(text)),
		zap.Int("files", len(saved)),
	)
	return nil
}

func validateRequired(fields []checklist.Field, text map[string]string) error {
	for _, f := range fields {
		if f.Type != checklist.FieldText || !f.Required {
			continue
		}
		if text[f.Label] == "" {
			return fmt.Errorf("%w: %q", ErrMissingRequired, f.Label)
		}
	}
	return nil
}
