// Package postgres is the production Store adapter behind GORM.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"checkclient/internal/checklist"
)

// record is the table mapping. Fields and Responses travel as jsonb; the field
// labels are duplicated into a text[] column for label-level queries.
type record struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index;not null"`
	ClientName  string `gorm:"not null"`
	ClientEmail string `gorm:"not null"`
	ServiceType string `gorm:"index;not null"`

	Fields      json.RawMessage `gorm:"type:jsonb;not null;default:'[]'::jsonb"`
	FieldLabels pq.StringArray  `gorm:"type:text[];not null;default:'{}'"`

	PublicToken string          `gorm:"uniqueIndex;not null"`
	Status      string          `gorm:"index;not null"`
	Responses   json.RawMessage `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (record) TableName() string { return "checklists" }

func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&record{}); err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_checklists_user_status on checklists(user_id, status);`,
		`create index if not exists idx_checklists_user_created on checklists(user_id, created_at desc);`,
		`create index if not exists idx_checklists_labels on checklists using gin (field_labels);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}
	return nil
}

type Store struct {
	DB *gorm.DB
}

func toRecord(c *checklist.Checklist) (*record, error) {
	fields, err := json.Marshal(c.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	labels := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		labels = append(labels, f.Label)
	}
	var responses json.RawMessage
	if c.Responses != nil {
		responses, err = json.Marshal(c.Responses)
		if err != nil {
			return nil, fmt.Errorf("marshal responses: %w", err)
		}
	}
	return &record{
		ID:          c.ID,
		UserID:      strings.TrimSpace(c.UserID),
		ClientName:  c.ClientName,
		ClientEmail: c.ClientEmail,
		ServiceType: c.ServiceType,
		Fields:      fields,
		FieldLabels: pq.StringArray(labels),
		PublicToken: c.PublicToken,
		Status:      string(c.Status),
		Responses:   responses,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

func fromRecord(r *record) (*checklist.Checklist, error) {
	c := &checklist.Checklist{
		ID:          r.ID,
		UserID:      r.UserID,
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		ServiceType: r.ServiceType,
		PublicToken: r.PublicToken,
		Status:      checklist.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &c.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
	}
	if len(r.Responses) > 0 {
		c.Responses = &checklist.Responses{}
		if err := json.Unmarshal(r.Responses, c.Responses); err != nil {
			return nil, fmt.Errorf("unmarshal responses: %w", err)
		}
	}
	return c, nil
}

func keyQuery(q *gorm.DB, key checklist.Key) *gorm.DB {
	if key.ID != "" {
		q = q.Where("id = ?", key.ID)
	}
	if key.PublicToken != "" {
		q = q.Where("public_token = ?", key.PublicToken)
	}
	if key.UserID != "" {
		q = q.Where("user_id = ?", strings.TrimSpace(key.UserID))
	}
	return q
}

func (s *Store) Get(ctx context.Context, key checklist.Key) (*checklist.Checklist, error) {
	var r record
	err := keyQuery(s.DB.WithContext(ctx), key).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, checklist.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(&r)
}

func (s *Store) List(ctx context.Context, f checklist.Filter) ([]checklist.Checklist, error) {
	q := s.DB.WithContext(ctx).Model(&record{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", strings.TrimSpace(f.UserID))
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}

	var rows []record
	if err := q.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]checklist.Checklist, 0, len(rows))
	for i := range rows {
		c, err := fromRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, c *checklist.Checklist) (*checklist.Checklist, error) {
	stored := *c
	if stored.ID == "" {
		stored.ID = "cl_" + uuid.Must(uuid.NewV4()).String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.Responses = nil

	r, err := toRecord(&stored)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return fromRecord(r)
}

func (s *Store) Update(ctx context.Context, key checklist.Key, p checklist.Patch) (*checklist.Checklist, error) {
	var out *checklist.Checklist
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r record
		if err := keyQuery(tx, key).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return checklist.ErrNotFound
			}
			return err
		}

		updates := map[string]any{"updated_at": time.Now()}
		if p.ClientName != nil {
			updates["client_name"] = *p.ClientName
		}
		if p.ClientEmail != nil {
			updates["client_email"] = *p.ClientEmail
		}
		if p.ServiceType != nil {
			updates["service_type"] = *p.ServiceType
		}
		if p.Status != nil {
			updates["status"] = string(*p.Status)
		}
		if p.Responses != nil {
			data, err := json.Marshal(p.Responses)
			if err != nil {
				return fmt.Errorf("marshal responses: %w", err)
			}
			updates["responses"] = json.RawMessage(data)
		}

		if err := tx.Model(&record{}).Where("id = ?", r.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", r.ID).First(&r).Error; err != nil {
			return err
		}
		c, err := fromRecord(&r)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, key checklist.Key) (*checklist.Checklist, error) {
	var out *checklist.Checklist
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r record
		if err := keyQuery(tx, key).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return checklist.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&record{}, "id = ?", r.ID).Error; err != nil {
			return err
		}
		c, err := fromRecord(&r)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
