// Package jsonfile persists checklists as a single JSON array file. It is the
// demo-grade default adapter; mutations rewrite the whole snapshot under a lock.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"checkclient/internal/checklist"
)

type Store struct {
	mu    sync.Mutex
	path  string
	log   *zap.Logger
	items []checklist.Checklist

	now func() time.Time
}

// New loads the backing file. A missing or unparsable file is replaced by a
// single seed record, persisted immediately.
func New(path string, log *zap.Logger) (*Store, error) {
	s := &Store{path: path, log: log, now: time.Now}

	items, err := load(path)
	if err != nil {
		log.Warn("could not load checklists file, seeding", zap.String("path", path), zap.Error(err))
		s.items = []checklist.Checklist{seed(s.now())}
		if err := s.persist(); err != nil {
			return nil, fmt.Errorf("persist seed data: %w", err)
		}
		return s, nil
	}

	s.items = items
	log.Info("checklists loaded", zap.String("path", path), zap.Int("count", len(items)))
	return s, nil
}

// flexString tolerates numeric ids written by older clients.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type diskRecord struct {
	checklist.Checklist
	UserID flexString `json:"userId"`
}

func load(path string) ([]checklist.Checklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var recs []diskRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	items := make([]checklist.Checklist, 0, len(recs))
	for _, r := range recs {
		c := r.Checklist
		c.UserID = string(r.UserID)
		items = append(items, c)
	}
	return items, nil
}

func seed(now time.Time) checklist.Checklist {
	return checklist.Checklist{
		ID:          "cl_example_1",
		UserID:      "1",
		ClientName:  "Example Dashboard",
		ClientEmail: "example@test.com",
		ServiceType: "Web Consulting",
		Fields:      []checklist.Field{{Label: "Name", Type: checklist.FieldText}},
		PublicToken: "exampletok",
		Status:      checklist.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// persist rewrites the full snapshot. Callers hold s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}

func normID(id string) string { return strings.TrimSpace(id) }

func matches(c *checklist.Checklist, key checklist.Key) bool {
	if key.ID != "" && c.ID != key.ID {
		return false
	}
	if key.PublicToken != "" && c.PublicToken != key.PublicToken {
		return false
	}
	if key.UserID != "" && normID(c.UserID) != normID(key.UserID) {
		return false
	}
	return key.ID != "" || key.PublicToken != ""
}

func (s *Store) find(key checklist.Key) int {
	for i := range s.items {
		if matches(&s.items[i], key) {
			return i
		}
	}
	return -1
}

func (s *Store) Get(_ context.Context, key checklist.Key) (*checklist.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(key)
	if i < 0 {
		return nil, checklist.ErrNotFound
	}
	c := s.items[i]
	return &c, nil
}

func (s *Store) List(_ context.Context, f checklist.Filter) ([]checklist.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]checklist.Checklist, 0, len(s.items))
	for _, c := range s.items {
		if f.UserID != "" && normID(c.UserID) != normID(f.UserID) {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, c *checklist.Checklist) (*checklist.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *c
	if stored.ID == "" {
		stored.ID = "cl_" + uuid.Must(uuid.NewV4()).String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}
	stored.UserID = normID(stored.UserID)
	stored.Responses = nil

	s.items = append(s.items, stored)
	if err := s.persist(); err != nil {
		return nil, fmt.Errorf("persist checklists: %w", err)
	}
	return &stored, nil
}

func (s *Store) Update(_ context.Context, key checklist.Key, p checklist.Patch) (*checklist.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(key)
	if i < 0 {
		return nil, checklist.ErrNotFound
	}

	c := &s.items[i]
	if p.ClientName != nil {
		c.ClientName = *p.ClientName
	}
	if p.ClientEmail != nil {
		c.ClientEmail = *p.ClientEmail
	}
	if p.ServiceType != nil {
		c.ServiceType = *p.ServiceType
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Responses != nil {
		c.Responses = p.Responses
	}
	c.UpdatedAt = s.now()

	if err := s.persist(); err != nil {
		return nil, fmt.Errorf("persist checklists: %w", err)
	}
	out := *c
	return &out, nil
}

func (s *Store) Delete(_ context.Context, key checklist.Key) (*checklist.Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(key)
	if i < 0 {
		return nil, checklist.ErrNotFound
	}

	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	if err := s.persist(); err != nil {
		return nil, fmt.Errorf("persist checklists: %w", err)
	}
	return &removed, nil
}
