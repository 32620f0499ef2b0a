package auth

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

var (
	ErrEmailTaken         = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Registry holds users in memory for the process lifetime. It comes seeded
// with the three demo accounts the dashboard login screen knows about.
type Registry struct {
	mu      sync.Mutex
	byEmail map[string]*User
	nextID  int
}

type SeedUser struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func DefaultSeedUsers() []SeedUser {
	return []SeedUser{
		{Name: "Administrator", Email: "admin@example.com", Password: "admin123", Role: "admin"},
		{Name: "Editor", Email: "editor@example.com", Password: "editor123", Role: "editor"},
		{Name: "Test User", Email: "user@example.com", Password: "user123", Role: "viewer"},
	}
}

func NewRegistry(seeds []SeedUser) (*Registry, error) {
	r := &Registry{byEmail: map[string]*User{}, nextID: 1}
	for _, s := range seeds {
		if _, err := r.Register(s.Name, s.Email, s.Password, s.Role); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func normEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (r *Registry) Register(name, email, password, role string) (*User, error) {
	email = normEmail(email)
	if email == "" || len(password) < 6 {
		return nil, ErrInvalidCredentials
	}
	if role == "" {
		role = "viewer"
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}
	u := &User{
		ID:           strconv.Itoa(r.nextID),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	r.nextID++
	r.byEmail[email] = u

	out := *u
	return &out, nil
}

func (r *Registry) Authenticate(email, password string) (*User, error) {
	r.mu.Lock()
	u, ok := r.byEmail[normEmail(email)]
	r.mu.Unlock()

	if !ok || !ComparePassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	out := *u
	return &out, nil
}

func (r *Registry) Get(id string) (*User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			out := *u
			return &out, true
		}
	}
	return nil, false
}
