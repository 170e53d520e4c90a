// Package auth persists the users and API tokens the HTTP surface
// authenticates against. Passwords are stored as bcrypt hashes only.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is one interactive login.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

// APIToken is one machine-to-machine access key, e.g. for a client-side
// log shipper or a dashboard.
type APIToken struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	CreatedAt int64  `json:"created_at"`
}

type storeData struct {
	Users  []User     `json:"users"`
	Tokens []APIToken `json:"tokens"`
}

// Store keeps users and tokens in memory, backed by one JSON file.
type Store struct {
	filePath string
	mu       sync.RWMutex
	data     storeData
}

// NewStore creates a store backed by filePath. Call Load before use.
func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Load reads the backing file. A missing file means an empty store.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read auth store: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return fmt.Errorf("decode auth store: %w", err)
	}
	return nil
}

// saveLocked writes through a temp file and renames, so a crash never
// corrupts the store.
func (s *Store) saveLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write auth store: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace auth store: %w", err)
	}
	return nil
}

// AddUser hashes the password and persists a new user.
func (s *Store) AddUser(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.data.Users {
		if strings.EqualFold(u.Username, username) {
			return os.ErrExist
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.data.Users = append(s.data.Users, User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().Unix(),
	})
	return s.saveLocked()
}

// DeleteUser removes a user by name.
func (s *Store) DeleteUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.data.Users {
		if strings.EqualFold(u.Username, username) {
			s.data.Users = append(s.data.Users[:i], s.data.Users[i+1:]...)
			return s.saveLocked()
		}
	}
	return os.ErrNotExist
}

// Authenticate checks a username/password pair against the stored
// bcrypt hash. The username comparison is case-insensitive.
func (s *Store) Authenticate(username, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.data.Users {
		if strings.EqualFold(u.Username, username) {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
		}
	}
	return false
}

// Users returns the usernames on file, for operator tooling. Hashes
// are never exposed.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data.Users))
	for _, u := range s.data.Users {
		names = append(names, u.Username)
	}
	return names
}

// CreateToken mints, persists and returns a new API token.
func (s *Store) CreateToken(name string) (APIToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := APIToken{
		ID:        uuid.NewString(),
		Name:      name,
		Token:     "dl-" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		CreatedAt: time.Now().Unix(),
	}
	s.data.Tokens = append(s.data.Tokens, t)
	if err := s.saveLocked(); err != nil {
		return APIToken{}, err
	}
	return t, nil
}

// DeleteToken removes a token by id.
func (s *Store) DeleteToken(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.data.Tokens {
		if t.ID == id {
			s.data.Tokens = append(s.data.Tokens[:i], s.data.Tokens[i+1:]...)
			return s.saveLocked()
		}
	}
	return os.ErrNotExist
}

// ValidToken reports whether value matches a stored API token.
func (s *Store) ValidToken(value string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.data.Tokens {
		if t.Token == value {
			return true
		}
	}
	return false
}
