// Package session persists one conversation-context snapshot per chat,
// keyed by the transport session key. The engine treats it as an opaque
// store: load, save, clear.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gloriapark/concierge/flow"
)

type Record struct {
	Key       string       `json:"key"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Context   flow.Context `json:"context"`
}

type Manager struct {
	Dir   string
	cache map[string]*Record
	mu    sync.Mutex
}

func NewManager(dir string) *Manager {
	return &Manager{Dir: dir, cache: map[string]*Record{}}
}

func (m *Manager) GetOrCreate(key string) (*Record, error) {
	m.mu.Lock()
	if r, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return r, nil
	}
	m.mu.Unlock()
	r, err := Load(m.Dir, key)
	if err != nil {
		return nil, err
	}
	if r == nil {
		r = New(key)
	}
	m.mu.Lock()
	m.cache[key] = r
	m.mu.Unlock()
	return r, nil
}

func (m *Manager) Save(r *Record) error {
	if err := Save(m.Dir, r); err != nil {
		return err
	}
	m.mu.Lock()
	m.cache[r.Key] = r
	m.mu.Unlock()
	return nil
}

// Clear drops the snapshot for key from disk and cache. The next
// GetOrCreate starts a fresh, unauthenticated conversation.
func (m *Manager) Clear(key string) error {
	m.mu.Lock()
	delete(m.cache, key)
	m.mu.Unlock()
	err := os.Remove(storePath(m.Dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func New(key string) *Record {
	now := time.Now()
	return &Record{
		Key:       key,
		CreatedAt: now,
		UpdatedAt: now,
		Context:   flow.Context{State: flow.StateAwaitingPhone},
	}
}

func Load(dir, key string) (*Record, error) {
	b, err := os.ReadFile(storePath(dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	r := &Record{}
	if err := json.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("session %s decode: %w", key, err)
	}
	r.Key = key
	if r.Context.State == "" {
		r.Context.State = flow.StateAwaitingPhone
	}
	return r, nil
}

func Save(dir string, r *Record) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	path := storePath(dir, r.Key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func storePath(dir, key string) string {
	return filepath.Join(dir, safeFilename(strings.ReplaceAll(key, ":", "_"))+".json")
}

var safeRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func safeFilename(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "default"
	}
	s = safeRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._-")
	if s == "" {
		return "default"
	}
	return s
}
