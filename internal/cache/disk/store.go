package disk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"neotables/internal/safeio"
)

var ErrEmptyKey = errors.New("disk: key is required")

type Config struct {
	Root       string
	MaxEntries int
	MaxBytes   int64
	TTL        time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

type entry struct {
	File       string    `json:"file"`
	Size       int64     `json:"size"`
	ExpiresAt  time.Time `json:"expires_at"`
	AccessedAt time.Time `json:"accessed_at"`
}

type index struct {
	Entries map[string]entry `json:"entries"`
}

// Store keeps fetched source bodies on disk between runs. Entries expire
// after TTL and the least recently read entries are evicted once the count
// or byte budget is exceeded. Stored bodies and the index are written
// atomically, so a crashed run never leaves a torn entry behind.
type Store struct {
	mu sync.Mutex

	dataDir   string
	indexPath string

	maxEntries int
	maxBytes   int64
	ttl        time.Duration
	now        func() time.Time

	total   int64
	entries map[string]entry
}

func New(cfg Config) (*Store, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, errors.New("disk: root is required")
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 512
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Store{
		dataDir:    filepath.Join(root, "sources"),
		indexPath:  filepath.Join(root, "index.json"),
		maxEntries: cfg.MaxEntries,
		maxBytes:   cfg.MaxBytes,
		ttl:        cfg.TTL,
		now:        cfg.Now,
		entries:    map[string]entry{},
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("disk: %w", err)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	return s, s.persistLocked()
}

// Get returns the stored body for key. Expired or vanished entries are
// dropped and reported as a miss.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if now.After(ent.ExpiresAt) {
		s.dropLocked(key, ent)
		return nil, false, s.persistLocked()
	}
	raw, err := os.ReadFile(filepath.Join(s.dataDir, ent.File))
	if errors.Is(err, fs.ErrNotExist) {
		s.dropLocked(key, ent)
		return nil, false, s.persistLocked()
	}
	if err != nil {
		return nil, false, fmt.Errorf("disk: read %s: %w", key, err)
	}
	ent.AccessedAt = now
	s.entries[key] = ent
	if err := s.persistLocked(); err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *Store) Set(_ context.Context, key string, body []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	now := s.now()
	file := fileName(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := safeio.WriteFileAtomic(filepath.Join(s.dataDir, file), body, 0o644); err != nil {
		return fmt.Errorf("disk: store %s: %w", key, err)
	}
	if old, ok := s.entries[key]; ok {
		s.total -= old.Size
	}
	s.entries[key] = entry{
		File:       file,
		Size:       int64(len(body)),
		ExpiresAt:  now.Add(s.ttl),
		AccessedAt: now,
	}
	s.total += int64(len(body))
	s.pruneLocked()
	return s.persistLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) load() error {
	raw, err := os.ReadFile(s.indexPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("disk: read index: %w", err)
	}
	var idx index
	if err := json.Unmarshal(raw, &idx); err != nil {
		// a corrupt index only costs a refetch
		return nil
	}
	for k, ent := range idx.Entries {
		s.entries[k] = ent
		s.total += ent.Size
	}
	return nil
}

func (s *Store) pruneLocked() {
	now := s.now()
	for key, ent := range s.entries {
		if now.After(ent.ExpiresAt) {
			s.dropLocked(key, ent)
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dataDir, ent.File)); err != nil {
			s.dropLocked(key, ent)
		}
	}
	for s.overBudgetLocked() {
		key, ent := s.oldestLocked()
		s.dropLocked(key, ent)
	}
}

func (s *Store) overBudgetLocked() bool {
	if len(s.entries) == 0 {
		return false
	}
	return len(s.entries) > s.maxEntries || (s.maxBytes > 0 && s.total > s.maxBytes)
}

func (s *Store) oldestLocked() (string, entry) {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := s.entries[keys[i]].AccessedAt, s.entries[keys[j]].AccessedAt
		if a.Equal(b) {
			return keys[i] < keys[j]
		}
		return a.Before(b)
	})
	return keys[0], s.entries[keys[0]]
}

func (s *Store) dropLocked(key string, ent entry) {
	delete(s.entries, key)
	s.total -= ent.Size
	if s.total < 0 {
		s.total = 0
	}
	_ = os.Remove(filepath.Join(s.dataDir, ent.File))
}

func (s *Store) persistLocked() error {
	raw, err := json.MarshalIndent(index{Entries: s.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("disk: encode index: %w", err)
	}
	if err := safeio.WriteFileAtomic(s.indexPath, raw, 0o644); err != nil {
		return fmt.Errorf("disk: write index: %w", err)
	}
	return nil
}

func fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + ".src"
}
