// Package config provides a line-oriented key=value configuration store.
//
// Files are UTF-8 text with one entry per line. Lines whose first byte is
// '#' and blank lines are skipped; every other line is split on the first
// '='. Keys and values keep their whitespace. Later entries win over
// earlier duplicates. The store is safe for concurrent readers while no
// load is in progress.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rezajatnika/rjos-go/internal/constants"
	"github.com/rezajatnika/rjos-go/internal/logging"
)

// Limits re-exported for callers.
const (
	MaxKeyLen = constants.MaxConfigKeyLen
	MaxValLen = constants.MaxConfigValLen
)

type entry struct {
	key string
	val string
}

// Store holds configuration entries loaded from a file.
type Store struct {
	mu      sync.RWMutex
	entries []entry
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Load reads path and merges its entries into the store. Oversized keys
// and values are truncated at the limit with a warning. Malformed lines
// (no '=') are skipped with a warning.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			logging.Warnf("config: invalid line: %s", line)
			continue
		}
		key := line[:idx]
		val := line[idx+1:]

		if len(key) > MaxKeyLen {
			logging.Warnf("config: key truncated to %d bytes: %s", MaxKeyLen, key[:MaxKeyLen])
			key = key[:MaxKeyLen]
		}
		if len(val) > MaxValLen {
			logging.Warnf("config: value truncated to %d bytes for key %s", MaxValLen, key)
			val = val[:MaxValLen]
		}

		s.put(key, val)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	return nil
}

// put replaces an existing entry so later occurrences win.
func (s *Store) put(key, val string) {
	for i := range s.entries {
		if s.entries[i].key == key {
			s.entries[i].val = val
			return
		}
	}
	s.entries = append(s.entries, entry{key: key, val: val})
}

// Get looks a key up with a case-sensitive linear scan.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries {
		if s.entries[i].key == key {
			return s.entries[i].val, true
		}
	}
	return "", false
}

// GetDefault returns the value for key, or def when absent.
func (s *Store) GetDefault(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Len returns the number of distinct keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset drops all entries.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
