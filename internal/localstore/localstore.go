// Package localstore keeps a small set of device-level preferences that
// must survive outside of an authenticated session.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// KeyCompanionName is the device preference for the AI companion's name.
const KeyCompanionName = "companion_name"

// Store is a write-through key/value facade over a JSON file. Reads come
// from the in-memory map and never fail; file write failures are logged
// and dropped.
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	log    *zap.Logger
}

// Open loads the preference file at path, tolerating a missing or
// undecodable file by starting empty.
func Open(path string, log *zap.Logger) *Store {
	s := &Store{path: path, values: map[string]string{}, log: log}
	raw, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(raw, &s.values); err != nil {
			log.Warn("preference file undecodable, starting empty",
				zap.String("path", path), zap.Error(err))
			s.values = map[string]string{}
		}
	}
	return s
}

// Get returns the stored value and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores the value in memory and writes the file through immediately.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.persistLocked()
}

func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.values)
	if err != nil {
		s.log.Error("could not encode preferences", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Error("could not create preference dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		s.log.Error("could not write preferences", zap.String("path", s.path), zap.Error(err))
	}
}
