package paystatus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chitfund-service/internal/domain"
)

var _ Store = (*JSONStore)(nil)

// JSONStore keeps statuses in a single JSON object mapping id to true or a
// timestamp string, rewritten whole on every toggle.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore returns a store backed by the document at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

func (s *JSONStore) Toggle(ctx context.Context, id string, now time.Time) (domain.ToggleResult, error) {
	if id == "" {
		return domain.ToggleResult{}, ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.read()
	var res domain.ToggleResult
	if _, ok := snap[id]; ok {
		delete(snap, id)
		res = toggledOff()
	} else {
		var stamp string
		res, stamp = toggledOn(now)
		snap[id] = Entry{PaidOn: stamp}
	}
	if err := s.write(snap); err != nil {
		return domain.ToggleResult{}, err
	}
	return res, nil
}

func (s *JSONStore) Close() error { return nil }

// read never fails: a missing or corrupt document is treated as empty. Falsy
// values (false, "") carry no status and are dropped.
func (s *JSONStore) read() Snapshot {
	snap := Snapshot{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return snap
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return snap
	}
	for id, v := range raw {
		switch val := v.(type) {
		case bool:
			if val {
				snap[id] = Entry{}
			}
		case string:
			if val != "" {
				snap[id] = Entry{PaidOn: val}
			}
		}
	}
	return snap
}

func (s *JSONStore) write(snap Snapshot) error {
	raw := make(map[string]any, len(snap))
	for id, e := range snap {
		if e.PaidOn == "" {
			raw[id] = true
		} else {
			raw[id] = e.PaidOn
		}
	}
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode payment records: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create payment records directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write payment records: %w", err)
	}
	return nil
}
