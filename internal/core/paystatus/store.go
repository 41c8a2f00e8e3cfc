// Package paystatus records which payment and item identifiers have been marked paid.
//
// A stored status is either the legacy literal "paid" (no date) or the local time the
// operator toggled it, formatted with TimeLayout. Toggling an existing entry removes
// it entirely.
package paystatus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chitfund-service/internal/domain"
)

// TimeLayout is the format of the paid-on timestamp written by Toggle.
const TimeLayout = "02 Jan, 03:04 PM"

// Backend names accepted by Open.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// ErrEmptyID is returned when Toggle is called without an identifier.
var ErrEmptyID = errors.New("payment id is required")

// Entry is one stored status. An empty PaidOn means paid with no recorded date.
type Entry struct {
	PaidOn string
}

// Date returns the paid-on timestamp, or nil when none was recorded.
func (e Entry) Date() *string {
	if e.PaidOn == "" {
		return nil
	}
	d := e.PaidOn
	return &d
}

// Snapshot is the whole status document as loaded at the start of a run.
type Snapshot map[string]Entry

// Lookup reports the stored entry for id.
func (s Snapshot) Lookup(id string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s[id]
	return e, ok
}

// Store persists payment statuses.
type Store interface {
	// Load returns every stored status. A missing or unreadable document is empty.
	Load(ctx context.Context) (Snapshot, error)

	// Toggle flips the status of id: an existing entry is removed, otherwise the
	// entry is stored with now formatted as TimeLayout.
	Toggle(ctx context.Context, id string, now time.Time) (domain.ToggleResult, error)

	// Close releases any resources held by the store.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string
	Path     string
	Postgres string
}

// Open creates the store named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendJSON:
		return NewJSONStore(cfg.Path), nil
	case BackendSQLite:
		return NewSQLiteStore(cfg.Path)
	case BackendPostgres:
		return NewPostgresStore(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown payment status backend %q", cfg.Backend)
	}
}

func toggledOn(now time.Time) (domain.ToggleResult, string) {
	stamp := now.Format(TimeLayout)
	return domain.ToggleResult{Success: true, NewStatus: true, PaidOn: &stamp}, stamp
}

func toggledOff() domain.ToggleResult {
	return domain.ToggleResult{Success: true, NewStatus: false}
}
