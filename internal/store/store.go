// Package store defines the tracked-item state abstraction for
// empire-watcher. All business logic depends on the Store interface, never on
// the concrete implementation. State lives in memory only and is rebuilt from
// the catalog on every start.
package store

import (
	"errors"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

// ErrAlreadyTracked is returned by RecordNew for an id that already has state.
var ErrAlreadyTracked = errors.New("item already tracked")

// ErrNotTracked is returned when an operation requires existing state.
var ErrNotTracked = errors.New("item not tracked")

// Store holds exactly one TrackedItem per item id.
type Store interface {
	Has(id int64) bool
	Get(id int64) (domain.TrackedItem, bool)
	RecordNew(id int64, state domain.CatalogItem) error
	RecordUpdate(id int64, state domain.CatalogItem) error
	// SetHandle attaches a notification handle. Once a handle is set, later
	// calls leave it unchanged.
	SetHandle(id int64, handle string) error

	List() []domain.TrackedItem
	Len() int
}
