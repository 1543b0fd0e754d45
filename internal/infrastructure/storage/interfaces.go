package storage

import (
	"context"
	"errors"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
)

// ErrNotFound is returned when a session, store purchase or item does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the complete storage interface.
// Storage (SQLite or MySQL) and MockRepository both implement it.
type Repository interface {
	SessionRepository
	StorePurchaseRepository
	ItemRepository
	AllocationStore
	Close() error
}

// SessionRepository handles session rows.
type SessionRepository interface {
	CreateSession(ctx context.Context, s *inventory.Session) error
	GetSession(ctx context.Context, id string) (*inventory.Session, error)
	ListSessions(ctx context.Context, filters SessionFilters) ([]inventory.Session, error)
	// ListSessionIDs returns every session ID, oldest first.
	ListSessionIDs(ctx context.Context) ([]string, error)
	UpdateSession(ctx context.Context, s *inventory.Session) error
	DeleteSession(ctx context.Context, id string) error
}

// SessionFilters defines filters for listing sessions
type SessionFilters struct {
	Limit  int // Max results (0 = default 50)
	Offset int
}

// StorePurchaseRepository handles store purchase rows.
type StorePurchaseRepository interface {
	CreateStorePurchase(ctx context.Context, sp *inventory.StorePurchase) error
	GetStorePurchase(ctx context.Context, id string) (*inventory.StorePurchase, error)
	ListStorePurchases(ctx context.Context, sessionID string) ([]inventory.StorePurchase, error)
	CountStorePurchases(ctx context.Context, sessionID string) (int, error)
	// UpdateStorePurchase never moves a store purchase to another session.
	UpdateStorePurchase(ctx context.Context, sp *inventory.StorePurchase) error
	DeleteStorePurchase(ctx context.Context, id string) error
}

// ItemRepository handles item rows. None of its writes touch allocated_cost;
// that column belongs to AllocationTx.
type ItemRepository interface {
	// CreateItems inserts all items in one transaction.
	CreateItems(ctx context.Context, items []*inventory.Item) error
	GetItem(ctx context.Context, id string) (*inventory.Item, error)
	ListItems(ctx context.Context, storePurchaseID string) ([]inventory.Item, error)
	CountItems(ctx context.Context, storePurchaseID string) (int, error)
	UpdateItem(ctx context.Context, it *inventory.Item) error
	DeleteItem(ctx context.Context, id string) error
}

// AllocationStore runs allocation reads and writes in one transaction.
type AllocationStore interface {
	// WithAllocationTx calls fn inside a transaction. The transaction commits
	// when fn returns nil and rolls back otherwise. readOnly transactions
	// reject SetAllocatedCosts.
	WithAllocationTx(ctx context.Context, readOnly bool, fn func(tx AllocationTx) error) error
}

// AllocationTx is the transactional view used by the recalculation trigger.
// It is the only path that writes items.allocated_cost.
type AllocationTx interface {
	// LockSession loads the session, locking its row where the database supports it.
	LockSession(ctx context.Context, id string) (*inventory.Session, error)
	ListStorePurchases(ctx context.Context, sessionID string) ([]inventory.StorePurchase, error)
	ListItems(ctx context.Context, storePurchaseID string) ([]inventory.Item, error)
	// SetAllocatedCosts overwrites allocated_cost for every item in costs.
	SetAllocatedCosts(ctx context.Context, costs map[string]int64) error
}

// ErrReadOnlyTx is returned by SetAllocatedCosts inside a read-only transaction.
var ErrReadOnlyTx = errors.New("allocation transaction is read-only")
