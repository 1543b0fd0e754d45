package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated. Allocation
// transactions buffer their writes and apply them only when fn succeeds.
type MockRepository struct {
	mu             sync.Mutex
	sessions       map[string]inventory.Session
	storePurchases map[string]inventory.StorePurchase
	items          map[string]inventory.Item
	seq            int64 // insertion order, stands in for created_at

	order map[string]int64

	// Hooks for test assertions
	AllocationTxCount      int
	SetAllocatedCostsCalls int

	// Error injection for testing error paths
	LockSessionErr        error
	ListStorePurchasesErr error
	ListItemsErr          error
	// ListItemsErrFor fails ListItems only for the given store purchase ID.
	ListItemsErrFor     map[string]error
	SetAllocatedCostErr error
	CreateItemsErr      error
	UpdateSessionErr    error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		sessions:        make(map[string]inventory.Session),
		storePurchases:  make(map[string]inventory.StorePurchase),
		items:           make(map[string]inventory.Item),
		order:           make(map[string]int64),
		ListItemsErrFor: make(map[string]error),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) stamp(id string) time.Time {
	m.seq++
	m.order[id] = m.seq
	return time.Unix(m.seq, 0).UTC()
}

// Close is a no-op.
func (m *MockRepository) Close() error { return nil }

// ---- sessions ----

func (m *MockRepository) CreateSession(_ context.Context, s *inventory.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	s.CreatedAt = m.stamp(s.ID)
	s.UpdatedAt = s.CreatedAt
	m.sessions[s.ID] = *s
	return nil
}

func (m *MockRepository) GetSession(_ context.Context, id string) (*inventory.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getSession(id)
}

func (m *MockRepository) getSession(id string) (*inventory.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return &s, nil
}

func (m *MockRepository) ListSessions(_ context.Context, filters SessionFilters) ([]inventory.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]inventory.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] > m.order[out[j].ID] })

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if filters.Offset >= len(out) {
		return []inventory.Session{}, nil
	}
	out = out[filters.Offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockRepository) ListSessionIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return m.order[ids[i]] < m.order[ids[j]] })
	return ids, nil
}

func (m *MockRepository) UpdateSession(_ context.Context, s *inventory.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateSessionErr != nil {
		return m.UpdateSessionErr
	}
	prev, ok := m.sessions[s.ID]
	if !ok {
		return fmt.Errorf("session %s: %w", s.ID, ErrNotFound)
	}
	s.CreatedAt = prev.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MockRepository) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	for _, sp := range m.storePurchases {
		if sp.SessionID == id {
			return fmt.Errorf("session %s still referenced by store purchase %s", id, sp.ID)
		}
	}
	delete(m.sessions, id)
	return nil
}

// ---- store purchases ----

func (m *MockRepository) CreateStorePurchase(_ context.Context, sp *inventory.StorePurchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sp.SessionID]; !ok {
		return fmt.Errorf("session %s: %w", sp.SessionID, ErrNotFound)
	}
	sp.CreatedAt = m.stamp(sp.ID)
	sp.UpdatedAt = sp.CreatedAt
	m.storePurchases[sp.ID] = *sp
	return nil
}

func (m *MockRepository) GetStorePurchase(_ context.Context, id string) (*inventory.StorePurchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sp, ok := m.storePurchases[id]
	if !ok {
		return nil, fmt.Errorf("store purchase %s: %w", id, ErrNotFound)
	}
	return &sp, nil
}

func (m *MockRepository) ListStorePurchases(_ context.Context, sessionID string) ([]inventory.StorePurchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listStorePurchases(sessionID), nil
}

func (m *MockRepository) listStorePurchases(sessionID string) []inventory.StorePurchase {
	out := make([]inventory.StorePurchase, 0)
	for _, sp := range m.storePurchases {
		if sp.SessionID == sessionID {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out
}

func (m *MockRepository) CountStorePurchases(ctx context.Context, sessionID string) (int, error) {
	sps, err := m.ListStorePurchases(ctx, sessionID)
	return len(sps), err
}

func (m *MockRepository) UpdateStorePurchase(_ context.Context, sp *inventory.StorePurchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.storePurchases[sp.ID]
	if !ok {
		return fmt.Errorf("store purchase %s: %w", sp.ID, ErrNotFound)
	}
	sp.SessionID = prev.SessionID
	sp.CreatedAt = prev.CreatedAt
	sp.UpdatedAt = time.Now().UTC()
	m.storePurchases[sp.ID] = *sp
	return nil
}

func (m *MockRepository) DeleteStorePurchase(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.storePurchases[id]; !ok {
		return fmt.Errorf("store purchase %s: %w", id, ErrNotFound)
	}
	for _, it := range m.items {
		if it.StorePurchaseID == id {
			return fmt.Errorf("store purchase %s still referenced by item %s", id, it.ID)
		}
	}
	delete(m.storePurchases, id)
	return nil
}

// ---- items ----

func (m *MockRepository) CreateItems(_ context.Context, items []*inventory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateItemsErr != nil {
		return m.CreateItemsErr
	}
	for _, it := range items {
		if _, ok := m.storePurchases[it.StorePurchaseID]; !ok {
			return fmt.Errorf("store purchase %s: %w", it.StorePurchaseID, ErrNotFound)
		}
	}
	for _, it := range items {
		it.AllocatedCost = nil
		it.CreatedAt = m.stamp(it.ID)
		it.UpdatedAt = it.CreatedAt
		m.items[it.ID] = *it
	}
	return nil
}

func (m *MockRepository) GetItem(_ context.Context, id string) (*inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return &it, nil
}

func (m *MockRepository) ListItems(_ context.Context, storePurchaseID string) ([]inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listItems(storePurchaseID), nil
}

func (m *MockRepository) listItems(storePurchaseID string) []inventory.Item {
	out := make([]inventory.Item, 0)
	for _, it := range m.items {
		if it.StorePurchaseID == storePurchaseID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out
}

func (m *MockRepository) CountItems(ctx context.Context, storePurchaseID string) (int, error) {
	its, err := m.ListItems(ctx, storePurchaseID)
	return len(its), err
}

func (m *MockRepository) UpdateItem(_ context.Context, it *inventory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.items[it.ID]
	if !ok {
		return fmt.Errorf("item %s: %w", it.ID, ErrNotFound)
	}
	it.StorePurchaseID = prev.StorePurchaseID
	it.AllocatedCost = prev.AllocatedCost
	it.CreatedAt = prev.CreatedAt
	it.UpdatedAt = time.Now().UTC()
	m.items[it.ID] = *it
	return nil
}

func (m *MockRepository) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

// ---- allocation ----

// WithAllocationTx holds the repository lock for the whole of fn, which gives
// the same single-snapshot guarantee as a database transaction.
func (m *MockRepository) WithAllocationTx(_ context.Context, readOnly bool, fn func(tx AllocationTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AllocationTxCount++

	tx := &mockAllocationTx{repo: m, readOnly: readOnly, pending: make(map[string]int64)}
	if err := fn(tx); err != nil {
		return err
	}

	for id, cost := range tx.pending {
		it := m.items[id]
		c := cost
		it.AllocatedCost = &c
		m.items[id] = it
	}
	return nil
}

// AllocatedCosts returns every item's persisted allocated cost; nil entries
// are items never allocated.
func (m *MockRepository) AllocatedCosts() map[string]*int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]*int64, len(m.items))
	for id, it := range m.items {
		out[id] = it.AllocatedCost
	}
	return out
}

type mockAllocationTx struct {
	repo     *MockRepository
	readOnly bool
	pending  map[string]int64
}

func (t *mockAllocationTx) LockSession(_ context.Context, id string) (*inventory.Session, error) {
	if t.repo.LockSessionErr != nil {
		return nil, t.repo.LockSessionErr
	}
	return t.repo.getSession(id)
}

func (t *mockAllocationTx) ListStorePurchases(_ context.Context, sessionID string) ([]inventory.StorePurchase, error) {
	if t.repo.ListStorePurchasesErr != nil {
		return nil, t.repo.ListStorePurchasesErr
	}
	return t.repo.listStorePurchases(sessionID), nil
}

func (t *mockAllocationTx) ListItems(_ context.Context, storePurchaseID string) ([]inventory.Item, error) {
	if err := t.repo.ListItemsErrFor[storePurchaseID]; err != nil {
		return nil, err
	}
	if t.repo.ListItemsErr != nil {
		return nil, t.repo.ListItemsErr
	}
	return t.repo.listItems(storePurchaseID), nil
}

func (t *mockAllocationTx) SetAllocatedCosts(_ context.Context, costs map[string]int64) error {
	if t.readOnly {
		return ErrReadOnlyTx
	}
	t.repo.SetAllocatedCostsCalls++
	if t.repo.SetAllocatedCostErr != nil {
		return t.repo.SetAllocatedCostErr
	}
	for id, cost := range costs {
		if _, ok := t.repo.items[id]; !ok {
			return fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		t.pending[id] = cost
	}
	return nil
}
