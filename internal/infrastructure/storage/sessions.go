package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
)

const sessionColumns = `id, name, purchased_on, transportation_cost, transfer_fee, agency_fee, created_at, updated_at`

// CreateSession inserts a new session, stamping its timestamps.
func (s *Storage) CreateSession(ctx context.Context, sess *inventory.Session) error {
	now := s.now()
	sess.CreatedAt, sess.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO sessions (`+sessionColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.PurchasedOn.UTC(),
		nullInt(sess.TransportationCost), nullInt(sess.TransferFee), nullInt(sess.AgencyFee),
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID
func (s *Storage) GetSession(ctx context.Context, id string) (*inventory.Session, error) {
	return getSession(ctx, s.db, id, "")
}

func getSession(ctx context.Context, q querier, id, suffix string) (*inventory.Session, error) {
	row := q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`+suffix, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns sessions, newest purchase date first.
func (s *Storage) ListSessions(ctx context.Context, filters SessionFilters) ([]inventory.Session, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT `+sessionColumns+` FROM sessions
	ORDER BY purchased_on DESC, created_at DESC
	LIMIT ? OFFSET ?`, limit, filters.Offset)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := make([]inventory.Session, 0)
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// ListSessionIDs returns every session ID, oldest first.
func (s *Storage) ListSessionIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list session ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateSession overwrites the session's editable fields.
func (s *Storage) UpdateSession(ctx context.Context, sess *inventory.Session) error {
	sess.UpdatedAt = s.now()

	res, err := s.db.ExecContext(ctx, `
	UPDATE sessions
	SET name = ?, purchased_on = ?, transportation_cost = ?, transfer_fee = ?, agency_fee = ?, updated_at = ?
	WHERE id = ?`,
		sess.Name, sess.PurchasedOn.UTC(),
		nullInt(sess.TransportationCost), nullInt(sess.TransferFee), nullInt(sess.AgencyFee),
		sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}
	return expectOne(res, "session", sess.ID)
}

// DeleteSession removes a session. The foreign key on store_purchases rejects
// the delete while the session still owns rows.
func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return expectOne(res, "session", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*inventory.Session, error) {
	var (
		sess                    inventory.Session
		transport, transfer, ag sql.NullInt64
	)
	if err := r.Scan(
		&sess.ID, &sess.Name, &sess.PurchasedOn,
		&transport, &transfer, &ag,
		&sess.CreatedAt, &sess.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sess.TransportationCost = intPtr(transport)
	sess.TransferFee = intPtr(transfer)
	sess.AgencyFee = intPtr(ag)
	return &sess, nil
}
