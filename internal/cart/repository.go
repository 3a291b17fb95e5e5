package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SnapshotRepository persists one serialized cart per session in the
// cart_snapshots key-value table. The whole cart is overwritten on every
// save; cart sizes are small enough that a diff scheme is not worth it.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Load(ctx context.Context, sessionID string) ([]LineItem, error) {
	const query = `SELECT payload FROM cart_snapshots WHERE session_id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			// no snapshot yet; the store starts empty
			return nil, nil
		}
		return nil, fmt.Errorf("select cart snapshot: %w", err)
	}

	var items []LineItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, sessionID string, items []LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}

	const upsert = `
INSERT INTO cart_snapshots (session_id, payload, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (session_id) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = NOW()
`
	if _, err := r.db.ExecContext(ctx, upsert, sessionID, payload); err != nil {
		return fmt.Errorf("upsert cart snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) Erase(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

// ForSession binds the repository to one session id, satisfying Storage.
func (r *SnapshotRepository) ForSession(sessionID string) Storage {
	return sessionStorage{repo: r, sessionID: sessionID}
}

type sessionStorage struct {
	repo      *SnapshotRepository
	sessionID string
}

func (s sessionStorage) Load(ctx context.Context) ([]LineItem, error) {
	return s.repo.Load(ctx, s.sessionID)
}

func (s sessionStorage) Save(ctx context.Context, items []LineItem) error {
	return s.repo.Save(ctx, s.sessionID, items)
}

func (s sessionStorage) Erase(ctx context.Context) error {
	return s.repo.Erase(ctx, s.sessionID)
}
