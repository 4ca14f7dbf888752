package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lbs-connect/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

const matchColumns = `id, user_id, matched_user_id, score, reason, status, expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (Match, error) {
	var m Match
	var status string
	var expiresAt sql.NullTime
	if err := row.Scan(&m.ID, &m.UserID, &m.MatchedUserID, &m.Score, &m.Reason, &status, &expiresAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Match{}, err
	}
	m.Status = Status(status)
	if expiresAt.Valid {
		t := expiresAt.Time
		m.ExpiresAt = &t
	}
	return m, nil
}

func (r *PGRepo) ReplacePending(ctx context.Context, userID string, recs []Recommendation, expiresAt *time.Time) ([]Match, error) {
	out := make([]Match, 0, len(recs))
	err := db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE user_id = $1 AND status = 'pending'`, userID); err != nil {
			return fmt.Errorf("delete pending matches: %w", err)
		}
		const insert = `
INSERT INTO matches (id, user_id, matched_user_id, score, reason, status, expires_at)
VALUES ($1, $2, $3, $4, $5, 'pending', $6)
RETURNING ` + matchColumns
		for _, rec := range recs {
			var expires any
			if expiresAt != nil {
				expires = *expiresAt
			}
			m, err := scanMatch(tx.QueryRowContext(ctx, insert, uuid.NewString(), userID, rec.MatchedUserID, rec.Score, rec.Reason, expires))
			if err != nil {
				return fmt.Errorf("insert match: %w", err)
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByScore(out)
	return out, nil
}

func (r *PGRepo) ListActive(ctx context.Context, userID string, now time.Time) ([]Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
WHERE user_id = $1 AND status = 'pending' AND (expires_at IS NULL OR expires_at > $2)
ORDER BY score DESC, matched_user_id`
	return r.query(ctx, query, userID, now)
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Match, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, userID, matchID string, status Status) (Match, error) {
	query := `UPDATE matches SET status = $3, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + matchColumns
	m, err := scanMatch(r.DB.QueryRowContext(ctx, query, matchID, userID, string(status)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, ErrNotFound
		}
		return Match{}, err
	}
	return m, nil
}

func (r *PGRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE matches SET status = 'expired', updated_at = now()
WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ Repo = (*PGRepo)(nil)
