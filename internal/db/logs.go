package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"valentine/internal/models"
	"valentine/internal/telemetry"
)

var _ telemetry.Store = (*DB)(nil)

// CreateLog inserts a telemetry document and returns its id.
func (d *DB) CreateLog(ctx context.Context, rec telemetry.Record) (string, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode invitation log: %w", err)
	}

	id := uuid.New()
	_, err = d.Pool.Exec(ctx, `
		INSERT INTO invitation_logs (id, document, created_at, updated_at)
		VALUES ($1, $2::jsonb, $3, $3)
	`, id, string(doc), rec.CreatedAt)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// UpdateLog merges patch into the stored document.
func (d *DB) UpdateLog(ctx context.Context, id string, patch telemetry.Patch) error {
	logID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidLogID
	}

	doc, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode invitation log patch: %w", err)
	}

	result, err := d.Pool.Exec(ctx, `
		UPDATE invitation_logs
		SET document = document || $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`, logID, string(doc))
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

// GetLog returns a stored document by id.
func (d *DB) GetLog(ctx context.Context, id string) (*models.InvitationLog, error) {
	logID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidLogID
	}

	var (
		l   models.InvitationLog
		raw []byte
	)
	err = d.Pool.QueryRow(ctx, `
		SELECT id, document, created_at, updated_at
		FROM invitation_logs WHERE id = $1
	`, logID).Scan(&l.ID, &raw, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &l.Document); err != nil {
		return nil, fmt.Errorf("decode invitation log: %w", err)
	}
	return &l, nil
}

// CountLogsByState returns how many links are in each lifecycle state.
func (d *DB) CountLogsByState(ctx context.Context) ([]models.LogStateCount, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT state, COUNT(*) FROM (
			SELECT CASE
				WHEN document->>'result' = 'yes' THEN 'accepted'
				WHEN document->>'missingNameStateTriggered' = 'true' THEN 'missing_name'
				WHEN document->>'wasOpened' = 'true' THEN 'opened'
				ELSE 'created'
			END AS state
			FROM invitation_logs
		) s
		GROUP BY state
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.LogStateCount
	for rows.Next() {
		var c models.LogStateCount
		if err := rows.Scan(&c.State, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// DeleteLogsOlderThan removes documents created before cutoff and returns
// how many were deleted.
func (d *DB) DeleteLogsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := d.Pool.Exec(ctx, `DELETE FROM invitation_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
