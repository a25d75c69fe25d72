package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quenault/pathmine/internal/pathquery"
)

// Get retrieves a saved query by ID.
// Returns ErrNotFound if no such row exists.
func (c *Catalog) Get(ctx context.Context, id string) (*SavedQuery, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, name, fingerprint, source_xml, query_json, created_at
		FROM saved_queries
		WHERE id = ?
	`, id)

	saved, err := scanSavedQueryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return saved, err
}

// GetByFingerprint retrieves a saved query by its content fingerprint.
// Returns ErrNotFound if no such row exists.
func (c *Catalog) GetByFingerprint(ctx context.Context, fingerprint string) (*SavedQuery, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, name, fingerprint, source_xml, query_json, created_at
		FROM saved_queries
		WHERE fingerprint = ?
	`, fingerprint)

	saved, err := scanSavedQueryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: fingerprint %s", ErrNotFound, fingerprint)
	}
	return saved, err
}

// List returns every saved query, oldest first. Ties on created_at break
// by id so the ordering is deterministic.
//
// Returns an empty slice (not nil) when the catalog is empty.
func (c *Catalog) List(ctx context.Context) ([]SavedQuery, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, fingerprint, source_xml, query_json, created_at
		FROM saved_queries
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var saved []SavedQuery
	for rows.Next() {
		sq, err := scanSavedQuery(rows)
		if err != nil {
			return nil, err
		}
		saved = append(saved, *sq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queries: %w", err)
	}

	if saved == nil {
		saved = []SavedQuery{}
	}

	return saved, nil
}

// Delete removes a saved query by ID.
// Returns ErrNotFound if no such row exists.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM saved_queries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete query: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return nil
}

// scanSavedQuery scans a row into a SavedQuery.
func scanSavedQuery(rows *sql.Rows) (*SavedQuery, error) {
	var sq SavedQuery
	var queryJSON, createdAt string

	if err := rows.Scan(
		&sq.ID, &sq.Name, &sq.Fingerprint, &sq.SourceXML, &queryJSON, &createdAt,
	); err != nil {
		return nil, fmt.Errorf("scan saved query: %w", err)
	}

	if err := decodeSavedColumns(&sq, queryJSON, createdAt); err != nil {
		return nil, err
	}
	return &sq, nil
}

// scanSavedQueryRow scans a single row into a SavedQuery.
func scanSavedQueryRow(row *sql.Row) (*SavedQuery, error) {
	var sq SavedQuery
	var queryJSON, createdAt string

	if err := row.Scan(
		&sq.ID, &sq.Name, &sq.Fingerprint, &sq.SourceXML, &queryJSON, &createdAt,
	); err != nil {
		return nil, err
	}

	if err := decodeSavedColumns(&sq, queryJSON, createdAt); err != nil {
		return nil, err
	}
	return &sq, nil
}

func decodeSavedColumns(sq *SavedQuery, queryJSON, createdAt string) error {
	var q pathquery.Query
	if err := json.Unmarshal([]byte(queryJSON), &q); err != nil {
		return fmt.Errorf("decode stored query %s: %w", sq.ID, err)
	}
	sq.Query = &q

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return fmt.Errorf("decode created_at for %s: %w", sq.ID, err)
	}
	sq.CreatedAt = t
	return nil
}
