package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/quenault/pathmine/internal/pathquery"
)

// Save parses sourceXML and stores it under name.
//
// The row is keyed by the query's fingerprint: saving markup that parses
// to an already-stored query returns the existing row unchanged, name
// included, and created false. Uses ON CONFLICT(fingerprint) DO NOTHING
// so concurrent saves of the same query race safely.
//
// Parse failures propagate as *pathquery.ParseError.
func (c *Catalog) Save(ctx context.Context, name string, sourceXML []byte) (*SavedQuery, bool, error) {
	q, err := pathquery.Parse(sourceXML)
	if err != nil {
		return nil, false, err
	}

	fingerprint, err := pathquery.Fingerprint(q)
	if err != nil {
		return nil, false, fmt.Errorf("save query: %w", err)
	}

	queryJSON, err := pathquery.MarshalCanonical(q)
	if err != nil {
		return nil, false, fmt.Errorf("save query: %w", err)
	}

	saved := &SavedQuery{
		ID:          c.idGen.Generate(),
		Name:        name,
		Fingerprint: fingerprint,
		SourceXML:   string(sourceXML),
		Query:       q,
		CreatedAt:   c.clock.Now().UTC(),
	}

	// Insert-or-fetch in one transaction: the UNIQUE fingerprint claims
	// the slot, and a conflict means somebody already saved this query.
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("save query: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO saved_queries
		(id, name, fingerprint, source_xml, query_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`,
		saved.ID,
		saved.Name,
		saved.Fingerprint,
		saved.SourceXML,
		string(queryJSON),
		saved.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, false, fmt.Errorf("save query: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("save query: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Conflict - this query is already saved, fetch the existing row
		row := tx.QueryRowContext(ctx, `
			SELECT id, name, fingerprint, source_xml, query_json, created_at
			FROM saved_queries
			WHERE fingerprint = ?
		`, saved.Fingerprint)
		existing, err := scanSavedQueryRow(row)
		if err != nil {
			return nil, false, fmt.Errorf("save query: select existing: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("save query: commit (existing): %w", err)
		}
		return existing, false, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("save query: commit: %w", err)
	}

	return saved, true, nil
}
