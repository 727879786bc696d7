// Portfolios table accessor for the SQLite backend. The payload column
// holds the serialized blob; the store never interprets its shape.

package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/folioforge/depot/pkg/types"
)

// Compile-time interface check: portfoliosTable must implement Table.
var _ types.Table = (*portfoliosTable)(nil)

// portfoliosTable implements the Table interface for the portfolios table.
type portfoliosTable struct {
	backend *Backend
}

// InsertRow inserts a new portfolio snapshot. The payload is serialized
// to JSON text unless it is already a serialized string. Fills a
// generated snapshot_id and a defaulted last_updated, and returns the
// inserted *types.PortfolioSnapshot.
func (pt *portfoliosTable) InsertRow(record any) (any, error) {
	snap, ok := record.(*types.PortfolioSnapshot)
	if !ok {
		return nil, types.ErrInvalidData
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	payload, err := serializePayload(snap.Payload)
	if err != nil {
		return nil, err
	}

	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if !pt.backend.attached {
		return nil, types.ErrStoreDetached
	}

	if snap.SnapshotID == "" {
		snap.SnapshotID = newRowID()
	}
	if snap.LastUpdated.IsZero() {
		snap.LastUpdated = time.Now().UTC()
	}

	_, err = pt.backend.db.Exec(
		`INSERT INTO portfolios (snapshot_id, owner_email, payload, last_updated)
		 VALUES (?, ?, ?, ?)`,
		snap.SnapshotID, snap.OwnerEmail, payload,
		snap.LastUpdated.UTC().Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: snapshot %q", types.ErrConflict, snap.SnapshotID)
		}
		return nil, fmt.Errorf("inserting portfolio snapshot: %w", err)
	}

	return snap, nil
}

// UpdateRow replaces the payload of the owner's newest snapshot and
// refreshes last_updated. Criteria must match on owner_email; the patch
// must carry a payload value. Returns the number of rows changed; zero
// means the owner has no snapshot, which is not an error (the caller
// decides whether to fall back to an insert).
func (pt *portfoliosTable) UpdateRow(criteria types.Criteria, patch types.Patch) (int64, error) {
	if criteria.Field != types.FieldOwnerEmail {
		return 0, fmt.Errorf("%w: portfolios update by %q", types.ErrInvalidCriteria, criteria.Field)
	}
	raw, ok := patch[types.PatchPayload]
	if !ok || len(patch) != 1 {
		return 0, fmt.Errorf("%w: portfolios patch must carry payload only", types.ErrInvalidPatch)
	}
	payload, err := serializePayload(raw)
	if err != nil {
		return 0, err
	}

	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if !pt.backend.attached {
		return 0, types.ErrStoreDetached
	}

	// Overwrite only the newest row for the owner; older rows are
	// retained and reachable through the all-rows query shape.
	var snapshotID string
	err = pt.backend.db.QueryRow(
		"SELECT snapshot_id FROM portfolios WHERE owner_email = ? ORDER BY last_updated DESC LIMIT 1",
		criteria.Value,
	).Scan(&snapshotID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("locating newest snapshot: %w", err)
	}

	res, err := pt.backend.db.Exec(
		"UPDATE portfolios SET payload = ?, last_updated = ? WHERE snapshot_id = ?",
		payload, time.Now().UTC().Format(timeFormat), snapshotID,
	)
	if err != nil {
		return 0, fmt.Errorf("updating portfolio snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting updated snapshots: %w", err)
	}
	return n, nil
}

// Search returns snapshots matching the query, newest first, translated
// through the query translator.
func (pt *portfoliosTable) Search(q types.Query) ([]any, error) {
	pt.backend.mu.RLock()
	defer pt.backend.mu.RUnlock()
	if !pt.backend.attached {
		return nil, types.ErrStoreDetached
	}

	stmt, args, err := pt.backend.translate(types.PortfoliosTable, q)
	if err != nil {
		return nil, err
	}

	rows, err := pt.backend.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("searching portfolios: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		snap, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching portfolios: %w", err)
	}
	return out, nil
}

// DeleteRows removes all snapshots matching criteria (exact match on
// owner_email). Returns the number of rows removed; zero is not an error.
func (pt *portfoliosTable) DeleteRows(criteria types.Criteria) (int64, error) {
	if criteria.Field != types.FieldOwnerEmail {
		return 0, fmt.Errorf("%w: portfolios delete by %q", types.ErrInvalidCriteria, criteria.Field)
	}

	pt.backend.mu.Lock()
	defer pt.backend.mu.Unlock()
	if !pt.backend.attached {
		return 0, types.ErrStoreDetached
	}

	res, err := pt.backend.db.Exec(
		"DELETE FROM portfolios WHERE owner_email = ?", criteria.Value,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting portfolios: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted portfolios: %w", err)
	}
	return n, nil
}

// serializePayload returns the storage representation of a payload.
// Strings are treated as already serialized and stored verbatim;
// anything else is marshaled to JSON text.
func serializePayload(payload any) (string, error) {
	if payload == nil {
		return "null", nil
	}
	if s, ok := payload.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: serializing payload: %v", types.ErrInvalidData, err)
	}
	return string(data), nil
}

// scanPortfolio hydrates one portfolios row into *types.PortfolioSnapshot.
// The payload is deserialized back to its structured form; text that is
// not valid JSON comes back as the raw string.
func scanPortfolio(rows *sql.Rows) (*types.PortfolioSnapshot, error) {
	var snap types.PortfolioSnapshot
	var payload, lastUpdated string
	if err := rows.Scan(&snap.SnapshotID, &snap.OwnerEmail, &payload, &lastUpdated); err != nil {
		return nil, fmt.Errorf("scanning portfolio snapshot: %w", err)
	}
	var val any
	if err := json.Unmarshal([]byte(payload), &val); err != nil {
		snap.Payload = payload
	} else {
		snap.Payload = val
	}
	var err error
	snap.LastUpdated, err = time.Parse(timeFormat, lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot last_updated: %w", err)
	}
	return &snap, nil
}
