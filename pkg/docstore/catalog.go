// Package docstore implements the document-store-backed collaborators
// named in spec.md §6 that sit outside the per-session persistence path:
// the read-only device catalog snapshot and the background token-counter
// flush worker.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medsync-ai/orchestrator/pkg/models"
)

// CatalogReader implements devicestore.DeviceCatalogReader against a
// Postgres table of catalog documents, one JSONB blob per device, the same
// "device fields enumerated in spec.md §3" shape devicestore.Store expects.
type CatalogReader struct {
	pool *pgxpool.Pool
}

// NewCatalogReader wraps an already-connected pool.
func NewCatalogReader(pool *pgxpool.Pool) *CatalogReader {
	return &CatalogReader{pool: pool}
}

// LoadDevices implements devicestore.DeviceCatalogReader.
func (c *CatalogReader) LoadDevices(ctx context.Context) ([]*models.Device, error) {
	rows, err := c.pool.Query(ctx, `SELECT data FROM devices`)
	if err != nil {
		return nil, fmt.Errorf("docstore: load devices: %w", err)
	}
	defer rows.Close()

	var out []*models.Device
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("docstore: scan device: %w", err)
		}
		var d models.Device
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("docstore: unmarshal device %s: %w", raw, err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
