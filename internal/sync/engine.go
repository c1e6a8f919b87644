// Package sync reconciles a freshly scraped catalog against the persistent
// store: upsert everything, then retire rows the scrape no longer contains.
package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stilmark/fashion-scraper/internal/config"
	"github.com/stilmark/fashion-scraper/internal/models"
)

// Store is the persistence capability the engine drives. Implemented on
// Postgres in internal/database; mocked in tests.
type Store interface {
	Upsert(ctx context.Context, rows []models.Row, conflictColumns []string) (int, error)
	DeleteAbsent(ctx context.Context, source, keyColumn string, keep []string) (int, error)
	Count(ctx context.Context, source string) (int, error)
}

// Engine performs a full-replacement sync. Callers must pass the complete
// current catalog for the source; a partial batch would retire valid rows.
type Engine struct {
	store       Store
	identityKey string
	log         zerolog.Logger
}

func NewEngine(store Store, identityKey string, log zerolog.Logger) *Engine {
	if identityKey == "" {
		identityKey = config.IdentityExternalID
	}
	return &Engine{store: store, identityKey: identityKey, log: log}
}

// RowID derives the stable row identity: a deterministic hash of the
// detail URL namespaced by source. Stable across scrapes of the same
// product regardless of which uniqueness key the deployment uses.
func RowID(source, detailURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+":"+detailURL)).String()
}

// conflictColumns maps the configured identity key onto the storage
// uniqueness constraint.
func (e *Engine) conflictColumns() []string {
	if e.identityKey == config.IdentityDetailURL {
		return []string{"source", "product_url"}
	}
	return []string{"source", "external_id"}
}

// keyColumn is the column retirement matches against.
func (e *Engine) keyColumn() string {
	if e.identityKey == config.IdentityDetailURL {
		return "product_url"
	}
	return "external_id"
}

// identityOf returns a product's value for the configured key column.
func (e *Engine) identityOf(p *models.Product) string {
	if e.identityKey == config.IdentityDetailURL {
		return p.DetailURL
	}
	return p.ExternalID
}

// Sync upserts the batch and deletes stored rows of the source absent from
// it. An empty batch performs zero deletions: an empty scrape is far more
// likely a site change than an emptied catalog.
func (e *Engine) Sync(ctx context.Context, source string, products []models.Product) error {
	if len(products) == 0 {
		e.log.Warn().Str("source", source).Msg("empty product batch, skipping sync")
		return nil
	}

	rows, keep, err := e.formatRows(source, products)
	if err != nil {
		return err
	}

	written, err := e.store.Upsert(ctx, rows, e.conflictColumns())
	if err != nil {
		return fmt.Errorf("upsert failed for %s: %w", source, err)
	}
	e.log.Info().Str("source", source).Int("count", written).Msg("upserted products")

	deleted, err := e.store.DeleteAbsent(ctx, source, e.keyColumn(), keep)
	if err != nil {
		return fmt.Errorf("stale-row cleanup failed for %s: %w", source, err)
	}
	if deleted > 0 {
		e.log.Info().Str("source", source).Int("count", deleted).Msg("removed unavailable products")
	}

	return nil
}

func (e *Engine) formatRows(source string, products []models.Product) ([]models.Row, []string, error) {
	rows := make([]models.Row, 0, len(products))
	keep := make([]string, 0, len(products))

	for i := range products {
		p := &products[i]
		if p.Source == "" {
			p.Source = source
		}

		row, err := p.ToRow(RowID(p.Source, p.DetailURL))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to format product %s: %w", p.ExternalID, err)
		}

		rows = append(rows, row)
		keep = append(keep, e.identityOf(p))
	}

	return rows, keep, nil
}
