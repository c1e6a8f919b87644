package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/stilmark/fashion-scraper/internal/models"
)

// productColumns lists the products table columns in insert order.
var productColumns = []string{
	"id", "source", "external_id", "product_url", "image_url", "brand",
	"title", "description", "category", "gender", "size", "availability",
	"sku", "price", "additional_images", "tags", "image_embedding",
	"text_embedding", "metadata",
}

// ProductStore implements the persistence capability on Postgres.
type ProductStore struct {
	db *DB
}

func NewProductStore(db *DB) *ProductStore {
	return &ProductStore{db: db}
}

// Upsert writes all rows, updating on conflict against the given columns.
// Returns the number of rows written.
func (s *ProductStore) Upsert(ctx context.Context, rows []models.Row, conflictColumns []string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := buildUpsertQuery(conflictColumns)

	count := 0
	for _, row := range rows {
		_, err := s.db.Exec(ctx, query,
			row.ID, row.Source, row.ExternalID, row.ProductURL, row.ImageURL,
			row.Brand, row.Title, row.Description, row.Category, row.Gender,
			row.Size, row.Availability, row.SKU, row.Price,
			row.AdditionalImages, row.Tags, row.ImageEmbedding,
			row.TextEmbedding, row.Metadata,
		)
		if err != nil {
			return count, fmt.Errorf("failed to upsert product %s: %w", row.ExternalID, err)
		}
		count++
	}

	return count, nil
}

// DeleteAbsent retires every stored row for the source whose key-column
// value is not in keep. Returns the number of rows deleted.
func (s *ProductStore) DeleteAbsent(ctx context.Context, source, keyColumn string, keep []string) (int, error) {
	if err := validateKeyColumn(keyColumn); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(
		`DELETE FROM products WHERE source = $1 AND NOT (%s = ANY($2))`, keyColumn)

	tag, err := s.db.Exec(ctx, query, source, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale products for %s: %w", source, err)
	}

	return int(tag.RowsAffected()), nil
}

// Count returns the number of stored products, optionally for one source.
func (s *ProductStore) Count(ctx context.Context, source string) (int, error) {
	var (
		count int
		err   error
	)
	if source == "" {
		err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	} else {
		err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE source = $1`, source).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func buildUpsertQuery(conflictColumns []string) string {
	placeholders := make([]string, len(productColumns))
	for i := range productColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var updates []string
	conflictSet := make(map[string]struct{}, len(conflictColumns))
	for _, c := range conflictColumns {
		conflictSet[c] = struct{}{}
	}
	for _, col := range productColumns {
		if _, isKey := conflictSet[col]; isKey || col == "id" {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	return fmt.Sprintf(`
		INSERT INTO products (%s)
		VALUES (%s)
		ON CONFLICT (%s) DO UPDATE SET
			%s,
			updated_at = NOW()`,
		strings.Join(productColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(conflictColumns, ", "),
		strings.Join(updates, ",\n\t\t\t"),
	)
}

func validateKeyColumn(col string) error {
	switch col {
	case "external_id", "product_url", "id":
		return nil
	}
	return fmt.Errorf("invalid key column: %s", col)
}
