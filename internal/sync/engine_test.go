package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stilmark/fashion-scraper/internal/config"
	"github.com/stilmark/fashion-scraper/internal/models"
)

type mockStore struct {
	upsertRows      []models.Row
	conflictColumns []string
	upsertErr       error

	deleteCalls  int
	deleteSource string
	deleteKeyCol string
	deleteKeep   []string
	deleted      int
	deleteErr    error
}

func (m *mockStore) Upsert(ctx context.Context, rows []models.Row, conflictColumns []string) (int, error) {
	m.upsertRows = rows
	m.conflictColumns = conflictColumns
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	return len(rows), nil
}

func (m *mockStore) DeleteAbsent(ctx context.Context, source, keyColumn string, keep []string) (int, error) {
	m.deleteCalls++
	m.deleteSource = source
	m.deleteKeyCol = keyColumn
	m.deleteKeep = keep
	return m.deleted, m.deleteErr
}

func (m *mockStore) Count(ctx context.Context, source string) (int, error) {
	return len(m.upsertRows), nil
}

func sampleProducts() []models.Product {
	return []models.Product{
		{
			ExternalID:        "B60353-BZH",
			Title:             "Wool Sweater",
			DetailURL:         "https://www.example.com/shop/B60353-BZH.html",
			CanonicalImageURL: "https://img.example.com/B60353-BZH_Y.jpg",
			Availability:      "in stock",
		},
		{
			ExternalID:        "C10001-AAA",
			Title:             "Leather Jacket",
			DetailURL:         "https://www.example.com/shop/C10001-AAA.html",
			CanonicalImageURL: "https://img.example.com/C10001-AAA_B.jpg",
			Availability:      "unknown",
		},
	}
}

func TestSyncUpsertThenRetire(t *testing.T) {
	store := &mockStore{deleted: 3}
	engine := NewEngine(store, config.IdentityExternalID, zerolog.Nop())

	err := engine.Sync(context.Background(), "example", sampleProducts())
	require.NoError(t, err)

	require.Len(t, store.upsertRows, 2)
	assert.Equal(t, []string{"source", "external_id"}, store.conflictColumns)
	assert.Equal(t, "example", store.upsertRows[0].Source, "source filled from the sync call")
	assert.Equal(t, "B60353-BZH", store.upsertRows[0].ExternalID)

	assert.Equal(t, 1, store.deleteCalls)
	assert.Equal(t, "example", store.deleteSource)
	assert.Equal(t, "external_id", store.deleteKeyCol)
	assert.Equal(t, []string{"B60353-BZH", "C10001-AAA"}, store.deleteKeep,
		"every upserted product is protected from retirement")
}

func TestSyncEmptyBatchDeletesNothing(t *testing.T) {
	store := &mockStore{}
	engine := NewEngine(store, "", zerolog.Nop())

	err := engine.Sync(context.Background(), "example", nil)
	require.NoError(t, err)
	assert.Nil(t, store.upsertRows)
	assert.Equal(t, 0, store.deleteCalls, "an empty scrape must not wipe the catalog")
}

func TestSyncDetailURLIdentity(t *testing.T) {
	store := &mockStore{}
	engine := NewEngine(store, config.IdentityDetailURL, zerolog.Nop())

	err := engine.Sync(context.Background(), "example", sampleProducts())
	require.NoError(t, err)

	assert.Equal(t, []string{"source", "product_url"}, store.conflictColumns)
	assert.Equal(t, "product_url", store.deleteKeyCol)
	assert.Equal(t, []string{
		"https://www.example.com/shop/B60353-BZH.html",
		"https://www.example.com/shop/C10001-AAA.html",
	}, store.deleteKeep)
}

func TestSyncUpsertFailureAbortsRetirement(t *testing.T) {
	store := &mockStore{upsertErr: errors.New("connection reset")}
	engine := NewEngine(store, "", zerolog.Nop())

	err := engine.Sync(context.Background(), "example", sampleProducts())
	require.Error(t, err)
	assert.Equal(t, 0, store.deleteCalls, "no retirement after a failed upsert")
}

func TestSyncDeleteFailureSurfaces(t *testing.T) {
	store := &mockStore{deleteErr: errors.New("timeout")}
	engine := NewEngine(store, "", zerolog.Nop())

	err := engine.Sync(context.Background(), "example", sampleProducts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale-row cleanup")
}

func TestRowID(t *testing.T) {
	a := RowID("example", "https://www.example.com/shop/B60353-BZH.html")
	b := RowID("example", "https://www.example.com/shop/B60353-BZH.html")
	c := RowID("other", "https://www.example.com/shop/B60353-BZH.html")
	d := RowID("example", "https://www.example.com/shop/C10001-AAA.html")

	assert.Equal(t, a, b, "identity is deterministic across runs")
	assert.NotEqual(t, a, c, "namespaced by source")
	assert.NotEqual(t, a, d)
	assert.Len(t, a, 36, "canonical uuid text form")
}

func TestSyncRowIDsStableAcrossRuns(t *testing.T) {
	first := &mockStore{}
	second := &mockStore{}

	require.NoError(t, NewEngine(first, "", zerolog.Nop()).Sync(context.Background(), "example", sampleProducts()))
	require.NoError(t, NewEngine(second, "", zerolog.Nop()).Sync(context.Background(), "example", sampleProducts()))

	require.Len(t, second.upsertRows, len(first.upsertRows))
	for i := range first.upsertRows {
		assert.Equal(t, first.upsertRows[i].ID, second.upsertRows[i].ID)
	}
}
