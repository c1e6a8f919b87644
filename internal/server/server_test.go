package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stilmark/fashion-scraper/internal/scraper"
)

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewStatusServer(&scraper.Stats{}, zerolog.Nop()).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStats(t *testing.T) {
	stats := &scraper.Stats{}
	stats.Attempted.Add(5)
	stats.Scraped.Add(3)
	stats.Dropped.Add(2)

	srv := httptest.NewServer(NewStatusServer(stats, zerolog.Nop()).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap scraper.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, int64(5), snap.Attempted)
	assert.Equal(t, int64(3), snap.Scraped)
	assert.Equal(t, int64(2), snap.Dropped)
	assert.Equal(t, int64(0), snap.Synced)
}
