package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient("catalog-bot/1.0", 5*time.Second, 0, zerolog.Nop())
}

func TestFetchParsesDocument(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1>Wool Sweater</h1></body></html>`))
	}))
	defer srv.Close()

	doc, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Wool Sweater", doc.Find("h1").Text())
	assert.Equal(t, "catalog-bot/1.0", gotUA)
}

func TestFetchConvertsLegacyCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Pröduct" with ö as the single latin-1 byte 0xF6.
		w.Write([]byte("<html><body><h1>Pr\xf6duct</h1></body></html>"))
	}))
	defer srv.Close()

	doc, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Pröduct", doc.Find("h1").Text())
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetchHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("catalog-bot/1.0", 5*time.Second, time.Minute, zerolog.Nop())
	require.NoError(t, client.limiter.Wait(context.Background()), "prime the limiter")

	_, err := client.Fetch(ctx, "http://127.0.0.1:1/never")
	assert.ErrorIs(t, err, context.Canceled)
}
