package ddragon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogServer(t *testing.T, fail *atomic.Bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var catalogHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail != nil && fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/versions.json":
			_ = jsoniter.NewEncoder(w).Encode([]string{"15.20.1", "15.19.1"})
		case "/cdn/15.20.1/data/en_US/champion.json":
			catalogHits.Add(1)
			_ = jsoniter.NewEncoder(w).Encode(map[string]any{
				"version": "15.20.1",
				"data": map[string]any{
					"Warwick":    map[string]any{"id": "Warwick", "key": "19", "name": "Warwick"},
					"Ashe":       map[string]any{"id": "Ashe", "key": "22", "name": "Ashe"},
					"MonkeyKing": map[string]any{"id": "MonkeyKing", "key": "62", "name": "Wukong"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &catalogHits
}

func TestClientName_LoadsLatestCatalogOnce(t *testing.T) {
	t.Parallel()

	srv, hits := catalogServer(t, nil)
	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: logging.NewNop()})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, ok, err := client.Name(context.Background(), 62)
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "Wukong", name)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "15.20.1", client.Version())

	_, ok, err := client.Name(context.Background(), 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClientName_ServesStaleCatalogWhenRefreshFails(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	srv, _ := catalogServer(t, &fail)
	client := NewClient(ClientConfig{BaseURL: srv.URL, TTL: time.Hour, Logger: logging.NewNop()})

	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	name, _, err := client.Name(context.Background(), 19)
	require.NoError(t, err)
	require.Equal(t, "Warwick", name)

	fail.Store(true)
	now = now.Add(2 * time.Hour)

	name, ok, err := client.Name(context.Background(), 19)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Warwick", name)
}

func TestClientName_FailsWithoutCatalog(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	fail.Store(true)
	srv, _ := catalogServer(t, &fail)
	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: logging.NewNop()})

	_, _, err := client.Name(context.Background(), 19)
	require.Error(t, err)
}
