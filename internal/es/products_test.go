package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

type fakeCluster struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
	hitIDs   []string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies[r.Method+" "+r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		hits := make([]map[string]any, 0, len(f.hitIDs))
		for _, id := range f.hitIDs {
			hits = append(hits, map[string]any{"_id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{"total": map[string]any{"value": 42}, "hits": hits},
		})
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	default:
		_, _ = w.Write([]byte(`{"acknowledged":true,"result":"created"}`))
	}
}

func newFake(t *testing.T) (*fakeCluster, *Products) {
	t.Helper()
	f := &fakeCluster{bodies: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return f, NewProducts(client, "products")
}

func TestSearchParsesHits(t *testing.T) {
	f, p := newFake(t)
	a, b := uuid.New(), uuid.New()
	f.hitIDs = []string{a.String(), "not-a-uuid", b.String()}

	total, ids, err := p.Search(context.Background(), "sony", 12, 12)
	require.NoError(t, err)
	assert.EqualValues(t, 42, total)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
	assert.Contains(t, f.bodies["POST /products/_search"], `"multi_match"`)
}

func TestIndexAndDelete(t *testing.T) {
	f, p := newFake(t)
	prod := &models.Product{ID: uuid.New(), Name: "Sony A7 IV", Brand: "sony"}

	require.NoError(t, p.EnsureIndex(context.Background()))
	require.NoError(t, p.IndexProduct(context.Background(), prod))
	require.NoError(t, p.DeleteProduct(context.Background(), prod.ID))

	assert.Contains(t, f.requests, "HEAD /products")
	assert.Contains(t, f.requests, "PUT /products")
	assert.Contains(t, f.requests, "PUT /products/_doc/"+prod.ID.String())
	assert.Contains(t, f.bodies["PUT /products/_doc/"+prod.ID.String()], `"name":"Sony A7 IV"`)
}

func TestNopSearchIsDisabled(t *testing.T) {
	_, _, err := Nop{}.Search(context.Background(), "x", 0, 12)
	assert.ErrorIs(t, err, ErrDisabled)
}
