package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/require"

	"github.com/malexstudio/site_api/internal/models"
)

// stubES fakes the Elasticsearch HTTP API closely enough for the client:
// every response carries the product header the client validates.
func stubES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestIndexWork(t *testing.T) {
	var gotPath string
	var gotDoc models.Work
	client := stubES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotDoc))
		w.Write([]byte(`{"result":"created"}`))
	})

	work := &models.Work{
		ID:       7,
		ImgURL:   "https://img.example/7.jpg",
		Category: "haircut",
		Title:    "fade",
	}
	require.NoError(t, IndexWork(context.Background(), client, work))
	require.Equal(t, "PUT /works/_doc/7", gotPath)
	require.Equal(t, "fade", gotDoc.Title)
}

func TestDeleteWork(t *testing.T) {
	var paths []string
	client := stubES(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.Write([]byte(`{"result":"deleted"}`))
	})

	require.NoError(t, DeleteWork(context.Background(), client, 3, 4))
	require.Equal(t, []string{"DELETE /works/_doc/3", "DELETE /works/_doc/4"}, paths)
}

func TestSearchWorks(t *testing.T) {
	client := stubES(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/works/_search", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		match := body["query"].(map[string]any)["multi_match"].(map[string]any)
		require.Equal(t, "fade", match["query"])
		require.EqualValues(t, 10, body["from"])
		require.EqualValues(t, 5, body["size"])

		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": 2},
				"hits": []map[string]any{
					{"_source": models.Work{ID: 1, Category: "haircut", Title: "fade", Timestamp: time.Now()}},
					{"_source": models.Work{ID: 2, Category: "haircut", Title: "low fade", Timestamp: time.Now()}},
				},
			},
		})
	})

	total, works, err := SearchWorks(context.Background(), client, "fade", 10, 5)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, works, 2)
	require.Equal(t, "fade", works[0].Title)
}

func TestSearchWorksErrorStatus(t *testing.T) {
	client := stubES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})

	_, _, err := SearchWorks(context.Background(), client, "fade", 0, 10)
	require.Error(t, err)
}
