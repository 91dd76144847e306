package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer asset-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/accounts/acc-1/images/v2/direct_upload":
			w.Write([]byte(`{"result":{"id":"img-1","uploadURL":"https://upload.example/img-1"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/accounts/acc-1/images/v1/img-1":
			w.Write([]byte(`{"result":{"id":"img-1","variants":["https://cdn.example/img-1/public"]}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "acc-1", "asset-token"), srv
}

func TestStart(t *testing.T) {
	client, _ := newTestHost(t)

	img, err := client.Start(context.Background(), "img-1")
	require.NoError(t, err)
	require.Equal(t, "img-1", img.ID)
	require.Equal(t, "https://upload.example/img-1", img.URL)
}

func TestFinalize(t *testing.T) {
	client, _ := newTestHost(t)

	img, err := client.Finalize(context.Background(), "img-1")
	require.NoError(t, err)
	require.Equal(t, "img-1", img.ID)
	require.Equal(t, "https://cdn.example/img-1/public", img.URL)
}

func TestUnexpectedStatus(t *testing.T) {
	client, _ := newTestHost(t)

	_, err := client.Finalize(context.Background(), "no-such-image")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
}
