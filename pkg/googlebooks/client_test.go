package googlebooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClientWithOptions(ClientOptions{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	})

	return srv, client
}

func TestClient_Search(t *testing.T) {
	t.Run("maps volumes to books", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/volumes", r.URL.Path)
			assert.Equal(t, "best mystery thriller", r.URL.Query().Get("q"))
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			assert.Equal(t, "6", r.URL.Query().Get("maxResults"))
			assert.Equal(t, "relevance", r.URL.Query().Get("orderBy"))

			resp := map[string]any{
				"totalItems": 1,
				"items": []map[string]any{
					{
						"id": "abc123",
						"volumeInfo": map[string]any{
							"title":         "Gone Girl",
							"authors":       []string{"Gillian Flynn"},
							"description":   "A thriller.",
							"pageCount":     432,
							"publishedDate": "2012",
							"categories":    []string{"Thriller"},
							"imageLinks": map[string]any{
								"thumbnail": "http://books.google.com/cover.jpg",
							},
							"industryIdentifiers": []map[string]any{
								{"type": "ISBN_10", "identifier": "030758836X"},
								{"type": "ISBN_13", "identifier": "9780307588364"},
							},
						},
					},
				},
			}

			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		})

		books, err := client.Search(context.Background(), "best mystery thriller", 6)
		require.NoError(t, err)
		require.Len(t, books, 1)

		b := books[0]
		assert.Equal(t, "abc123", b.BookID)
		assert.Equal(t, "Gone Girl", b.Title)
		require.NotNil(t, b.Author)
		assert.Equal(t, "Gillian Flynn", *b.Author)
		require.NotNil(t, b.Genre)
		assert.Equal(t, "Thriller", *b.Genre)
		require.NotNil(t, b.CoverURL)
		assert.Equal(t, "https://books.google.com/cover.jpg", *b.CoverURL, "http cover links must be upgraded to https")
		require.NotNil(t, b.ISBN)
		assert.Equal(t, "9780307588364", *b.ISBN, "ISBN_13 preferred over ISBN_10")
		require.NotNil(t, b.PageCount)
		assert.Equal(t, 432, *b.PageCount)
	})

	t.Run("missing fields map to nil and Untitled", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			resp := map[string]any{
				"totalItems": 1,
				"items": []map[string]any{
					{"id": "bare", "volumeInfo": map[string]any{}},
				},
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		})

		books, err := client.Search(context.Background(), "anything", 6)
		require.NoError(t, err)
		require.Len(t, books, 1)

		b := books[0]
		assert.Equal(t, "Untitled", b.Title)
		assert.Nil(t, b.Author)
		assert.Nil(t, b.Genre)
		assert.Nil(t, b.CoverURL)
		assert.Nil(t, b.ISBN)
	})

	t.Run("empty result set yields empty slice", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"totalItems": 0}))
		})

		books, err := client.Search(context.Background(), "no such book", 6)
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("non-200 status returns error", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.Search(context.Background(), "quota exceeded", 6)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})
}
