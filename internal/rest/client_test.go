package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchPendingStrokes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/strokes/pending/batch-7", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"strokes":[{"id":"s1","type":"pen","points":[{"x":1,"y":2}]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1")
	strokes, err := c.FetchPendingStrokes(context.Background(), "batch-7")
	require.NoError(t, err)
	require.Len(t, strokes, 1)
	require.Equal(t, "s1", strokes[0].ID)
	require.Equal(t, 1.0, strokes[0].Points[0].X)
}

func TestFetchPendingStrokesRejectsEmptyID(t *testing.T) {
	t.Parallel()

	c := NewClient("http://localhost:0", "tok")
	_, err := c.FetchPendingStrokes(context.Background(), "")
	require.Error(t, err)
}

func TestSetTokenSwapsBearer(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"pieces":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "old")
	c.SetToken("new")
	_, err := c.Gallery(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer new", gotAuth)
}

func TestErrorStatusSurfaces(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, err := c.FetchPendingStrokes(context.Background(), "b1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestGallery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/gallery", r.URL.Path)
		w.Write([]byte(`{"pieces":[{"id":"p1","title":"Dunes"},{"id":"p2"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	pieces, err := c.Gallery(context.Background())
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	require.Equal(t, "Dunes", pieces[0].Title)
}
