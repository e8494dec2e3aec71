package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const giphyPageJSON = `{
  "data": [
    {"id": "g1", "url": "https://giphy.example/gifs/g1", "title": "Dancing cat", "username": "cats",
     "images": {"original": {"url": "https://media.example/g1.gif", "width": "480", "height": "270"},
                "fixed_width": {"url": "https://media.example/g1-200.gif"}}},
    {"id": "g2", "url": "https://giphy.example/gifs/g2", "alt_text": "Sleeping cat",
     "images": {"original": {"url": "https://media.example/g2.gif", "width": "320", "height": "240"},
                "fixed_width_small_still": {"url": "https://media.example/g2-still.gif"}}}
  ],
  "pagination": {"total_count": 5, "count": 2, "offset": 2},
  "meta": {"status": 200, "msg": "OK", "response_id": "resp-42"}
}`

func TestGiphySearch(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/gifs/search", r.URL.Path)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(giphyPageJSON))
	}))
	defer srv.Close()

	g := NewGiphy(GiphyOptions{BaseURL: srv.URL, APIKey: "k"}, nil)
	coll, err := g.Search(context.Background(), PageRequest{SourceID: "giphy", TargetID: "fr-FR", Query: "cat", Offset: "2", Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, "k", got.Get("api_key"))
	assert.Equal(t, "cat", got.Get("q"))
	assert.Equal(t, "2", got.Get("offset"))
	assert.Equal(t, "2", got.Get("limit"))
	assert.Equal(t, "g", got.Get("rating"))
	assert.Equal(t, "fr", got.Get("lang"))

	require.Len(t, coll.Results, 2)
	assert.Equal(t, "Dancing cat", coll.Results[0].Title)
	assert.Equal(t, "by @cats", coll.Results[0].Description)
	assert.Equal(t, 480, coll.Results[0].Width)
	assert.Equal(t, "https://media.example/g1-200.gif", coll.Results[0].ThumbnailURL)
	assert.Equal(t, "Sleeping cat", coll.Results[1].Title)
	assert.Equal(t, "https://media.example/g2-still.gif", coll.Results[1].ThumbnailURL)

	assert.Equal(t, KindGIFs, coll.Kind)
	assert.Equal(t, "resp-42", coll.QueryID)
	require.True(t, coll.HasMore())
	assert.Equal(t, "4", *coll.NextOffset)
}

func TestGiphySearchExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id": "g5", "images": {"original": {"url": "u"}}}], "pagination": {"total_count": 5, "count": 1, "offset": 4}}`))
	}))
	defer srv.Close()

	coll, err := NewGiphy(GiphyOptions{BaseURL: srv.URL, APIKey: "k"}, nil).Search(context.Background(), PageRequest{Query: "cat", Offset: "4"})
	require.NoError(t, err)
	assert.Len(t, coll.Results, 1)
	assert.False(t, coll.HasMore())
}

func TestGiphyMissingAPIKey(t *testing.T) {
	_, err := NewGiphy(GiphyOptions{}, nil).Search(context.Background(), PageRequest{Query: "cat"})
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestGiphyRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGiphy(GiphyOptions{BaseURL: srv.URL, APIKey: "k"}, nil).Search(context.Background(), PageRequest{Query: "cat"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, retryable(err))
}
