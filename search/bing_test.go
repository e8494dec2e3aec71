package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bingTile(t *testing.T, m bingMeta) string {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	return fmt.Sprintf(`<div class="imgpt"><a class="iusc" href="#" m="%s"><img src="%s"></a></div>`, html.EscapeString(string(raw)), m.ThumbURL)
}

func TestBingSearch(t *testing.T) {
	var gotQuery map[string]string
	page := `<html><body>` +
		bingTile(t, bingMeta{MediaID: "m1", MediaURL: "https://img.example/a.jpg", ThumbURL: "https://th.example/a", PageURL: "https://site.example/a", Title: "A"}) +
		bingTile(t, bingMeta{MD5: "d41d8", MediaURL: "https://img.example/b.gif", Title: "B"}) +
		`<a class="iusc" m="not json"></a>` +
		`</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/async", r.URL.Path)
		gotQuery = map[string]string{
			"q":     r.URL.Query().Get("q"),
			"first": r.URL.Query().Get("first"),
			"count": r.URL.Query().Get("count"),
			"qft":   r.URL.Query().Get("qft"),
			"mkt":   r.URL.Query().Get("mkt"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	b := NewBing(BingOptions{BaseURL: srv.URL}, nil)
	coll, err := b.Search(context.Background(), PageRequest{
		SourceID: "bing",
		TargetID: "en-US",
		Query:    "red panda",
		Offset:   "10",
		Kind:     KindGIFs,
		Limit:    20,
	})
	require.NoError(t, err)

	assert.Equal(t, "red panda", gotQuery["q"])
	assert.Equal(t, "10", gotQuery["first"])
	assert.Equal(t, "20", gotQuery["count"])
	assert.Equal(t, "+filterui:photo-animatedgif", gotQuery["qft"])
	assert.Equal(t, "en-US", gotQuery["mkt"])

	require.Len(t, coll.Results, 2)
	assert.Equal(t, "m1", coll.Results[0].ID)
	assert.Equal(t, "image/jpeg", coll.Results[0].MIMEType)
	assert.Equal(t, []string{"https://site.example/a"}, coll.Results[0].Links)
	assert.Equal(t, "d41d8", coll.Results[1].ID)
	assert.Equal(t, "image/gif", coll.Results[1].MIMEType)
	assert.Equal(t, KindGIFs, coll.Results[1].Kind)

	// Three tiles were seen, including the malformed one.
	require.NotNil(t, coll.NextOffset)
	assert.Equal(t, "13", *coll.NextOffset)
	assert.Equal(t, "bing", coll.SourceID)
	assert.Equal(t, "en-US", coll.TargetID)
	assert.NotEmpty(t, coll.QueryID)
	assert.Equal(t, bingCacheTimeout, coll.CacheTimeout)
}

func TestBingSearchLastPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>no more</p></body></html>`))
	}))
	defer srv.Close()

	coll, err := NewBing(BingOptions{BaseURL: srv.URL}, nil).Search(context.Background(), PageRequest{SourceID: "bing", Query: "x"})
	require.NoError(t, err)
	assert.Empty(t, coll.Results)
	assert.False(t, coll.HasMore())
}

func TestBingSearchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewBing(BingOptions{BaseURL: srv.URL}, nil).Search(context.Background(), PageRequest{SourceID: "bing", Query: "x"})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.True(t, se.Temporary())
}

func TestBingSearchInvalidOffset(t *testing.T) {
	_, err := NewBing(BingOptions{BaseURL: "http://unused.invalid"}, nil).Search(context.Background(), PageRequest{Query: "x", Offset: "abc"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid offset"))
}
