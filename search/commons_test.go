package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commonsPageJSON = `{
  "continue": {"gsroffset": 2, "continue": "gsroffset||"},
  "query": {
    "pages": {
      "200": {
        "pageid": 200, "title": "File:Second.jpg", "index": 2,
        "imageinfo": [{"url": "https://upload.example/2.jpg", "thumburl": "https://upload.example/t/2.jpg",
          "descriptionurl": "https://commons.example/wiki/File:Second.jpg", "width": 640, "height": 480, "mime": "image/jpeg"}]
      },
      "100": {
        "pageid": 100, "title": "File:First.jpg", "index": 1,
        "imageinfo": [{"url": "https://upload.example/1.jpg", "thumburl": "https://upload.example/t/1.jpg",
          "descriptionurl": "https://commons.example/wiki/File:First.jpg", "width": 800, "height": 600, "mime": "image/jpeg",
          "extmetadata": {
            "ObjectName": {"value": "The first"},
            "ImageDescription": {"value": "A <b>bold</b> photo, see <a href=\"/wiki/Panda\">pandas</a>."}
          }}]
      },
      "300": {"pageid": 300, "title": "File:Missing.jpg", "index": 3}
    }
  }
}`

func TestCommonsSearch(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(commonsPageJSON))
	}))
	defer srv.Close()

	c := NewCommons(CommonsOptions{BaseURL: srv.URL}, nil)
	coll, err := c.Search(context.Background(), PageRequest{
		SourceID: "commons",
		TargetID: "de-DE",
		Query:    "panda",
		Geo:      &GeoPoint{Latitude: 52.5, Longitude: 13.4},
		Limit:    2,
	})
	require.NoError(t, err)

	assert.Equal(t, "search", got.Get("generator"))
	assert.Equal(t, "6", got.Get("gsrnamespace"))
	assert.Equal(t, "0", got.Get("gsroffset"))
	assert.Equal(t, "2", got.Get("gsrlimit"))
	assert.Equal(t, "de", got.Get("uselang"))
	assert.Equal(t, "panda filetype:bitmap nearcoord:25km,52.5,13.4", got.Get("gsrsearch"))

	require.Len(t, coll.Results, 2)
	first := coll.Results[0]
	assert.Equal(t, "100", first.ID)
	assert.Equal(t, "The first", first.Title)
	assert.Contains(t, first.Description, "**bold**")
	assert.Equal(t, []string{"https://commons.example/wiki/Panda"}, first.Links)
	assert.Equal(t, 800, first.Width)

	assert.Equal(t, "200", coll.Results[1].ID)
	assert.Equal(t, "Second.jpg", coll.Results[1].Title)

	require.True(t, coll.HasMore())
	assert.Equal(t, "2", *coll.NextOffset)
	assert.Equal(t, &GeoPoint{Latitude: 52.5, Longitude: 13.4}, coll.Geo)
}

func TestCommonsQueryGIFs(t *testing.T) {
	assert.Equal(t, "cat filemime:image/gif", commonsQuery(PageRequest{Query: "cat", Kind: KindGIFs}))
}

func TestCommonsSearchLastPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"batchcomplete": ""}`))
	}))
	defer srv.Close()

	coll, err := NewCommons(CommonsOptions{BaseURL: srv.URL}, nil).Search(context.Background(), PageRequest{SourceID: "commons", Query: "zzz", Offset: "60"})
	require.NoError(t, err)
	assert.Empty(t, coll.Results)
	assert.False(t, coll.HasMore())
}

func TestCommonsSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": {"code": "badvalue", "info": "bad gsrlimit"}}`))
	}))
	defer srv.Close()

	_, err := NewCommons(CommonsOptions{BaseURL: srv.URL}, nil).Search(context.Background(), PageRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badvalue")
}
