package search

import (
	"slices"
	"time"
)

// Kind is the media kind a search targets.
type Kind string

const (
	KindImages Kind = "images"
	KindGIFs   Kind = "gifs"
)

// Presentation hints how a collection wants to be laid out.
type Presentation string

const (
	PresentationMedia Presentation = "media" // grid of thumbnails
	PresentationList  Presentation = "list"  // one result per row
)

// GeoPoint is an optional location hint forwarded to sources that support it.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Result is a single search hit. It is never modified after a provider
// returns it.
type Result struct {
	ID           string   `json:"id"`
	Kind         Kind     `json:"kind"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"` // markdown
	PageURL      string   `json:"page_url,omitempty"`
	ContentURL   string   `json:"content_url"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	MIMEType     string   `json:"mime_type,omitempty"`
	Links        []string `json:"links,omitempty"`
}

// Equal reports whether two results are identical in every field.
func (r Result) Equal(o Result) bool {
	return r.ID == o.ID &&
		r.Kind == o.Kind &&
		r.Title == o.Title &&
		r.Description == o.Description &&
		r.PageURL == o.PageURL &&
		r.ContentURL == o.ContentURL &&
		r.ThumbnailURL == o.ThumbnailURL &&
		r.Width == o.Width &&
		r.Height == o.Height &&
		r.MIMEType == o.MIMEType &&
		slices.Equal(r.Links, o.Links)
}

// Collection is one page (or several merged pages) of results together with
// everything needed to request the page after it.
type Collection struct {
	SourceID     string
	TargetID     string
	Query        string
	Kind         Kind
	Geo          *GeoPoint
	QueryID      string
	NextOffset   *string
	Presentation Presentation
	CacheTimeout time.Duration
	Results      []Result
}

// HasMore reports whether another page can be requested.
func (c *Collection) HasMore() bool {
	return c != nil && c.NextOffset != nil
}

// Equal reports value equality over every field, including results.
func (c *Collection) Equal(o *Collection) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.SourceID != o.SourceID ||
		c.TargetID != o.TargetID ||
		c.Query != o.Query ||
		c.Kind != o.Kind ||
		c.QueryID != o.QueryID ||
		c.Presentation != o.Presentation ||
		c.CacheTimeout != o.CacheTimeout {
		return false
	}
	if !equalGeo(c.Geo, o.Geo) || !equalOffset(c.NextOffset, o.NextOffset) {
		return false
	}
	return slices.EqualFunc(c.Results, o.Results, Result.Equal)
}

// Append returns a new collection holding c's results followed by next's.
// The cursor and query id come from next; every other fetch parameter is
// kept from c. Duplicates across pages are left in place.
func (c *Collection) Append(next *Collection) *Collection {
	merged := *c
	merged.Results = make([]Result, 0, len(c.Results)+len(next.Results))
	merged.Results = append(merged.Results, c.Results...)
	merged.Results = append(merged.Results, next.Results...)
	merged.QueryID = next.QueryID
	merged.NextOffset = next.NextOffset
	return &merged
}

// NextPageRequest builds the request for the page after c. ok is false when
// there is no cursor.
func (c *Collection) NextPageRequest(limit int) (req PageRequest, ok bool) {
	if !c.HasMore() {
		return PageRequest{}, false
	}
	return PageRequest{
		SourceID: c.SourceID,
		TargetID: c.TargetID,
		Query:    c.Query,
		Geo:      c.Geo,
		Offset:   *c.NextOffset,
		Kind:     c.Kind,
		Limit:    limit,
	}, true
}

func equalGeo(a, b *GeoPoint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalOffset(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Offset is a helper for building cursors.
func Offset(s string) *string {
	return &s
}
