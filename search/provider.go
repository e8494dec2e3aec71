package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownSource = errors.New("unknown source")
	ErrMissingAPIKey = errors.New("missing API key")
	ErrEmptyQuery    = errors.New("empty query")
)

// PageRequest identifies one page of a search.
type PageRequest struct {
	SourceID string
	TargetID string // locale/market the results are requested for, e.g. "en-US"
	Query    string
	Geo      *GeoPoint
	Offset   string // empty for the first page
	Kind     Kind
	Limit    int
}

// Provider fetches pages from one upstream search source.
type Provider interface {
	Name() string
	Search(ctx context.Context, req PageRequest) (*Collection, error)
}

// Registry dispatches page requests to providers by source id.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers each provider under its Name.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Sources returns the registered source ids in sorted order.
func (r *Registry) Sources() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchPage routes req to the provider named by req.SourceID.
func (r *Registry) FetchPage(ctx context.Context, req PageRequest) (*Collection, error) {
	if req.Query == "" {
		return nil, ErrEmptyQuery
	}
	p, ok := r.providers[req.SourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, req.SourceID)
	}
	return p.Search(ctx, req)
}

// newCollection stamps the request parameters onto a fetched page.
func newCollection(req PageRequest, results []Result, next *string, queryID string, ttl time.Duration) *Collection {
	if queryID == "" {
		queryID = uuid.NewString()
	}
	return &Collection{
		SourceID:     req.SourceID,
		TargetID:     req.TargetID,
		Query:        req.Query,
		Kind:         req.Kind,
		Geo:          req.Geo,
		QueryID:      queryID,
		NextOffset:   next,
		Presentation: PresentationMedia,
		CacheTimeout: ttl,
		Results:      results,
	}
}

// parseOffset decodes a numeric cursor; the empty cursor is the first page.
func parseOffset(offset string) (int, error) {
	if offset == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(offset)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid offset %q", offset)
	}
	return n, nil
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
