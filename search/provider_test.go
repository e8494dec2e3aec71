package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider returns queued responses in order and records requests.
type stubProvider struct {
	name string

	mu       sync.Mutex
	requests []PageRequest
	errs     []error
	ttl      time.Duration
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(_ context.Context, req PageRequest) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	res := []Result{{ID: fmt.Sprintf("%s-%d", req.Query, len(s.requests)), ContentURL: "u"}}
	return newCollection(req, res, nil, "", s.ttl), nil
}

func (s *stubProvider) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func TestRegistryFetchPage(t *testing.T) {
	a := &stubProvider{name: "alpha"}
	b := &stubProvider{name: "beta"}
	r := NewRegistry(b, a)

	assert.Equal(t, []string{"alpha", "beta"}, r.Sources())

	coll, err := r.FetchPage(context.Background(), PageRequest{SourceID: "beta", Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "beta", coll.SourceID)
	assert.Equal(t, 0, a.calls())
	assert.Equal(t, 1, b.calls())

	_, err = r.FetchPage(context.Background(), PageRequest{SourceID: "gamma", Query: "q"})
	assert.True(t, errors.Is(err, ErrUnknownSource))

	_, err = r.FetchPage(context.Background(), PageRequest{SourceID: "alpha"})
	assert.True(t, errors.Is(err, ErrEmptyQuery))
}

func TestParseOffset(t *testing.T) {
	n, err := parseOffset("")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = parseOffset("35")
	require.NoError(t, err)
	assert.Equal(t, 35, n)

	_, err = parseOffset("-1")
	assert.Error(t, err)
}

func TestRetryingRetriesTemporaryErrors(t *testing.T) {
	stub := &stubProvider{name: "s", errs: []error{
		&StatusError{Source: "s", Code: 503, Err: errors.New("unavailable")},
		&StatusError{Source: "s", Code: 0, Err: errors.New("connection reset")},
	}}
	p := Retrying(stub, RetryOptions{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}, nil)

	coll, err := p.Search(context.Background(), PageRequest{Query: "q"})
	require.NoError(t, err)
	assert.NotNil(t, coll)
	assert.Equal(t, 3, stub.calls())
	assert.Equal(t, "s", p.Name())
}

func TestRetryingGivesUp(t *testing.T) {
	stub := &stubProvider{name: "s", errs: []error{
		&StatusError{Source: "s", Code: 500, Err: errors.New("a")},
		&StatusError{Source: "s", Code: 500, Err: errors.New("b")},
	}}
	p := Retrying(stub, RetryOptions{MaxAttempts: 2, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}, nil)

	_, err := p.Search(context.Background(), PageRequest{Query: "q"})
	require.Error(t, err)
	assert.Equal(t, 2, stub.calls())
}

func TestRetryingDoesNotRetryPermanentErrors(t *testing.T) {
	stub := &stubProvider{name: "s", errs: []error{
		&StatusError{Source: "s", Code: 404, Err: errors.New("not found")},
	}}
	p := Retrying(stub, RetryOptions{MaxAttempts: 5, InitialInterval: time.Millisecond}, nil)

	_, err := p.Search(context.Background(), PageRequest{Query: "q"})
	require.Error(t, err)
	assert.Equal(t, 1, stub.calls())

	stub = &stubProvider{name: "s", errs: []error{ErrMissingAPIKey}}
	p = Retrying(stub, RetryOptions{MaxAttempts: 5, InitialInterval: time.Millisecond}, nil)
	_, err = p.Search(context.Background(), PageRequest{Query: "q"})
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Equal(t, 1, stub.calls())
}

func TestRetryingHonoursCancellation(t *testing.T) {
	stub := &stubProvider{name: "s"}
	p := Retrying(stub, RetryOptions{MaxAttempts: 1, RequestsPerSecond: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Search(ctx, PageRequest{Query: "q"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stub.calls())
}

func TestCachedServesUntilExpiry(t *testing.T) {
	stub := &stubProvider{name: "s", ttl: time.Minute}
	p, err := Cached(stub, 8)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p.(*cached).now = func() time.Time { return now }

	req := PageRequest{SourceID: "s", Query: "q"}
	first, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, stub.calls())

	other := req
	other.Offset = "10"
	_, err = p.Search(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls())

	now = now.Add(2 * time.Minute)
	third, err := p.Search(context.Background(), req)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 3, stub.calls())
}

func TestCachedSkipsPagesWithoutTimeout(t *testing.T) {
	stub := &stubProvider{name: "s"}
	p, err := Cached(stub, 8)
	require.NoError(t, err)

	req := PageRequest{SourceID: "s", Query: "q"}
	_, _ = p.Search(context.Background(), req)
	_, _ = p.Search(context.Background(), req)
	assert.Equal(t, 2, stub.calls())
}

func TestCachedRejectsBadSize(t *testing.T) {
	_, err := Cached(&stubProvider{name: "s"}, 0)
	assert.Error(t, err)
}
