// Package gallery keeps a paginated, deduplicated list of search results in
// step with a renderer.
//
// A Controller owns the current collection, turns every change into an
// EditScript and delivers the scripts to an attached Renderer in the order
// they were produced. It is driven from a single goroutine (the bubbletea
// update loop); page fetches run as tea.Cmds and report back through
// PageLoadedMsg.
package gallery

import (
	"context"
	"io"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"

	"github.com/Gaurav-Gosain/websearch/search"
)

const defaultPageSize = 30

// Fetcher loads one page of results.
type Fetcher interface {
	FetchPage(ctx context.Context, req search.PageRequest) (*search.Collection, error)
}

// EditScript is one reconciliation pass over the entry list.
type EditScript struct {
	Script[Entry]

	// Count is the number of entries after the script is applied.
	Count int
	// HasMore reports whether another page can be loaded.
	HasMore bool
	// FirstTime is set on the first script a controller produces.
	FirstTime bool
}

// Renderer receives edit scripts in the order they were produced.
type Renderer interface {
	ApplyEditScript(EditScript)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(EditScript)

func (f RendererFunc) ApplyEditScript(s EditScript) { f(s) }

// PageLoadedMsg carries the outcome of a load-more request.
type PageLoadedMsg struct {
	token uint64
	Page  *search.Collection
	Err   error
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithPageSize sets the page size asked for on load more.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithContext sets the parent of every fetch context.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

type Controller struct {
	fetcher  Fetcher
	logger   *log.Logger
	pageSize int
	ctx      context.Context

	store    Store
	guard    Guard
	entries  []Entry
	started  bool
	queue    []EditScript
	renderer Renderer
}

func New(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		pageSize: defaultPageSize,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// SetResults makes coll the basis of the list. A collection equal to the
// current one is ignored and SetResults returns false. Otherwise any running
// load more is abandoned and the list is reconciled against coll.
func (c *Controller) SetResults(coll *search.Collection) bool {
	if !c.store.Set(coll) {
		return false
	}
	c.guard.Reset()
	c.reconcile()
	return true
}

// LoadMore requests the next page. It returns nil when a request is already
// running or the collection has no cursor.
func (c *Controller) LoadMore() tea.Cmd {
	if c.guard.State() != Idle {
		return nil
	}
	req, ok := c.store.Current().NextPageRequest(c.pageSize)
	if !ok {
		return nil
	}
	ctx, token, ok := c.guard.Begin(c.ctx)
	if !ok {
		return nil
	}
	c.logger.Debug("Loading more", "source", req.SourceID, "query", req.Query, "offset", req.Offset)

	fetcher := c.fetcher
	return func() tea.Msg {
		page, err := fetcher.FetchPage(ctx, req)
		return PageLoadedMsg{token: token, Page: page, Err: err}
	}
}

// Update handles PageLoadedMsg and reports whether the list changed. Other
// messages are ignored.
func (c *Controller) Update(msg tea.Msg) bool {
	m, ok := msg.(PageLoadedMsg)
	if !ok {
		return false
	}
	if !c.guard.Finish(m.token) {
		c.logger.Debug("Discarding stale page", "token", m.token)
		return false
	}
	if m.Err != nil {
		c.logger.Warn("Load more failed", "err", m.Err)
		return false
	}
	if m.Page == nil {
		return false
	}

	c.store.Append(m.Page)
	c.reconcile()
	return true
}

// Attach registers r and delivers every queued script to it.
func (c *Controller) Attach(r Renderer) {
	c.renderer = r
	c.flush()
}

// Detach stops delivery; scripts queue up until the next Attach.
func (c *Controller) Detach() { c.renderer = nil }

// Refresh reconciles the list against itself, which yields an update for
// every entry. Used when presentation changes.
func (c *Controller) Refresh() {
	if c.store.Current() == nil {
		return
	}
	c.reconcile()
}

// Cancel abandons a running load more without touching the list.
func (c *Controller) Cancel() { c.guard.Reset() }

func (c *Controller) Entries() []Entry { return c.entries }

func (c *Controller) Collection() *search.Collection { return c.store.Current() }

func (c *Controller) HasMore() bool { return c.store.Current().HasMore() }

func (c *Controller) Loading() bool { return c.guard.State() == Loading }

// Pending returns the number of scripts waiting for a renderer.
func (c *Controller) Pending() int { return len(c.queue) }

// Results returns the deduplicated results in display order.
func (c *Controller) Results() []search.Result {
	out := make([]search.Result, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Result
	}
	return out
}

func (c *Controller) reconcile() {
	coll := c.store.Current()
	next := Entries(coll)
	script := EditScript{
		Script:    Merge(c.entries, next, entryID),
		Count:     len(next),
		HasMore:   coll.HasMore(),
		FirstTime: !c.started,
	}
	c.started = true
	c.entries = next

	c.logger.Debug("Reconciled",
		"entries", script.Count,
		"deleted", len(script.Deletions),
		"inserted", len(script.Insertions),
		"updated", len(script.Updates),
	)

	c.queue = append(c.queue, script)
	c.flush()
}

func (c *Controller) flush() {
	for c.renderer != nil && len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.renderer.ApplyEditScript(next)
	}
}
