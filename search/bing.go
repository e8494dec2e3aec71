package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"charm.land/log/v2"
	"github.com/gocolly/colly/v2"
)

const (
	bingDefaultBaseURL = "https://www.bing.com"
	bingDefaultLimit   = 35
	bingCacheTimeout   = 5 * time.Minute
	defaultUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
)

// BingOptions configures the Bing image scraper.
type BingOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Bing scrapes the HTML fragments served by Bing's async image search.
type Bing struct {
	opts   BingOptions
	logger *log.Logger
}

// bingMeta is the JSON blob carried in the "m" attribute of each result tile.
type bingMeta struct {
	MediaURL string `json:"murl"`
	ThumbURL string `json:"turl"`
	PageURL  string `json:"purl"`
	Title    string `json:"t"`
	Desc     string `json:"desc"`
	MediaID  string `json:"mid"`
	MD5      string `json:"md5"`
}

func NewBing(opts BingOptions, logger *log.Logger) *Bing {
	if opts.BaseURL == "" {
		opts.BaseURL = bingDefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Bing{opts: opts, logger: logger}
}

func (b *Bing) Name() string { return "bing" }

// Search fetches one page of image tiles. The cursor is the tile offset.
func (b *Bing) Search(ctx context.Context, req PageRequest) (*Collection, error) {
	offset, err := parseOffset(req.Offset)
	if err != nil {
		return nil, err
	}
	limit := limitOr(req.Limit, bingDefaultLimit)

	q := url.Values{}
	q.Set("q", req.Query)
	q.Set("first", strconv.Itoa(offset))
	q.Set("count", strconv.Itoa(limit))
	q.Set("mmasync", "1")
	if req.Kind == KindGIFs {
		q.Set("qft", "+filterui:photo-animatedgif")
	}
	if req.TargetID != "" {
		q.Set("mkt", req.TargetID)
	}
	pageURL := strings.TrimRight(b.opts.BaseURL, "/") + "/images/async?" + q.Encode()

	c := colly.NewCollector(colly.UserAgent(b.opts.UserAgent))
	c.SetRequestTimeout(b.opts.Timeout)

	var (
		results   []Result
		scrapeErr error
		tiles     int
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnHTML("a.iusc", func(e *colly.HTMLElement) {
		tiles++
		var m bingMeta
		if err := json.Unmarshal([]byte(e.Attr("m")), &m); err != nil || m.MediaURL == "" {
			if b.logger != nil {
				b.logger.Debug("Skipping malformed tile", "source", b.Name(), "err", err)
			}
			return
		}
		results = append(results, m.result(req.Kind))
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = &StatusError{Source: b.Name(), Code: r.StatusCode, Err: err}
	})

	if err := c.Visit(pageURL); err != nil && scrapeErr == nil {
		scrapeErr = fmt.Errorf("bing visit: %w", err)
	}
	c.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if scrapeErr != nil {
		return nil, scrapeErr
	}

	var next *string
	if tiles > 0 {
		next = Offset(strconv.Itoa(offset + tiles))
	}
	return newCollection(req, results, next, "", bingCacheTimeout), nil
}

func (m bingMeta) result(kind Kind) Result {
	id := m.MediaID
	if id == "" {
		id = m.MD5
	}
	if id == "" {
		id = m.MediaURL
	}
	if kind == "" {
		kind = KindImages
	}
	var links []string
	if m.PageURL != "" {
		links = []string{m.PageURL}
	}
	return Result{
		ID:           id,
		Kind:         kind,
		Title:        m.Title,
		Description:  m.Desc,
		PageURL:      m.PageURL,
		ContentURL:   m.MediaURL,
		ThumbnailURL: m.ThumbURL,
		MIMEType:     mimeFromURL(m.MediaURL),
		Links:        links,
	}
}

func mimeFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	path := strings.ToLower(u.Path)
	switch {
	case strings.HasSuffix(path, ".gif"):
		return "image/gif"
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return "image/jpeg"
	}
	return ""
}
