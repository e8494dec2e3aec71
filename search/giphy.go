package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/log/v2"
	"github.com/go-resty/resty/v2"
)

const (
	giphyDefaultBaseURL = "https://api.giphy.com"
	giphyDefaultLimit   = 25
	giphyCacheTimeout   = 10 * time.Minute
)

// GiphyOptions configures the Giphy provider. APIKey is required.
type GiphyOptions struct {
	BaseURL string
	APIKey  string
	Rating  string
	Timeout time.Duration
}

// Giphy queries the Giphy search API. It only serves GIF searches.
type Giphy struct {
	client *resty.Client
	opts   GiphyOptions
	logger *log.Logger
}

type giphyResponse struct {
	Data       []giphyGIF `json:"data"`
	Pagination struct {
		TotalCount int `json:"total_count"`
		Count      int `json:"count"`
		Offset     int `json:"offset"`
	} `json:"pagination"`
	Meta struct {
		Status     int    `json:"status"`
		Msg        string `json:"msg"`
		ResponseID string `json:"response_id"`
	} `json:"meta"`
}

type giphyGIF struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	AltText  string `json:"alt_text"`
	Username string `json:"username"`
	Images   struct {
		Original     giphyRendition `json:"original"`
		FixedWidth   giphyRendition `json:"fixed_width"`
		PreviewSmall giphyRendition `json:"fixed_width_small_still"`
	} `json:"images"`
}

type giphyRendition struct {
	URL    string `json:"url"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

func NewGiphy(opts GiphyOptions, logger *log.Logger) *Giphy {
	if opts.BaseURL == "" {
		opts.BaseURL = giphyDefaultBaseURL
	}
	if opts.Rating == "" {
		opts.Rating = "g"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout)

	return &Giphy{client: c, opts: opts, logger: logger}
}

func (g *Giphy) Name() string { return "giphy" }

func (g *Giphy) Search(ctx context.Context, req PageRequest) (*Collection, error) {
	if g.opts.APIKey == "" {
		return nil, fmt.Errorf("giphy: %w", ErrMissingAPIKey)
	}
	offset, err := parseOffset(req.Offset)
	if err != nil {
		return nil, err
	}
	limit := limitOr(req.Limit, giphyDefaultLimit)

	params := map[string]string{
		"api_key": g.opts.APIKey,
		"q":       req.Query,
		"limit":   strconv.Itoa(limit),
		"offset":  strconv.Itoa(offset),
		"rating":  g.opts.Rating,
	}
	if req.TargetID != "" {
		params["lang"] = strings.SplitN(req.TargetID, "-", 2)[0]
	}

	var body giphyResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get("/v1/gifs/search")
	if err != nil {
		return nil, fmt.Errorf("giphy request: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Source: g.Name(), Code: resp.StatusCode(), Err: fmt.Errorf("%s", resp.Status())}
	}

	results := make([]Result, 0, len(body.Data))
	for _, gif := range body.Data {
		results = append(results, gif.result())
	}

	var next *string
	consumed := body.Pagination.Offset + body.Pagination.Count
	if body.Pagination.Count > 0 && consumed < body.Pagination.TotalCount {
		next = Offset(strconv.Itoa(consumed))
	}
	if g.logger != nil {
		g.logger.Debug("Fetched page", "source", g.Name(), "query", req.Query, "offset", offset, "results", len(results))
	}

	req.Kind = KindGIFs
	return newCollection(req, results, next, body.Meta.ResponseID, giphyCacheTimeout), nil
}

func (g giphyGIF) result() Result {
	title := g.Title
	if title == "" {
		title = g.AltText
	}
	var desc string
	if g.Username != "" {
		desc = "by @" + g.Username
	}
	thumb := g.Images.FixedWidth.URL
	if thumb == "" {
		thumb = g.Images.PreviewSmall.URL
	}
	w, _ := strconv.Atoi(g.Images.Original.Width)
	h, _ := strconv.Atoi(g.Images.Original.Height)
	var links []string
	if g.URL != "" {
		links = []string{g.URL}
	}
	return Result{
		ID:           g.ID,
		Kind:         KindGIFs,
		Title:        title,
		Description:  desc,
		PageURL:      g.URL,
		ContentURL:   g.Images.Original.URL,
		ThumbnailURL: thumb,
		Width:        w,
		Height:       h,
		MIMEType:     "image/gif",
		Links:        links,
	}
}
