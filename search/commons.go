package search

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"charm.land/log/v2"
	"github.com/go-resty/resty/v2"
)

const (
	commonsDefaultBaseURL = "https://commons.wikimedia.org"
	commonsDefaultLimit   = 30
	commonsThumbWidth     = 320
	commonsCacheTimeout   = time.Hour
	commonsGeoRadius      = "25km"
)

// CommonsOptions configures the Wikimedia Commons provider.
type CommonsOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Commons searches the File: namespace of Wikimedia Commons through the
// MediaWiki action API.
type Commons struct {
	client *resty.Client
	logger *log.Logger
}

type commonsResponse struct {
	Continue struct {
		Offset *int `json:"gsroffset"`
	} `json:"continue"`
	Query struct {
		Pages map[string]commonsPage `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type commonsPage struct {
	PageID    int                `json:"pageid"`
	Title     string             `json:"title"`
	Index     int                `json:"index"`
	ImageInfo []commonsImageInfo `json:"imageinfo"`
}

type commonsImageInfo struct {
	URL            string `json:"url"`
	ThumbURL       string `json:"thumburl"`
	DescriptionURL string `json:"descriptionurl"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	MIME           string `json:"mime"`
	ExtMetadata    map[string]struct {
		Value any `json:"value"`
	} `json:"extmetadata"`
}

func NewCommons(opts CommonsOptions, logger *log.Logger) *Commons {
	if opts.BaseURL == "" {
		opts.BaseURL = commonsDefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "websearch/1.0 (https://github.com/Gaurav-Gosain/websearch)"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent).
		SetTimeout(opts.Timeout)

	return &Commons{client: c, logger: logger}
}

func (c *Commons) Name() string { return "commons" }

// Search runs a CirrusSearch query over files. The cursor is gsroffset.
func (c *Commons) Search(ctx context.Context, req PageRequest) (*Collection, error) {
	offset, err := parseOffset(req.Offset)
	if err != nil {
		return nil, err
	}
	limit := limitOr(req.Limit, commonsDefaultLimit)

	params := map[string]string{
		"action":       "query",
		"format":       "json",
		"generator":    "search",
		"gsrsearch":    commonsQuery(req),
		"gsrnamespace": "6",
		"gsrlimit":     strconv.Itoa(limit),
		"gsroffset":    strconv.Itoa(offset),
		"prop":         "imageinfo",
		"iiprop":       "url|size|mime|extmetadata",
		"iiurlwidth":   strconv.Itoa(commonsThumbWidth),
	}
	params["iiextmetadatafilter"] = "ImageDescription|ObjectName"
	if req.TargetID != "" {
		params["uselang"] = strings.SplitN(req.TargetID, "-", 2)[0]
	}

	var body commonsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get("/w/api.php")
	if err != nil {
		return nil, fmt.Errorf("commons request: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Source: c.Name(), Code: resp.StatusCode(), Err: fmt.Errorf("%s", resp.Status())}
	}
	if body.Error != nil {
		return nil, fmt.Errorf("commons api error %s: %s", body.Error.Code, body.Error.Info)
	}

	pages := make([]commonsPage, 0, len(body.Query.Pages))
	for _, p := range body.Query.Pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	results := make([]Result, 0, len(pages))
	for _, p := range pages {
		if len(p.ImageInfo) == 0 {
			continue
		}
		results = append(results, p.result(req.Kind))
	}

	var next *string
	if body.Continue.Offset != nil {
		next = Offset(strconv.Itoa(*body.Continue.Offset))
	}
	if c.logger != nil {
		c.logger.Debug("Fetched page", "source", c.Name(), "query", req.Query, "offset", offset, "results", len(results))
	}
	return newCollection(req, results, next, "", commonsCacheTimeout), nil
}

func commonsQuery(req PageRequest) string {
	q := req.Query
	if req.Kind == KindGIFs {
		q += " filemime:image/gif"
	} else {
		q += " filetype:bitmap"
	}
	if req.Geo != nil {
		q += fmt.Sprintf(" nearcoord:%s,%g,%g", commonsGeoRadius, req.Geo.Latitude, req.Geo.Longitude)
	}
	return q
}

func (p commonsPage) result(kind Kind) Result {
	info := p.ImageInfo[0]
	title := strings.TrimPrefix(p.Title, "File:")
	if name, ok := info.ExtMetadata["ObjectName"].Value.(string); ok && name != "" {
		title = name
	}
	var desc string
	var links []string
	if html, ok := info.ExtMetadata["ImageDescription"].Value.(string); ok {
		desc, links = describe(html, info.DescriptionURL)
	}
	if kind == "" {
		kind = KindImages
	}
	return Result{
		ID:           strconv.Itoa(p.PageID),
		Kind:         kind,
		Title:        title,
		Description:  desc,
		PageURL:      info.DescriptionURL,
		ContentURL:   info.URL,
		ThumbnailURL: info.ThumbURL,
		Width:        info.Width,
		Height:       info.Height,
		MIMEType:     info.MIME,
		Links:        links,
	}
}
