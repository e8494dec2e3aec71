package cmd

import (
	"time"

	"charm.land/log/v2"

	"github.com/Gaurav-Gosain/websearch/config"
	"github.com/Gaurav-Gosain/websearch/search"
)

// buildRegistry wires every provider behind the rate-limited retry wrapper
// and the page cache.
func buildRegistry(cfg config.Config, logger *log.Logger) (*search.Registry, error) {
	timeout := time.Duration(cfg.Fetch.Timeout)

	providers := []search.Provider{
		search.NewBing(search.BingOptions{BaseURL: cfg.Bing.BaseURL, Timeout: timeout}, logger),
		search.NewCommons(search.CommonsOptions{BaseURL: cfg.Commons.BaseURL, Timeout: timeout}, logger),
		search.NewGiphy(search.GiphyOptions{
			APIKey:  cfg.Giphy.APIKey,
			Rating:  cfg.Giphy.Rating,
			Timeout: timeout,
		}, logger),
	}

	retry := search.DefaultRetryOptions()
	retry.MaxAttempts = cfg.Fetch.MaxAttempts
	retry.RequestsPerSecond = cfg.Fetch.RequestsPerSecond

	wrapped := make([]search.Provider, 0, len(providers))
	for _, p := range providers {
		cached, err := search.Cached(search.Retrying(p, retry, logger), cfg.Fetch.CacheSize)
		if err != nil {
			return nil, err
		}
		wrapped = append(wrapped, cached)
	}
	return search.NewRegistry(wrapped...), nil
}
