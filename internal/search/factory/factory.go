package factory

import (
	"fmt"

	"github.com/DeafMist/gift-radar/internal/config"
	"github.com/DeafMist/gift-radar/internal/search"
	"github.com/DeafMist/gift-radar/internal/search/serpapi"
)

// NewSearcher creates the configured product-search provider.
func NewSearcher(cfg config.Search) (search.ProductSearcher, error) {
	switch cfg.Provider {
	case "", "serpapi":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("serpapi api key is missing")
		}
		return serpapi.NewClient(serpapi.Options{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Country:  cfg.Country,
			Language: cfg.Language,
			Timeout:  cfg.Timeout,
		}), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}
