package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DeafMist/gift-radar/internal/logger"
	"github.com/DeafMist/gift-radar/internal/metrics"
	"github.com/DeafMist/gift-radar/internal/models"
	"github.com/DeafMist/gift-radar/internal/search"
)

var resources = []search.Resource{
	search.ItemInfoTitle,
	search.OffersListingsPrice,
	search.ImagesPrimaryLarge,
}

// Resolver attaches a purchasable listing to each idea.
type Resolver struct {
	searcher search.ProductSearcher
	log      *slog.Logger
}

// New creates a Resolver backed by searcher.
func New(searcher search.ProductSearcher, log *slog.Logger) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{searcher: searcher, log: log}
}

// Resolve looks ideas up one at a time and returns exactly one result per idea, in order.
// A failed or empty lookup becomes an item-level error; it never stops the batch.
func (r *Resolver) Resolve(ctx context.Context, ideas []models.GiftIdea) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(ideas))
	for _, idea := range ideas {
		results = append(results, r.resolveOne(ctx, idea))
	}
	return results
}

func (r *Resolver) resolveOne(ctx context.Context, idea models.GiftIdea) models.SearchResult {
	if err := ctx.Err(); err != nil {
		metrics.RecordResolution(metrics.OutcomeError)
		return models.Unresolved(idea, err.Error())
	}

	resp, err := r.searcher.Search(ctx, &search.Request{
		Keyword:   strings.TrimSpace(idea.Keyword),
		ItemCount: 1,
		Resources: resources,
	})
	if err != nil {
		r.log.Warn("product search failed", slog.String("keyword", idea.Keyword), slog.Any("err", err))
		metrics.RecordResolution(metrics.OutcomeError)
		return models.Unresolved(idea, err.Error())
	}

	r.log.Debug("product search response", slog.String("keyword", idea.Keyword), slog.Any("response", resp))

	if resp == nil || len(resp.Items) == 0 {
		metrics.RecordResolution(metrics.OutcomeNoMatch)
		return models.Unresolved(idea, fmt.Sprintf("No items found for keyword: %s", idea.Keyword))
	}

	item := resp.Items[0]
	metrics.RecordResolution(metrics.OutcomeResolved)
	return models.Resolved(idea, models.Offer{
		Title: item.Title,
		Image: item.PrimaryImageURL,
		Price: item.DisplayPrice,
		URL:   item.DetailPageURL,
	})
}
