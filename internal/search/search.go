package search

import (
	"context"
	"fmt"
)

// ProductSearcher finds purchasable listings for a keyword.
type ProductSearcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Resource names a listing attribute the caller wants populated.
type Resource string

const (
	ItemInfoTitle       Resource = "ItemInfo.Title"
	ImagesPrimaryLarge  Resource = "Images.Primary.Large"
	OffersListingsPrice Resource = "Offers.Listings.Price"
)

// Request is a keyword lookup.
type Request struct {
	Keyword   string
	ItemCount int
	Resources []Resource
}

// Wants reports whether r was requested. An empty resource list requests everything.
func (req *Request) Wants(r Resource) bool {
	if len(req.Resources) == 0 {
		return true
	}
	for _, have := range req.Resources {
		if have == r {
			return true
		}
	}
	return false
}

// Response holds matched items, best match first.
type Response struct {
	Items []Item
}

// Item is one matched listing.
type Item struct {
	Title           string
	PrimaryImageURL string
	DisplayPrice    string
	DetailPageURL   string
}

// ProviderError is a fault reported by the search provider (auth, quota, bad query).
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s api error: %s", e.Provider, e.Message)
}
