package models

import (
	"encoding/json"
	"time"
)

// Offer is the purchasable listing matched for an idea.
type Offer struct {
	Title string
	Image string
	Price string
	URL   string
}

// SearchResult is the outcome of resolving one GiftIdea. Exactly one of Offer or Error is set.
type SearchResult struct {
	Name   string
	Reason string
	Offer  *Offer
	Error  string
}

// Resolved builds a successful result for idea.
func Resolved(idea GiftIdea, offer Offer) SearchResult {
	return SearchResult{Name: idea.Keyword, Reason: idea.Reason, Offer: &offer}
}

// Unresolved builds an item-level error result for idea.
func Unresolved(idea GiftIdea, msg string) SearchResult {
	return SearchResult{Name: idea.Keyword, Reason: idea.Reason, Error: msg}
}

// Failed reports whether the idea could not be resolved.
func (r SearchResult) Failed() bool {
	return r.Offer == nil
}

type resolvedWire struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Image  string `json:"image"`
	Price  string `json:"price"`
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

type failedWire struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// MarshalJSON flattens the result into the shape clients expect.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(failedWire{Name: r.Name, Error: r.Error})
	}
	return json.Marshal(resolvedWire{
		Name:   r.Name,
		Title:  r.Offer.Title,
		Image:  r.Offer.Image,
		Price:  r.Offer.Price,
		URL:    r.Offer.URL,
		Reason: r.Reason,
	})
}

// UnmarshalJSON reverses MarshalJSON; a non-empty "error" selects the failure branch.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		resolvedWire
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Error != "" {
		*r = SearchResult{Name: raw.Name, Reason: raw.Reason, Error: raw.Error}
		return nil
	}
	*r = SearchResult{
		Name:   raw.Name,
		Reason: raw.Reason,
		Offer: &Offer{
			Title: raw.Title,
			Image: raw.Image,
			Price: raw.Price,
			URL:   raw.URL,
		},
	}
	return nil
}

// ResultDocument is the archived form of a SearchResult stored in Elasticsearch.
type ResultDocument struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Scope     string    `json:"scope,omitempty"`
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	Title     string    `json:"title,omitempty"`
	Image     string    `json:"image,omitempty"`
	Price     string    `json:"price,omitempty"`
	URL       string    `json:"url,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewResultDocument converts r into its archived form.
func NewResultDocument(id, requestID, scope string, position int, r SearchResult, ts time.Time) ResultDocument {
	doc := ResultDocument{
		ID:        id,
		RequestID: requestID,
		Scope:     scope,
		Position:  position,
		Name:      r.Name,
		Reason:    r.Reason,
		Error:     r.Error,
		Timestamp: ts,
	}
	if r.Offer != nil {
		doc.Title = r.Offer.Title
		doc.Image = r.Offer.Image
		doc.Price = r.Offer.Price
		doc.URL = r.Offer.URL
	}
	return doc
}
