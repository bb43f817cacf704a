package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/gift-radar/internal/models"
	"github.com/DeafMist/gift-radar/internal/resolver"
	"github.com/DeafMist/gift-radar/internal/search"
)

type stubSearcher struct {
	byKeyword map[string]*search.Response
	errs      map[string]error
	requests  []search.Request
}

func (s *stubSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	s.requests = append(s.requests, *req)
	if err, ok := s.errs[req.Keyword]; ok {
		return nil, err
	}
	if resp, ok := s.byKeyword[req.Keyword]; ok {
		return resp, nil
	}
	return &search.Response{}, nil
}

func item(title string) search.Item {
	return search.Item{
		Title:           title,
		PrimaryImageURL: "https://img/" + title,
		DisplayPrice:    "₹499",
		DetailPageURL:   "https://shop/" + title,
	}
}

func TestResolveMixedOutcomesKeepOrderAndLength(t *testing.T) {
	searcher := &stubSearcher{
		byKeyword: map[string]*search.Response{
			"Kettle": {Items: []search.Item{item("kettle-1"), item("kettle-2")}},
			"Lamp":   {Items: []search.Item{item("lamp-1")}},
		},
		errs: map[string]error{
			"Drone": &search.ProviderError{Provider: "serpapi", StatusCode: 429, Message: "rate limited"},
		},
	}
	ideas := []models.GiftIdea{
		{Keyword: "Kettle", Reason: "tea"},
		{Keyword: "Drone", Reason: "fun"},
		{Keyword: "Unicorn", Reason: "rare"},
		{Keyword: "Lamp", Reason: "light"},
	}

	got := resolver.New(searcher, nil).Resolve(context.Background(), ideas)
	require.Len(t, got, len(ideas))

	require.False(t, got[0].Failed())
	require.Equal(t, "Kettle", got[0].Name)
	require.Equal(t, "tea", got[0].Reason)
	require.Equal(t, models.Offer{Title: "kettle-1", Image: "https://img/kettle-1", Price: "₹499", URL: "https://shop/kettle-1"}, *got[0].Offer)

	require.True(t, got[1].Failed())
	require.Equal(t, "serpapi api error (status 429): rate limited", got[1].Error)

	require.True(t, got[2].Failed())
	require.Equal(t, "No items found for keyword: Unicorn", got[2].Error)

	require.False(t, got[3].Failed())
	require.Equal(t, "light", got[3].Reason)
}

func TestResolveRequestShape(t *testing.T) {
	searcher := &stubSearcher{}
	resolver.New(searcher, nil).Resolve(context.Background(), []models.GiftIdea{{Keyword: "  Mug ", Reason: "r"}})

	require.Len(t, searcher.requests, 1)
	req := searcher.requests[0]
	require.Equal(t, "Mug", req.Keyword)
	require.Equal(t, 1, req.ItemCount)
	require.ElementsMatch(t, []search.Resource{search.ItemInfoTitle, search.ImagesPrimaryLarge, search.OffersListingsPrice}, req.Resources)
}

func TestResolveDuplicateKeywordsKeepTheirOwnReasons(t *testing.T) {
	searcher := &stubSearcher{byKeyword: map[string]*search.Response{
		"Watch": {Items: []search.Item{item("watch")}},
	}}
	ideas := []models.GiftIdea{
		{Keyword: "Watch", Reason: "for dad"},
		{Keyword: "Watch", Reason: "for mum"},
	}

	got := resolver.New(searcher, nil).Resolve(context.Background(), ideas)
	require.Equal(t, "for dad", got[0].Reason)
	require.Equal(t, "for mum", got[1].Reason)
}

func TestResolveCanceledContextStillReturnsEveryItem(t *testing.T) {
	searcher := &stubSearcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := resolver.New(searcher, nil).Resolve(ctx, []models.GiftIdea{{Keyword: "a"}, {Keyword: "b"}})
	require.Len(t, got, 2)
	require.True(t, got[0].Failed())
	require.True(t, got[1].Failed())
	require.Empty(t, searcher.requests)
}

func TestResolveEmpty(t *testing.T) {
	got := resolver.New(&stubSearcher{}, nil).Resolve(context.Background(), nil)
	require.Empty(t, got)
}
