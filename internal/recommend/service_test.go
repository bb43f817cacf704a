package recommend_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/gift-radar/internal/dedupe"
	"github.com/DeafMist/gift-radar/internal/llm"
	"github.com/DeafMist/gift-radar/internal/models"
	"github.com/DeafMist/gift-radar/internal/recommend"
	"github.com/DeafMist/gift-radar/internal/resolver"
	"github.com/DeafMist/gift-radar/internal/search"
)

const modelText = `1. *Smart Water Bottle*
Reason: Tracks hydration.
2. - Personalized
Star Map
Reason: A sentimental keepsake.`

type stubSearcher struct {
	keywords []string
}

func (s *stubSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	s.keywords = append(s.keywords, req.Keyword)
	if req.Keyword == "Personalized Star Map" {
		return &search.Response{}, nil
	}
	return &search.Response{Items: []search.Item{{
		Title:           req.Keyword + " Pro",
		PrimaryImageURL: "https://img/1.jpg",
		DisplayPrice:    "₹999",
		DetailPageURL:   "https://shop/1",
	}}}, nil
}

type stubArchiver struct {
	docs []models.ResultDocument
	err  error
}

func (s *stubArchiver) IndexResults(_ context.Context, docs []models.ResultDocument) error {
	s.docs = append(s.docs, docs...)
	return s.err
}

func newService(gen llm.Generator, searcher search.ProductSearcher, archiver recommend.Archiver) *recommend.Service {
	opts := recommend.Options{
		Generator: gen,
		Cache:     dedupe.NewCache(0, 0),
		Resolver:  resolver.New(searcher, nil),
	}
	if archiver != nil {
		opts.Archiver = archiver
	}
	return recommend.New(opts)
}

func staticModel(text string) llm.Generator {
	return llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return text, nil
	})
}

func TestProduceRunsWholePipeline(t *testing.T) {
	var prompt string
	gen := llm.GeneratorFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return modelText, nil
	})
	searcher := &stubSearcher{}
	svc := newService(gen, searcher, nil)

	results, err := svc.Produce(context.Background(), recommend.Request{
		Criteria: models.Criteria{Age: "30", Occasion: "Birthday"},
	})
	require.NoError(t, err)
	require.Contains(t, prompt, "for a 30-year-old")
	require.Contains(t, prompt, "suitable for Birthday")

	require.Equal(t, []string{"Smart Water Bottle", "Personalized Star Map"}, searcher.keywords)
	require.Len(t, results, 2)

	require.False(t, results[0].Failed())
	require.Equal(t, "Smart Water Bottle", results[0].Name)
	require.Equal(t, "Tracks hydration.", results[0].Reason)
	require.Equal(t, "Smart Water Bottle Pro", results[0].Offer.Title)

	require.True(t, results[1].Failed())
	require.Equal(t, "No items found for keyword: Personalized Star Map", results[1].Error)
}

func TestProduceDropsIdeasAlreadySuggested(t *testing.T) {
	searcher := &stubSearcher{}
	svc := newService(staticModel(modelText), searcher, nil)

	first, err := svc.Produce(context.Background(), recommend.Request{Criteria: models.Criteria{Query: "gifts"}})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := svc.Produce(context.Background(), recommend.Request{Criteria: models.Criteria{Query: "gifts"}})
	require.NoError(t, err)
	require.Empty(t, second)
	require.Len(t, searcher.keywords, 2)

	other, err := svc.Produce(context.Background(), recommend.Request{Scope: "session-b", Criteria: models.Criteria{Query: "gifts"}})
	require.NoError(t, err)
	require.Len(t, other, 2)
}

func TestProduceModelFailureIsWholeRequestFailure(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", errors.Join(llm.ErrModelInvocation, errors.New("quota exceeded"))
	})
	searcher := &stubSearcher{}
	svc := newService(gen, searcher, nil)

	results, err := svc.Produce(context.Background(), recommend.Request{Criteria: models.Criteria{Query: "x"}})
	require.ErrorIs(t, err, llm.ErrModelInvocation)
	require.Nil(t, results)
	require.Empty(t, searcher.keywords)
	require.False(t, recommend.IsClientError(err))
}

func TestProduceRejectsInvalidCriteria(t *testing.T) {
	called := false
	gen := llm.GeneratorFunc(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})
	svc := newService(gen, &stubSearcher{}, nil)

	_, err := svc.Produce(context.Background(), recommend.Request{
		Criteria: models.Criteria{Query: strings.Repeat("a", 2001)},
	})
	require.ErrorIs(t, err, models.ErrInvalidCriteria)
	require.True(t, recommend.IsClientError(err))
	require.False(t, called)
}

func TestProduceEmptyModelTextYieldsEmptyList(t *testing.T) {
	svc := newService(staticModel(""), &stubSearcher{}, nil)

	results, err := svc.Produce(context.Background(), recommend.Request{Criteria: models.Criteria{Gender: "female"}})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestProduceArchivesResults(t *testing.T) {
	archiver := &stubArchiver{}
	svc := newService(staticModel(modelText), &stubSearcher{}, archiver)

	_, err := svc.Produce(context.Background(), recommend.Request{ID: "req-1", Scope: "s1", Criteria: models.Criteria{Query: "gifts"}})
	require.NoError(t, err)

	require.Len(t, archiver.docs, 2)
	for i, doc := range archiver.docs {
		require.NotEmpty(t, doc.ID)
		require.Equal(t, "req-1", doc.RequestID)
		require.Equal(t, "s1", doc.Scope)
		require.Equal(t, i, doc.Position)
		require.False(t, doc.Timestamp.IsZero())
	}
	require.Equal(t, "Smart Water Bottle Pro", archiver.docs[0].Title)
	require.NotEmpty(t, archiver.docs[1].Error)
}

func TestProduceIgnoresArchiveFailure(t *testing.T) {
	archiver := &stubArchiver{err: errors.New("es down")}
	svc := newService(staticModel(modelText), &stubSearcher{}, archiver)

	results, err := svc.Produce(context.Background(), recommend.Request{Criteria: models.Criteria{Query: "gifts"}})
	require.NoError(t, err)
	require.Len(t, results, 2)
}
