package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/gift-radar/internal/config"
	"github.com/DeafMist/gift-radar/internal/dedupe"
	"github.com/DeafMist/gift-radar/internal/llm"
	"github.com/DeafMist/gift-radar/internal/logger"
	"github.com/DeafMist/gift-radar/internal/metrics"
	"github.com/DeafMist/gift-radar/internal/models"
	"github.com/DeafMist/gift-radar/internal/processing"
	"github.com/DeafMist/gift-radar/internal/prompt"
	"github.com/DeafMist/gift-radar/internal/resolver"
	"github.com/DeafMist/gift-radar/internal/search/factory"
)

// Request statuses reported to metrics.
const (
	StatusOK         = "ok"
	StatusInvalid    = "invalid"
	StatusModelError = "model_error"
)

// Archiver stores finished results. Failures are logged and never reach the caller.
type Archiver interface {
	IndexResults(ctx context.Context, docs []models.ResultDocument) error
}

// Request is one recommendation run.
type Request struct {
	ID       string
	Scope    string
	Criteria models.Criteria
}

// Options wires the pipeline stages together. Archiver and Logger may be nil.
type Options struct {
	Composer  *prompt.Composer
	Generator llm.Generator
	Cache     *dedupe.Cache
	Resolver  *resolver.Resolver
	Archiver  Archiver
	Logger    *slog.Logger
}

// Service runs criteria through compose, generate, extract, dedupe and resolve.
type Service struct {
	composer  *prompt.Composer
	generator llm.Generator
	cache     *dedupe.Cache
	resolver  *resolver.Resolver
	archiver  Archiver
	log       *slog.Logger
	now       func() time.Time
}

// New builds a Service from already constructed stages.
func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	composer := opts.Composer
	if composer == nil {
		composer = prompt.New()
	}
	cache := opts.Cache
	if cache == nil {
		cache = dedupe.NewCache(0, 0)
	}
	return &Service{
		composer:  composer,
		generator: opts.Generator,
		cache:     cache,
		resolver:  opts.Resolver,
		archiver:  opts.Archiver,
		log:       log,
		now:       time.Now,
	}
}

// FromConfig builds the model and search backends described by cfg.
func FromConfig(ctx context.Context, cfg config.Pipeline, archiver Archiver, log *slog.Logger) (*Service, error) {
	gen, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	searcher, err := factory.NewSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("init search: %w", err)
	}

	return New(Options{
		Generator: gen,
		Cache:     dedupe.NewCache(cfg.Dedupe.Capacity, cfg.Dedupe.TTL),
		Resolver:  resolver.New(searcher, log),
		Archiver:  archiver,
		Logger:    log,
	}), nil
}

// Produce returns one result per newly suggested idea, in the order the model listed them.
// Invalid criteria and model failures fail the whole request; search failures stay per item.
func (s *Service) Produce(ctx context.Context, req Request) ([]models.SearchResult, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	log := s.log.With(slog.String("request_id", req.ID))

	if err := req.Criteria.Validate(); err != nil {
		metrics.RecordRequest(StatusInvalid)
		return nil, err
	}

	text := s.composer.Compose(req.Criteria)
	log.Debug("composed prompt", slog.String("prompt", text))

	start := time.Now()
	raw, err := s.generator.Generate(ctx, text)
	metrics.ObserveModel(time.Since(start))
	if err != nil {
		metrics.RecordRequest(StatusModelError)
		return nil, fmt.Errorf("generate ideas: %w", err)
	}
	log.Debug("model response", slog.String("text", raw))

	cleaned := processing.Normalize(raw)
	log.Debug("normalized response", slog.String("text", cleaned))

	ideas := processing.ExtractIdeas(cleaned)
	unique := s.cache.FilterUnseen(req.Scope, ideas)
	metrics.RecordExtraction(len(ideas), len(unique))
	log.Debug("extracted ideas",
		slog.Int("extracted", len(ideas)),
		slog.Int("unique", len(unique)),
		slog.Any("ideas", unique),
	)

	results := s.resolver.Resolve(ctx, unique)
	log.Debug("resolved ideas", slog.Any("results", results))

	s.archive(ctx, log, req, results)
	metrics.RecordRequest(StatusOK)
	return results, nil
}

func (s *Service) archive(ctx context.Context, log *slog.Logger, req Request, results []models.SearchResult) {
	if s.archiver == nil || len(results) == 0 {
		return
	}

	ts := s.now().UTC()
	docs := make([]models.ResultDocument, 0, len(results))
	for i, r := range results {
		docs = append(docs, models.NewResultDocument(uuid.NewString(), req.ID, req.Scope, i, r, ts))
	}

	if err := s.archiver.IndexResults(ctx, docs); err != nil {
		log.Warn("archive results", slog.Any("err", err))
	}
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, models.ErrInvalidCriteria)
}
