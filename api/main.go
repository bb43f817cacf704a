package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeafMist/gift-radar/internal/config"
	"github.com/DeafMist/gift-radar/internal/elasticsearch"
	"github.com/DeafMist/gift-radar/internal/logger"
	"github.com/DeafMist/gift-radar/internal/metrics"
	"github.com/DeafMist/gift-radar/internal/recommend"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	metrics.Init()

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var archiver recommend.Archiver
	if cfg.ArchiveResults {
		indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := esClient.EnsureIndex(indexCtx); err != nil {
			log.Warn("ensure index (archive writes may fail)", slog.Any("err", err))
		}
		cancel()
		archiver = esClient
	}

	svc, err := recommend.FromConfig(ctx, cfg.Pipeline, archiver, log)
	if err != nil {
		log.Error("init pipeline", slog.Any("err", err))
		os.Exit(1)
	}

	srv := &server{log: log, cfg: cfg, gifts: svc, history: esClient}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.String("llm_provider", cfg.LLM.Provider),
			slog.Bool("archive", cfg.ArchiveResults),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
