package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/gift-radar/internal/config"
)

func setKeys(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("SERPAPI_API_KEY", "serp-key")
}

func TestLoadAPIDefaults(t *testing.T) {
	setKeys(t)
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("DEDUPE_CAPACITY", "")
	t.Setenv("DEDUPE_TTL", "")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "gift_results", cfg.ElasticsearchIndex)
	require.Equal(t, "0.0.0.0:8080", cfg.BindAddr)
	require.Equal(t, "gemini", cfg.LLM.Provider)
	require.Equal(t, "gemini-key", cfg.LLM.APIKey)
	require.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	require.Equal(t, "serpapi", cfg.Search.Provider)
	require.Equal(t, "in", cfg.Search.Country)
	require.Zero(t, cfg.Dedupe.Capacity)
	require.Zero(t, cfg.Dedupe.TTL)
	require.False(t, cfg.ArchiveResults)
}

func TestLoadAPIOverrides(t *testing.T) {
	setKeys(t)
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_REQUEST_TIMEOUT", "30s")
	t.Setenv("API_ARCHIVE_RESULTS", "true")
	t.Setenv("API_HISTORY_SIZE", "15")
	t.Setenv("API_MAX_HISTORY_SIZE", "200")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("LLM_API_KEY", "openai-key")
	t.Setenv("LLM_BASE_URL", "http://llama:8080/v1")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_RPM", "30")
	t.Setenv("DEDUPE_CAPACITY", "500")
	t.Setenv("DEDUPE_TTL", "1h")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.ArchiveResults)
	require.Equal(t, 15, cfg.HistorySize)
	require.Equal(t, "openai", cfg.LLM.Provider)
	require.Equal(t, "openai-key", cfg.LLM.APIKey)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, "http://llama:8080/v1", cfg.LLM.BaseURL)
	require.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	require.Equal(t, 30, cfg.LLM.RPM)
	require.Equal(t, 500, cfg.Dedupe.Capacity)
	require.Equal(t, time.Hour, cfg.Dedupe.TTL)
}

func TestLoadAPIRequiresKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("SERPAPI_API_KEY", "serp-key")
	_, err := config.LoadAPI()
	require.Error(t, err)

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("SERPAPI_API_KEY", "")
	_, err = config.LoadAPI()
	require.Error(t, err)
}

func TestLoadAPIRejectsUnknownProvider(t *testing.T) {
	setKeys(t)
	t.Setenv("LLM_PROVIDER", "parrot")
	_, err := config.LoadAPI()
	require.ErrorContains(t, err, "parrot")
}

func TestLoadAPIRejectsHistoryAboveMax(t *testing.T) {
	setKeys(t)
	t.Setenv("API_HISTORY_SIZE", "50")
	t.Setenv("API_MAX_HISTORY_SIZE", "10")
	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadWorkerDefaults(t *testing.T) {
	setKeys(t)
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")
	t.Setenv("WORKER_METRICS_ADDR", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Len(t, cfg.KafkaBrokers, 1)
	require.Equal(t, "kafka:9092", cfg.KafkaBrokers[0])
	require.Equal(t, "gift_requests", cfg.KafkaTopic)
	require.Equal(t, "gift-worker", cfg.KafkaConsumer)
	require.Equal(t, 2*time.Minute, cfg.ProcessTimeout)
	require.Equal(t, "0.0.0.0:9091", cfg.MetricsAddr)
}

func TestLoadWorkerOverrides(t *testing.T) {
	setKeys(t)
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_BATCH_SIZE", "3")
	t.Setenv("WORKER_PROCESS_TIMEOUT", "45s")
	t.Setenv("WORKER_METRICS_ADDR", ":9200")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 3, cfg.BatchSize)
	require.Equal(t, 45*time.Second, cfg.ProcessTimeout)
	require.Equal(t, ":9200", cfg.MetricsAddr)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://ret-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_CRON", "12h")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "http://ret-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "ret-index", cfg.ElasticsearchIndex)
}
