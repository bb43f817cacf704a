package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// LLM selects and tunes the language model backend.
type LLM struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
	RPM         int
	Burst       int
}

// Search configures the product-search provider.
type Search struct {
	Provider string
	APIKey   string
	BaseURL  string
	Country  string
	Language string
	Timeout  time.Duration
}

// Dedupe bounds the set of already suggested ideas. Zero values mean unbounded.
type Dedupe struct {
	Capacity int
	TTL      time.Duration
}

// Pipeline groups everything needed to turn criteria into recommendations.
type Pipeline struct {
	LLM    LLM
	Search Search
	Dedupe Dedupe
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	Pipeline
	BindAddr       string
	RequestTimeout time.Duration
	ArchiveResults bool
	HistorySize    int
	MaxHistorySize int
}

// Worker holds configuration for the Kafka -> recommendation worker.
type Worker struct {
	Common
	Pipeline
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	BatchSize      int
	ProcessTimeout time.Duration
	MetricsAddr    string
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	pipeline, err := loadPipeline()
	if err != nil {
		return nil, err
	}

	c := &API{
		Common:         loadCommon(),
		Pipeline:       *pipeline,
		BindAddr:       getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		RequestTimeout: getDuration("API_REQUEST_TIMEOUT", "90s"),
		ArchiveResults: getBool("API_ARCHIVE_RESULTS", false),
		HistorySize:    getInt("API_HISTORY_SIZE", 20),
		MaxHistorySize: getInt("API_MAX_HISTORY_SIZE", 100),
	}

	if c.RequestTimeout <= 0 {
		return nil, fmt.Errorf("API_REQUEST_TIMEOUT must be positive")
	}
	if c.HistorySize <= 0 {
		return nil, fmt.Errorf("API_HISTORY_SIZE must be positive")
	}
	if c.MaxHistorySize <= 0 {
		return nil, fmt.Errorf("API_MAX_HISTORY_SIZE must be positive")
	}
	if c.HistorySize > c.MaxHistorySize {
		return nil, fmt.Errorf("API_HISTORY_SIZE cannot exceed API_MAX_HISTORY_SIZE")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	pipeline, err := loadPipeline()
	if err != nil {
		return nil, err
	}

	c := &Worker{
		Common:         loadCommon(),
		Pipeline:       *pipeline,
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "gift_requests"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "gift-worker"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
		ProcessTimeout: getDuration("WORKER_PROCESS_TIMEOUT", "2m"),
		MetricsAddr:    getEnv("WORKER_METRICS_ADDR", "0.0.0.0:9091"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.ProcessTimeout <= 0 {
		return nil, fmt.Errorf("WORKER_PROCESS_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "gift_results"),
	}
}

func loadPipeline() (*Pipeline, error) {
	p := &Pipeline{
		LLM: LLM{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
			Model:       getEnv("LLM_MODEL", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Temperature: getFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getDuration("LLM_TIMEOUT", "60s"),
			RPM:         getInt("LLM_RPM", 60),
			Burst:       getInt("LLM_BURST", 1),
		},
		Search: Search{
			Provider: strings.ToLower(getEnv("SEARCH_PROVIDER", "serpapi")),
			APIKey:   getEnv("SERPAPI_API_KEY", ""),
			BaseURL:  getEnv("SEARCH_BASE_URL", ""),
			Country:  getEnv("SEARCH_COUNTRY", "in"),
			Language: getEnv("SEARCH_LANGUAGE", "en"),
			Timeout:  getDuration("SEARCH_TIMEOUT", "15s"),
		},
		Dedupe: Dedupe{
			Capacity: getInt("DEDUPE_CAPACITY", 0),
			TTL:      getDuration("DEDUPE_TTL", "0s"),
		},
	}

	switch p.LLM.Provider {
	case "gemini":
		p.LLM.APIKey = getEnv("GEMINI_API_KEY", getEnv("LLM_API_KEY", ""))
		if p.LLM.Model == "" {
			p.LLM.Model = "gemini-2.0-flash"
		}
	case "openai":
		p.LLM.APIKey = getEnv("LLM_API_KEY", "")
		if p.LLM.Model == "" {
			p.LLM.Model = "gpt-4o-mini"
		}
	default:
		return nil, fmt.Errorf("LLM_PROVIDER %q is not supported", p.LLM.Provider)
	}

	if p.LLM.APIKey == "" {
		return nil, fmt.Errorf("an API key is required for LLM_PROVIDER %q", p.LLM.Provider)
	}
	if p.LLM.Temperature < 0 || p.LLM.Temperature > 2 {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	if p.LLM.Timeout <= 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if p.LLM.RPM <= 0 {
		return nil, fmt.Errorf("LLM_RPM must be positive")
	}
	if p.LLM.Burst <= 0 {
		return nil, fmt.Errorf("LLM_BURST must be positive")
	}
	if p.Search.APIKey == "" {
		return nil, fmt.Errorf("SERPAPI_API_KEY is required")
	}
	if p.Search.Timeout <= 0 {
		return nil, fmt.Errorf("SEARCH_TIMEOUT must be positive")
	}
	if p.Dedupe.Capacity < 0 {
		return nil, fmt.Errorf("DEDUPE_CAPACITY cannot be negative")
	}
	if p.Dedupe.TTL < 0 {
		return nil, fmt.Errorf("DEDUPE_TTL cannot be negative")
	}

	return p, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
