package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DeafMist/gift-radar/internal/search"
)

const (
	defaultBaseURL = "https://serpapi.com"
	providerName   = "serpapi"
)

// Options configures the Google Shopping client.
type Options struct {
	APIKey   string
	BaseURL  string
	Country  string
	Language string
	Timeout  time.Duration
}

// Client queries the SerpApi Google Shopping engine.
type Client struct {
	apiKey   string
	baseURL  string
	country  string
	language string
	client   *http.Client
}

// NewClient creates a Google Shopping client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey:   opts.APIKey,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		country:  opts.Country,
		language: opts.Language,
		client:   &http.Client{Timeout: opts.Timeout},
	}
}

var _ search.ProductSearcher = (*Client)(nil)

type shoppingResponse struct {
	Error           string           `json:"error"`
	ShoppingResults []shoppingResult `json:"shopping_results"`
}

type shoppingResult struct {
	Position         int    `json:"position"`
	Title            string `json:"title"`
	Link             string `json:"link"`
	ProductLink      string `json:"product_link"`
	Price            string `json:"price"`
	Thumbnail        string `json:"thumbnail"`
	SerpAPIThumbnail string `json:"serpapi_thumbnail"`
}

// Search implements search.ProductSearcher.
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/search.json"

	q := u.Query()
	q.Set("engine", "google_shopping")
	q.Set("q", req.Keyword)
	q.Set("api_key", c.apiKey)
	if c.country != "" {
		q.Set("gl", c.country)
	}
	if c.language != "" {
		q.Set("hl", c.language)
	}
	if req.ItemCount > 0 {
		q.Set("num", strconv.Itoa(req.ItemCount))
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &search.ProviderError{Provider: providerName, Message: err.Error()}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	var parsed shoppingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if res.StatusCode != http.StatusOK {
			return nil, &search.ProviderError{Provider: providerName, StatusCode: res.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	if parsed.Error != "" {
		if isEmptyResult(parsed.Error) {
			return &search.Response{}, nil
		}
		return nil, &search.ProviderError{Provider: providerName, StatusCode: res.StatusCode, Message: parsed.Error}
	}
	if res.StatusCode != http.StatusOK {
		return nil, &search.ProviderError{Provider: providerName, StatusCode: res.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	limit := len(parsed.ShoppingResults)
	if req.ItemCount > 0 && req.ItemCount < limit {
		limit = req.ItemCount
	}

	items := make([]search.Item, 0, limit)
	for _, r := range parsed.ShoppingResults[:limit] {
		items = append(items, toItem(req, r))
	}
	return &search.Response{Items: items}, nil
}

func toItem(req *search.Request, r shoppingResult) search.Item {
	item := search.Item{DetailPageURL: r.ProductLink}
	if item.DetailPageURL == "" {
		item.DetailPageURL = r.Link
	}
	if req.Wants(search.ItemInfoTitle) {
		item.Title = r.Title
	}
	if req.Wants(search.ImagesPrimaryLarge) {
		item.PrimaryImageURL = r.SerpAPIThumbnail
		if item.PrimaryImageURL == "" {
			item.PrimaryImageURL = r.Thumbnail
		}
	}
	if req.Wants(search.OffersListingsPrice) {
		item.DisplayPrice = r.Price
	}
	return item
}

// SerpApi reports an empty result page as an error string rather than an empty array.
func isEmptyResult(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "hasn't returned any results")
}
