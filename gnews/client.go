package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kurakani/kurakani/models"
)

// DefaultTopics is requested when the caller names none.
var DefaultTopics = []string{"technology", "sports", "business"}

// MaxTopics caps how many topics a single fetch cycle queries.
const MaxTopics = 3

const (
	placeholderTitle  = "No title"
	placeholderSource = "No source"
	placeholderTime   = "1970-01-01T00:00:00Z"
	defaultCountry    = "us"
	defaultLang       = "en"
)

// Client fetches top headlines from the GNews API, one request per topic.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, maxResults int, timeout time.Duration) *Client {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []apiItem `json:"articles"`
}

type apiItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// ParseTopics splits a comma-separated topic list, lower-casing and trimming
// each entry, and caps the result at MaxTopics. An empty input yields
// DefaultTopics.
func ParseTopics(topics string) []string {
	var selected []string
	for _, t := range strings.Split(topics, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		selected = append(selected, DefaultTopics...)
	}
	if len(selected) > MaxTopics {
		selected = selected[:MaxTopics]
	}
	return selected
}

// Fetch issues one request per topic and returns the concatenation of all
// topics' normalized articles, in topic order. A failing topic is logged and
// skipped; the other topics' results still come back. Items without body text
// are dropped here so an empty-content article never reaches the store.
func (c *Client) Fetch(ctx context.Context, country, topics, query string) ([]models.Article, error) {
	selected := ParseTopics(topics)

	articleCountry := defaultCountry
	if country != "" {
		articleCountry = strings.ToLower(country)
	}

	var all []models.Article
	for _, topic := range selected {
		items, err := c.fetchTopic(ctx, country, topic, query)
		if err != nil {
			slog.Warn("news fetch failed for topic, skipping",
				"topic", topic, "error", err)
			continue
		}
		for _, item := range items {
			article, ok := normalize(item, articleCountry, topic)
			if !ok {
				continue
			}
			all = append(all, article)
		}
	}
	return all, nil
}

func (c *Client) fetchTopic(ctx context.Context, country, topic, query string) ([]apiItem, error) {
	params := url.Values{}
	params.Set("token", c.apiKey)
	params.Set("max", strconv.Itoa(c.maxResults))
	params.Set("lang", defaultLang)
	params.Set("category", topic)
	if country != "" {
		params.Set("country", strings.ToLower(country))
	}
	if query != "" {
		params.Set("q", query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20)) // limit to 2MB
	if err != nil {
		return nil, err
	}

	var body apiResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	if body.TotalArticles == 0 {
		slog.Warn("no articles found for topic", "topic", topic)
		return nil, nil
	}
	return body.Articles, nil
}

// normalize maps one API item to the Article shape, substituting placeholders
// for missing fields. ok is false when the item has no body text.
func normalize(item apiItem, country, topic string) (models.Article, bool) {
	content := strings.TrimSpace(item.Description)
	if content == "" {
		return models.Article{}, false
	}

	title := item.Title
	if title == "" {
		title = placeholderTitle
	}
	source := item.Source.Name
	if source == "" {
		source = placeholderSource
	}
	publishedAt := item.PublishedAt
	if publishedAt == "" {
		publishedAt = placeholderTime
	}

	return models.Article{
		Title:       title,
		Content:     content,
		Source:      source,
		PublishedAt: publishedAt,
		Country:     country,
		Category:    topic,
	}, true
}
