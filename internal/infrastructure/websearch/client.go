package websearch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"travelbro-server/internal/domain/tool"
)

const baseURL = "https://www.googleapis.com"

// Client implements the web search adapter against the Google Custom Search
// API. A failed search returns an empty result with an explanatory summary.
type Client struct {
	httpClient     *resty.Client
	apiKey         string
	searchEngineID string
	log            zerolog.Logger
}

// NewClient constructs the search client.
func NewClient(apiKey, searchEngineID string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second),
		apiKey:         apiKey,
		searchEngineID: searchEngineID,
		log:            log.With().Str("component", "websearch").Logger(),
	}
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
}

// Search issues one query, optionally scoped to a location.
func (c *Client) Search(ctx context.Context, query, location string) (*tool.WebSearchResult, tool.CallRecord) {
	record := tool.CallRecord{
		Tool:   tool.NameWebSearch,
		Params: tool.SearchParams{Query: query, Location: location},
	}

	searchQuery := query
	if location != "" {
		searchQuery = query + " " + location
	}

	var response searchResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key": c.apiKey,
			"cx":  c.searchEngineID,
			"q":   searchQuery,
			"num": "5",
		}).
		SetResult(&response).
		Get("/customsearch/v1")
	if err != nil || resp.IsError() {
		c.log.Warn().Err(err).Str("query", searchQuery).Msg("web search failed")
		record.Summary = "error"
		return &tool.WebSearchResult{Query: searchQuery}, record
	}
	if len(response.Items) == 0 {
		record.Summary = "no_results"
		return &tool.WebSearchResult{Query: searchQuery}, record
	}

	results := make([]tool.SearchResult, 0, len(response.Items))
	for _, item := range response.Items {
		results = append(results, tool.SearchResult{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}

	record.Success = true
	record.Summary = fmt.Sprintf("%d results", len(results))
	return &tool.WebSearchResult{Query: searchQuery, Results: results}, record
}

// Ensure interface compliance.
var _ tool.WebSearchAdapter = (*Client)(nil)
