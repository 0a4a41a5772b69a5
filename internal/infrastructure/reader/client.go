// Package reader implements the source.Fetcher contract against the
// reading-list service that stores saved articles.
package reader

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"contentpilot/workflow-api/internal/domain/source"
)

// Client fetches source documents from the reading-list API.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Resty-backed reader client.
func NewClient(baseURL, token string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if token != "" {
		httpClient.SetHeader("Authorization", "Token "+token)
	}
	return &Client{httpClient: httpClient}
}

var _ source.Fetcher = (*Client)(nil)

type documentResponse struct {
	Results []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Author      string `json:"author"`
		SourceURL   string `json:"source_url"`
		HTMLContent string `json:"html_content"`
		WordCount   int    `json:"word_count"`
	} `json:"results"`
}

// FetchDocument loads a document by id. The body comes back as raw HTML;
// cleanup is left to the caller.
func (c *Client) FetchDocument(ctx context.Context, documentID string) (*source.Document, error) {
	var result documentResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("id", documentID).
		SetQueryParam("withHtmlContent", "true").
		SetResult(&result).
		Get("/api/v3/list/")
	if err != nil {
		return nil, fmt.Errorf("reader request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("reader api error: %s", resp.Status())
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("document not found: %s", documentID)
	}

	doc := result.Results[0]
	return &source.Document{
		ID:        doc.ID,
		Title:     doc.Title,
		Author:    doc.Author,
		URL:       doc.SourceURL,
		Content:   doc.HTMLContent,
		WordCount: doc.WordCount,
	}, nil
}
