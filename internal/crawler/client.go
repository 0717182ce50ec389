package crawler

import (
	"bytes"
	"context"
	"fmt"

	"hearings/internal/tree"
)

// Client fetches documents and parses them into trees.
type Client struct {
	fetcher Fetcher
}

// NewClientWithFetcher creates a client with an injected fetcher.
func NewClientWithFetcher(f Fetcher) *Client {
	return &Client{fetcher: f}
}

// Get fetches a URL and returns the raw body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	return body, nil
}

// GetXML fetches and parses an XML document.
func (c *Client) GetXML(ctx context.Context, url string) (*tree.Node, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := tree.ParseXML(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return doc, nil
}

// GetHTML fetches and parses an HTML page. The raw body is returned too for
// callers that scan the markup directly.
func (c *Client) GetHTML(ctx context.Context, url string) (*tree.Node, []byte, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	doc, err := tree.ParseHTML(bytes.NewReader(body))
	if err != nil {
		return nil, body, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return doc, body, nil
}
