package search

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client wraps Google Custom Search. Without credentials it serves
// deterministic mock results so environments with no search key still get a
// working stage.
type Client struct {
	engineID string
	svc      *customsearch.Service
}

func New(ctx context.Context, apiKey, engineID string) (*Client, error) {
	c := &Client{engineID: strings.TrimSpace(engineID)}
	if strings.TrimSpace(apiKey) == "" || c.engineID == "" {
		return c, nil
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(strings.TrimSpace(apiKey)))
	if err != nil {
		return nil, fmt.Errorf("customsearch: %w", err)
	}
	c.svc = svc
	return c, nil
}

// Search returns up to 5 results and whether the mock path served them.
func (c *Client) Search(ctx context.Context, query string) ([]Result, bool, error) {
	if c.svc == nil {
		return mockResults(query), true, nil
	}

	resp, err := c.svc.Cse.List().Context(ctx).Q(query).Cx(c.engineID).Num(5).Do()
	if err != nil {
		return nil, false, err
	}
	out := make([]Result, 0, len(resp.Items))
	for _, it := range resp.Items {
		out = append(out, Result{Title: it.Title, Link: it.Link, Snippet: it.Snippet})
	}
	return out, false, nil
}

var mockSites = []struct{ host, name string }{
	{"ifixit.example.com", "iFixit-style teardown guide"},
	{"repairwiki.example.com", "Repair wiki entry"},
	{"forums.example.com", "Community forum thread"},
}

// mockResults are seeded from the query so repeated calls (and tests) see
// identical output.
func mockResults(query string) []Result {
	q := strings.TrimSpace(query)
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(q)))
	seed := h.Sum32()

	out := make([]Result, 0, len(mockSites))
	for i, s := range mockSites {
		out = append(out, Result{
			Title:   fmt.Sprintf("%s: %s", s.name, q),
			Link:    fmt.Sprintf("https://%s/search/%d-%d?q=%s", s.host, seed, i, url.QueryEscape(q)),
			Snippet: fmt.Sprintf("Step-by-step guidance related to %q, including common causes and fixes.", q),
		})
	}
	return out
}
