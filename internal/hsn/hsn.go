// Package hsn resolves HSN codes and their GST rates. It prefers the
// upstream directory service and falls back to a small built-in table of
// common codes when the upstream is unreachable, so invoice entry keeps
// working offline.
package hsn

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Entry is one HSN directory row.
type Entry struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	GSTRate     float64 `json:"gst_rate"`
}

// fallbackTable covers codes small traders hit most often.
var fallbackTable = []Entry{
	{Code: "8471", Description: "Computers and computing machines", GSTRate: 18},
	{Code: "8517", Description: "Mobile phones and network apparatus", GSTRate: 18},
	{Code: "9405", Description: "Lamps and lighting fittings", GSTRate: 18},
	{Code: "8539", Description: "LED lamps and filament bulbs", GSTRate: 12},
	{Code: "8544", Description: "Insulated wires and cables", GSTRate: 18},
	{Code: "7308", Description: "Structures of iron or steel", GSTRate: 18},
	{Code: "3926", Description: "Articles of plastics", GSTRate: 18},
	{Code: "6815", Description: "Articles of stone or other mineral substances", GSTRate: 28},
	{Code: "9403", Description: "Furniture and parts thereof", GSTRate: 18},
	{Code: "4901", Description: "Printed books and brochures", GSTRate: 0},
}

// Client queries the HSN directory.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a directory client. An empty baseURL keeps the
// client fallback-only.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Search matches the query against codes and descriptions. Upstream
// failures degrade to the built-in table rather than erroring out.
func (c *Client) Search(ctx context.Context, query string) ([]Entry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Entry{}, nil
	}

	if c.baseURL != "" {
		entries, err := c.searchUpstream(ctx, query)
		if err == nil {
			return entries, nil
		}
		if c.logger != nil {
			c.logger.Warn("hsn upstream search failed, using fallback table", slog.Any("error", err))
		}
	}
	return searchFallback(query), nil
}

// Lookup returns the entry for an exact code.
func (c *Client) Lookup(ctx context.Context, code string) (Entry, bool) {
	entries, err := c.Search(ctx, code)
	if err != nil {
		return Entry{}, false
	}
	for _, e := range entries {
		if e.Code == code {
			return e, true
		}
	}
	return Entry{}, false
}

func (c *Client) searchUpstream(ctx context.Context, query string) ([]Entry, error) {
	u := fmt.Sprintf("%s/search?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("hsn directory returned status %d", resp.StatusCode)
	}
	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode hsn response: %w", err)
	}
	return entries, nil
}

func searchFallback(query string) []Entry {
	lowered := strings.ToLower(query)
	out := []Entry{}
	for _, e := range fallbackTable {
		if strings.HasPrefix(e.Code, query) || strings.Contains(strings.ToLower(e.Description), lowered) {
			out = append(out, e)
		}
	}
	return out
}
