// Package gstlookup wraps the public GSTIN verification API and caches
// responses in Redis, since registration details change rarely and the
// upstream service is slow and rate limited.
package gstlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/invoxa/invoxa/internal/platform/httpx"
)

// Details are the registration facts used for customer prefill.
type Details struct {
	GSTIN     string `json:"gstin"`
	LegalName string `json:"legal_name"`
	TradeName string `json:"trade_name,omitempty"`
	Building  string `json:"building,omitempty"`
	Street    string `json:"street,omitempty"`
	Location  string `json:"location,omitempty"`
	State     string `json:"state,omitempty"`
	Pincode   string `json:"pincode,omitempty"`
}

var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)

// ValidGSTIN reports whether s is a well-formed 15-character GSTIN.
func ValidGSTIN(s string) bool {
	return gstinPattern.MatchString(s)
}

// Client calls the lookup API with a Redis read-through cache.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewClient constructs a lookup client. cache may be nil to disable caching.
func NewClient(baseURL, apiKey string, cache *redis.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
		cacheTTL:   24 * time.Hour,
		logger:     logger,
	}
}

type apiResponse struct {
	Flag    bool   `json:"flag"`
	Message string `json:"message"`
	Data    struct {
		LegalName string `json:"lgnm"`
		TradeName string `json:"tradeNam"`
		Principal struct {
			Addr struct {
				Building string `json:"bno"`
				Street   string `json:"st"`
				Location string `json:"loc"`
				State    string `json:"stcd"`
				Pincode  string `json:"pncd"`
			} `json:"addr"`
		} `json:"pradr"`
	} `json:"data"`
}

func cacheKey(gstin string) string {
	return "gstlookup:" + gstin
}

// Details fetches registration details for a GSTIN.
func (c *Client) Details(ctx context.Context, gstin string) (Details, error) {
	if !ValidGSTIN(gstin) {
		return Details{}, fmt.Errorf("%w: invalid gstin format", httpx.ErrValidation)
	}

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey(gstin)).Bytes(); err == nil {
			var d Details
			if err := json.Unmarshal(cached, &d); err == nil {
				return d, nil
			}
		}
	}

	url := fmt.Sprintf("%s/check/%s/%s", c.baseURL, c.apiKey, gstin)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Details{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Details{}, fmt.Errorf("%w: gstin lookup: %s", httpx.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return Details{}, fmt.Errorf("%w: gstin lookup returned status %d", httpx.ErrUpstream, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Details{}, fmt.Errorf("%w: decode gstin lookup response: %s", httpx.ErrUpstream, err)
	}
	if !body.Flag {
		return Details{}, fmt.Errorf("%w: %s", httpx.ErrValidation, body.Message)
	}

	d := Details{
		GSTIN:     gstin,
		LegalName: body.Data.LegalName,
		TradeName: body.Data.TradeName,
		Building:  body.Data.Principal.Addr.Building,
		Street:    body.Data.Principal.Addr.Street,
		Location:  body.Data.Principal.Addr.Location,
		State:     body.Data.Principal.Addr.State,
		Pincode:   body.Data.Principal.Addr.Pincode,
	}

	if c.cache != nil {
		if encoded, err := json.Marshal(d); err == nil {
			if err := c.cache.Set(ctx, cacheKey(gstin), encoded, c.cacheTTL).Err(); err != nil && c.logger != nil {
				c.logger.Warn("cache gstin lookup", slog.Any("error", err))
			}
		}
	}
	return d, nil
}
