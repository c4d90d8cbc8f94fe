// Package meli is the authenticated, rate-limited gateway to the Mercado
// Livre REST API. It owns the error taxonomy, the call quota and the OAuth
// token lifecycle; pagination and retry policy belong to the callers.
package meli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/noneca/meli-sync/configs"
)

// Client wraps outbound HTTP calls with authentication, rate limiting and
// error classification. It does not retry; a failed call is classified and
// returned as-is.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *RateLimiter
	tokens     *TokenManager
	logger     *slog.Logger
}

// NewClient creates a gateway from configuration. The rate limiter and token
// manager are injected so tests can substitute them.
func NewClient(cfg *configs.MeliConfig, limiter *RateLimiter, tokens *TokenManager, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		baseURL:    cfg.APIURL,
		limiter:    limiter,
		tokens:     tokens,
		logger:     logger.With("component", "gateway"),
	}
}

// send performs one authenticated API call. Before the request it consumes
// one slot from the rate limiter (failing fast on ErrRateLimitExceeded) and
// attaches the current bearer token. A 204 response yields an empty JSON
// object, not an error.
func (c *Client) send(ctx context.Context, method, endpoint string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Acquire(); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "meli-sync/1.0")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("Authorization", "Bearer "+c.tokens.AccessToken(ctx))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, method, endpoint)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return json.RawMessage(`{}`), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode, endpoint, truncate(body, 512))
	}

	return body, nil
}

// isTimeout reports whether a transport error is a timeout, including a
// cancelled-by-deadline context.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// GetUser fetches a user profile. userID "me" resolves the token owner.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	raw, err := c.send(ctx, http.MethodGet, "/users/"+userID, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// SearchItemIDs fetches one page of item IDs for a seller. The endpoint
// returns identifiers only; full records come from GetItem.
func (c *Client) SearchItemIDs(ctx context.Context, sellerID string, limit, offset int, status string) (*ItemSearchResponse, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	if status != "" {
		params.Set("status", status)
	}

	raw, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/users/%s/items/search", sellerID), params)
	if err != nil {
		return nil, err
	}
	var page ItemSearchResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode item search: %w", err)
	}
	return &page, nil
}

// GetItem fetches the full detail record for one item.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	raw, err := c.send(ctx, http.MethodGet, "/items/"+itemID, nil)
	if err != nil {
		return nil, err
	}
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", itemID, err)
	}
	return &item, nil
}

// GetDescription fetches an item's description text.
func (c *Client) GetDescription(ctx context.Context, itemID string) (*Description, error) {
	raw, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/items/%s/description", itemID), nil)
	if err != nil {
		return nil, err
	}
	var d Description
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode description %s: %w", itemID, err)
	}
	return &d, nil
}

// GetReviews fetches an item's review aggregates.
func (c *Client) GetReviews(ctx context.Context, itemID string) (*Reviews, error) {
	raw, err := c.send(ctx, http.MethodGet, "/reviews/item/"+itemID, nil)
	if err != nil {
		return nil, err
	}
	var r Reviews
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode reviews %s: %w", itemID, err)
	}
	return &r, nil
}

// OrderSearchParams are the filters for SearchOrders. The sort value
// "date_created" is translated to the API's "date_asc".
type OrderSearchParams struct {
	SellerID string
	DateFrom string
	DateTo   string
	Sort     string
	Limit    int
	Offset   int
}

// SearchOrders fetches one page of order headers, including embedded line
// items and payments, plus the server-side paging metadata.
func (c *Client) SearchOrders(ctx context.Context, p OrderSearchParams) (*OrderSearchResponse, error) {
	params := url.Values{}
	params.Set("seller", p.SellerID)
	params.Set("limit", strconv.Itoa(p.Limit))
	params.Set("offset", strconv.Itoa(p.Offset))

	sort := p.Sort
	if sort == "" || sort == "date_created" {
		sort = "date_asc"
	}
	params.Set("sort", sort)

	if p.DateFrom != "" {
		params.Set("order.date_created.from", p.DateFrom)
	}
	if p.DateTo != "" {
		params.Set("order.date_created.to", p.DateTo)
	}

	raw, err := c.send(ctx, http.MethodGet, "/orders/search", params)
	if err != nil {
		return nil, err
	}
	var page OrderSearchResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode order search: %w", err)
	}
	return &page, nil
}

// GetQuestions fetches up to limit open questions for an item.
func (c *Client) GetQuestions(ctx context.Context, itemID string, limit int) (*QuestionsResponse, error) {
	params := url.Values{}
	params.Set("item_id", itemID)
	params.Set("limit", strconv.Itoa(limit))

	raw, err := c.send(ctx, http.MethodGet, "/questions/search", params)
	if err != nil {
		return nil, err
	}
	var q QuestionsResponse
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode questions %s: %w", itemID, err)
	}
	return &q, nil
}

// GetListingTypes fetches the listing types available on a site.
func (c *Client) GetListingTypes(ctx context.Context, siteID string) ([]ListingType, error) {
	raw, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/sites/%s/listing_types", siteID), nil)
	if err != nil {
		return nil, err
	}
	var types []ListingType
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("decode listing types: %w", err)
	}
	return types, nil
}

// GetCategories fetches the top-level categories of a site.
func (c *Client) GetCategories(ctx context.Context, siteID string) ([]Category, error) {
	raw, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/sites/%s/categories", siteID), nil)
	if err != nil {
		return nil, err
	}
	var cats []Category
	if err := json.Unmarshal(raw, &cats); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return cats, nil
}

// GetListingExposures fetches the exposure levels available on a site.
func (c *Client) GetListingExposures(ctx context.Context, siteID string) ([]ListingExposure, error) {
	raw, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/sites/%s/listing_exposures", siteID), nil)
	if err != nil {
		return nil, err
	}
	var exposures []ListingExposure
	if err := json.Unmarshal(raw, &exposures); err != nil {
		return nil, fmt.Errorf("decode listing exposures: %w", err)
	}
	return exposures, nil
}

// GetTrends fetches the trending search keywords of a site, narrowed to one
// category when categoryID is non-empty.
func (c *Client) GetTrends(ctx context.Context, siteID, categoryID string) ([]Trend, error) {
	endpoint := "/trends/" + siteID
	if categoryID != "" {
		endpoint += "/" + categoryID
	}

	raw, err := c.send(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var trends []Trend
	if err := json.Unmarshal(raw, &trends); err != nil {
		return nil, fmt.Errorf("decode trends: %w", err)
	}
	return trends, nil
}

// GetCategory fetches one category detail.
func (c *Client) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	raw, err := c.send(ctx, http.MethodGet, "/categories/"+categoryID, nil)
	if err != nil {
		return nil, err
	}
	var cat Category
	if err := json.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("decode category %s: %w", categoryID, err)
	}
	return &cat, nil
}
