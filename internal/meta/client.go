// Package meta is an HTTP client for the Meta Ads reporting API: ad
// metadata and weekly delivery insights.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/Franna88/medwave-sub001/internal/httpx"
)

// Client talks to the Meta Graph API for a single ad account.
type Client struct {
	baseURL     string
	accessToken string
	adAccountID string
	httpClient  *http.Client
	limiter     *rate.Limiter
	retry       httpx.RetryConfig
}

// NewClient creates a Meta Ads client for the given ad account
// (the "act_..." prefix is added if missing).
func NewClient(baseURL, accessToken, adAccountID string) *Client {
	if len(adAccountID) < 4 || adAccountID[:4] != "act_" {
		adAccountID = "act_" + adAccountID
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		adAccountID: adAccountID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		retry:   httpx.DefaultRetryConfig,
	}
}

type adRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	AdSet  struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"adset"`
	Campaign struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"campaign"`
}

type pagedResponse[T any] struct {
	Data   []T `json:"data"`
	Paging struct {
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
}

// ListAds pages through the account's ads with their ad-set and campaign
// context, following the Graph API's cursor pagination to exhaustion.
func (c *Client) ListAds(ctx context.Context) ([]Ad, error) {
	var all []Ad
	after := ""

	for {
		page, err := httpx.WithRetry(ctx, c.retry, func(ctx context.Context) (*pagedResponse[adRow], error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}

			q := url.Values{}
			q.Set("fields", "id,name,status,adset{id,name},campaign{id,name}")
			q.Set("limit", "100")
			if after != "" {
				q.Set("after", after)
			}

			var result pagedResponse[adRow]
			u := fmt.Sprintf("%s/%s/ads?%s", c.baseURL, c.adAccountID, q.Encode())
			if err := c.getJSON(ctx, u, &result); err != nil {
				return nil, err
			}
			return &result, nil
		})
		if err != nil {
			if len(all) == 0 {
				return nil, fmt.Errorf("listing ads: %w", err)
			}
			return all, fmt.Errorf("listing ads after %d records: %w", len(all), err)
		}

		for _, row := range page.Data {
			all = append(all, Ad{
				ID:           row.ID,
				Name:         row.Name,
				Status:       row.Status,
				AdSetID:      row.AdSet.ID,
				AdSetName:    row.AdSet.Name,
				CampaignID:   row.Campaign.ID,
				CampaignName: row.Campaign.Name,
			})
		}

		if page.Paging.Next == "" || page.Paging.Cursors.After == "" {
			break
		}
		after = page.Paging.Cursors.After
	}

	return all, nil
}

type insightRow struct {
	DateStart   string `json:"date_start"`
	DateStop    string `json:"date_stop"`
	Spend       string `json:"spend"`
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Reach       string `json:"reach"`
}

// GetAdInsights fetches delivery metrics for one ad over [since, until] in
// 7-day increments, matching the dashboard's weekly buckets. CPM, CPC and
// CTR are derived from the raw counts.
func (c *Client) GetAdInsights(ctx context.Context, adID string, since, until time.Time) ([]Insight, error) {
	page, err := httpx.WithRetry(ctx, c.retry, func(ctx context.Context) (*pagedResponse[insightRow], error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		q := url.Values{}
		q.Set("fields", "spend,impressions,clicks,reach")
		q.Set("time_increment", "7")
		q.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`,
			since.Format("2006-01-02"), until.Format("2006-01-02")))

		var result pagedResponse[insightRow]
		u := fmt.Sprintf("%s/%s/insights?%s", c.baseURL, adID, q.Encode())
		if err := c.getJSON(ctx, u, &result); err != nil {
			return nil, err
		}
		return &result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching insights for ad %s: %w", adID, err)
	}

	insights := make([]Insight, 0, len(page.Data))
	for _, row := range page.Data {
		ins := Insight{
			AdID:        adID,
			DateStart:   row.DateStart,
			DateStop:    row.DateStop,
			SpendCents:  parseDollarsToCents(row.Spend),
			Impressions: parseCount(row.Impressions),
			Clicks:      parseCount(row.Clicks),
			Reach:       parseCount(row.Reach),
		}
		if ins.Impressions > 0 {
			ins.CPMCents = ins.SpendCents * 1000 / ins.Impressions
			ins.CTR = float64(ins.Clicks) / float64(ins.Impressions) * 100
		}
		if ins.Clicks > 0 {
			ins.CPCCents = ins.SpendCents / ins.Clicks
		}
		insights = append(insights, ins)
	}
	return insights, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &httpx.APIError{Code: httpx.ErrUnavailable, Message: "meta request failed", Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &httpx.APIError{
			Code:       httpx.ErrRateLimited,
			Message:    "meta rate limited",
			StatusCode: resp.StatusCode,
			Retryable:  true,
			RetryAfter: httpx.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &httpx.APIError{Code: httpx.ErrUnauthorized, Message: "meta auth rejected", StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &httpx.APIError{Code: httpx.ErrUnavailable, Message: "meta server error", StatusCode: resp.StatusCode, Retryable: true}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httpx.APIError{
			Code:       httpx.ErrBadResponse,
			Message:    fmt.Sprintf("meta unexpected status %d: %s", resp.StatusCode, body),
			StatusCode: resp.StatusCode,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &httpx.APIError{Code: httpx.ErrBadResponse, Message: "decoding meta response", Cause: err}
	}
	return nil
}

// parseDollarsToCents converts the API's string dollar amounts ("12.34")
// to integer cents.
func parseDollarsToCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f*100 + 0.5)
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
