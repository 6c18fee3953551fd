// Package ghl is an HTTP client for the GoHighLevel CRM API: paginated
// opportunity search and pipeline/stage metadata.
package ghl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Franna88/medwave-sub001/internal/httpx"
)

// Client talks to the GoHighLevel REST API for a single location (tenant).
type Client struct {
	baseURL    string
	apiKey     string
	locationID string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      httpx.RetryConfig
}

// NewClient creates a GHL client. pageSize bounds opportunity search pages;
// values <= 0 fall back to 100.
func NewClient(baseURL, apiKey, locationID string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		locationID: locationID,
		pageSize:   pageSize,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// GHL allows 100 requests per 10 seconds per location; stay under it.
		limiter: rate.NewLimiter(rate.Every(150*time.Millisecond), 1),
		retry:   httpx.DefaultRetryConfig,
	}
}

type opportunityPage struct {
	Opportunities []Opportunity `json:"opportunities"`
	Meta          struct {
		Total       int `json:"total"`
		CurrentPage int `json:"currentPage"`
	} `json:"meta"`
}

// SearchOpportunities pages through the opportunity search endpoint until
// a page comes back short or empty. An optional pipelineID narrows the
// search. A failure on page 1 is fatal; a failure on a later page returns
// the records fetched so far along with the error so the caller can tally
// it and keep going.
func (c *Client) SearchOpportunities(ctx context.Context, pipelineID string) ([]Opportunity, error) {
	var all []Opportunity

	for page := 1; ; page++ {
		records, err := c.fetchOpportunityPage(ctx, pipelineID, page)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("fetching opportunities page 1: %w", err)
			}
			log.Printf("[GHL] page %d failed after retries, returning %d records: %v", page, len(all), err)
			return all, fmt.Errorf("fetching opportunities page %d: %w", page, err)
		}

		all = append(all, records...)
		if len(records) < c.pageSize {
			break
		}
	}

	return all, nil
}

func (c *Client) fetchOpportunityPage(ctx context.Context, pipelineID string, page int) ([]Opportunity, error) {
	return httpx.WithRetry(ctx, c.retry, func(ctx context.Context) ([]Opportunity, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s/opportunities/search?location_id=%s&limit=%d&page=%d",
			c.baseURL, c.locationID, c.pageSize, page)
		if pipelineID != "" {
			url += "&pipeline_id=" + pipelineID
		}

		var result opportunityPage
		if err := c.getJSON(ctx, url, &result); err != nil {
			return nil, err
		}
		return result.Opportunities, nil
	})
}

// GetPipelines returns the pipelines for the location, including stage ids
// and names, used to build the stage classification lookup ahead of a run.
func (c *Client) GetPipelines(ctx context.Context) ([]Pipeline, error) {
	return httpx.WithRetry(ctx, c.retry, func(ctx context.Context) ([]Pipeline, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var result struct {
			Pipelines []Pipeline `json:"pipelines"`
		}
		url := fmt.Sprintf("%s/pipelines?locationId=%s", c.baseURL, c.locationID)
		if err := c.getJSON(ctx, url, &result); err != nil {
			return nil, err
		}
		return result.Pipelines, nil
	})
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &httpx.APIError{Code: httpx.ErrUnavailable, Message: "ghl request failed", Retryable: true, Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &httpx.APIError{
			Code:       httpx.ErrRateLimited,
			Message:    "ghl rate limited",
			StatusCode: resp.StatusCode,
			Retryable:  true,
			RetryAfter: httpx.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &httpx.APIError{Code: httpx.ErrUnauthorized, Message: "ghl auth rejected", StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &httpx.APIError{Code: httpx.ErrUnavailable, Message: "ghl server error", StatusCode: resp.StatusCode, Retryable: true}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &httpx.APIError{
			Code:       httpx.ErrBadResponse,
			Message:    fmt.Sprintf("ghl unexpected status %d: %s", resp.StatusCode, body),
			StatusCode: resp.StatusCode,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &httpx.APIError{Code: httpx.ErrBadResponse, Message: "decoding ghl response", Cause: err}
	}
	return nil
}
