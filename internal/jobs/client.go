// Package jobs searches live job postings through the JSearch API on
// RapidAPI, with short-lived caching so repeated searches stay off the
// metered upstream.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const clientTimeout = 15 * time.Second

// Job is one posting, flattened from the upstream response.
type Job struct {
	ID          string `json:"job_id"`
	Title       string `json:"job_title"`
	Employer    string `json:"employer_name"`
	City        string `json:"job_city"`
	Country     string `json:"job_country"`
	IsRemote    bool   `json:"job_is_remote"`
	ApplyLink   string `json:"job_apply_link"`
	Description string `json:"job_description"`
	PostedAt    string `json:"job_posted_at_datetime_utc"`
}

// Client calls the JSearch API.
type Client struct {
	host       string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client for the given RapidAPI host and key.
func NewClient(host, apiKey string) *Client {
	return &Client{
		host:    host,
		apiKey:  apiKey,
		baseURL: "https://" + host,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

type searchResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    []Job  `json:"data"`
}

// Search queries postings for the given keywords and result page.
func (c *Client) Search(ctx context.Context, query string, page int) ([]Job, error) {
	if strings.TrimSpace(c.apiKey) == "" || strings.TrimSpace(c.host) == "" {
		return nil, fmt.Errorf("jobs API not configured")
	}
	if page < 1 {
		page = 1
	}

	endpoint := c.baseURL + "/search?query=" + url.QueryEscape(query) + "&page=" + strconv.Itoa(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("jobs response parse: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Message != "" {
			return nil, fmt.Errorf("jobs search failed: %s", parsed.Message)
		}
		return nil, fmt.Errorf("jobs search failed: status %d", resp.StatusCode)
	}
	if parsed.Data == nil {
		return []Job{}, nil
	}
	return parsed.Data, nil
}
