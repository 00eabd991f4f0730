// Package player talks to the HTTP API of the background playback process.
package player

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/tuner/internal/events"
	"github.com/five82/tuner/internal/station"
)

// EventSource is the part of the API the poller needs.
type EventSource interface {
	FetchStations(ctx context.Context) ([]station.Record, error)
	FetchEvents(ctx context.Context, query EventQuery) (EventBatch, error)
}

// Ensure Client implements EventSource at compile time.
var _ EventSource = (*Client)(nil)

// Client talks to the playback process.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:7491"
	defaultUserAgent = "tuner/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchStatus retrieves the playback process status.
func (c *Client) FetchStatus(ctx context.Context) (*StatusResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StatusResponse
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/api/status"}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchStations retrieves the station list as the playback process knows it.
func (c *Client) FetchStations(ctx context.Context) ([]station.Record, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StationListResponse
	if err := c.do(ctx, http.MethodGet, &url.URL{Path: "/api/stations"}, &payload); err != nil {
		return nil, err
	}
	records, err := events.Records(payload.Stations)
	if err != nil {
		return nil, fmt.Errorf("decode stations: %w", err)
	}
	return records, nil
}

// EventQuery configures /api/events requests.
type EventQuery struct {
	Since  uint64
	Limit  int
	WaitMS int
}

// FetchEvents retrieves signals emitted after the Since cursor. With WaitMS
// set the server may hold the request open until something happens.
func (c *Client) FetchEvents(ctx context.Context, query EventQuery) (EventBatch, error) {
	if c == nil {
		return EventBatch{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if query.Since > 0 {
		values.Set("since", strconv.FormatUint(query.Since, 10))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.WaitMS > 0 {
		values.Set("wait_ms", strconv.Itoa(query.WaitMS))
	}
	rel := &url.URL{Path: "/api/events", RawQuery: values.Encode()}
	var payload EventBatch
	if err := c.do(ctx, http.MethodGet, rel, &payload); err != nil {
		return EventBatch{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
