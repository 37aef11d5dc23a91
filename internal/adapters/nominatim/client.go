package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

// Client implements ports.PlaceSearcher against a Nominatim instance.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
}

// New creates a Nominatim client. baseURL is e.g. https://nominatim.openstreetmap.org.
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		http: &fasthttp.Client{
			Name:                userAgent,
			MaxIdleConnDuration: 30 * time.Second,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Search performs GET /search?format=json&q=<query>. The query is passed
// through untouched and the decoded records are returned in service order.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	body, err := c.get(ctx, "search", func(args *fasthttp.Args) {
		args.Set("format", "json")
		args.Set("q", query)
	})
	if err != nil {
		return nil, err
	}

	var results []domain.SearchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("decode nominatim search: %w", err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// Reverse performs GET /reverse and returns the display name of the nearest place.
func (c *Client) Reverse(ctx context.Context, at domain.Coordinate) (string, error) {
	body, err := c.get(ctx, "reverse", func(args *fasthttp.Args) {
		args.Set("format", "json")
		args.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
		args.Set("lon", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	})
	if err != nil {
		return "", err
	}

	var r reverseResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("decode nominatim reverse: %w", err)
	}
	if r.Error != "" {
		return "", fmt.Errorf("nominatim reverse: %s", r.Error)
	}
	return r.DisplayName, nil
}

func (c *Client) get(ctx context.Context, endpoint string, query func(args *fasthttp.Args)) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/" + endpoint)
	query(req.URI().QueryArgs())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	err := c.do(ctx, req, resp)
	metrics.GeocoderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("nominatim %s request failed: %w", endpoint, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("nominatim %s returned status %d", endpoint, resp.StatusCode())
	}

	// resp is released on return; copy the body out.
	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		return c.http.DoDeadline(req, resp, deadline)
	}
	return c.http.DoTimeout(req, resp, c.timeout)
}
