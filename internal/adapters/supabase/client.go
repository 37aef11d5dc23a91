package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/pkg/geospatial"
	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

const driverName = "supabase"

const (
	// boxPageSize matches the default PostgREST max-rows.
	boxPageSize = 1000
	// maxBoxScan caps how many rows ListWithin reads for one box.
	maxBoxScan = 5000
)

// ReportRepo implements ports.ReportRepository on the PostgREST interface of a
// hosted Supabase project.
type ReportRepo struct {
	http    *fasthttp.Client
	baseURL string
	key     string
	table   string
	timeout time.Duration

	pageSize int
}

// NewReportRepo creates a repository for table in the project at projectURL,
// authenticating with the anonymous (or service) key.
func NewReportRepo(projectURL, key, table string, timeout time.Duration) *ReportRepo {
	return &ReportRepo{
		http: &fasthttp.Client{
			Name:                "crimereport",
			MaxIdleConnDuration: 30 * time.Second,
		},
		baseURL:  strings.TrimRight(projectURL, "/") + "/rest/v1/" + url.PathEscape(table),
		key:      key,
		table:    table,
		timeout:  timeout,
		pageSize: boxPageSize,
	}
}

// row is the stored shape. The coordinate columns are named latt and long.
type row struct {
	ID          json.RawMessage `json:"id,omitempty"`
	UserID      string          `json:"user_id"`
	Latt        float64         `json:"latt"`
	Long        float64         `json:"long"`
	Description string          `json:"description"`
	AreaLabel   *string         `json:"area_label,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

type insertRow struct {
	UserID      string  `json:"user_id"`
	Latt        float64 `json:"latt"`
	Long        float64 `json:"long"`
	Description string  `json:"description"`
}

func (r row) toDomain() domain.Report {
	rep := domain.Report{
		ID:          rawID(r.ID),
		UserID:      r.UserID,
		Lat:         r.Latt,
		Lng:         r.Long,
		Description: r.Description,
	}
	if r.AreaLabel != nil {
		rep.AreaLabel = *r.AreaLabel
	}
	if r.CreatedAt != nil {
		rep.CreatedAt = *r.CreatedAt
	}
	return rep
}

// rawID accepts both bigint and uuid primary keys.
func rawID(b json.RawMessage) string {
	if len(b) == 0 || string(b) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return string(b)
}

// Insert sends exactly one insert request and fills report from the returned row.
func (r *ReportRepo) Insert(ctx context.Context, report *domain.Report) error {
	defer metrics.ObserveStore(driverName, "insert", time.Now())

	body, err := json.Marshal([]insertRow{{
		UserID:      report.UserID,
		Latt:        report.Lat,
		Long:        report.Lng,
		Description: report.Description,
	}})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	resp, err := r.do(ctx, fasthttp.MethodPost, nil, body, "return=representation")
	if err != nil {
		return err
	}

	// A 2xx means the row is stored; an unreadable echo is not a failure.
	var rows []row
	if len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, &rows); err != nil {
			slog.WarnContext(ctx, "supabase: decode inserted row", "error", err)
			rows = nil
		}
	}
	if len(rows) > 0 {
		stored := rows[0].toDomain()
		report.ID = stored.ID
		report.CreatedAt = stored.CreatedAt
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	return nil
}

// List returns a page of reports, newest first, with the exact total count.
func (r *ReportRepo) List(ctx context.Context, limit, offset int) ([]domain.Report, int, error) {
	defer metrics.ObserveStore(driverName, "list", time.Now())

	resp, err := r.do(ctx, fasthttp.MethodGet, func(args *fasthttp.Args) {
		args.Set("select", "*")
		args.Set("order", "created_at.desc")
		args.Set("limit", strconv.Itoa(limit))
		args.Set("offset", strconv.Itoa(offset))
	}, nil, "count=exact")
	if err != nil {
		return nil, 0, err
	}

	reports, err := decodeRows(resp.body)
	if err != nil {
		return nil, 0, err
	}

	total, ok := parseContentRangeTotal(resp.contentRange)
	if !ok {
		total = offset + len(reports)
	}
	return reports, total, nil
}

// ListWithin reads the rows inside box page by page (at most maxBoxScan) and
// returns the limit rows nearest the box center. PostgREST cannot order by an
// expression, so the ordering happens here.
func (r *ReportRepo) ListWithin(ctx context.Context, box domain.Bounds, limit int) ([]domain.Report, error) {
	defer metrics.ObserveStore(driverName, "list_within", time.Now())

	var all []domain.Report
	for offset := 0; offset < maxBoxScan; offset += r.pageSize {
		resp, err := r.do(ctx, fasthttp.MethodGet, func(args *fasthttp.Args) {
			args.Set("select", "*")
			args.Add("latt", "gte."+formatFloat(box.MinLat))
			args.Add("latt", "lte."+formatFloat(box.MaxLat))
			args.Add("long", "gte."+formatFloat(box.MinLng))
			args.Add("long", "lte."+formatFloat(box.MaxLng))
			args.Set("order", "id.asc")
			args.Set("limit", strconv.Itoa(r.pageSize))
			args.Set("offset", strconv.Itoa(offset))
		}, nil, "")
		if err != nil {
			return nil, err
		}
		page, err := decodeRows(resp.body)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < r.pageSize {
			break
		}
	}

	center := box.Center()
	dist := func(rep domain.Report) float64 {
		return geospatial.Haversine(center.Lat, center.Lng, rep.Lat, rep.Lng)
	}
	sort.SliceStable(all, func(i, j int) bool {
		di, dj := dist(all[i]), dist(all[j])
		if di != dj {
			return di < dj
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// UpdateAreaLabel patches the area_label column of one row.
func (r *ReportRepo) UpdateAreaLabel(ctx context.Context, id, label string) error {
	defer metrics.ObserveStore(driverName, "update_area_label", time.Now())

	body, err := json.Marshal(map[string]string{"area_label": label})
	if err != nil {
		return err
	}
	_, err = r.do(ctx, fasthttp.MethodPatch, func(args *fasthttp.Args) {
		args.Set("id", "eq."+id)
	}, body, "return=minimal")
	return err
}

type response struct {
	body         []byte
	contentRange string
}

func (r *ReportRepo) do(ctx context.Context, method string, query func(*fasthttp.Args), body []byte, prefer string) (*response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.baseURL)
	if query != nil {
		query(req.URI().QueryArgs())
	}
	req.Header.SetMethod(method)
	req.Header.Set("apikey", r.key)
	req.Header.Set("Authorization", "Bearer "+r.key)
	req.Header.Set("Accept", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = r.http.DoDeadline(req, resp, deadline)
	} else {
		err = r.http.DoTimeout(req, resp, r.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, r.table, err)
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &Error{Status: code, Body: string(resp.Body())}
	}

	return &response{
		body:         append([]byte(nil), resp.Body()...),
		contentRange: string(resp.Header.Peek("Content-Range")),
	}, nil
}

// Error is a non-2xx answer from PostgREST.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Body)
}

func decodeRows(body []byte) ([]domain.Report, error) {
	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	reports := make([]domain.Report, 0, len(rows))
	for _, rw := range rows {
		reports = append(reports, rw.toDomain())
	}
	return reports, nil
}

// parseContentRangeTotal reads the total from "0-24/3573" or "*/0".
func parseContentRangeTotal(v string) (int, bool) {
	i := strings.LastIndexByte(v, '/')
	if i < 0 || i == len(v)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(v[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
