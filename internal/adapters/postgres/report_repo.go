package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/crimereport/internal/core/domain"
	"github.com/samirrijal/crimereport/internal/pkg/metrics"
)

const driverName = "postgres"

// ReportRepo implements ports.ReportRepository with pgx.
type ReportRepo struct {
	db    *DB
	table string
}

// NewReportRepo creates a new ReportRepo over table (quoted as an identifier).
func NewReportRepo(db *DB, table string) *ReportRepo {
	return &ReportRepo{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// Insert stores one report and fills in its ID and creation time.
func (r *ReportRepo) Insert(ctx context.Context, rep *domain.Report) error {
	defer metrics.ObserveStore(driverName, "insert", time.Now())

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO `+r.table+` (user_id, latt, long, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, created_at
	`, rep.UserID, rep.Lat, rep.Lng, rep.Description).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", r.table, err)
	}
	return nil
}

// List returns a page of reports, newest first, and the total count.
func (r *ReportRepo) List(ctx context.Context, limit, offset int) ([]domain.Report, int, error) {
	defer metrics.ObserveStore(driverName, "list", time.Now())

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM `+r.table).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, user_id, latt, long, description, COALESCE(area_label, ''), created_at
		FROM `+r.table+`
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	reports, err := scanReports(rows)
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ListWithin returns reports inside box, nearest to the box center first.
// Distance is ranked on an equirectangular projection, which keeps the order
// of great-circle distance at box scale.
func (r *ReportRepo) ListWithin(ctx context.Context, box domain.Bounds, limit int) ([]domain.Report, error) {
	defer metrics.ObserveStore(driverName, "list_within", time.Now())

	center := box.Center()
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id::text, user_id, latt, long, description, COALESCE(area_label, ''), created_at
		FROM `+r.table+`
		WHERE latt BETWEEN $1 AND $2 AND long BETWEEN $3 AND $4
		ORDER BY power(latt - $5, 2) + power((long - $6) * $7, 2), created_at DESC
		LIMIT $8
	`, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng,
		center.Lat, center.Lng, math.Cos(center.Lat*math.Pi/180), limit)
	if err != nil {
		return nil, err
	}
	return scanReports(rows)
}

// UpdateAreaLabel sets the reverse-geocoded label of one report.
func (r *ReportRepo) UpdateAreaLabel(ctx context.Context, id, label string) error {
	defer metrics.ObserveStore(driverName, "update_area_label", time.Now())

	tag, err := r.db.Pool.Exec(ctx, `UPDATE `+r.table+` SET area_label = $2 WHERE id::text = $1`, id, label)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s: %w", id, pgx.ErrNoRows)
	}
	return nil
}

func scanReports(rows pgx.Rows) ([]domain.Report, error) {
	defer rows.Close()

	reports := []domain.Report{}
	for rows.Next() {
		var rep domain.Report
		if err := rows.Scan(
			&rep.ID, &rep.UserID, &rep.Lat, &rep.Lng,
			&rep.Description, &rep.AreaLabel, &rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
