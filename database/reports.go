package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"trash-report-service/models"
)

// ErrNotFound is returned when a requested report does not exist.
var ErrNotFound = errors.New("report not found")

// ReportService handles all report table operations
type ReportService struct {
	db *sql.DB
}

func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

// CreateReport persists a new report and returns its assigned seq.
func (s *ReportService) CreateReport(ctx context.Context, r *models.Report) (int64, error) {
	assessment, err := json.Marshal(r.Assessment)
	if err != nil {
		return 0, fmt.Errorf("failed to encode assessment: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `INSERT
		INTO reports (image, user_id, latitude, longitude, assessment)
		VALUES (?, ?, ?, ?, ?)`,
		r.Image, r.UserID, r.Latitude, r.Longitude, assessment)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report seq: %w", err)
	}
	return seq, nil
}

// MarkCleaned flips the cleaned flag of a report. Marking an already cleaned
// report succeeds without change.
//
// The existence check stays a separate statement on purpose: MySQL reports
// zero affected rows for a no-change UPDATE (without CLIENT_FOUND_ROWS), so
// a single UPDATE cannot tell a missing report from an already-cleaned one.
// Reports are never deleted, so the two statements cannot race with a
// removal.
func (s *ReportService) MarkCleaned(ctx context.Context, seq int64) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM reports WHERE seq = ?`, seq).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to check if report exists: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE reports SET cleaned = TRUE WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to mark report cleaned: %w", err)
	}
	return nil
}

// GetReport fetches a single report by seq.
func (s *ReportService) GetReport(ctx context.Context, seq int64) (*models.Report, error) {
	var (
		r          models.Report
		assessment []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT seq, image, user_id, latitude, longitude, cleaned, assessment, created_at
		FROM reports
		WHERE seq = ?`, seq).
		Scan(&r.Seq, &r.Image, &r.UserID, &r.Latitude, &r.Longitude, &r.Cleaned, &assessment, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report %d: %w", seq, err)
	}

	if err := json.Unmarshal(assessment, &r.Assessment); err != nil {
		return nil, fmt.Errorf("failed to decode assessment of report %d: %w", seq, err)
	}
	return &r, nil
}

// ListReports returns all reports, optionally filtered by cleaned status.
func (s *ReportService) ListReports(ctx context.Context, cleaned *bool) ([]models.Report, error) {
	query := `SELECT seq, image, user_id, latitude, longitude, cleaned, assessment, created_at
		FROM reports`
	args := []any{}
	if cleaned != nil {
		query += ` WHERE cleaned = ?`
		args = append(args, *cleaned)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var (
			r          models.Report
			assessment []byte
		)
		if err := rows.Scan(&r.Seq, &r.Image, &r.UserID, &r.Latitude, &r.Longitude, &r.Cleaned, &assessment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		if err := json.Unmarshal(assessment, &r.Assessment); err != nil {
			return nil, fmt.Errorf("failed to decode assessment of report %d: %w", r.Seq, err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading report rows: %w", err)
	}
	return reports, nil
}

// ListDistinctLocations returns every distinct coordinate pair observed
// across all reports.
func (s *ReportService) ListDistinctLocations(ctx context.Context) ([]models.Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT latitude, longitude FROM reports`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		var l models.Location
		if err := rows.Scan(&l.Latitude, &l.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading location rows: %w", err)
	}
	return locations, nil
}
