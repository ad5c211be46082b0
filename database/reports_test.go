package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"trash-report-service/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func reportColumns() []string {
	return []string{"seq", "image", "user_id", "latitude", "longitude", "cleaned", "assessment", "created_at"}
}

func TestCreateReport(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		report := &models.Report{
			Image:      "public/2024_img.jpg",
			UserID:     "user-1",
			Latitude:   42.44,
			Longitude:  19.26,
			Assessment: models.Assessment{"reward": float64(10), "status": "dirty"},
		}

		mock.ExpectExec("INSERT INTO reports \\(image, user_id, latitude, longitude, assessment\\) VALUES \\((.+), (.+), (.+), (.+), (.+)\\)").
			WithArgs(report.Image, report.UserID, report.Latitude, report.Longitude, []byte(`{"reward":10,"status":"dirty"}`)).
			WillReturnResult(sqlmock.NewResult(7, 1))

		seq, err := s.CreateReport(context.Background(), report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seq != 7 {
			t.Errorf("expected seq 7, got %d", seq)
		}
	})
}

func TestMarkCleaned(t *testing.T) {
	it(func() {
		testCases := []struct {
			name      string
			seq       int64
			seqExists bool

			expectedErr error
		}{
			{
				name:      "existing report",
				seq:       5,
				seqExists: true,
			},
			{
				name:        "missing report",
				seq:         999,
				seqExists:   false,
				expectedErr: ErrNotFound,
			},
		}

		s := NewReportService(db)

		for _, testCase := range testCases {
			existsRows := sqlmock.NewRows([]string{"1"})
			if testCase.seqExists {
				existsRows.AddRow(1)
			}
			mock.ExpectQuery("SELECT 1 FROM reports WHERE seq = (.+)").
				WithArgs(testCase.seq).
				WillReturnRows(existsRows)

			if testCase.seqExists {
				mock.ExpectExec("UPDATE reports SET cleaned = TRUE WHERE seq = (.+)").
					WithArgs(testCase.seq).
					WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := s.MarkCleaned(context.Background(), testCase.seq)
			if !errors.Is(err, testCase.expectedErr) {
				t.Errorf("%s: expected error %v, got %v", testCase.name, testCase.expectedErr, err)
			}
		}
	})
}

func TestMarkCleanedIdempotent(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		// An already-cleaned report is still found and updated without error.
		mock.ExpectQuery("SELECT 1 FROM reports WHERE seq = (.+)").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec("UPDATE reports SET cleaned = TRUE WHERE seq = (.+)").
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := s.MarkCleaned(context.Background(), 5); err != nil {
			t.Errorf("expected idempotent success, got %v", err)
		}
	})
}

func TestGetReport(t *testing.T) {
	it(func() {
		s := NewReportService(db)
		createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		mock.ExpectQuery("SELECT seq, image, user_id, latitude, longitude, cleaned, assessment, created_at FROM reports WHERE seq = (.+)").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(reportColumns()).
				AddRow(3, "public/img.jpg", "user-1", 42.44, 19.26, false, []byte(`{"reward":10}`), createdAt))

		report, err := s.GetReport(context.Background(), 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Seq != 3 || report.UserID != "user-1" || report.Cleaned {
			t.Errorf("unexpected report: %+v", report)
		}
		if reward, ok := report.Assessment["reward"].(float64); !ok || reward != 10 {
			t.Errorf("expected assessment reward 10, got %v", report.Assessment["reward"])
		}
	})
}

func TestGetReportNotFound(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectQuery("SELECT seq, image, user_id, latitude, longitude, cleaned, assessment, created_at FROM reports WHERE seq = (.+)").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(reportColumns()))

		_, err := s.GetReport(context.Background(), 404)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestListReports(t *testing.T) {
	it(func() {
		s := NewReportService(db)
		createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		testCases := []struct {
			name        string
			cleaned     *bool
			filterArg   bool
			expectedLen int
		}{
			{
				name:        "no filter",
				cleaned:     nil,
				expectedLen: 2,
			},
			{
				name:        "cleaned only",
				cleaned:     boolPtr(true),
				filterArg:   true,
				expectedLen: 1,
			},
		}

		for _, testCase := range testCases {
			rows := sqlmock.NewRows(reportColumns()).
				AddRow(1, "public/a.jpg", "user-1", 42.44, 19.26, true, []byte(`{"reward":5}`), createdAt)
			if testCase.cleaned == nil {
				rows.AddRow(2, "public/b.jpg", "user-2", 42.45, 19.27, false, []byte(`{"reward":8}`), createdAt)
				mock.ExpectQuery("SELECT seq, image, user_id, latitude, longitude, cleaned, assessment, created_at FROM reports").
					WillReturnRows(rows)
			} else {
				mock.ExpectQuery("SELECT seq, image, user_id, latitude, longitude, cleaned, assessment, created_at FROM reports WHERE cleaned = (.+)").
					WithArgs(testCase.filterArg).
					WillReturnRows(rows)
			}

			reports, err := s.ListReports(context.Background(), testCase.cleaned)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", testCase.name, err)
			}
			if len(reports) != testCase.expectedLen {
				t.Errorf("%s: expected %d reports, got %d", testCase.name, testCase.expectedLen, len(reports))
			}
		}
	})
}

func TestListDistinctLocations(t *testing.T) {
	it(func() {
		s := NewReportService(db)

		mock.ExpectQuery("SELECT DISTINCT latitude, longitude FROM reports").
			WillReturnRows(sqlmock.NewRows([]string{"latitude", "longitude"}).
				AddRow(42.44, 19.26).
				AddRow(42.45, 19.27))

		locations, err := s.ListDistinctLocations(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(locations) != 2 {
			t.Fatalf("expected 2 locations, got %d", len(locations))
		}

		seen := map[string]bool{}
		for _, l := range locations {
			key := fmt.Sprintf("%f:%f", l.Latitude, l.Longitude)
			if seen[key] {
				t.Errorf("duplicate location %s in result", key)
			}
			seen[key] = true
		}
	})
}

func boolPtr(b bool) *bool {
	return &b
}
