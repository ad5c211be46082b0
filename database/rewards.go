package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"trash-report-service/models"
)

// usernamePattern strips everything from the first '@' onward, turning an
// email-shaped identity string into its local part.
var usernamePattern = regexp.MustCompile(`@\S+`)

// RewardService handles the per-user reward ledger
type RewardService struct {
	db *sql.DB
}

func NewRewardService(db *sql.DB) *RewardService {
	return &RewardService{db: db}
}

// CreditPoints adds points to a user's balance, creating the ledger row on
// first credit. The increment-or-insert runs as one statement so concurrent
// credits for the same user can neither race on row creation nor lose
// updates.
func (s *RewardService) CreditPoints(ctx context.Context, userID string, points int64, displayNameSource string) error {
	if points < 0 {
		return fmt.Errorf("refusing to credit negative points %d to user %s", points, userID)
	}

	username := usernamePattern.ReplaceAllString(displayNameSource, "")

	_, err := s.db.ExecContext(ctx, `INSERT INTO rewards (user_id, username, points) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE points = points + VALUES(points)`,
		userID, username, points)
	if err != nil {
		return fmt.Errorf("failed to credit %d points to user %s: %w", points, userID, err)
	}
	return nil
}

// ListRanked returns all ledger entries ordered by points descending.
func (s *RewardService) ListRanked(ctx context.Context) ([]models.RewardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, username, points
		FROM rewards
		ORDER BY points DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	defer rows.Close()

	entries := []models.RewardEntry{}
	for rows.Next() {
		var e models.RewardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Points); err != nil {
			return nil, fmt.Errorf("failed to scan reward row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading reward rows: %w", err)
	}
	return entries, nil
}
