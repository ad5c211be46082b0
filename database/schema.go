package database

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the necessary database tables if they don't exist
func InitSchema(db *sql.DB) error {
	log.Info("Initializing trash-report-service database schema...")

	reportsTableSQL := `
	CREATE TABLE IF NOT EXISTS reports(
		seq INT NOT NULL AUTO_INCREMENT,
		image VARCHAR(255) NOT NULL,
		user_id VARCHAR(255) NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		cleaned BOOL NOT NULL DEFAULT false,
		assessment JSON NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (seq),
		INDEX cleaned_index (cleaned),
		INDEX user_id_index (user_id)
	)`

	if _, err := db.Exec(reportsTableSQL); err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}
	log.Info("Reports table created/verified")

	rewardsTableSQL := `
	CREATE TABLE IF NOT EXISTS rewards(
		user_id VARCHAR(255) NOT NULL,
		username VARCHAR(255) NOT NULL,
		points INT NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id)
	)`

	if _, err := db.Exec(rewardsTableSQL); err != nil {
		return fmt.Errorf("failed to create rewards table: %w", err)
	}
	log.Info("Rewards table created/verified")

	return nil
}
