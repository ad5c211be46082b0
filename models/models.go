package models

import "time"

// Assessment is the structured payload decoded from the classifier response.
// Its schema is classifier-defined beyond the numeric "reward" field.
type Assessment map[string]any

// Report represents a single submitted trash site photograph
type Report struct {
	Seq        int64      `json:"seq"`
	Image      string     `json:"image"`
	UserID     string     `json:"user_id"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Cleaned    bool       `json:"cleaned"`
	Assessment Assessment `json:"assessment"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RewardEntry is one user's running reward balance
type RewardEntry struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

// Location is a distinct coordinate pair observed across reports
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SubmitResult is returned to the caller after a successful submission
type SubmitResult struct {
	ReportSeq  int64      `json:"report_seq"`
	Assessment Assessment `json:"assessment"`
}

// ReportsResponse wraps a report listing
type ReportsResponse struct {
	Reports []Report `json:"reports"`
}

// RewardsResponse wraps the ranked reward listing
type RewardsResponse struct {
	Rewards []RewardEntry `json:"rewards"`
}

// LocationsResponse wraps the distinct locations listing
type LocationsResponse struct {
	Locations []Location `json:"locations"`
}
