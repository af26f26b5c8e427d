package models

import "time"

// StatisticsSnapshot is the singleton row of running totals.
type StatisticsSnapshot struct {
	TotalIdeasGenerated   int64     `json:"total_ideas_generated" db:"total_ideas_generated"`
	TotalScriptsGenerated int64     `json:"total_scripts_generated" db:"total_scripts_generated"`
	TotalFeedbacks        int64     `json:"total_feedbacks" db:"total_feedbacks"`
	LastUpdated           time.Time `json:"last_updated" db:"last_updated"`
}

// UserCounts summarizes registered accounts by tier.
type UserCounts struct {
	Total   int64 `json:"total"`
	Premium int64 `json:"premium"`
	Admins  int64 `json:"admins"`
}
