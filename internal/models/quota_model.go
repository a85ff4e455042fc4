package models

import "time"

// QuotaUsage mirrors the per-user feature counters stored on the user
// document. The daily rollover of dailyOptimizationCount is performed by an
// external scheduled writer, not by this service.
type QuotaUsage struct {
	DailyOptimizationCount int        `json:"dailyOptimizationCount" firestore:"dailyOptimizationCount"`
	LastOptimizationReset  *time.Time `json:"lastOptimizationReset,omitempty" firestore:"lastOptimizationReset,omitempty"`
	StoredPromptsCount     int        `json:"storedPromptsCount" firestore:"storedPromptsCount"`
}
