package models

import "time"

// ActivityLevel buckets a learner's recent review throughput.
type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"
)

// DailyActivity is one day of review throughput.
type DailyActivity struct {
	Date        time.Time `db:"day"`
	ReviewCount int       `db:"review_count"`
}

// ActivityProfile is the exposure policy derived from recent throughput:
// how many exposure slots a session may spend, and how long a well-learned
// item must rest between exposures.
type ActivityProfile struct {
	Level                  ActivityLevel
	ExposureSlots          int
	MinDaysBetweenExposure int
}
