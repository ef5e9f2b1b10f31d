// stats.go holds the quick aggregate queries used outside the windowed
// reports: the student dashboard counters. Kept as raw SQL so the database
// does the summing, the same way the old aggregation pipeline did.
package repository

import (
	"context"
	"time"

	"github.com/KRaymonne/pro/internal/database"
)

// PersonalStats are the all-time dashboard counters for one student.
type PersonalStats struct {
	TotalSessions     int64    `json:"totalLectures"`
	CompletedSessions int64    `json:"lecturesTerminees"`
	ActiveSessions    int64    `json:"lecturesEnCours"`
	AverageScore      float64  `json:"scoresMoyen"`
	AverageDuration   float64  `json:"tempsMoyenLecture"`
	TotalDuration     int64    `json:"tempsTotal"`
}

// WeekStats count the last seven days of activity.
type WeekStats struct {
	Sessions int64 `json:"lecturesSemaine"`
	Duration int64 `json:"tempsSemaine"`
}

// GetPersonalStats computes the all-time counters for a user.
func GetPersonalStats(ctx context.Context, userID uint) (*PersonalStats, error) {
	var stats PersonalStats
	query := `
		SELECT
			COUNT(*) AS total_sessions,
			COALESCE(SUM(CASE WHEN status = 'terminee' THEN 1 ELSE 0 END), 0)  AS completed_sessions,
			COALESCE(SUM(CASE WHEN status = 'en-cours' THEN 1 ELSE 0 END), 0)  AS active_sessions,
			COALESCE(AVG(score), 0)                                            AS average_score,
			COALESCE(AVG(duration), 0)                                         AS average_duration,
			COALESCE(SUM(duration), 0)                                         AS total_duration
		FROM reading_sessions
		WHERE user_id = ?
	`
	err := database.DB.WithContext(ctx).Raw(query, userID).Scan(&stats).Error
	return &stats, err
}

// GetWeekStats counts sessions started in the last seven days.
func GetWeekStats(ctx context.Context, userID uint, now time.Time) (*WeekStats, error) {
	var stats WeekStats
	query := `
		SELECT
			COUNT(*)                   AS sessions,
			COALESCE(SUM(duration), 0) AS duration
		FROM reading_sessions
		WHERE user_id = ? AND started_at >= ?
	`
	err := database.DB.WithContext(ctx).Raw(query, userID, now.AddDate(0, 0, -7)).Scan(&stats).Error
	return &stats, err
}

// RecordingStats are the per-user recording counters.
type RecordingStats struct {
	TotalRecordings       int64   `json:"totalEnregistrements"`
	TotalDuration         float64 `json:"dureeTotal"`
	AverageComparison     float64 `json:"scoreComparaisonMoyen"`
}

// GetRecordingStats computes the user's recording counters over active rows.
func GetRecordingStats(ctx context.Context, userID uint) (*RecordingStats, error) {
	var stats RecordingStats
	query := `
		SELECT
			COUNT(*)                             AS total_recordings,
			COALESCE(SUM(duration), 0)           AS total_duration,
			COALESCE(AVG(comparison_score), 0)   AS average_comparison
		FROM recordings
		WHERE user_id = ? AND active = ?
	`
	err := database.DB.WithContext(ctx).Raw(query, userID, true).Scan(&stats).Error
	return &stats, err
}

// GetRecordingQualityCounts returns the count of active recordings per
// quality category for a user.
func GetRecordingQualityCounts(ctx context.Context, userID uint) (map[string]int, error) {
	var rows []struct {
		Quality string
		N       int
	}
	query := `
		SELECT quality, COUNT(*) AS n
		FROM recordings
		WHERE user_id = ? AND active = ?
		GROUP BY quality
	`
	if err := database.DB.WithContext(ctx).Raw(query, userID, true).Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Quality] = row.N
	}
	return counts, nil
}
