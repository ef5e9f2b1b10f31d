package reports

import (
	"sort"

	"github.com/KRaymonne/pro/internal/models"
)

// At-risk thresholds: a student falls below either and gets flagged.
const (
	atRiskScoreThreshold   = 60.0
	atRiskSuccessThreshold = 50.0
)

// StudentAggregate is one roster entry of the classroom ranking.
type StudentAggregate struct {
	UserID            uint    `json:"utilisateurId"`
	LastName          string  `json:"nom"`
	FirstName         string  `json:"prenom"`
	Class             string  `json:"classe"`
	AverageScore      float64 `json:"scoresMoyen"`
	TotalSessions     int     `json:"totalLectures"`
	CompletedSessions int     `json:"lecturesTerminees"`
	TotalDuration     int     `json:"tempsTotal"`
	SuccessRate       float64 `json:"tauxReussite"`
}

// AtRisk reports whether the aggregate trips either alert threshold.
func (a StudentAggregate) AtRisk() bool {
	return a.AverageScore < atRiskScoreThreshold || a.SuccessRate < atRiskSuccessThreshold
}

// ClassroomStats are the class-wide counters.
type ClassroomStats struct {
	StudentCount   int     `json:"nombreEleves"`
	ActiveStudents int     `json:"elevesActifs"`
	SuccessRate    float64 `json:"tauxReussite"`
	AverageScore   float64 `json:"scoresMoyen"`
	TotalDuration  int     `json:"tempsTotal"`
	TotalSessions  int     `json:"totalLectures"`
}

// ClassroomAlerts are the teacher-facing warning counters.
type ClassroomAlerts struct {
	AtRiskCount      int `json:"nombreElevesEnDifficulte"`
	InactiveStudents int `json:"elevesInactifs"`
}

// ClassroomReport is the teacher's view of a class over a window.
type ClassroomReport struct {
	Period  Window             `json:"periode"`
	Stats   ClassroomStats     `json:"statistiques"`
	Ranking []StudentAggregate `json:"classement"`
	AtRisk  []StudentAggregate `json:"elevesEnDifficulte"`
	Alerts  ClassroomAlerts    `json:"alertes"`
}

// BuildClassroomReport aggregates the roster's sessions within the window.
// An empty roster yields a zero-valued report with an empty ranking. Students
// with no sessions in the window don't rank; they count as inactive. Ranking
// ties keep roster order (stable sort, no secondary key).
func BuildClassroomReport(window Window, roster []models.User, sessions []models.ReadingSession) *ClassroomReport {
	report := &ClassroomReport{
		Period:  window,
		Ranking: []StudentAggregate{},
		AtRisk:  []StudentAggregate{},
	}
	report.Stats.StudentCount = len(roster)
	if len(roster) == 0 {
		return report
	}

	perStudent := map[uint][]models.ReadingSession{}
	for _, s := range sessions {
		perStudent[s.UserID] = append(perStudent[s.UserID], s)
	}

	var classScoreSum float64
	var classScored int

	for _, student := range roster {
		own := perStudent[student.ID]
		if len(own) == 0 {
			continue
		}

		agg := StudentAggregate{
			UserID:    student.ID,
			LastName:  student.LastName,
			FirstName: student.FirstName,
			Class:     student.Class,
		}
		var scoreSum float64
		var scored int
		for _, s := range own {
			agg.TotalSessions++
			if s.Status == models.StatusCompleted {
				agg.CompletedSessions++
			}
			if s.Score != nil {
				scoreSum += *s.Score
				scored++
			}
			if s.Duration != nil {
				agg.TotalDuration += *s.Duration
			}
		}
		if scored > 0 {
			agg.AverageScore = scoreSum / float64(scored)
		}
		agg.SuccessRate = float64(agg.CompletedSessions) / float64(agg.TotalSessions) * 100

		report.Ranking = append(report.Ranking, agg)
		report.Stats.TotalSessions += agg.TotalSessions
		report.Stats.TotalDuration += agg.TotalDuration
		report.Stats.ActiveStudents++
		classScoreSum += scoreSum
		classScored += scored
	}

	sort.SliceStable(report.Ranking, func(i, j int) bool {
		return report.Ranking[i].AverageScore > report.Ranking[j].AverageScore
	})

	var completedTotal int
	for _, agg := range report.Ranking {
		completedTotal += agg.CompletedSessions
		if agg.AtRisk() {
			report.AtRisk = append(report.AtRisk, agg)
		}
	}

	if report.Stats.TotalSessions > 0 {
		report.Stats.SuccessRate = float64(completedTotal) / float64(report.Stats.TotalSessions) * 100
	}
	if classScored > 0 {
		report.Stats.AverageScore = classScoreSum / float64(classScored)
	}

	report.Alerts.AtRiskCount = len(report.AtRisk)
	report.Alerts.InactiveStudents = report.Stats.StudentCount - report.Stats.ActiveStudents
	return report
}
