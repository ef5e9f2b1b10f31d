package reports

import (
	"math"
	"testing"
	"time"

	"github.com/KRaymonne/pro/internal/models"

	"gorm.io/datatypes"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func sessionOn(day time.Time, status string, score *float64, duration *int) models.ReadingSession {
	return models.ReadingSession{
		StartedAt: day,
		Status:    status,
		Score:     score,
		Duration:  duration,
	}
}

func TestBuildIndividualReportSessionStats(t *testing.T) {
	day := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	sessions := []models.ReadingSession{
		sessionOn(day, models.StatusCompleted, fptr(80), iptr(120)),
		sessionOn(day.Add(time.Hour), models.StatusCompleted, fptr(90), iptr(60)),
		sessionOn(day.AddDate(0, 0, 1), models.StatusAbandoned, nil, nil),
		sessionOn(day.AddDate(0, 0, 2), models.StatusInProgress, nil, nil),
	}

	report := BuildIndividualReport(Window{}, sessions, nil)

	if report.Sessions.TotalSessions != 4 {
		t.Errorf("TotalSessions = %d, want 4", report.Sessions.TotalSessions)
	}
	if report.Sessions.CompletedSessions != 2 {
		t.Errorf("CompletedSessions = %d, want 2", report.Sessions.CompletedSessions)
	}
	// Unscored sessions must not drag the average down.
	if report.Sessions.AverageScore != 85 {
		t.Errorf("AverageScore = %v, want 85", report.Sessions.AverageScore)
	}
	if report.Sessions.TotalDuration != 180 {
		t.Errorf("TotalDuration = %d, want 180", report.Sessions.TotalDuration)
	}
}

func TestBuildIndividualReportEmpty(t *testing.T) {
	report := BuildIndividualReport(Window{}, nil, nil)

	if report.Sessions.TotalSessions != 0 || report.Sessions.AverageScore != 0 {
		t.Errorf("empty report has non-zero session stats: %+v", report.Sessions)
	}
	if report.Evolution == nil || len(report.Evolution) != 0 {
		t.Errorf("Evolution should be an empty slice, got %#v", report.Evolution)
	}
	if report.DifficultWords == nil || len(report.DifficultWords) != 0 {
		t.Errorf("DifficultWords should be an empty slice, got %#v", report.DifficultWords)
	}
}

func TestScoreEvolutionGroupsByDay(t *testing.T) {
	day1 := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, time.May, 3, 9, 0, 0, 0, time.UTC)
	sessions := []models.ReadingSession{
		sessionOn(day2, models.StatusCompleted, fptr(70), nil),
		sessionOn(day1, models.StatusCompleted, fptr(60), nil),
		sessionOn(day1.Add(2*time.Hour), models.StatusCompleted, fptr(80), nil),
		sessionOn(day1.Add(3*time.Hour), models.StatusAbandoned, nil, nil), // unscored, ignored
	}

	report := BuildIndividualReport(Window{}, sessions, nil)

	if len(report.Evolution) != 2 {
		t.Fatalf("Evolution has %d points, want 2", len(report.Evolution))
	}
	first := report.Evolution[0]
	if first.Date != "2024-05-02" || first.AverageScore != 70 || first.Sessions != 2 {
		t.Errorf("first point = %+v, want 2024-05-02 avg 70 over 2", first)
	}
	if report.Evolution[1].Date != "2024-05-03" {
		t.Errorf("points not in chronological order: %+v", report.Evolution)
	}
}

func TestDifficultWordsRankingAndCap(t *testing.T) {
	day := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)

	s1 := sessionOn(day, models.StatusCompleted, nil, nil)
	s1.DifficultWords = datatypes.JSONSlice[models.DifficultWord]{
		{Word: "chapeau", Attempts: 2},
		{Word: "pingouins", Attempts: 3},
	}
	s2 := sessionOn(day.AddDate(0, 0, 1), models.StatusCompleted, nil, nil)
	s2.DifficultWords = datatypes.JSONSlice[models.DifficultWord]{
		{Word: "pingouins", Attempts: 5},
		{Word: "javanais", Attempts: 1},
	}

	report := BuildIndividualReport(Window{}, []models.ReadingSession{s1, s2}, nil)

	if len(report.DifficultWords) != 3 {
		t.Fatalf("got %d words, want 3", len(report.DifficultWords))
	}
	top := report.DifficultWords[0]
	if top.Word != "pingouins" || top.Frequency != 2 {
		t.Errorf("top word = %+v, want pingouins seen twice", top)
	}
	if math.Abs(top.AverageAttempts-4) > 1e-9 {
		t.Errorf("pingouins average attempts = %v, want 4", top.AverageAttempts)
	}
	// Frequency ties break alphabetically.
	if report.DifficultWords[1].Word != "chapeau" || report.DifficultWords[2].Word != "javanais" {
		t.Errorf("tie order wrong: %+v", report.DifficultWords)
	}
}

func TestDistributionCountsPreloadedPoems(t *testing.T) {
	day := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC)
	poem := &models.Poem{Level: models.LevelBeginner, Theme: "animaux"}

	s1 := sessionOn(day, models.StatusCompleted, nil, nil)
	s1.Poem = poem
	s2 := sessionOn(day, models.StatusCompleted, nil, nil)
	s2.Poem = poem
	orphan := sessionOn(day, models.StatusCompleted, nil, nil)

	recordings := []models.Recording{
		{Quality: models.QualityGood},
		{Quality: models.QualityGood},
		{Quality: models.QualityExcellent},
	}

	report := BuildIndividualReport(Window{}, []models.ReadingSession{s1, s2, orphan}, recordings)

	if report.Distribution.ByLevel[models.LevelBeginner] != 2 {
		t.Errorf("ByLevel = %v", report.Distribution.ByLevel)
	}
	if report.Distribution.ByTheme["animaux"] != 2 {
		t.Errorf("ByTheme = %v", report.Distribution.ByTheme)
	}
	if report.Distribution.ByQuality[models.QualityGood] != 2 || report.Distribution.ByQuality[models.QualityExcellent] != 1 {
		t.Errorf("ByQuality = %v", report.Distribution.ByQuality)
	}
	if report.Recordings.TotalRecordings != 3 {
		t.Errorf("TotalRecordings = %d, want 3", report.Recordings.TotalRecordings)
	}
}
