package services

import (
	"context"
	"testing"
	"time"

	"github.com/KRaymonne/pro/internal/database"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"

	"go.uber.org/zap"
)

func seedStudent(t *testing.T, email, class, institution string) uint {
	t.Helper()
	user := &models.User{
		LastName:    "Test",
		FirstName:   "Eleve",
		Email:       email,
		Role:        models.RoleStudent,
		Class:       class,
		Institution: institution,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := repository.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create student: %v", err)
	}
	return user.ID
}

func completedSession(t *testing.T, userID, poemID uint, startedAt time.Time, score float64) {
	t.Helper()
	duration := 60
	session := &models.ReadingSession{
		UserID:    userID,
		PoemID:    poemID,
		StartedAt: startedAt,
		Status:    models.StatusCompleted,
		Score:     &score,
		Duration:  &duration,
		Attempt:   1,
	}
	if err := database.DB.Create(session).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestReportServiceIndividualWindowing(t *testing.T) {
	setupTestDB(t)
	userID, poemID := seedUserAndPoem(t)

	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	completedSession(t, userID, poemID, now.AddDate(0, 0, -2), 80)
	completedSession(t, userID, poemID, now.AddDate(0, 0, -3), 90)
	// Outside the rolling week, must not count.
	completedSession(t, userID, poemID, now.AddDate(0, 0, -20), 10)

	svc := NewReportService(zap.NewNop())
	svc.now = func() time.Time { return now }

	report, err := svc.Individual(context.Background(), userID, PeriodSpec{Token: "semaine"})
	if err != nil {
		t.Fatalf("individual report: %v", err)
	}
	if report.Sessions.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", report.Sessions.TotalSessions)
	}
	if report.Sessions.AverageScore != 85 {
		t.Errorf("AverageScore = %v, want 85", report.Sessions.AverageScore)
	}
	if report.Period.Label != "semaine" {
		t.Errorf("period label = %q", report.Period.Label)
	}
	// Distribution needs the preloaded poem join.
	if report.Distribution.ByTheme["imagination"] != 2 {
		t.Errorf("ByTheme = %v", report.Distribution.ByTheme)
	}
}

func TestReportServiceClassroom(t *testing.T) {
	setupTestDB(t)
	_, poemID := seedUserAndPoem(t)

	institution := "École Primaire Jean Jaurès"
	strong := seedStudent(t, "a@ecole.fr", "CE2-A", institution)
	weak := seedStudent(t, "b@ecole.fr", "CE2-A", institution)
	seedStudent(t, "c@ecole.fr", "CE2-A", institution) // inactive
	otherClass := seedStudent(t, "d@ecole.fr", "CM1-B", institution)

	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	completedSession(t, strong, poemID, now.AddDate(0, 0, -1), 95)
	completedSession(t, weak, poemID, now.AddDate(0, 0, -1), 30)
	completedSession(t, otherClass, poemID, now.AddDate(0, 0, -1), 100)

	svc := NewReportService(zap.NewNop())
	svc.now = func() time.Time { return now }

	report, err := svc.Classroom(context.Background(), "CE2-A", institution, PeriodSpec{Token: "mois"})
	if err != nil {
		t.Fatalf("classroom report: %v", err)
	}

	if report.Stats.StudentCount != 3 {
		t.Errorf("StudentCount = %d, want 3 (other classes excluded)", report.Stats.StudentCount)
	}
	if report.Stats.ActiveStudents != 2 {
		t.Errorf("ActiveStudents = %d, want 2", report.Stats.ActiveStudents)
	}
	if len(report.Ranking) != 2 || report.Ranking[0].UserID != strong {
		t.Errorf("ranking = %+v", report.Ranking)
	}
	if len(report.AtRisk) != 1 || report.AtRisk[0].UserID != weak {
		t.Errorf("at-risk = %+v", report.AtRisk)
	}
}

func TestReportServiceClassroomUnfiltered(t *testing.T) {
	setupTestDB(t)
	_, poemID := seedUserAndPoem(t)

	institution := "École Primaire Jean Jaurès"
	seedStudent(t, "a@ecole.fr", "CE2-A", institution)
	top := seedStudent(t, "d@ecole.fr", "CM1-B", "Autre École")

	now := time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
	completedSession(t, top, poemID, now.AddDate(0, 0, -1), 100)

	svc := NewReportService(zap.NewNop())
	svc.now = func() time.Time { return now }

	// Empty filters narrow nothing: every eleve account is on the roster.
	report, err := svc.Classroom(context.Background(), "", "", PeriodSpec{Token: "mois"})
	if err != nil {
		t.Fatalf("classroom report: %v", err)
	}
	if report.Stats.StudentCount != 3 {
		t.Errorf("StudentCount = %d, want 3", report.Stats.StudentCount)
	}
	if len(report.Ranking) != 1 || report.Ranking[0].UserID != top {
		t.Errorf("ranking = %+v", report.Ranking)
	}
}

func TestReportServiceClassroomEmptyRoster(t *testing.T) {
	setupTestDB(t)
	seedUserAndPoem(t)

	svc := NewReportService(zap.NewNop())
	report, err := svc.Classroom(context.Background(), "CP-Z", "Nulle Part", PeriodSpec{})
	if err != nil {
		t.Fatalf("classroom report: %v", err)
	}
	if report.Stats.StudentCount != 0 || len(report.Ranking) != 0 {
		t.Errorf("empty roster report = %+v", report)
	}
}
