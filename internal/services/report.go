package services

import (
	"context"
	"time"

	"github.com/KRaymonne/pro/internal/reports"
	"github.com/KRaymonne/pro/internal/repository"

	"go.uber.org/zap"
)

// PeriodSpec is how callers ask for a reporting window: a named token, or
// explicit bounds which take precedence.
type PeriodSpec struct {
	Token string
	Start *time.Time
	End   *time.Time
}

// ReportService resolves windows, fetches the records and hands them to the
// aggregation code. Read-only; runs concurrently with session writes and
// tolerates a session finalized mid-aggregation landing on either side.
type ReportService struct {
	log *zap.Logger
	now func() time.Time
}

func NewReportService(log *zap.Logger) *ReportService {
	return &ReportService{log: log, now: time.Now}
}

// Individual builds one student's progress report.
func (s *ReportService) Individual(ctx context.Context, userID uint, spec PeriodSpec) (*reports.IndividualReport, error) {
	window, err := reports.ResolveWindow(spec.Token, spec.Start, spec.End, s.now())
	if err != nil {
		return nil, err
	}

	sessions, err := repository.SessionsInWindow(ctx, []uint{userID}, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	recordings, err := repository.RecordingsInWindow(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	return reports.BuildIndividualReport(window, sessions, recordings), nil
}

// Classroom builds the teacher's class-wide report. An empty roster is a
// defined outcome, not an error.
func (s *ReportService) Classroom(ctx context.Context, class, institution string, spec PeriodSpec) (*reports.ClassroomReport, error) {
	window, err := reports.ResolveWindow(spec.Token, spec.Start, spec.End, s.now())
	if err != nil {
		return nil, err
	}

	roster, err := repository.FindStudents(ctx, class, institution)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return reports.BuildClassroomReport(window, nil, nil), nil
	}

	ids := make([]uint, len(roster))
	for i, student := range roster {
		ids[i] = student.ID
	}
	sessions, err := repository.SessionsInWindow(ctx, ids, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	return reports.BuildClassroomReport(window, roster, sessions), nil
}
