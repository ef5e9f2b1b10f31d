package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"

	"go.uber.org/zap"
)

// Export kinds and encodings.
const (
	ExportSessions   = "lectures"
	ExportRecordings = "enregistrements"
	ExportFull       = "complet"

	EncodingJSON = "json"
	EncodingCSV  = "csv"
)

// Dataset is the raw (not aggregated) data a user can take away.
type Dataset struct {
	Sessions   []models.ReadingSession `json:"lectures,omitempty"`
	Recordings []models.Recording      `json:"enregistrements,omitempty"`
	User       *models.User            `json:"utilisateur,omitempty"`
}

// ExportService produces user data exports.
type ExportService struct {
	log *zap.Logger
	now func() time.Time
}

func NewExportService(log *zap.Logger) *ExportService {
	return &ExportService{log: log, now: time.Now}
}

// Export builds and encodes the requested dataset, returning the payload,
// its suggested filename and content type.
func (s *ExportService) Export(ctx context.Context, userID uint, kind, encoding string) ([]byte, string, string, error) {
	if kind == "" {
		kind = ExportFull
	}
	if encoding == "" {
		encoding = EncodingJSON
	}

	dataset, err := s.buildDataset(ctx, userID, kind)
	if err != nil {
		return nil, "", "", err
	}

	stamp := s.now().UnixMilli()
	switch encoding {
	case EncodingJSON:
		payload, err := json.MarshalIndent(dataset, "", "  ")
		if err != nil {
			return nil, "", "", err
		}
		return payload, fmt.Sprintf("export-%s-%d.json", kind, stamp), "application/json", nil
	case EncodingCSV:
		// The flat tabular form is only defined for session history.
		if kind != ExportSessions {
			return nil, "", "", apperr.Validation("export CSV non disponible pour ce type de données")
		}
		payload, err := encodeSessionsCSV(dataset.Sessions)
		if err != nil {
			return nil, "", "", err
		}
		return payload, fmt.Sprintf("export-%s-%d.csv", kind, stamp), "text/csv", nil
	}
	return nil, "", "", apperr.Validation("format d'export invalide")
}

func (s *ExportService) buildDataset(ctx context.Context, userID uint, kind string) (*Dataset, error) {
	switch kind {
	case ExportSessions, ExportRecordings, ExportFull:
	default:
		return nil, apperr.Validation("type d'export invalide")
	}

	dataset := &Dataset{}

	if kind == ExportSessions || kind == ExportFull {
		sessions, err := repository.SessionsForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if sessions == nil {
			sessions = []models.ReadingSession{}
		}
		dataset.Sessions = sessions
	}
	if kind == ExportRecordings || kind == ExportFull {
		recordings, err := repository.RecordingsForUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		dataset.Recordings = recordings
	}
	if kind == ExportFull {
		user, err := repository.GetUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		dataset.User = user
	}
	return dataset, nil
}

// encodeSessionsCSV flattens session history into one row per session.
// Nullable score and duration become empty cells, never zeros.
func encodeSessionsCSV(sessions []models.ReadingSession) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Poésie", "Auteur", "Score", "Durée", "Statut"}); err != nil {
		return nil, err
	}

	for _, s := range sessions {
		var title, author string
		if s.Poem != nil {
			title = s.Poem.Title
			author = s.Poem.Author
		}
		var score, duration string
		if s.Score != nil {
			score = strconv.FormatFloat(*s.Score, 'f', -1, 64)
		}
		if s.Duration != nil {
			duration = strconv.Itoa(*s.Duration)
		}
		row := []string{
			s.StartedAt.UTC().Format(time.RFC3339),
			title,
			author,
			score,
			duration,
			s.Status,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
