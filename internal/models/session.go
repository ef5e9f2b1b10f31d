package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session statuses. "en-cours" is the only non-terminal state; transitions
// out of "terminee" or "abandonnee" are rejected by the service layer.
const (
	StatusInProgress = "en-cours"
	StatusCompleted  = "terminee"
	StatusAbandoned  = "abandonnee"
)

// ValidStatus reports whether s is a known session status.
func ValidStatus(s string) bool {
	return s == StatusInProgress || s == StatusCompleted || s == StatusAbandoned
}

// DifficultWord is one word the reader stumbled on, with its position in the
// poem and how many tries it took.
type DifficultWord struct {
	Word     string `json:"mot"`
	Position int    `json:"position"`
	Attempts int    `json:"tentatives"`
}

// ReadingSession is one attempt at reading one poem. Rows are append-mostly:
// a session is mutated by step completion and finalization, then kept forever
// as analytics history.
type ReadingSession struct {
	ID             uint                                `gorm:"primaryKey" json:"id"`
	UserID         uint                                `gorm:"not null;index:idx_sessions_user_start,priority:1" json:"utilisateurId"`
	User           User                                `gorm:"foreignKey:UserID" json:"-"`
	PoemID         uint                                `gorm:"not null;index" json:"poesieId"`
	Poem           *Poem                               `gorm:"foreignKey:PoemID" json:"poesie,omitempty"`
	StartedAt      time.Time                           `gorm:"not null;index:idx_sessions_user_start,priority:2,sort:desc" json:"dateDebut"`
	EndedAt        *time.Time                          `json:"dateFin,omitempty"`
	Duration       *int                                `json:"duree,omitempty"` // whole seconds, set at finalize
	Score          *float64                            `json:"score,omitempty"`
	Progression    float64                             `gorm:"default:0" json:"progression"`
	Status         string                              `gorm:"type:varchar(16);default:'en-cours';index" json:"statut"`
	DifficultWords datatypes.JSONSlice[DifficultWord]  `json:"motsDifficiles"`
	RecordingID    *uint                               `json:"enregistrementId,omitempty"`
	Recording      *Recording                          `gorm:"foreignKey:RecordingID" json:"enregistrement,omitempty"`
	Comment        string                              `json:"commentaires,omitempty"`
	Attempt        int                                 `gorm:"default:1" json:"tentatives"`
	CreatedAt      time.Time                           `json:"-"`
	UpdatedAt      time.Time                           `json:"-"`
}

// Terminal reports whether the session reached a terminal status.
func (s *ReadingSession) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusAbandoned
}
