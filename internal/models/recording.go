package models

import "time"

// Recording quality categories. Assigned during correction by an
// enseignant, never computed here.
const (
	QualityExcellent        = "excellente"
	QualityVeryGood         = "tres-bonne"
	QualityGood             = "bonne"
	QualityNeedsImprovement = "a-ameliorer"
)

// ValidQuality reports whether s is a known quality category.
func ValidQuality(s string) bool {
	switch s {
	case QualityExcellent, QualityVeryGood, QualityGood, QualityNeedsImprovement:
		return true
	}
	return false
}

// RecordingFormats lists the accepted audio container formats.
var RecordingFormats = []string{"mp3", "wav", "ogg", "m4a", "webm"}

// Recording is the audio artifact a student produced during the recording
// step of a session. Soft-deleted via Active so aggregate history survives.
// Core fields are immutable after creation; only quality, comparison score
// and comment are correctable post-hoc.
type Recording struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index:idx_recordings_user_date,priority:1" json:"utilisateurId"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
	PoemID          uint            `gorm:"not null;index" json:"poesieId"`
	Poem            *Poem           `gorm:"foreignKey:PoemID" json:"poesie,omitempty"`
	SessionID       uint            `gorm:"not null;index" json:"lectureId"`
	Session         *ReadingSession `gorm:"foreignKey:SessionID" json:"lecture,omitempty"`
	FileURL         string          `gorm:"not null" json:"fichierUrl"`
	Duration        float64         `gorm:"not null;default:0" json:"duree"` // seconds
	Quality         string          `gorm:"type:varchar(16);default:'bonne'" json:"qualite"`
	RecordedAt      time.Time       `gorm:"autoCreateTime;index:idx_recordings_user_date,priority:2,sort:desc" json:"dateEnregistrement"`
	ComparisonScore *float64        `json:"scoreComparaison,omitempty"`
	Comment         string          `json:"commentaires,omitempty"`
	FileSize        int64           `json:"tailleFichier"`
	FileFormat      string          `gorm:"type:varchar(8);default:'mp3'" json:"formatFichier"`
	Active          bool            `gorm:"default:true;index" json:"actif"`
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}
