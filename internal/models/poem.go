package models

import (
	"time"

	"gorm.io/datatypes"
)

// Poem levels.
const (
	LevelBeginner     = "debutant"
	LevelIntermediate = "intermediaire"
	LevelAdvanced     = "avance"
)

// PoemThemes lists the valid theme values.
var PoemThemes = []string{"nature", "aventure", "amitie", "imagination", "ecole", "famille", "animaux", "saisons"}

// PoemDifficulties lists the valid difficulty values.
var PoemDifficulties = []string{"facile", "moyen", "difficile"}

// Poem is one entry of the reading library. Rows are soft-deactivated, never
// deleted, so historical sessions keep their join target.
type Poem struct {
	ID                 uint                       `gorm:"primaryKey" json:"id"`
	Title              string                     `gorm:"not null" json:"titre"`
	Author             string                     `gorm:"not null" json:"auteur"`
	Content            string                     `gorm:"type:text;not null" json:"contenu"`
	Level              string                     `gorm:"type:varchar(16);not null;index:idx_poems_level_theme,priority:1" json:"niveau"`
	Theme              string                     `gorm:"type:varchar(16);not null;index:idx_poems_level_theme,priority:2" json:"theme"`
	Difficulty         string                     `gorm:"type:varchar(16);not null" json:"difficulte"`
	EstimatedMinutes   int                        `gorm:"not null" json:"dureeEstimee"`
	Description        string                     `json:"description,omitempty"`
	Keywords           datatypes.JSONSlice[string] `json:"motsCles"`
	AgeMin             int                        `gorm:"default:7" json:"ageMin"`
	AgeMax             int                        `gorm:"default:15" json:"ageMax"`
	NarrationFeminine  string                     `json:"voixFeminine,omitempty"`
	NarrationMasculine string                     `json:"voixMasculine,omitempty"`
	AddedAt            time.Time                  `gorm:"autoCreateTime" json:"dateAjout"`
	Active             bool                       `gorm:"default:true;index" json:"actif"`
	CreatedAt          time.Time                  `json:"-"`
	UpdatedAt          time.Time                  `json:"-"`
}

// ValidLevel reports whether s is a known reading level.
func ValidLevel(s string) bool {
	return s == LevelBeginner || s == LevelIntermediate || s == LevelAdvanced
}

// ValidTheme reports whether s is a known theme.
func ValidTheme(s string) bool {
	for _, t := range PoemThemes {
		if s == t {
			return true
		}
	}
	return false
}

// ValidDifficulty reports whether s is a known difficulty.
func ValidDifficulty(s string) bool {
	for _, d := range PoemDifficulties {
		if s == d {
			return true
		}
	}
	return false
}

// NarrationFor returns the narration URL matching the voice preference,
// falling back to whichever voice is available.
func (p *Poem) NarrationFor(voice string) (url string, used string) {
	if voice == VoiceMasculine && p.NarrationMasculine != "" {
		return p.NarrationMasculine, VoiceMasculine
	}
	if p.NarrationFeminine != "" {
		return p.NarrationFeminine, VoiceFeminine
	}
	if p.NarrationMasculine != "" {
		return p.NarrationMasculine, VoiceMasculine
	}
	return "", ""
}
