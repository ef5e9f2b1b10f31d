package models

import "time"

// Favorite marks a poem a student pinned to their library page.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_poem,priority:1" json:"utilisateurId"`
	PoemID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_poem,priority:2" json:"poesieId"`
	Poem      *Poem     `gorm:"foreignKey:PoemID" json:"poesie,omitempty"`
	CreatedAt time.Time `json:"dateAjout"`
}
