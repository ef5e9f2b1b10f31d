package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles, kept as the French wire values the React client already knows.
const (
	RoleStudent = "eleve"
	RoleTeacher = "enseignant"
	RoleParent  = "parent"
	RoleAdmin   = "admin"
)

// Narration voice preferences.
const (
	VoiceFeminine  = "feminine"
	VoiceMasculine = "masculine"
)

type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	LastName        string    `gorm:"not null" json:"nom"`
	FirstName       string    `gorm:"not null" json:"prenom"`
	Email           string    `gorm:"uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"not null" json:"-"`
	Role            string    `gorm:"type:varchar(16);default:'eleve'" json:"role"`
	Class           string    `json:"classe,omitempty"`
	Institution     string    `json:"etablissement,omitempty"`
	VoicePreference string    `gorm:"type:varchar(16);default:'feminine'" json:"preferenceVoix"`
	CreatedAt       time.Time `json:"dateCreation"`
	UpdatedAt       time.Time `json:"-"`
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword compares a candidate password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
