package model

import "time"

// Login is a dashboard user. Password holds a bcrypt hash; rows created before
// hashing was introduced may still hold plaintext until their next login.
type Login struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	User      string     `json:"user" gorm:"size:50;not null"`
	Login     string     `json:"login" gorm:"size:50;not null;uniqueIndex:unique_login"`
	Password  string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	LastLogin *time.Time `json:"last_login,omitempty" gorm:"column:last_login"`
}

// TableName keeps the historical table name.
func (Login) TableName() string { return "login" }

// PublicUser is the non-sensitive part of a Login returned after authentication.
type PublicUser struct {
	ID    uint   `json:"id"`
	User  string `json:"user"`
	Login string `json:"login"`
}

// Public strips credentials from l.
func (l *Login) Public() PublicUser {
	return PublicUser{ID: l.ID, User: l.User, Login: l.Login}
}
