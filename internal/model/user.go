package model

import (
	"strconv"
	"time"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a blog account
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Username  string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string    `gorm:"size:100" json:"name"`
	Password  string    `gorm:"size:255" json:"-"`
	Role      string    `gorm:"size:16;default:user;index" json:"role"`
	GithubID  string    `gorm:"index;size:64" json:"-"`
	Avatar    string    `gorm:"size:500" json:"avatar"`
	CanLogin  bool      `gorm:"not null" json:"canLogin"`
}

// IDString returns the canonical recipient identity of the user
func (u *User) IDString() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}

// DisplayName returns the name shown to other users, falling back to the username
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
