package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Size limits for message fields, counted in characters
const (
	MaxTitleLength            = 100
	MaxDirectContentLength    = 1000
	MaxBroadcastContentLength = 2000
)

// Validation errors returned by ValidateMessageText
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = errors.New("title is too long")
	ErrContentRequired = errors.New("content is required")
	ErrContentTooLong  = errors.New("content is too long")
)

// RecipientType tells how a recipient reference should be interpreted
type RecipientType string

const (
	RecipientUserID   RecipientType = "user_id"
	RecipientEmail    RecipientType = "email"
	RecipientUsername RecipientType = "username"
)

// Valid reports whether t is one of the known recipient types
func (t RecipientType) Valid() bool {
	switch t {
	case RecipientUserID, RecipientEmail, RecipientUsername:
		return true
	}
	return false
}

// Recipient is a loosely typed reference to a user, as entered by an administrator
type Recipient struct {
	Type  RecipientType `json:"type"`
	Value string        `json:"value"`
}

// Message represents a point-to-point message delivered to one user
type Message struct {
	ID            uint          `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Title         string        `gorm:"size:255;not null" json:"title"`
	Content       string        `gorm:"type:text;not null" json:"content"`
	Sender        string        `gorm:"size:64;not null" json:"sender"`                // "admin", "system" or an administrator id
	Recipient     string        `gorm:"size:255;not null;index" json:"recipient"`      // canonical user id for every new row
	RecipientType RecipientType `gorm:"size:16;default:user_id" json:"recipientType"`  // kept for audit only
	IsRead        bool          `gorm:"not null;default:false;index" json:"isRead"`
	ReadAt        *time.Time    `json:"readAt"`                                        // set once, together with IsRead
	IsDeleted     bool          `gorm:"not null;default:false;index" json:"isDeleted"` // hidden from the recipient, still listed for admins
}

// ValidateMessageText trims title and content and checks them against the limits.
// maxContent is MaxDirectContentLength or MaxBroadcastContentLength.
func ValidateMessageText(title, content string, maxContent int) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return "", "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", "", ErrTitleTooLong
	}
	if content == "" {
		return "", "", ErrContentRequired
	}
	if utf8.RuneCountInString(content) > maxContent {
		return "", "", ErrContentTooLong
	}
	return title, content, nil
}
