package model

import (
	"math"
	"time"
)

// BroadcastStatus is the state of a broadcast job
type BroadcastStatus string

const (
	BroadcastPending   BroadcastStatus = "pending"
	BroadcastSending   BroadcastStatus = "sending"
	BroadcastCompleted BroadcastStatus = "completed"
	BroadcastFailed    BroadcastStatus = "failed"
)

// SendStatus is the delivery state of one broadcast recipient
type SendStatus string

const (
	SendPending SendStatus = "pending"
	SendSent    SendStatus = "sent"
	SendFailed  SendStatus = "failed"
)

// DefaultMaxRetries bounds job-level retries when no other value is configured
const DefaultMaxRetries = 3

// BroadcastMessage is one administrator-initiated bulk send and its progress
type BroadcastMessage struct {
	ID              uint                  `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time             `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	Title           string                `gorm:"size:255;not null" json:"title"`
	Content         string                `gorm:"type:text;not null" json:"content"`
	Sender          string                `gorm:"size:64;not null;default:admin" json:"sender"`
	Status          BroadcastStatus       `gorm:"size:16;not null;default:pending;index" json:"status"`
	TotalRecipients int                   `gorm:"not null" json:"totalRecipients"` // fixed at creation
	SuccessCount    int                   `gorm:"not null;default:0" json:"successCount"`
	FailedCount     int                   `gorm:"not null;default:0" json:"failedCount"`
	Progress        int                   `gorm:"not null;default:0" json:"progress"` // percentage, 0-100
	StartedAt       *time.Time            `json:"startedAt"`
	CompletedAt     *time.Time            `json:"completedAt"`
	ErrorMessage    string                `gorm:"type:text" json:"errorMessage"`
	RetryCount      int                   `gorm:"not null;default:0" json:"retryCount"`
	MaxRetries      int                   `gorm:"not null;default:3" json:"maxRetries"`
	SendDetails     []BroadcastSendDetail `gorm:"foreignKey:BroadcastID;constraint:OnDelete:CASCADE" json:"sendDetails,omitempty"`
}

// BroadcastSendDetail tracks delivery to one recipient of a broadcast.
// Entries are created together with the broadcast and never re-resolved.
type BroadcastSendDetail struct {
	ID          uint       `gorm:"primarykey" json:"-"`
	BroadcastID uint       `gorm:"not null;index:idx_broadcast_position,priority:1" json:"-"`
	Position    int        `gorm:"not null;index:idx_broadcast_position,priority:2" json:"-"`
	UserID      uint       `gorm:"not null;index" json:"userId"`
	Status      SendStatus `gorm:"size:16;not null;default:pending" json:"status"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	SentAt      *time.Time `json:"sentAt"`
	RetryCount  int        `gorm:"not null;default:0" json:"retryCount"`
}

// Retryable reports whether the dispatcher should attempt this entry.
// Failed entries share the job-level retry ceiling.
func (d *BroadcastSendDetail) Retryable(maxRetries int) bool {
	switch d.Status {
	case SendPending:
		return true
	case SendFailed:
		return d.RetryCount < maxRetries
	}
	return false
}

// RecomputeProgress derives progress from the counters and completes the job
// once every recipient has been accounted for. It does not touch b.
func RecomputeProgress(b BroadcastMessage, now time.Time) BroadcastMessage {
	done := b.SuccessCount + b.FailedCount
	if b.TotalRecipients <= 0 {
		b.Progress = 0
		return b
	}
	if done > b.TotalRecipients {
		done = b.TotalRecipients
	}

	progress := int(math.Round(100 * float64(done) / float64(b.TotalRecipients)))
	// Rounding must not report 100 while recipients are still outstanding.
	if done < b.TotalRecipients && progress >= 100 {
		progress = 99
	}
	b.Progress = progress

	if done == b.TotalRecipients {
		b.Progress = 100
		b.Status = BroadcastCompleted
		if b.CompletedAt == nil {
			t := now
			b.CompletedAt = &t
		}
	}
	return b
}
