package repository

import (
	"context"
	"time"

	"github.com/programming666/personal-blog/internal/model"
	"gorm.io/gorm"
)

// MessageRepository handles message database operations.
// Recipient-scoped queries take every form the caller may have been stored
// under (see MessagingConfig.LegacyRecipientMatch); new rows only use the id.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message. Inside a transaction bound to ctx the insert
// runs under a savepoint, so a rejected row leaves the transaction usable.
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	db, inTx := conn(ctx, r.db)
	if !inTx {
		return db.Create(message).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(message).Error
	})
}

// FindOwned finds a message by ID that belongs to one of the recipient forms.
// Soft-deleted messages are still returned.
func (r *MessageRepository) FindOwned(id uint, recipients []string) (*model.Message, error) {
	var message model.Message
	err := r.db.Where("id = ? AND recipient IN ?", id, recipients).First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindByRecipients lists the visible messages of a recipient, newest first
func (r *MessageRepository) FindByRecipients(recipients []string, page, pageSize int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	query := r.db.Model(&model.Message{}).Where("recipient IN ? AND is_deleted = ?", recipients, false)

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err = query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&messages).Error
	return messages, total, err
}

// CountUnread counts the visible unread messages of a recipient
func (r *MessageRepository) CountUnread(recipients []string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("recipient IN ? AND is_read = ? AND is_deleted = ?", recipients, false, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead flags a message as read. readAt is written only on the first
// transition, so repeated calls leave it unchanged.
func (r *MessageRepository) MarkAsRead(id uint, readAt time.Time) error {
	return r.db.Model(&model.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": readAt,
		}).Error
}

// SoftDelete hides a message from its recipient
func (r *MessageRepository) SoftDelete(id uint) error {
	return r.db.Model(&model.Message{}).Where("id = ?", id).Update("is_deleted", true).Error
}

// List lists all messages with pagination, deleted ones included (admin)
func (r *MessageRepository) List(page, pageSize int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64

	query := r.db.Model(&model.Message{})

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err = query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&messages).Error
	return messages, total, err
}
