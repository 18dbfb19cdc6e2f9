package repository

import (
	"context"
	"time"

	"github.com/programming666/personal-blog/internal/model"
	"gorm.io/gorm"
)

// sendDetailInsertBatch bounds one INSERT statement when a broadcast is created
const sendDetailInsertBatch = 500

// BroadcastFilter narrows ListBroadcasts. Zero values mean "no filter".
type BroadcastFilter struct {
	Status    model.BroadcastStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// BroadcastRepository handles broadcast database operations
type BroadcastRepository struct {
	db *gorm.DB
}

// NewBroadcastRepository creates a new BroadcastRepository
func NewBroadcastRepository(db *gorm.DB) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// Create persists a broadcast together with one pending entry per user, in order
func (r *BroadcastRepository) Create(ctx context.Context, b *model.BroadcastMessage, userIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b.TotalRecipients = len(userIDs)
		if err := tx.Omit("SendDetails").Create(b).Error; err != nil {
			return err
		}

		details := make([]model.BroadcastSendDetail, len(userIDs))
		for i, id := range userIDs {
			details[i] = model.BroadcastSendDetail{
				BroadcastID: b.ID,
				Position:    i,
				UserID:      id,
				Status:      model.SendPending,
			}
		}
		if len(details) > 0 {
			if err := tx.CreateInBatches(&details, sendDetailInsertBatch).Error; err != nil {
				return err
			}
		}
		b.SendDetails = details
		return nil
	})
}

// FindByID finds a broadcast by ID without its entries
func (r *BroadcastRepository) FindByID(ctx context.Context, id uint) (*model.BroadcastMessage, error) {
	var b model.BroadcastMessage
	err := r.db.WithContext(ctx).First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// FindWithDetails finds a broadcast by ID with its entries in creation order
func (r *BroadcastRepository) FindWithDetails(ctx context.Context, id uint) (*model.BroadcastMessage, error) {
	var b model.BroadcastMessage
	err := r.db.WithContext(ctx).
		Preload("SendDetails", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List lists broadcasts newest first, without entries
func (r *BroadcastRepository) List(ctx context.Context, filter BroadcastFilter, page, pageSize int) ([]model.BroadcastMessage, int64, error) {
	var broadcasts []model.BroadcastMessage
	var total int64

	query := r.db.WithContext(ctx).Model(&model.BroadcastMessage{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&broadcasts).Error
	return broadcasts, total, err
}

// jobFields are the job-level columns a dispatcher run may change
func jobFields(b *model.BroadcastMessage) map[string]interface{} {
	return map[string]interface{}{
		"status":        b.Status,
		"success_count": b.SuccessCount,
		"failed_count":  b.FailedCount,
		"progress":      b.Progress,
		"started_at":    b.StartedAt,
		"completed_at":  b.CompletedAt,
		"error_message": b.ErrorMessage,
	}
}

// UpdateState writes the job-level state of a broadcast
func (r *BroadcastRepository) UpdateState(ctx context.Context, b *model.BroadcastMessage) error {
	return r.db.WithContext(ctx).Model(&model.BroadcastMessage{}).
		Where("id = ?", b.ID).
		Updates(jobFields(b)).Error
}

// DeliverFunc delivers one batch using ctx and returns the entries it touched.
// It updates the counters of the broadcast in place.
type DeliverFunc func(ctx context.Context) ([]model.BroadcastSendDetail, error)

// DeliverBatch runs deliver and records its outcome in one transaction: the
// messages deliver writes through ctx, the touched entries and the job-level
// counters are committed together or not at all.
func (r *BroadcastRepository) DeliverBatch(ctx context.Context, b *model.BroadcastMessage, deliver DeliverFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries, err := deliver(withTx(ctx, tx))
		if err != nil {
			return err
		}
		for i := range entries {
			e := &entries[i]
			err := tx.Model(&model.BroadcastSendDetail{}).
				Where("id = ?", e.ID).
				Updates(map[string]interface{}{
					"status":      e.Status,
					"error":       e.Error,
					"sent_at":     e.SentAt,
					"retry_count": e.RetryCount,
				}).Error
			if err != nil {
				return err
			}
		}
		return tx.Model(&model.BroadcastMessage{}).
			Where("id = ?", b.ID).
			Updates(jobFields(b)).Error
	})
}

// MarkFailed aborts a broadcast with an error message
func (r *BroadcastRepository) MarkFailed(ctx context.Context, id uint, message string) error {
	return r.db.WithContext(ctx).Model(&model.BroadcastMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.BroadcastFailed,
			"error_message": message,
		}).Error
}

// ResetForRetry moves a failed broadcast back to pending when it still has
// retry budget. It reports false when the record was not in a retryable state.
func (r *BroadcastRepository) ResetForRetry(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.BroadcastMessage{}).
		Where("id = ? AND status = ? AND retry_count < max_retries", id, model.BroadcastFailed).
		Updates(map[string]interface{}{
			"status":        model.BroadcastPending,
			"retry_count":   gorm.Expr("retry_count + 1"),
			"error_message": "",
			"success_count": 0,
			"failed_count":  0,
			"progress":      0,
		})
	return result.RowsAffected == 1, result.Error
}

// FindPendingBefore returns the ids of broadcasts still pending that were last
// touched before the given time
func (r *BroadcastRepository) FindPendingBefore(ctx context.Context, before time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.BroadcastMessage{}).
		Where("status = ? AND updated_at < ?", model.BroadcastPending, before).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// CountByStatus counts broadcasts grouped by status
func (r *BroadcastRepository) CountByStatus(ctx context.Context) (map[model.BroadcastStatus]int64, error) {
	var rows []struct {
		Status model.BroadcastStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.BroadcastMessage{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.BroadcastStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// FindCreatedSince returns summary columns of every broadcast created at or after since
func (r *BroadcastRepository) FindCreatedSince(ctx context.Context, since time.Time) ([]model.BroadcastMessage, error) {
	var broadcasts []model.BroadcastMessage
	err := r.db.WithContext(ctx).
		Select("id, created_at, total_recipients, status").
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&broadcasts).Error
	return broadcasts, err
}
