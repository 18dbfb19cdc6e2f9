package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/programming666/personal-blog/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastService_CreateTargets(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, SenderAdmin, &CreateBroadcastInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrNoTargets)

	u1 := createUser(t, f.users, "u1", model.RoleUser)
	u2 := createUser(t, f.users, "u2", model.RoleUser)
	admin := createUser(t, f.users, "boss", model.RoleAdmin)

	all, err := f.service.Create(ctx, "", &CreateBroadcastInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalRecipients)
	assert.Equal(t, SenderAdmin, all.Sender)
	assert.Equal(t, model.BroadcastPending, all.Status)
	assert.Equal(t, model.DefaultMaxRetries, all.MaxRetries)

	no := false
	specific, err := f.service.Create(ctx, SenderAdmin, &CreateBroadcastInput{
		Title:         "t",
		Content:       "c",
		SendToAll:     &no,
		SpecificUsers: []uint{u2.ID, admin.ID, 4242},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, specific.TotalRecipients)
	require.Len(t, specific.SendDetails, 1)
	assert.Equal(t, u2.ID, specific.SendDetails[0].UserID)

	_, err = f.service.Create(ctx, SenderAdmin, &CreateBroadcastInput{Title: "t", Content: "c", SendToAll: &no})
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = f.service.Create(ctx, SenderAdmin, &CreateBroadcastInput{Title: "t", Content: "c", SendToAll: &no, SpecificUsers: []uint{admin.ID}})
	assert.ErrorIs(t, err, ErrNoTargets)

	assert.Equal(t, u1.ID, all.SendDetails[0].UserID)
	assert.Equal(t, []uint{all.ID, specific.ID}, f.scheduler.scheduled())
}

func TestBroadcastService_CreateValidation(t *testing.T) {
	f := newDispatchFixture(t)
	createUser(t, f.users, "u1", model.RoleUser)
	ctx := context.Background()

	_, err := f.service.Create(ctx, SenderAdmin, &CreateBroadcastInput{Title: "  ", Content: "c"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.service.Create(ctx, SenderAdmin, &CreateBroadcastInput{Title: strings.Repeat("标", 101), Content: "c"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.service.Create(ctx, SenderAdmin, &CreateBroadcastInput{Title: "t", Content: strings.Repeat("x", 2001)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	b, err := f.service.Create(ctx, SenderAdmin, &CreateBroadcastInput{Title: " t ", Content: strings.Repeat("x", 2000)})
	require.NoError(t, err)
	assert.Equal(t, "t", b.Title)
	assert.Equal(t, []uint{b.ID}, f.scheduler.scheduled())
}

func TestBroadcastService_RetryGating(t *testing.T) {
	f := newDispatchFixture(t)
	createUsers(t, f.users, 2)
	ctx := context.Background()

	assert.ErrorIs(t, f.service.Retry(ctx, 9999), ErrNotFound)

	b := f.create(t)
	assert.ErrorIs(t, f.service.Retry(ctx, b.ID), ErrInvalidState)

	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", b.ID).Update("status", model.BroadcastSending).Error)
	assert.ErrorIs(t, f.service.Retry(ctx, b.ID), ErrInvalidState)

	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", b.ID).Update("status", model.BroadcastCompleted).Error)
	assert.ErrorIs(t, f.service.Retry(ctx, b.ID), ErrInvalidState)

	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", b.ID).
		Updates(map[string]interface{}{"status": model.BroadcastFailed, "retry_count": b.MaxRetries}).Error)
	assert.ErrorIs(t, f.service.Retry(ctx, b.ID), ErrRetryLimitExceeded)

	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", b.ID).
		Updates(map[string]interface{}{"retry_count": b.MaxRetries - 1, "error_message": "boom", "success_count": 1}).Error)
	require.NoError(t, f.service.Retry(ctx, b.ID))

	got := f.reload(t, b.ID)
	assert.Equal(t, model.BroadcastPending, got.Status)
	assert.Equal(t, b.MaxRetries, got.RetryCount)
	assert.Empty(t, got.ErrorMessage)
	assert.Equal(t, 0, got.SuccessCount)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, []uint{b.ID, b.ID}, f.scheduler.scheduled())
}

func TestBroadcastService_Detail(t *testing.T) {
	f := newDispatchFixture(t)
	users := createUsers(t, f.users, 3)
	b := f.create(t)

	require.NoError(t, f.db.Delete(&model.User{}, users[1].ID).Error)

	detail, err := f.service.Detail(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, detail.ID)
	assert.Nil(t, detail.BroadcastMessage.SendDetails)
	require.Len(t, detail.SendDetails, 3)
	require.NotNil(t, detail.SendDetails[0].User)
	assert.Equal(t, users[0].Username, detail.SendDetails[0].User.Username)
	assert.Nil(t, detail.SendDetails[1].User)
	assert.Equal(t, users[1].ID, detail.SendDetails[1].UserID)

	_, err = f.service.Detail(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBroadcastService_Stats(t *testing.T) {
	f := newDispatchFixture(t)
	createUsers(t, f.users, 4)
	ctx := context.Background()

	done := f.create(t)
	failed := f.create(t)
	f.create(t)
	old := f.create(t)

	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", done.ID).Update("status", model.BroadcastCompleted).Error)
	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", failed.ID).Update("status", model.BroadcastFailed).Error)
	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", old.ID).
		Updates(map[string]interface{}{"status": model.BroadcastCompleted, "created_at": time.Now().AddDate(0, 0, -10)}).Error)

	stats, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalBroadcasts)
	assert.EqualValues(t, 1, stats.PendingBroadcasts)
	assert.EqualValues(t, 0, stats.SendingBroadcasts)
	assert.EqualValues(t, 2, stats.CompletedBroadcasts)
	assert.EqualValues(t, 1, stats.FailedBroadcasts)

	require.Len(t, stats.RecentStats, 1)
	today := stats.RecentStats[0]
	assert.Equal(t, time.Now().Format("2006-01-02"), today.Date)
	assert.Equal(t, 3, today.Count)
	assert.Equal(t, 12, today.TotalRecipients)
	assert.InDelta(t, 33.33, today.SuccessRate, 0.01)
}

func TestBroadcastService_StatsEmpty(t *testing.T) {
	f := newDispatchFixture(t)
	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalBroadcasts)
	assert.NotNil(t, stats.RecentStats)
	assert.Empty(t, stats.RecentStats)
}

func TestBroadcastService_RecoverPending(t *testing.T) {
	f := newDispatchFixture(t)
	createUsers(t, f.users, 1)
	ctx := context.Background()

	stale := f.create(t)
	f.create(t)
	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", stale.ID).
		UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	n, err := f.service.RecoverPending(ctx, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	scheduled := f.scheduler.scheduled()
	assert.Equal(t, stale.ID, scheduled[len(scheduled)-1])
}

func TestBroadcastService_TargetUsers(t *testing.T) {
	f := newDispatchFixture(t)
	createUsers(t, f.users, 3)
	createUser(t, f.users, "boss", model.RoleAdmin)

	users, total, err := f.service.TargetUsers("", 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 3)

	users, total, err = f.service.TargetUsers("USER001", 1, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "user001", users[0].Username)
}
