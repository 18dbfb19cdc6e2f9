package service

import (
	"context"
	"testing"
	"time"

	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageService(t *testing.T) (*MessageService, *repository.UserRepository, *repository.MessageRepository) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	messages := repository.NewMessageRepository(db)
	svc := NewMessageService(messages, NewRecipientResolver(users), testMessagingConfig(), nopLogger)
	return svc, users, messages
}

func TestRecipientResolver(t *testing.T) {
	db := setupDB(t)
	users := repository.NewUserRepository(db)
	alice := createUser(t, users, "alice", model.RoleUser)
	r := NewRecipientResolver(users)

	id, err := r.Resolve(model.Recipient{Type: model.RecipientEmail, Value: "alice@x.com"})
	require.NoError(t, err)
	assert.Equal(t, alice.IDString(), id)

	id, err = r.Resolve(model.Recipient{Type: model.RecipientUsername, Value: "alice"})
	require.NoError(t, err)
	assert.Equal(t, alice.IDString(), id)

	// ids are not checked for existence
	id, err = r.Resolve(model.Recipient{Type: model.RecipientUserID, Value: "424242"})
	require.NoError(t, err)
	assert.Equal(t, "424242", id)

	_, err = r.Resolve(model.Recipient{Type: model.RecipientUsername, Value: "ghost"})
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	_, err = r.Resolve(model.Recipient{Type: "phone", Value: "123"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestMessageService_SendIsolatesFailures(t *testing.T) {
	svc, users, messages := newMessageService(t)
	a := createUser(t, users, "a", model.RoleUser)

	result, err := svc.Send(context.Background(), SenderAdmin, &SendInput{
		Title:   "Hello",
		Content: "World",
		Recipients: []model.Recipient{
			{Type: model.RecipientEmail, Value: "a@x.com"},
			{Type: model.RecipientUsername, Value: "ghost"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Sent, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "ghost", result.Failed[0].Recipient)
	assert.NotEmpty(t, result.Failed[0].Reason)

	sent := result.Sent[0]
	assert.Equal(t, a.IDString(), sent.Recipient)
	assert.Equal(t, model.RecipientUserID, sent.RecipientType)
	assert.Equal(t, SenderAdmin, sent.Sender)

	_, total, err := messages.List(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestMessageService_SendValidation(t *testing.T) {
	svc, _, _ := newMessageService(t)
	recipients := []model.Recipient{{Type: model.RecipientUserID, Value: "1"}}

	_, err := svc.Send(context.Background(), SenderAdmin, &SendInput{Title: "", Content: "c", Recipients: recipients})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Send(context.Background(), SenderAdmin, &SendInput{Title: "t", Content: "", Recipients: recipients})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Send(context.Background(), SenderAdmin, &SendInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestMessageService_MarkAsReadIsIdempotent(t *testing.T) {
	svc, users, _ := newMessageService(t)
	u := createUser(t, users, "reader", model.RoleUser)
	caller := identityOf(u)

	result, err := svc.Send(context.Background(), SenderAdmin, &SendInput{
		Title: "t", Content: "c",
		Recipients: []model.Recipient{{Type: model.RecipientUsername, Value: "reader"}},
	})
	require.NoError(t, err)
	id := result.Sent[0].ID

	first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	svc.now = func() time.Time { return first }
	msg, err := svc.MarkAsRead(caller, id)
	require.NoError(t, err)
	assert.True(t, msg.IsRead)
	require.NotNil(t, msg.ReadAt)
	assert.True(t, first.Equal(*msg.ReadAt))

	svc.now = func() time.Time { return first.Add(time.Hour) }
	msg, err = svc.MarkAsRead(caller, id)
	require.NoError(t, err)
	assert.True(t, msg.IsRead)
	assert.True(t, first.Equal(*msg.ReadAt))
}

func TestMessageService_OwnershipCollapsesToNotFound(t *testing.T) {
	svc, users, _ := newMessageService(t)
	owner := createUser(t, users, "owner", model.RoleUser)
	other := createUser(t, users, "other", model.RoleUser)

	result, err := svc.Send(context.Background(), SenderAdmin, &SendInput{
		Title: "t", Content: "c",
		Recipients: []model.Recipient{{Type: model.RecipientUserID, Value: owner.IDString()}},
	})
	require.NoError(t, err)
	id := result.Sent[0].ID

	_, err = svc.MarkAsRead(identityOf(other), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(identityOf(other), id), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(identityOf(owner), 9999), ErrNotFound)
}

func TestMessageService_ReadThenDelete(t *testing.T) {
	svc, users, _ := newMessageService(t)
	u := createUser(t, users, "bob", model.RoleUser)
	caller := identityOf(u)

	result, err := svc.Send(context.Background(), SenderAdmin, &SendInput{
		Title: "t", Content: "c",
		Recipients: []model.Recipient{
			{Type: model.RecipientUserID, Value: u.IDString()},
			{Type: model.RecipientUserID, Value: u.IDString()},
		},
	})
	require.NoError(t, err)
	m1, m2 := result.Sent[0].ID, result.Sent[1].ID

	_, err = svc.MarkAsRead(caller, m1)
	require.NoError(t, err)
	unread, err := svc.UnreadCount(caller)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, svc.Delete(caller, m1))

	own, total, err := svc.ListOwn(caller, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, m2, own[0].ID)

	unread, err = svc.UnreadCount(caller)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// a deleted unread message drops out of the unread count
	require.NoError(t, svc.Delete(caller, m2))
	unread, err = svc.UnreadCount(caller)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	all, total, err := svc.ListAll(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestMessageService_LegacyRecipientForms(t *testing.T) {
	svc, users, messages := newMessageService(t)
	u := createUser(t, users, "carol", model.RoleUser)
	caller := identityOf(u)

	require.NoError(t, messages.Create(context.Background(), &model.Message{Title: "old", Content: "c", Sender: "admin", Recipient: "carol@x.com", RecipientType: model.RecipientEmail}))
	require.NoError(t, messages.Create(context.Background(), &model.Message{Title: "older", Content: "c", Sender: "admin", Recipient: "carol", RecipientType: model.RecipientUsername}))

	_, total, err := svc.ListOwn(caller, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	svc.cfg.LegacyRecipientMatch = false
	_, total, err = svc.ListOwn(caller, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestMessageService_SendWelcome(t *testing.T) {
	svc, users, _ := newMessageService(t)
	u := createUser(t, users, "newbie", model.RoleUser)

	require.NoError(t, svc.SendWelcome(u))
	own, _, err := svc.ListOwn(identityOf(u), 1, 10)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, SenderSystem, own[0].Sender)
	assert.Equal(t, "欢迎", own[0].Title)
}
