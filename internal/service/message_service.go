package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/programming666/personal-blog/config"
	"github.com/programming666/personal-blog/internal/metrics"
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/rs/zerolog"
)

// Sender identities that are not user ids
const (
	SenderAdmin  = "admin"
	SenderSystem = "system"
)

// MessageService implements direct sending and the recipient-facing message operations
type MessageService struct {
	messages *repository.MessageRepository
	resolver *RecipientResolver
	cfg      config.MessagingConfig
	logger   zerolog.Logger
	now      func() time.Time
}

// NewMessageService creates a new MessageService
func NewMessageService(messages *repository.MessageRepository, resolver *RecipientResolver, cfg config.MessagingConfig, logger zerolog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger.With().Str("component", "messages").Logger(),
		now:      time.Now,
	}
}

// SendInput is the body of a direct send
type SendInput struct {
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Recipients []model.Recipient `json:"recipients"`
}

// FailedRecipient describes one recipient a direct send could not reach
type FailedRecipient struct {
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

// SendResult itemizes a direct send
type SendResult struct {
	Sent   []model.Message   `json:"sent"`
	Failed []FailedRecipient `json:"failed"`
}

// Send delivers one message per recipient. Each recipient is handled on its
// own: a failure is recorded in the result and the next one is attempted.
func (s *MessageService) Send(ctx context.Context, sender string, input *SendInput) (*SendResult, error) {
	if len(input.Recipients) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidRequest)
	}
	title, content, err := model.ValidateMessageText(input.Title, input.Content, model.MaxDirectContentLength)
	if err != nil {
		return nil, invalid(err)
	}

	result := &SendResult{
		Sent:   make([]model.Message, 0, len(input.Recipients)),
		Failed: []FailedRecipient{},
	}
	for _, r := range input.Recipients {
		userID, err := s.resolver.Resolve(r)
		if err != nil {
			result.Failed = append(result.Failed, FailedRecipient{Recipient: r.Value, Reason: err.Error()})
			continue
		}

		msg := model.Message{
			Title:         title,
			Content:       content,
			Sender:        sender,
			Recipient:     userID,
			RecipientType: model.RecipientUserID,
		}
		if err := s.messages.Create(ctx, &msg); err != nil {
			s.logger.Warn().Err(err).Str("recipient", r.Value).Msg("direct message not stored")
			result.Failed = append(result.Failed, FailedRecipient{Recipient: r.Value, Reason: storeError("create message", err).Error()})
			continue
		}
		metrics.MessagesCreatedTotal.WithLabelValues("direct").Inc()
		result.Sent = append(result.Sent, msg)
	}

	s.logger.Info().
		Str("sender", sender).
		Int("sent", len(result.Sent)).
		Int("failed", len(result.Failed)).
		Msg("direct send finished")
	return result, nil
}

// SendWelcome stores the greeting a new account finds in its inbox
func (s *MessageService) SendWelcome(user *model.User) error {
	if !s.cfg.WelcomeEnabled {
		return nil
	}
	msg := model.Message{
		Title:         s.cfg.WelcomeTitle,
		Content:       s.cfg.WelcomeContent,
		Sender:        SenderSystem,
		Recipient:     user.IDString(),
		RecipientType: model.RecipientUserID,
	}
	if err := s.messages.Create(context.Background(), &msg); err != nil {
		return storeError("create welcome message", err)
	}
	metrics.MessagesCreatedTotal.WithLabelValues("welcome").Inc()
	return nil
}

// recipientForms lists the values a caller's messages may be stored under
func (s *MessageService) recipientForms(caller *Identity) []string {
	forms := []string{caller.ID}
	if !s.cfg.LegacyRecipientMatch {
		return forms
	}
	for _, v := range []string{caller.Email, caller.Username} {
		if v != "" && v != caller.ID {
			forms = append(forms, v)
		}
	}
	return forms
}

// ListOwn lists the caller's visible messages, newest first
func (s *MessageService) ListOwn(caller *Identity, page, limit int) ([]model.Message, int64, error) {
	messages, total, err := s.messages.FindByRecipients(s.recipientForms(caller), page, limit)
	if err != nil {
		return nil, 0, storeError("list messages", err)
	}
	return messages, total, nil
}

// findOwned loads a message owned by caller. Absent and foreign messages both yield ErrNotFound.
func (s *MessageService) findOwned(caller *Identity, id uint) (*model.Message, error) {
	msg, err := s.messages.FindOwned(id, s.recipientForms(caller))
	if err != nil {
		return nil, storeError("find message "+strconv.FormatUint(uint64(id), 10), err)
	}
	return msg, nil
}

// MarkAsRead marks one of the caller's messages as read. Calling it again is a no-op.
func (s *MessageService) MarkAsRead(caller *Identity, id uint) (*model.Message, error) {
	msg, err := s.findOwned(caller, id)
	if err != nil {
		return nil, err
	}
	if msg.IsRead {
		return msg, nil
	}

	now := s.now()
	if err := s.messages.MarkAsRead(msg.ID, now); err != nil {
		return nil, storeError("mark message read", err)
	}
	// Re-read: a concurrent call may have set readAt first.
	return s.findOwned(caller, id)
}

// Delete hides one of the caller's messages
func (s *MessageService) Delete(caller *Identity, id uint) error {
	msg, err := s.findOwned(caller, id)
	if err != nil {
		return err
	}
	if msg.IsDeleted {
		return nil
	}
	if err := s.messages.SoftDelete(msg.ID); err != nil {
		return storeError("delete message", err)
	}
	return nil
}

// UnreadCount counts the caller's visible unread messages
func (s *MessageService) UnreadCount(caller *Identity) (int64, error) {
	count, err := s.messages.CountUnread(s.recipientForms(caller))
	if err != nil {
		return 0, storeError("count unread messages", err)
	}
	return count, nil
}

// ListAll lists every message, deleted ones included
func (s *MessageService) ListAll(page, limit int) ([]model.Message, int64, error) {
	messages, total, err := s.messages.List(page, limit)
	if err != nil {
		return nil, 0, storeError("list all messages", err)
	}
	return messages, total, nil
}
