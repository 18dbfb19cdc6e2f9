package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/middleware"
	"github.com/programming666/personal-blog/internal/service"
)

// Default page sizes of the message listings
const (
	ownMessagesPageSize = 10
	allMessagesPageSize = 20
)

// MessageHandler handles message-related requests
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// ==================== Admin API ====================

// SendMessage delivers a message to a list of recipients
// @Summary Send a direct message
// @Description Deliver one message per recipient. Recipients may be given by user id, email or username; unresolved ones are reported, not fatal.
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SendInput true "Message and recipients"
// @Success 201 {object} Response{data=service.SendResult} "Messages sent"
// @Failure 400 {object} Response "Invalid request"
// @Failure 403 {object} Response "Administrator access required"
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var input service.SendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "error.invalid_request")
		return
	}

	result, err := h.messageService.Send(c.Request.Context(), middleware.GetIdentity(c).ID, &input)
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": i18n.Tf(c.GetString("lang"), "message.sent", len(result.Sent), len(result.Failed)),
		"data": gin.H{
			"sent":        result.Sent,
			"failed":      result.Failed,
			"sentCount":   len(result.Sent),
			"failedCount": len(result.Failed),
		},
	})
}

// ListAllMessages lists every message, deleted ones included
// @Summary List all messages
// @Description Unfiltered listing for moderation, newest first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} ListResponse "Messages retrieved"
// @Failure 403 {object} Response "Administrator access required"
// @Router /messages/all [get]
func (h *MessageHandler) ListAllMessages(c *gin.Context) {
	page, limit := pageParams(c, allMessagesPageSize)
	messages, total, err := h.messageService.ListAll(page, limit)
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}
	respondList(c, messages, len(messages), total, page, limit)
}

// ==================== User API ====================

// GetMessages returns messages for the current user
// @Summary Get user messages
// @Description Get the caller's messages with pagination, newest first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} ListResponse "Messages retrieved"
// @Failure 401 {object} Response "Unauthorized"
// @Router /messages [get]
func (h *MessageHandler) GetMessages(c *gin.Context) {
	page, limit := pageParams(c, ownMessagesPageSize)
	messages, total, err := h.messageService.ListOwn(middleware.GetIdentity(c), page, limit)
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}
	respondList(c, messages, len(messages), total, page, limit)
}

// MarkAsRead marks a message as read
// @Summary Mark message as read
// @Description Mark one of the caller's messages as read. Repeated calls keep the first read time.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} Response{data=model.Message} "Message marked as read"
// @Failure 404 {object} Response "Message not found"
// @Router /messages/{id}/read [put]
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	msg, err := h.messageService.MarkAsRead(middleware.GetIdentity(c), id)
	if err != nil {
		respondError(c, err, "message.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": i18n.T(c.GetString("lang"), "message.marked_read"),
		"data":    msg,
	})
}

// DeleteMessage hides a message from its recipient
// @Summary Delete message
// @Description Soft-delete one of the caller's messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 200 {object} Response "Message deleted"
// @Failure 404 {object} Response "Message not found"
// @Router /messages/{id} [delete]
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.messageService.Delete(middleware.GetIdentity(c), id); err != nil {
		respondError(c, err, "message.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": i18n.T(c.GetString("lang"), "message.deleted"),
	})
}

// GetUnreadCount returns the unread message count for the current user
// @Summary Get unread message count
// @Description Count the caller's visible unread messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "Unread count retrieved"
// @Failure 401 {object} Response "Unauthorized"
// @Router /messages/unread-count [get]
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.messageService.UnreadCount(middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"unreadCount": count,
		},
	})
}
