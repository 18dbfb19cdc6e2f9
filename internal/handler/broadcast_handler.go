package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/middleware"
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/programming666/personal-blog/internal/service"
)

// Default page sizes of the broadcast listings
const (
	broadcastsPageSize  = 20
	targetUsersPageSize = 50
)

// BroadcastHandler handles the administrator broadcast API
type BroadcastHandler struct {
	broadcastService *service.BroadcastService
}

// NewBroadcastHandler creates a new BroadcastHandler
func NewBroadcastHandler(broadcastService *service.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{broadcastService: broadcastService}
}

// CreateBroadcast stores a broadcast and starts its delivery in the background
// @Summary Create broadcast
// @Description Send a message to every user, or to the listed user ids. Delivery runs after the response.
// @Tags broadcasts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateBroadcastInput true "Broadcast"
// @Success 201 {object} Response "Broadcast created"
// @Failure 400 {object} Response "Invalid request or no target users"
// @Router /broadcasts [post]
func (h *BroadcastHandler) CreateBroadcast(c *gin.Context) {
	var input service.CreateBroadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "error.invalid_request")
		return
	}

	b, err := h.broadcastService.Create(c.Request.Context(), middleware.GetIdentity(c).ID, &input)
	if err != nil {
		respondError(c, err, "broadcast.not_found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": i18n.Tf(c.GetString("lang"), "broadcast.created", b.TotalRecipients),
		"data": gin.H{
			"broadcastId":     b.ID,
			"totalRecipients": b.TotalRecipients,
		},
	})
}

// ListBroadcasts lists broadcasts newest first
// @Summary List broadcasts
// @Tags broadcasts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Param status query string false "pending, sending, completed or failed"
// @Param startDate query string false "Created at or after (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string false "Created at or before (YYYY-MM-DD or RFC 3339)"
// @Success 200 {object} ListResponse "Broadcasts retrieved"
// @Failure 400 {object} Response "Invalid filter"
// @Router /broadcasts [get]
func (h *BroadcastHandler) ListBroadcasts(c *gin.Context) {
	page, limit := pageParams(c, broadcastsPageSize)

	var filter repository.BroadcastFilter
	switch status := model.BroadcastStatus(c.Query("status")); status {
	case "":
	case model.BroadcastPending, model.BroadcastSending, model.BroadcastCompleted, model.BroadcastFailed:
		filter.Status = status
	default:
		badRequest(c, "broadcast.invalid_filter")
		return
	}

	var err error
	if filter.StartDate, err = parseDate(c.Query("startDate"), false); err != nil {
		badRequest(c, "broadcast.invalid_filter")
		return
	}
	if filter.EndDate, err = parseDate(c.Query("endDate"), true); err != nil {
		badRequest(c, "broadcast.invalid_filter")
		return
	}

	broadcasts, total, err := h.broadcastService.List(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err, "broadcast.not_found")
		return
	}
	respondList(c, broadcasts, len(broadcasts), total, page, limit)
}

// GetBroadcast returns a broadcast with every recipient entry
// @Summary Broadcast detail
// @Tags broadcasts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Broadcast ID"
// @Success 200 {object} Response{data=service.BroadcastDetail} "Broadcast retrieved"
// @Failure 404 {object} Response "Broadcast not found"
// @Router /broadcasts/{id} [get]
func (h *BroadcastHandler) GetBroadcast(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	detail, err := h.broadcastService.Detail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "broadcast.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    detail,
	})
}

// RetryBroadcast schedules another delivery run of a failed broadcast
// @Summary Retry broadcast
// @Tags broadcasts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Broadcast ID"
// @Success 200 {object} Response "Retry started"
// @Failure 400 {object} Response "Not failed, or retry limit reached"
// @Failure 404 {object} Response "Broadcast not found"
// @Router /broadcasts/{id}/retry [post]
func (h *BroadcastHandler) RetryBroadcast(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.broadcastService.Retry(c.Request.Context(), id); err != nil {
		respondError(c, err, "broadcast.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": i18n.T(c.GetString("lang"), "broadcast.retry_started"),
	})
}

// GetStats returns broadcast counts by status and a seven day series
// @Summary Broadcast statistics
// @Tags broadcasts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.BroadcastStats} "Statistics"
// @Router /broadcasts/stats/summary [get]
func (h *BroadcastHandler) GetStats(c *gin.Context) {
	stats, err := h.broadcastService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "broadcast.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// ListTargetUsers lists the accounts a broadcast can target
// @Summary Broadcast recipient picker
// @Tags broadcasts
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of username, email or name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} ListResponse "Users retrieved"
// @Router /broadcasts/users [get]
func (h *BroadcastHandler) ListTargetUsers(c *gin.Context) {
	page, limit := pageParams(c, targetUsersPageSize)
	users, total, err := h.broadcastService.TargetUsers(c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}
	respondList(c, users, len(users), total, page, limit)
}
