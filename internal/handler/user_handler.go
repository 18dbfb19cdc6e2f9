package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/service"
)

// usersPageSize is the default page size of the account listing
const usersPageSize = 20

// UserHandler handles the administrator account moderation API
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SetUserStatusRequest is the body of a status change
type SetUserStatusRequest struct {
	CanLogin *bool `json:"canLogin" example:"false"`
}

// ListUsers lists accounts with pagination and optional search
// @Summary List users
// @Description List accounts of every role, optionally filtered by username, email or name
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of username, email or name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} ListResponse "Users retrieved"
// @Failure 403 {object} Response "Administrator access required"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c, usersPageSize)
	users, total, err := h.userService.List(c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err, "user.not_found")
		return
	}
	respondList(c, users, len(users), total, page, limit)
}

// GetUser returns a specific user by ID
// @Summary Get user by ID
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} Response{data=model.User} "User retrieved"
// @Failure 404 {object} Response "User not found"
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(id)
	if err != nil {
		respondError(c, err, "user.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// SetUserStatus allows or suspends logins of an account
// @Summary Set user status
// @Description Enable or disable logins of an account. Tokens already issued stop working on the next request.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body SetUserStatusRequest true "Status"
// @Success 200 {object} Response{data=model.User} "Status set"
// @Failure 400 {object} Response "Bad request"
// @Failure 403 {object} Response "Administrator accounts cannot be moderated"
// @Failure 404 {object} Response "User not found"
// @Router /admin/users/{id}/status [put]
func (h *UserHandler) SetUserStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input SetUserStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.CanLogin == nil {
		badRequest(c, "error.invalid_request")
		return
	}

	user, err := h.userService.SetCanLogin(id, *input.CanLogin)
	if err != nil {
		respondError(c, err, "user.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": i18n.T(c.GetString("lang"), "user.status_updated"),
		"data":    user,
	})
}

// DeleteUser removes an account and its messages
// @Summary Delete user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} Response "User deleted"
// @Failure 403 {object} Response "Administrator accounts cannot be moderated"
// @Failure 404 {object} Response "User not found"
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(id); err != nil {
		respondError(c, err, "user.not_found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": i18n.T(c.GetString("lang"), "user.deleted"),
	})
}
