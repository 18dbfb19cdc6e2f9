package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/service"
)

// maxPageSize caps every paginated listing
const maxPageSize = 100

// Response is a generic API response
type Response struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message,omitempty" example:"操作成功"`
	Data    interface{} `json:"data,omitempty"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Total int64 `json:"total" example:"120"`
	Page  int   `json:"page" example:"1"`
	Pages int   `json:"pages" example:"6"`
	Limit int   `json:"limit" example:"20"`
}

// ListResponse is a paginated API response
type ListResponse struct {
	Success    bool        `json:"success" example:"true"`
	Data       interface{} `json:"data"`
	Count      int         `json:"count" example:"20"`
	Pagination Pagination  `json:"pagination"`
}

func newPagination(total int64, page, limit int) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}

// pageParams reads page and limit from the query string. Invalid values fall
// back to the defaults and limit is capped at maxPageSize.
func pageParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page, limit = 1, defaultLimit
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func respondList(c *gin.Context, data interface{}, count int, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"count":      count,
		"pagination": newPagination(total, page, limit),
	})
}

// idParam parses the :id path parameter, answering 400 when it is not a positive integer
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "error.invalid_request")
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts YYYY-MM-DD or RFC 3339. A bare end date covers the whole day.
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func badRequest(c *gin.Context, key string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": i18n.T(c.GetString("lang"), key),
	})
}

// respondError maps a service error onto a status code and message.
// notFoundKey names the message used for ErrNotFound.
func respondError(c *gin.Context, err error, notFoundKey string) {
	lang := c.GetString("lang")
	status, key := http.StatusInternalServerError, "error.internal"
	detail := ""

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		status, key, detail = http.StatusBadRequest, "error.invalid_request", err.Error()
	case errors.Is(err, service.ErrNoTargets):
		status, key = http.StatusBadRequest, "broadcast.no_targets"
	case errors.Is(err, service.ErrInvalidState):
		status, key = http.StatusBadRequest, "broadcast.invalid_state"
	case errors.Is(err, service.ErrRetryLimitExceeded):
		status, key = http.StatusBadRequest, "broadcast.retry_limit"
	case errors.Is(err, service.ErrUserExists):
		status, key = http.StatusBadRequest, "error.user_exists"
	case errors.Is(err, service.ErrNotFound):
		status, key = http.StatusNotFound, notFoundKey
	case errors.Is(err, service.ErrInvalidCredentials):
		status, key = http.StatusUnauthorized, "error.invalid_credentials"
	case errors.Is(err, service.ErrAccountSuspended):
		status, key = http.StatusForbidden, "error.account_suspended"
	case errors.Is(err, service.ErrProtectedAccount):
		status, key = http.StatusForbidden, "user.protected"
	case errors.Is(err, service.ErrStoreFailure):
		status, key, detail = http.StatusInternalServerError, "error.store", err.Error()
	default:
		_ = c.Error(err)
	}

	body := gin.H{
		"success": false,
		"message": i18n.T(lang, key),
	}
	if detail != "" {
		body["error"] = detail
	}
	c.JSON(status, body)
}
