package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetBaseURL returns the public base URL of the service.
// A configured URL wins; otherwise it is derived from the request, honouring proxy headers.
func GetBaseURL(c *gin.Context, configured string) string {
	if configured != "" {
		return strings.TrimSuffix(configured, "/")
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	host := c.Request.Host
	if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}

// LikePattern turns a user supplied keyword into a case-insensitive substring
// pattern for "LIKE ? ESCAPE '!'". Works the same on MySQL and SQLite.
func LikePattern(keyword string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(keyword)) + "%"
}
