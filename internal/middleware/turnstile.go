package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/service"
)

// TurnstileField is the form field and header carrying the Turnstile token
const TurnstileField = "cf-turnstile-response"

type turnstileVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*service.TurnstileResult, error)
}

type turnstileBody struct {
	Token string `json:"cf-turnstile-response"`
}

// TurnstileMiddleware requires a valid Cloudflare Turnstile token. A nil
// verifier disables the check. The JSON body stays readable for the handler
// through ShouldBindBodyWith.
func TurnstileMiddleware(verifier turnstileVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}
		lang := c.GetString("lang")

		var body turnstileBody
		_ = c.ShouldBindBodyWith(&body, binding.JSON)
		token := body.Token
		if token == "" {
			token = c.GetHeader(TurnstileField)
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": i18n.T(lang, "turnstile.missing"),
			})
			return
		}
		if len(token) > service.MaxTurnstileTokenLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": i18n.T(lang, "turnstile.too_long"),
			})
			return
		}

		result, err := verifier.Verify(c.Request.Context(), token, c.ClientIP())
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, service.ErrTurnstileRejected):
			var codes []string
			if result != nil {
				codes = result.ErrorCodes
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": i18n.T(lang, "turnstile.failed"),
				"errors":  codes,
			})
		case errors.Is(err, service.ErrTurnstileTimeout):
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"message": i18n.T(lang, "turnstile.timeout"),
			})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": i18n.T(lang, "turnstile.error"),
			})
		}
	}
}
