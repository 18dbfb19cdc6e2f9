package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/service"
)

// IdentityKey is the gin context key holding the authenticated *service.Identity
const IdentityKey = "identity"

// tokenValidator turns a bearer token into a caller identity
type tokenValidator interface {
	ValidateToken(token string) (*service.Identity, error)
}

// bearerToken extracts the token from the Authorization header, falling back to the token cookie
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	token, _ := c.Cookie("token")
	return token
}

// AuthMiddleware creates authentication middleware
func AuthMiddleware(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetString("lang")

		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": i18n.T(lang, "error.unauthorized"),
			})
			return
		}

		identity, err := auth.ValidateToken(tokenString)
		if err != nil {
			status, key := http.StatusUnauthorized, "error.invalid_token"
			switch {
			case errors.Is(err, service.ErrAccountSuspended):
				status, key = http.StatusForbidden, "error.account_suspended"
			case errors.Is(err, service.ErrStoreFailure):
				status, key = http.StatusInternalServerError, "error.store"
			}
			c.AbortWithStatusJSON(status, gin.H{
				"success": false,
				"message": i18n.T(lang, key),
			})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// AdminMiddleware rejects callers that are not administrators. It must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil || !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": i18n.T(c.GetString("lang"), "error.forbidden"),
			})
			return
		}
		c.Next()
	}
}

// GetIdentity returns the caller attached by AuthMiddleware, or nil
func GetIdentity(c *gin.Context) *service.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*service.Identity)
	return identity
}

// CORSMiddleware creates CORS middleware
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, cf-turnstile-response")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// I18nMiddleware detects user language from the lang cookie or the Accept-Language header
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, err := c.Cookie("lang")
		if err != nil || lang == "" {
			lang = i18n.GetLangFromAcceptHeader(c.GetHeader("Accept-Language"))
		}
		c.Set("lang", lang)
		c.Next()
	}
}
