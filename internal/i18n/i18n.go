package i18n

import (
	"fmt"
	"strings"
	"sync"
)

// translations holds the API response texts per language
var translations = map[string]map[string]string{
	"en": {
		// Common
		"error.invalid_request":     "Invalid request",
		"error.unauthorized":        "Please log in first",
		"error.invalid_token":       "Invalid or expired token",
		"error.forbidden":           "Administrator access required",
		"error.not_found":           "Resource not found",
		"error.internal":            "Internal server error",
		"error.store":               "Database operation failed",
		"error.rate_limited":        "Too many requests, please try again later",
		"error.invalid_credentials": "Invalid credentials",
		"error.account_suspended":   "Account has been disabled",
		"error.user_exists":         "Email or username already registered",

		// Turnstile
		"turnstile.missing":  "Human verification is required",
		"turnstile.too_long": "Verification token is invalid",
		"turnstile.failed":   "Human verification failed",
		"turnstile.timeout":  "Verification service timed out",
		"turnstile.error":    "Verification service error",

		// Auth
		"auth.registered":      "Registration successful",
		"auth.login_success":   "Login successful",
		"auth.github_disabled": "GitHub login is not enabled",

		// Messages
		"message.sent":             "Sent %d messages, %d failed",
		"message.not_found":        "Message not found or no permission",
		"message.marked_read":      "Message marked as read",
		"message.deleted":          "Message deleted",
		"message.recipient_missed": "Recipient not found",

		// Broadcasts
		"broadcast.created":        "Broadcast created, it will be sent to %d users",
		"broadcast.not_found":      "Broadcast not found",
		"broadcast.no_targets":     "No users to send to",
		"broadcast.invalid_state":  "Only failed broadcasts can be retried",
		"broadcast.retry_limit":    "Retry limit reached",
		"broadcast.retry_started":  "Broadcast retry started",
		"broadcast.invalid_filter": "Invalid filter",

		// Users
		"user.not_found":      "User not found",
		"user.status_updated": "User status updated",
		"user.deleted":        "User and their messages deleted",
		"user.protected":      "Administrator accounts cannot be moderated",
	},
	"zh": {
		// Common
		"error.invalid_request":     "请求参数错误",
		"error.unauthorized":        "请先登录",
		"error.invalid_token":       "无效或已过期的令牌",
		"error.forbidden":           "需要管理员权限",
		"error.not_found":           "资源不存在",
		"error.internal":            "服务器内部错误",
		"error.store":               "数据库操作失败",
		"error.rate_limited":        "请求过于频繁，请稍后再试",
		"error.invalid_credentials": "用户名或密码错误",
		"error.account_suspended":   "账户已被禁用",
		"error.user_exists":         "邮箱或用户名已被注册",

		// Turnstile
		"turnstile.missing":  "请完成人机验证",
		"turnstile.too_long": "验证令牌无效",
		"turnstile.failed":   "人机验证失败",
		"turnstile.timeout":  "验证服务超时",
		"turnstile.error":    "验证服务错误",

		// Auth
		"auth.registered":      "注册成功",
		"auth.login_success":   "登录成功",
		"auth.github_disabled": "GitHub 登录未启用",

		// Messages
		"message.sent":             "成功发送 %d 条消息，失败 %d 条",
		"message.not_found":        "消息不存在或无权限",
		"message.marked_read":      "消息已标记为已读",
		"message.deleted":          "消息已删除",
		"message.recipient_missed": "接收者不存在",

		// Broadcasts
		"broadcast.created":        "广播消息已创建，将发送给 %d 个用户",
		"broadcast.not_found":      "广播消息不存在",
		"broadcast.no_targets":     "没有找到要发送的用户",
		"broadcast.invalid_state":  "只能重试失败的广播",
		"broadcast.retry_limit":    "已达到最大重试次数",
		"broadcast.retry_started":  "广播重试已开始",
		"broadcast.invalid_filter": "筛选条件无效",

		// Users
		"user.not_found":      "用户不存在",
		"user.status_updated": "用户状态设置成功",
		"user.deleted":        "用户及其消息已删除",
		"user.protected":      "不能操作管理员账户",
	},
}

var (
	defaultLang = "zh"
	mu          sync.RWMutex
)

// T returns the translation for a key in the given language
func T(lang, key string) string {
	mu.RLock()
	defer mu.RUnlock()

	lang = normalizeLang(lang)

	if trans, ok := translations[lang]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	// Fallback to default language
	if trans, ok := translations[defaultLang]; ok {
		if val, ok := trans[key]; ok {
			return val
		}
	}

	return key
}

// Tf formats the translation for a key with args
func Tf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(T(lang, key), args...)
}

// normalizeLang maps zh-CN, en-US and the like onto the supported languages
func normalizeLang(lang string) string {
	lang = strings.ToLower(lang)

	if strings.HasPrefix(lang, "zh") {
		return "zh"
	}
	if strings.HasPrefix(lang, "en") {
		return "en"
	}
	return defaultLang
}

// GetLangFromAcceptHeader parses Accept-Language header and returns the best match
func GetLangFromAcceptHeader(acceptLang string) string {
	if acceptLang == "" {
		return defaultLang
	}

	// Format: en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7
	parts := strings.Split(acceptLang, ",")
	for _, part := range parts {
		lang := strings.ToLower(strings.TrimSpace(strings.Split(part, ";")[0]))
		if strings.HasPrefix(lang, "zh") || strings.HasPrefix(lang, "en") {
			return normalizeLang(lang)
		}
	}

	return defaultLang
}
