package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/programming666/personal-blog/config"
	"github.com/programming666/personal-blog/internal/middleware"
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/programming666/personal-blog/internal/service"
	"github.com/programming666/personal-blog/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubScheduler struct {
	mu  sync.Mutex
	ids []uint
}

func (s *stubScheduler) Schedule(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
}

type apiFixture struct {
	t         *testing.T
	cfg       *config.Config
	db        *gorm.DB
	users     *repository.UserRepository
	auth      *service.AuthService
	github    *GitHubAuthHandler
	scheduler *stubScheduler
	router    *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Message{}, &model.BroadcastMessage{}, &model.BroadcastSendDetail{}))

	cfg := config.Default()
	cfg.JWT.Secret = "handler-test-secret"
	cfg.Messaging.WelcomeEnabled = false
	cfg.GitHubOAuth.Enabled = true
	cfg.GitHubOAuth.ClientID = "client"
	cfg.GitHubOAuth.ClientSecret = "secret"
	cfg.GitHubOAuth.RedirectURL = "http://blog.test/api/auth/github/callback"
	cfg.GitHubOAuth.FrontendURL = "http://front.test"

	log := zerolog.Nop()
	users := repository.NewUserRepository(db)
	messages := service.NewMessageService(repository.NewMessageRepository(db), service.NewRecipientResolver(users), cfg.Messaging, log)
	scheduler := &stubScheduler{}
	broadcasts := service.NewBroadcastService(repository.NewBroadcastRepository(db), users, scheduler, cfg.Broadcast, log)
	auth := service.NewAuthService(users, messages, cfg, log)

	f := &apiFixture{
		t:         t,
		cfg:       cfg,
		db:        db,
		users:     users,
		auth:      auth,
		github:    NewGitHubAuthHandler(auth, cfg, log),
		scheduler: scheduler,
	}

	r := gin.New()
	r.Use(middleware.I18nMiddleware())
	RegisterRoutes(r.Group("/api"), &Handlers{
		Auth:       NewAuthHandler(auth),
		GitHub:     f.github,
		Messages:   NewMessageHandler(messages),
		Broadcasts: NewBroadcastHandler(broadcasts),
		Users:      NewUserHandler(service.NewUserService(users, log)),
	}, RouteGuards{Authenticate: middleware.AuthMiddleware(auth)})
	f.router = r
	return f
}

func (f *apiFixture) adminToken() string {
	resp, err := f.auth.AdminLogin(&service.AdminLoginInput{Username: f.cfg.Admin.Username, Password: f.cfg.Admin.Password})
	require.NoError(f.t, err)
	return resp.Token
}

func (f *apiFixture) user(username string) (*model.User, string) {
	u := &model.User{Username: username, Email: username + "@x.com", Name: username, Role: model.RoleUser, CanLogin: true}
	require.NoError(f.t, f.users.Create(u))
	token, err := utils.GenerateJWT(u.IDString(), u.Role, f.cfg.JWT.Secret, time.Hour)
	require.NoError(f.t, err)
	return u, token
}

type apiResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

func (r apiResponse) data() map[string]interface{} {
	d, _ := r.Body["data"].(map[string]interface{})
	return d
}

func (r apiResponse) list() []interface{} {
	d, _ := r.Body["data"].([]interface{})
	return d
}

func (r apiResponse) pagination() map[string]interface{} {
	p, _ := r.Body["pagination"].(map[string]interface{})
	return p
}

func (f *apiFixture) do(method, path, token string, body interface{}) apiResponse {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	resp := apiResponse{Code: w.Code, Header: w.Header()}
	if w.Body.Len() > 0 {
		require.NoError(f.t, json.Unmarshal(w.Body.Bytes(), &resp.Body), w.Body.String())
	}
	return resp
}

func TestMessageAPI(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.adminToken()
	_, userToken := f.user("reader")

	resp := f.do(http.MethodPost, "/api/messages", admin, gin.H{
		"title":   "Hello",
		"content": "World",
		"recipients": []gin.H{
			{"type": "email", "value": "reader@x.com"},
			{"type": "username", "value": "ghost"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, true, resp.Body["success"])
	assert.Equal(t, "成功发送 1 条消息，失败 1 条", resp.Body["message"])
	assert.EqualValues(t, 1, resp.data()["sentCount"])
	assert.EqualValues(t, 1, resp.data()["failedCount"])

	resp = f.do(http.MethodGet, "/api/messages", userToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, resp.list(), 1)
	assert.EqualValues(t, 1, resp.Body["count"])
	assert.EqualValues(t, 1, resp.pagination()["total"])
	assert.EqualValues(t, 1, resp.pagination()["pages"])
	assert.EqualValues(t, 10, resp.pagination()["limit"])
	msg := resp.list()[0].(map[string]interface{})
	assert.Equal(t, "Hello", msg["title"])
	assert.Equal(t, "admin", msg["sender"])
	assert.Equal(t, "user_id", msg["recipientType"])
	assert.Equal(t, false, msg["isRead"])
	id := uint(msg["id"].(float64))

	resp = f.do(http.MethodGet, "/api/messages/unread-count", userToken, nil)
	assert.EqualValues(t, 1, resp.data()["unreadCount"])

	for i := 0; i < 2; i++ {
		resp = f.do(http.MethodPut, fmt.Sprintf("/api/messages/%d/read", id), userToken, nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, true, resp.data()["isRead"])
	}

	resp = f.do(http.MethodGet, "/api/messages/unread-count", userToken, nil)
	assert.EqualValues(t, 0, resp.data()["unreadCount"])

	resp = f.do(http.MethodPut, "/api/messages/9999/read", userToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "消息不存在或无权限", resp.Body["message"])

	resp = f.do(http.MethodDelete, fmt.Sprintf("/api/messages/%d", id), userToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = f.do(http.MethodGet, "/api/messages", userToken, nil)
	assert.Empty(t, resp.list())

	for _, path := range []string{"/api/messages/all", "/api/admin/messages"} {
		resp = f.do(http.MethodGet, path, admin, nil)
		require.Equal(t, http.StatusOK, resp.Code, path)
		assert.EqualValues(t, 1, resp.pagination()["total"], path)
		assert.EqualValues(t, 20, resp.pagination()["limit"], path)
	}
}

func TestMessageAPIAccessControl(t *testing.T) {
	f := newAPIFixture(t)
	owner, ownerToken := f.user("owner")
	_, otherToken := f.user("other")
	admin := f.adminToken()

	resp := f.do(http.MethodPost, "/api/admin/messages", admin, gin.H{
		"title": "t", "content": "c",
		"recipients": []gin.H{{"type": "user_id", "value": owner.IDString()}},
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = f.do(http.MethodGet, "/api/messages", ownerToken, nil)
	id := uint(resp.list()[0].(map[string]interface{})["id"].(float64))

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, fmt.Sprintf("/api/messages/%d", id), otherToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodDelete, "/api/messages/abc", ownerToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/messages", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/messages/all", ownerToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/messages", ownerToken, gin.H{"title": "t"}).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/broadcasts", ownerToken, nil).Code)

	resp = f.do(http.MethodPost, "/api/messages", admin, gin.H{"title": "t", "content": "c", "recipients": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NotEmpty(t, resp.Body["error"])
}

func TestBroadcastAPI(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.adminToken()
	for _, name := range []string{"amy", "ben", "cid"} {
		f.user(name)
	}

	resp := f.do(http.MethodPost, "/api/broadcasts", admin, gin.H{"title": "", "content": "c"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(http.MethodPost, "/api/broadcasts", admin, gin.H{"title": "News", "content": "Body"})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "广播消息已创建，将发送给 3 个用户", resp.Body["message"])
	assert.EqualValues(t, 3, resp.data()["totalRecipients"])
	id := uint(resp.data()["broadcastId"].(float64))
	assert.Equal(t, []uint{id}, f.scheduler.ids)

	resp = f.do(http.MethodPost, "/api/broadcasts", admin, gin.H{"title": "t", "content": "c", "sendToAll": false, "specificUsers": []uint{999}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "没有找到要发送的用户", resp.Body["message"])

	resp = f.do(http.MethodGet, "/api/broadcasts?status=pending", admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, resp.list(), 1)
	summary := resp.list()[0].(map[string]interface{})
	assert.Equal(t, "pending", summary["status"])
	assert.NotContains(t, summary, "sendDetails")

	today := time.Now().Format("2006-01-02")
	resp = f.do(http.MethodGet, "/api/broadcasts?startDate="+today+"&endDate="+today, admin, nil)
	assert.Len(t, resp.list(), 1)
	resp = f.do(http.MethodGet, "/api/broadcasts?status=completed", admin, nil)
	assert.Empty(t, resp.list())
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/broadcasts?status=bogus", admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/broadcasts?startDate=yesterday", admin, nil).Code)

	resp = f.do(http.MethodGet, fmt.Sprintf("/api/broadcasts/%d", id), admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	details := resp.data()["sendDetails"].([]interface{})
	require.Len(t, details, 3)
	first := details[0].(map[string]interface{})
	assert.Equal(t, "pending", first["status"])
	assert.Equal(t, "amy", first["user"].(map[string]interface{})["username"])

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/broadcasts/9999", admin, nil).Code)

	resp = f.do(http.MethodPost, fmt.Sprintf("/api/broadcasts/%d/retry", id), admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "只能重试失败的广播", resp.Body["message"])

	require.NoError(t, f.db.Model(&model.BroadcastMessage{}).Where("id = ?", id).Update("status", model.BroadcastFailed).Error)
	resp = f.do(http.MethodPost, fmt.Sprintf("/api/broadcasts/%d/retry", id), admin, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "广播重试已开始", resp.Body["message"])

	resp = f.do(http.MethodGet, "/api/broadcasts/stats/summary", admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, resp.data()["totalBroadcasts"])
	assert.EqualValues(t, 1, resp.data()["pendingBroadcasts"])
	assert.Len(t, resp.data()["recentStats"], 1)

	resp = f.do(http.MethodGet, "/api/broadcasts/users?search=BE&limit=500", admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, resp.list(), 1)
	assert.EqualValues(t, 100, resp.pagination()["limit"])
	assert.Equal(t, "ben", resp.list()[0].(map[string]interface{})["username"])
}

func TestAuthAPI(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "zoe", "email": "zoe@x.com", "password": "secret1", "passwordConfirm": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	token, _ := resp.Body["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "zoe", resp.Body["user"].(map[string]interface{})["username"])

	resp = f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "zoe", "email": "zoe2@x.com", "password": "secret1", "passwordConfirm": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(http.MethodPost, "/api/auth/register", "", gin.H{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "zoe@x.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "zoe@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = f.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "zoe@x.com", resp.Body["user"].(map[string]interface{})["email"])

	resp = f.do(http.MethodPost, "/api/admin/login", "", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = f.do(http.MethodPost, "/api/admin/login", "", gin.H{"username": f.cfg.Admin.Username, "password": f.cfg.Admin.Password})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "admin", resp.Body["user"].(map[string]interface{})["id"])
}

func TestUserAdminAPI(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.adminToken()
	_, readerToken := f.user("reader")

	resp := f.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "sam", "email": "sam@x.com", "password": "secret1", "passwordConfirm": "secret1",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	samToken, _ := resp.Body["token"].(string)
	samID, _ := resp.Body["user"].(map[string]interface{})["id"].(string)
	require.NotEmpty(t, samID)

	resp = f.do(http.MethodGet, "/api/admin/users?search=SA", admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, resp.list(), 1)
	assert.EqualValues(t, 1, resp.pagination()["total"])
	assert.EqualValues(t, 20, resp.pagination()["limit"])
	listed := resp.list()[0].(map[string]interface{})
	assert.Equal(t, "sam", listed["username"])
	assert.Equal(t, true, listed["canLogin"])
	assert.NotContains(t, listed, "password")

	resp = f.do(http.MethodGet, "/api/admin/users", admin, nil)
	assert.EqualValues(t, 2, resp.pagination()["total"])

	// suspend: login and the existing token stop working
	resp = f.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%s/status", samID), admin, gin.H{"canLogin": false})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "用户状态设置成功", resp.Body["message"])
	assert.Equal(t, false, resp.data()["canLogin"])

	resp = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "sam@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/auth/me", samToken, nil).Code)

	resp = f.do(http.MethodGet, fmt.Sprintf("/api/admin/users/%s", samID), admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, false, resp.data()["canLogin"])

	resp = f.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%s/status", samID), admin, gin.H{"canLogin": true})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = f.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "sam@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, resp.Code)

	// the body must say what to set
	resp = f.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%s/status", samID), admin, gin.H{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	resp = f.do(http.MethodPut, "/api/admin/users/9999/status", admin, gin.H{"canLogin": false})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "用户不存在", resp.Body["message"])

	// administrator accounts are protected
	boss := &model.User{Username: "boss", Email: "boss@x.com", Role: model.RoleAdmin, CanLogin: true}
	require.NoError(t, f.users.Create(boss))
	resp = f.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/status", boss.ID), admin, gin.H{"canLogin": false})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "不能操作管理员账户", resp.Body["message"])
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", boss.ID), admin, nil).Code)

	// non-administrators are turned away
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/users", readerToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, fmt.Sprintf("/api/admin/users/%s", samID), readerToken, nil).Code)

	// delete removes the account with its inbox
	resp = f.do(http.MethodPost, "/api/admin/messages", admin, gin.H{
		"title": "t", "content": "c",
		"recipients": []gin.H{{"type": "username", "value": "sam"}, {"type": "username", "value": "reader"}},
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = f.do(http.MethodDelete, fmt.Sprintf("/api/admin/users/%s", samID), admin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "用户及其消息已删除", resp.Body["message"])
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, fmt.Sprintf("/api/admin/users/%s", samID), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, fmt.Sprintf("/api/admin/users/%s", samID), admin, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/auth/me", samToken, nil).Code)

	var left int64
	require.NoError(t, f.db.Model(&model.Message{}).Count(&left).Error)
	assert.EqualValues(t, 1, left)
}

func TestGitHubCallbackRejectsBadState(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/github/callback?code=abc&state=forged", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://front.test/login?error=github_auth_failed", w.Header().Get("Location"))
}

func TestGitHubLoginFlow(t *testing.T) {
	f := newAPIFixture(t)

	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/login/oauth/access_token":
			_, _ = w.Write([]byte(`{"access_token":"gh-token","token_type":"bearer"}`))
		case "/user":
			assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"id":42,"login":"octo","name":"Octo Cat","email":null,"avatar_url":"https://avatars/42"}`))
		case "/user/emails":
			_, _ = w.Write([]byte(`[{"email":"old@x.com","primary":false,"verified":true},{"email":"octo@x.com","primary":true,"verified":true}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer gh.Close()

	f.github.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:  gh.URL + "/login/oauth/authorize",
		TokenURL: gh.URL + "/login/oauth/access_token",
	}
	f.github.api.SetBaseURL(gh.URL)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/github", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	authURL, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "client", authURL.Query().Get("client_id"))

	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/github/callback?code=abc&state="+url.QueryEscape(state), nil))
	require.Equal(t, http.StatusFound, w.Code)

	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "http://front.test/github-callback?"), location)
	back, err := url.Parse(location)
	require.NoError(t, err)
	assert.Equal(t, "octo", back.Query().Get("username"))
	assert.Equal(t, "octo@x.com", back.Query().Get("email"))
	assert.Equal(t, "Octo Cat", back.Query().Get("name"))

	caller, err := f.auth.ValidateToken(back.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, back.Query().Get("userId"), caller.ID)
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 20},
		{"page=3&limit=5", 3, 5},
		{"page=0&limit=-1", 1, 20},
		{"page=x&limit=1000", 1, 100},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		page, limit := pageParams(c, 20)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.limit, limit, tc.query)
	}

	assert.Equal(t, Pagination{Total: 41, Page: 2, Pages: 5, Limit: 10}, newPagination(41, 2, 10))
	assert.Equal(t, 0, newPagination(0, 1, 10).Pages)
}
