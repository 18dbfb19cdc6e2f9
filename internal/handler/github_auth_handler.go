package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/programming666/personal-blog/config"
	"github.com/programming666/personal-blog/internal/i18n"
	"github.com/programming666/personal-blog/internal/service"
	"github.com/programming666/personal-blog/pkg/utils"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	githubAPIBase      = "https://api.github.com"
	githubStateMaxAge  = 10 * time.Minute
	githubFailedParams = "/login?error=github_auth_failed"
)

// GitHubAuthHandler handles GitHub OAuth authentication
type GitHubAuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
	oauthConfig *oauth2.Config
	api         *resty.Client
	logger      zerolog.Logger
}

// NewGitHubAuthHandler creates a new GitHubAuthHandler
func NewGitHubAuthHandler(authService *service.AuthService, cfg *config.Config, logger zerolog.Logger) *GitHubAuthHandler {
	var oauthConfig *oauth2.Config
	if cfg.GitHubOAuth.Enabled {
		oauthConfig = &oauth2.Config{
			ClientID:     cfg.GitHubOAuth.ClientID,
			ClientSecret: cfg.GitHubOAuth.ClientSecret,
			RedirectURL:  cfg.GitHubOAuth.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}
	}

	return &GitHubAuthHandler{
		authService: authService,
		cfg:         cfg,
		oauthConfig: oauthConfig,
		api: resty.New().
			SetBaseURL(githubAPIBase).
			SetTimeout(10*time.Second).
			SetHeader("Accept", "application/vnd.github+json"),
		logger: logger.With().Str("component", "github_oauth").Logger(),
	}
}

// githubUser is the subset of GET /user we use
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (h *GitHubAuthHandler) enabled(c *gin.Context) bool {
	if h.oauthConfig != nil {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": i18n.T(c.GetString("lang"), "auth.github_disabled"),
	})
	return false
}

// oauthFor derives the callback URL from the request when none is configured
func (h *GitHubAuthHandler) oauthFor(c *gin.Context) *oauth2.Config {
	oauthConfig := *h.oauthConfig
	if oauthConfig.RedirectURL == "" {
		oauthConfig.RedirectURL = utils.GetBaseURL(c, "") + "/api/auth/github/callback"
	}
	return &oauthConfig
}

// GitHubLogin initiates GitHub OAuth login
// @Summary GitHub OAuth login
// @Description Redirect to the GitHub authorization page
// @Tags auth
// @Success 307 "Redirect to GitHub"
// @Failure 400 {object} Response "GitHub login not enabled"
// @Router /auth/github [get]
func (h *GitHubAuthHandler) GitHubLogin(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	state, err := utils.SignOAuthState(h.cfg.JWT.Secret, time.Now())
	if err != nil {
		respondError(c, err, "error.not_found")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.oauthFor(c).AuthCodeURL(state))
}

// GitHubCallback handles the GitHub OAuth callback and hands the token to the frontend
// @Summary GitHub OAuth callback
// @Tags auth
// @Param code query string true "OAuth authorization code"
// @Param state query string true "OAuth state"
// @Success 302 "Redirect to the frontend with a token"
// @Failure 302 "Redirect to the frontend login page with an error"
// @Router /auth/github/callback [get]
func (h *GitHubAuthHandler) GitHubCallback(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	frontend := h.cfg.GitHubOAuth.FrontendURL

	if err := utils.VerifyOAuthState(c.Query("state"), h.cfg.JWT.Secret, githubStateMaxAge, time.Now()); err != nil {
		h.logger.Warn().Err(err).Msg("rejected oauth state")
		c.Redirect(http.StatusFound, frontend+githubFailedParams)
		return
	}
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, frontend+githubFailedParams)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	token, err := h.oauthFor(c).Exchange(ctx, code)
	if err != nil {
		h.logger.Warn().Err(err).Msg("github code exchange failed")
		c.Redirect(http.StatusFound, frontend+githubFailedParams)
		return
	}

	profile, err := h.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		h.logger.Warn().Err(err).Msg("github profile fetch failed")
		c.Redirect(http.StatusFound, frontend+githubFailedParams)
		return
	}

	resp, _, err := h.authService.LoginWithGitHub(profile)
	if err != nil {
		h.logger.Warn().Err(err).Str("github_id", profile.ID).Msg("github login failed")
		if errors.Is(err, service.ErrAccountSuspended) {
			c.Redirect(http.StatusFound, frontend+"/login?error=account_disabled")
			return
		}
		c.Redirect(http.StatusFound, frontend+githubFailedParams)
		return
	}

	q := url.Values{}
	q.Set("token", resp.Token)
	q.Set("userId", resp.User.ID)
	q.Set("username", resp.User.Username)
	q.Set("email", resp.User.Email)
	q.Set("name", resp.User.Name)
	q.Set("avatar", resp.User.Avatar)
	c.Redirect(http.StatusFound, frontend+"/github-callback?"+q.Encode())
}

// fetchProfile loads the GitHub account behind an access token. A private
// email is looked up through /user/emails.
func (h *GitHubAuthHandler) fetchProfile(ctx context.Context, accessToken string) (*service.GitHubProfile, error) {
	var user githubUser
	resp, err := h.api.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&user).
		Get("/user")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("github /user: status %d", resp.StatusCode())
	}
	if user.ID == 0 {
		return nil, errors.New("github /user: missing id")
	}

	email := user.Email
	if email == "" {
		var emails []githubEmail
		resp, err := h.api.R().
			SetContext(ctx).
			SetAuthToken(accessToken).
			SetResult(&emails).
			Get("/user/emails")
		if err == nil && !resp.IsError() {
			for _, e := range emails {
				if e.Primary && e.Verified {
					email = e.Email
					break
				}
			}
		}
	}

	return &service.GitHubProfile{
		ID:        strconv.FormatInt(user.ID, 10),
		Login:     user.Login,
		Email:     email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}, nil
}
