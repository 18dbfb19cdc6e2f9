package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/programming666/personal-blog/config"
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/programming666/personal-blog/pkg/utils"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// AdminID is the identity of the administrator configured in the config file.
// It has no row in the users table.
const AdminID = "admin"

// Identity is the authenticated caller of a request
type Identity struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	CanLogin bool   `json:"canLogin"`
}

// IsAdmin reports whether the caller may use the administrator routes
func (i *Identity) IsAdmin() bool {
	return i.Role == model.RoleAdmin
}

func identityOf(u *model.User) *Identity {
	return &Identity{
		ID:       u.IDString(),
		Role:     u.Role,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.DisplayName(),
		Avatar:   u.Avatar,
		CanLogin: u.CanLogin,
	}
}

// welcomer greets new accounts
type welcomer interface {
	SendWelcome(user *model.User) error
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo *repository.UserRepository
	welcome  welcomer
	cfg      *config.Config
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.UserRepository, welcome welcomer, cfg *config.Config, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		welcome:  welcome,
		cfg:      cfg,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginInput represents administrator login input
type AdminLoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token string    `json:"token"`
	User  *Identity `json:"user"`
}

// GitHubProfile is the subset of a GitHub account used to sign in
type GitHubProfile struct {
	ID        string
	Login     string
	Email     string
	Name      string
	AvatarURL string
}

func (s *AuthService) issue(u *model.User) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(u.IDString(), u.Role, s.cfg.JWT.Secret, time.Duration(s.cfg.JWT.ExpireHour)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResponse{Token: token, User: identityOf(u)}, nil
}

// greet sends the welcome message; a failure never fails the registration
func (s *AuthService) greet(u *model.User) {
	if s.welcome == nil {
		return
	}
	if err := s.welcome.SendWelcome(u); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", u.ID).Msg("welcome message not sent")
	}
}

// Register registers a new user with a password
func (s *AuthService) Register(input *RegisterInput) (*AuthResponse, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Password != input.PasswordConfirm {
		return nil, fmt.Errorf("%w: passwords do not match", ErrInvalidRequest)
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidRequest)
	}
	if !utils.IsValidUsername(input.Username) {
		return nil, fmt.Errorf("%w: invalid username", ErrInvalidRequest)
	}
	if !utils.IsValidPassword(input.Password) {
		return nil, fmt.Errorf("%w: password too short", ErrInvalidRequest)
	}

	if s.userRepo.ExistsByEmail(input.Email) || s.userRepo.ExistsByUsername(input.Username) {
		return nil, ErrUserExists
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username: input.Username,
		Email:    input.Email,
		Name:     input.Username,
		Password: hashedPassword,
		Role:     model.RoleUser,
		CanLogin: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, storeError("create user", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	s.greet(user)
	return s.issue(user)
}

// Login signs a user in with email and password
func (s *AuthService) Login(input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("find user", err)
	}
	if user.Password == "" || !utils.CheckPassword(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.CanLogin {
		return nil, ErrAccountSuspended
	}
	return s.issue(user)
}

// AdminLogin signs the configured administrator in
func (s *AuthService) AdminLogin(input *AdminLoginInput) (*AuthResponse, error) {
	userOK := subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.cfg.Admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(input.Password), []byte(s.cfg.Admin.Password)) == 1
	if !userOK || !passOK {
		s.logger.Warn().Str("username", input.Username).Msg("admin login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(AdminID, model.RoleAdmin, s.cfg.JWT.Secret, time.Duration(s.cfg.JWT.AdminExpireHour)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResponse{Token: token, User: s.adminIdentity()}, nil
}

func (s *AuthService) adminIdentity() *Identity {
	return &Identity{
		ID:       AdminID,
		Role:     model.RoleAdmin,
		Username: s.cfg.Admin.Username,
		Name:     "系统管理员",
		CanLogin: true,
	}
}

// LoginWithGitHub signs in the account linked to a GitHub profile. An existing
// account with the same email or username gets linked; otherwise one is created.
// created reports whether a new account was made.
func (s *AuthService) LoginWithGitHub(profile *GitHubProfile) (resp *AuthResponse, created bool, err error) {
	user, err := s.userRepo.FindByGithubID(profile.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, storeError("find user", err)
	}

	if user == nil {
		user, err = s.linkGitHub(profile)
		if err != nil {
			return nil, false, err
		}
	}

	if user == nil {
		user, err = s.createGitHubUser(profile)
		if err != nil {
			return nil, false, err
		}
		created = true
		s.greet(user)
	}

	if !user.CanLogin {
		return nil, false, ErrAccountSuspended
	}
	resp, err = s.issue(user)
	return resp, created, err
}

// linkGitHub attaches a GitHub id to an account with the same email or username
func (s *AuthService) linkGitHub(profile *GitHubProfile) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	if profile.Email != "" {
		user, err = s.userRepo.FindByEmail(strings.ToLower(profile.Email))
	}
	if user == nil {
		user, err = s.userRepo.FindByUsername(profile.Login)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeError("find user", err)
	}

	user.GithubID = profile.ID
	if user.Avatar == "" {
		user.Avatar = profile.AvatarURL
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, storeError("link github account", err)
	}
	s.logger.Info().Uint("user_id", user.ID).Str("github_id", profile.ID).Msg("github account linked")
	return user, nil
}

func (s *AuthService) createGitHubUser(profile *GitHubProfile) (*model.User, error) {
	username := profile.Login
	if s.userRepo.ExistsByUsername(username) {
		username = username + "-" + profile.ID
	}
	email := strings.ToLower(profile.Email)
	if email == "" {
		email = profile.ID + "+" + profile.Login + "@users.noreply.github.com"
	}
	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Name:     name,
		Role:     model.RoleUser,
		GithubID: profile.ID,
		Avatar:   profile.AvatarURL,
		CanLogin: true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, storeError("create user", err)
	}
	s.logger.Info().Uint("user_id", user.ID).Str("github_id", profile.ID).Msg("user registered via github")
	return user, nil
}

// ValidateToken validates a token and returns the caller it identifies
func (s *AuthService) ValidateToken(tokenString string) (*Identity, error) {
	claims, err := utils.ValidateJWT(tokenString, s.cfg.JWT.Secret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if claims.ID == AdminID && claims.Role == model.RoleAdmin {
		return s.adminIdentity(), nil
	}

	id, err := strconv.ParseUint(claims.ID, 10, 64)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("find user", err)
	}
	if !user.CanLogin {
		return nil, ErrAccountSuspended
	}
	return identityOf(user), nil
}
