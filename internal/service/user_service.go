package service

import (
	"strconv"
	"strings"

	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/internal/repository"
	"github.com/rs/zerolog"
)

// UserService implements the administrator moderation of accounts.
// Administrator accounts can be listed but not suspended or deleted.
type UserService struct {
	users  *repository.UserRepository
	logger zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(users *repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// List lists accounts of every role, optionally filtered by username, email or name
func (s *UserService) List(search string, page, limit int) ([]model.User, int64, error) {
	users, total, err := s.users.Search(strings.TrimSpace(search), page, limit)
	if err != nil {
		return nil, 0, storeError("list users", err)
	}
	return users, total, nil
}

// Get loads one account
func (s *UserService) Get(id uint) (*model.User, error) {
	u, err := s.users.FindByID(id)
	if err != nil {
		return nil, storeError("find user "+strconv.FormatUint(uint64(id), 10), err)
	}
	return u, nil
}

// moderatable loads an account that may be suspended or deleted
func (s *UserService) moderatable(id uint) (*model.User, error) {
	u, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if u.Role == model.RoleAdmin {
		return nil, ErrProtectedAccount
	}
	return u, nil
}

// SetCanLogin allows or suspends logins of an account. A suspended account's
// tokens stop working on its next request.
func (s *UserService) SetCanLogin(id uint, canLogin bool) (*model.User, error) {
	if _, err := s.moderatable(id); err != nil {
		return nil, err
	}
	u, err := s.users.SetCanLogin(id, canLogin)
	if err != nil {
		return nil, storeError("update user status", err)
	}

	s.logger.Info().Uint("user_id", id).Bool("can_login", canLogin).Msg("user status updated")
	return u, nil
}

// Delete removes an account and the messages addressed to it
func (s *UserService) Delete(id uint) error {
	u, err := s.moderatable(id)
	if err != nil {
		return err
	}
	removed, err := s.users.DeleteWithMessages(u)
	if err != nil {
		return storeError("delete user", err)
	}

	s.logger.Info().Uint("user_id", id).Int64("messages", removed).Msg("user deleted")
	return nil
}
