package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/programming666/personal-blog/internal/model"
	"gorm.io/gorm"
)

// userLookup is the part of the user store the resolver needs
type userLookup interface {
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
}

// RecipientResolver maps a loosely typed recipient reference to a canonical user id
type RecipientResolver struct {
	users userLookup
}

// NewRecipientResolver creates a new RecipientResolver
func NewRecipientResolver(users userLookup) *RecipientResolver {
	return &RecipientResolver{users: users}
}

// Resolve returns the canonical user id for r. user_id values are taken as-is;
// email and username are looked up and fail with ErrRecipientNotFound when absent.
func (s *RecipientResolver) Resolve(r model.Recipient) (string, error) {
	value := strings.TrimSpace(r.Value)
	if value == "" {
		return "", fmt.Errorf("%w: empty recipient", ErrInvalidRequest)
	}

	var (
		user *model.User
		err  error
	)
	switch r.Type {
	case model.RecipientUserID:
		return value, nil
	case model.RecipientEmail:
		user, err = s.users.FindByEmail(value)
	case model.RecipientUsername:
		user, err = s.users.FindByUsername(value)
	default:
		return "", fmt.Errorf("%w: unknown recipient type %q", ErrInvalidRequest, r.Type)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrRecipientNotFound, value)
		}
		return "", storeError("find recipient", err)
	}
	return user.IDString(), nil
}
