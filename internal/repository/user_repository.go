package repository

import (
	"github.com/programming666/personal-blog/internal/model"
	"github.com/programming666/personal-blog/pkg/utils"
	"gorm.io/gorm"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *UserRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByGithubID finds a user by GitHub account id
func (r *UserRepository) FindByGithubID(githubID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("github_id = ?", githubID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns the users with the given ids, keyed by id
func (r *UserRepository) FindByIDs(ids []uint) (map[uint]model.User, error) {
	result := make(map[uint]model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []model.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// FindIDsByRole returns the ids of every user with the given role, ordered by id.
// When ids is non-nil only those users are considered.
func (r *UserRepository) FindIDsByRole(role string, ids []uint) ([]uint, error) {
	query := r.db.Model(&model.User{}).Where("role = ?", role)
	if ids != nil {
		if len(ids) == 0 {
			return []uint{}, nil
		}
		query = query.Where("id IN ?", ids)
	}

	var result []uint
	err := query.Order("id ASC").Pluck("id", &result).Error
	return result, err
}

// Update updates a user
func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// SearchByRole searches users of one role by username, email or name with pagination.
// Matching is a case-insensitive substring match.
func (r *UserRepository) SearchByRole(role, keyword string, page, pageSize int) ([]model.User, int64, error) {
	return r.search(r.db.Model(&model.User{}).Where("role = ?", role), keyword, page, pageSize)
}

// Search searches users of every role, see SearchByRole
func (r *UserRepository) Search(keyword string, page, pageSize int) ([]model.User, int64, error) {
	return r.search(r.db.Model(&model.User{}), keyword, page, pageSize)
}

func (r *UserRepository) search(query *gorm.DB, keyword string, page, pageSize int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	if keyword != "" {
		pattern := utils.LikePattern(keyword)
		query = query.Where(
			"(LOWER(username) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!' OR LOWER(name) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&users).Error
	return users, total, err
}

// SetCanLogin sets whether a user may log in and returns the updated user
func (r *UserRepository) SetCanLogin(id uint, canLogin bool) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&user).Update("can_login", canLogin).Error; err != nil {
		return nil, err
	}
	user.CanLogin = canLogin
	return &user, nil
}

// DeleteWithMessages removes a user together with every message stored under
// one of its recipient forms. It reports the number of messages removed.
func (r *UserRepository) DeleteWithMessages(user *model.User) (int64, error) {
	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		forms := []string{user.IDString(), user.Email, user.Username}
		result := tx.Where("recipient IN ?", forms).Delete(&model.Message{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected

		result = tx.Delete(&model.User{}, user.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return removed, err
}

// ExistsByEmail checks if a user exists by email
func (r *UserRepository) ExistsByEmail(email string) bool {
	var count int64
	r.db.Model(&model.User{}).Where("email = ?", email).Count(&count)
	return count > 0
}

// ExistsByUsername checks if a user exists by username
func (r *UserRepository) ExistsByUsername(username string) bool {
	var count int64
	r.db.Model(&model.User{}).Where("username = ?", username).Count(&count)
	return count > 0
}
