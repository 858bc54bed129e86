package repo

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Skotchmaster/nexus_market/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserAlreadyExist = errors.New("user already exist")

// FindByCredentials matches both fields exactly; passwords are stored verbatim.
func (r *GormRepo) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("username = ? AND password = ?", username, password).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &user, nil
}

// CreateUserIfNotExists inserts u and lets the unique index on username
// decide concurrent registrations of the same name.
func (r *GormRepo) CreateUserIfNotExists(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Create(u).Error
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrUserAlreadyExist
	}
	// not every driver reports the violation in a recognisable form
	if n, cerr := r.CountUsers(ctx, u.Username); cerr == nil && n > 0 {
		return ErrUserAlreadyExist
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *GormRepo) CountUsers(ctx context.Context, username string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error
	return n, err
}

// EnsureAdmin seeds the admin account on first boot. An existing row is left
// untouched, whatever its password.
func (r *GormRepo) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	admin := models.User{Username: username, Password: password, Role: models.RoleAdmin}
	err := r.CreateUserIfNotExists(ctx, &admin)
	if errors.Is(err, ErrUserAlreadyExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
