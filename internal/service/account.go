package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/nexus_market/internal/events"
	"github.com/Skotchmaster/nexus_market/internal/models"
	"github.com/Skotchmaster/nexus_market/internal/repo"
	"github.com/Skotchmaster/nexus_market/pkg/logging"
	"github.com/Skotchmaster/nexus_market/pkg/tokens"
)

const DefaultTokenTTL = 24 * time.Hour

type AccountRepo interface {
	FindByCredentials(ctx context.Context, username, password string) (*models.User, error)
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
}

type AccountService struct {
	Repo      AccountRepo
	Events    events.Publisher
	JWTSecret []byte
	TokenTTL  time.Duration
}

type LoginResult struct {
	User        models.SessionUser
	AccessToken string
	AccessExp   time.Time
}

func (s *AccountService) Register(ctx context.Context, username, password string) error {
	l := logging.FromContext(ctx).With("svc", "account.register", "username", username)

	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("username and password are required: %w", ErrValidation)
	}

	user := models.User{Username: username, Password: password, Role: models.RoleUser}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 400, "reason", "user already exist")
			return ErrDuplicateUsername
		}
		l.Error("register_error", "status", 500, "reason", "insert failed", "error", err)
		return err
	}

	if s.Events != nil {
		if err := s.Events.PublishEvent(ctx, events.TopicUsers, events.Key(user.ID), events.NewUserRegistered(user)); err != nil {
			l.Warn("publish_event_error", "topic", events.TopicUsers, "error", err)
		}
	}
	return nil
}

// Login never says whether the username or the password was wrong.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.login", "username", username)

	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Repo.FindByCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login failed", "status", 401, "reason", "invalid username or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "status", 500, "error", err)
		return nil, err
	}

	res := &LoginResult{User: user.Session()}
	if len(s.JWTSecret) == 0 {
		return res, nil
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	res.AccessExp = time.Now().Add(ttl)
	res.AccessToken, err = tokens.SignAccessToken(user.ID, user.Username, user.Role, res.AccessExp, s.JWTSecret)
	if err != nil {
		l.Error("login failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}
	return res, nil
}
