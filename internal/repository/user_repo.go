package repository

import (
	"errors"

	"sitechat/internal/model"

	"go.uber.org/zap"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository serves the static user records in seed order.
type UserRepository struct {
	users  []model.User
	byID   map[string]int
	logger *zap.Logger
}

func NewUserRepository(logger *zap.Logger) (*UserRepository, error) {
	seed, err := loadSeed(seedYAML)
	if err != nil {
		return nil, err
	}
	return newUserRepository(seed.Users, logger), nil
}

func newUserRepository(users []model.User, logger *zap.Logger) *UserRepository {
	r := &UserRepository{
		users:  users,
		byID:   make(map[string]int, len(users)),
		logger: logger,
	}
	for i, u := range users {
		r.byID[u.ID] = i
	}

	logger.Info("User records loaded", zap.Int("count", len(users)))
	return r
}

func (r *UserRepository) Get(id string) (model.User, error) {
	i, ok := r.byID[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return r.users[i], nil
}

func (r *UserRepository) List() []model.User {
	out := make([]model.User, len(r.users))
	copy(out, r.users)
	return out
}
