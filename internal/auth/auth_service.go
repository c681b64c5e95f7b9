package auth

import (
	"context"
	"errors"

	"goblog/db"
	"goblog/models"
)

var (
	// ErrPasswordMismatch is returned when the signup confirmation does not match
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrInvalidCredentials covers both an unknown email and a failed hash
	// check so a caller cannot tell which emails exist
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	users     db.UserRepository
	dbManager *db.DBManager
}

func NewService(users db.UserRepository, dbManager *db.DBManager) *Service {
	return &Service{users: users, dbManager: dbManager}
}

// Register hashes the password and persists a new user.
// Returns ErrPasswordMismatch when the confirmation differs and
// db.ErrDuplicate when the username is already taken.
func (s *Service) Register(ctx context.Context, fullName, username, email, password, confirm string) (*models.User, error) {
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	return s.dbManager.CreateUser(s.users, ctx, user)
}

// Login verifies the submitted credentials against the credential store
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// FindByID resolves a stored user id to a user for session resolution
func (s *Service) FindByID(ctx context.Context, id int) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}
