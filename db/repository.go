package db

import (
	"context"
	"database/sql"
	"errors"

	"goblog/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a storage uniqueness constraint rejects a write
	ErrDuplicate = errors.New("record already exists")
	// ErrNotOwner is returned when an owner-gated mutation targets a record owned by another user
	ErrNotOwner = errors.New("record owned by another user")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// UserRepository defines the interface for credential store operations
type UserRepository interface {
	Repository
	FindByID(ctx context.Context, id int) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// PostRepository defines the interface for post store operations
type PostRepository interface {
	Repository
	FindByID(ctx context.Context, id int) (*models.Post, error)
	FindAll(ctx context.Context) ([]*models.Post, error)
	FindByOwner(ctx context.Context, userID int) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdateOwned(ctx context.Context, id, ownerID int, title, content string) (*models.Post, error)
	DeleteOwned(ctx context.Context, id, ownerID int) error
}

// RepositoryFactory creates repositories backed by the SQLite database
type RepositoryFactory struct {
	SQLiteDB *sql.DB
	DBName   string
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB: sqliteDB,
		DBName:   dbName,
	}
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	return NewSQLiteUserRepository(f.SQLiteDB)
}

// NewPostRepository creates a new post repository
func (f *RepositoryFactory) NewPostRepository() PostRepository {
	return NewSQLitePostRepository(f.SQLiteDB)
}
