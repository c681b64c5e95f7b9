package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"goblog/models"

	"github.com/mattn/go-sqlite3"
)

// isUniqueViolation reports whether err is a SQLite uniqueness constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// SQLiteUserRepository implements the UserRepository interface for SQLite
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteUserRepository) Close() error {
	return r.db.Close()
}

// FindByID finds a user by primary key
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, fullname, username, email, password_hash FROM users WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var user models.User
	err := row.Scan(&user.ID, &user.FullName, &user.Username, &user.Email, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}

	return &user, nil
}

// FindByEmail finds a user by exact email match
func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, fullname, username, email, password_hash FROM users WHERE email = ?`
	row := r.db.QueryRowContext(ctx, query, email)

	var user models.User
	err := row.Scan(&user.ID, &user.FullName, &user.Username, &user.Email, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}

	return &user, nil
}

// Create inserts a new user and assigns its id.
// Returns ErrDuplicate if the username uniqueness constraint is violated.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (fullname, username, email, password_hash) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, user.FullName, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading inserted user id: %w", err)
	}
	user.ID = int(id)

	return user, nil
}

// SQLitePostRepository implements the PostRepository interface for SQLite
type SQLitePostRepository struct {
	db *sql.DB
}

// NewSQLitePostRepository creates a new SQLitePostRepository
func NewSQLitePostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{db: db}
}

// Close closes the database connection
func (r *SQLitePostRepository) Close() error {
	return r.db.Close()
}

// FindByID finds a post by primary key
func (r *SQLitePostRepository) FindByID(ctx context.Context, id int) (*models.Post, error) {
	query := `SELECT id, title, content, user_id FROM posts WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var post models.Post
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning post: %w", err)
	}

	return &post, nil
}

// FindAll returns every post in insertion order
func (r *SQLitePostRepository) FindAll(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT id, title, content, user_id FROM posts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.UserID); err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, &post)
	}

	return posts, rows.Err()
}

// FindByOwner returns the posts owned by the given user in insertion order
func (r *SQLitePostRepository) FindByOwner(ctx context.Context, userID int) ([]*models.Post, error) {
	query := `SELECT id, title, content, user_id FROM posts WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying posts by owner: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.UserID); err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, &post)
	}

	return posts, rows.Err()
}

// Create inserts a new post and assigns its id
func (r *SQLitePostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `INSERT INTO posts (title, content, user_id) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, post.Title, post.Content, post.UserID)
	if err != nil {
		return nil, fmt.Errorf("error inserting post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error reading inserted post id: %w", err)
	}
	post.ID = int(id)

	return post, nil
}

// UpdateOwned mutates a post's title and content. The ownership check and the
// mutation run in a single transaction so the owner cannot change in between.
// Returns ErrNotFound if the post does not exist and ErrNotOwner if it is
// owned by a different user.
func (r *SQLitePostRepository) UpdateOwned(ctx context.Context, id, ownerID int, title, content string) (*models.Post, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var storedOwner int
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = ?`, id).Scan(&storedOwner)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning post owner: %w", err)
	}

	if storedOwner != ownerID {
		return nil, ErrNotOwner
	}

	_, err = tx.ExecContext(ctx, `UPDATE posts SET title = ?, content = ? WHERE id = ?`, title, content, id)
	if err != nil {
		return nil, fmt.Errorf("error updating post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing post update: %w", err)
	}

	return &models.Post{ID: id, Title: title, Content: content, UserID: ownerID}, nil
}

// DeleteOwned removes a post permanently under the same ownership contract as UpdateOwned
func (r *SQLitePostRepository) DeleteOwned(ctx context.Context, id, ownerID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var storedOwner int
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = ?`, id).Scan(&storedOwner)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("error scanning post owner: %w", err)
	}

	if storedOwner != ownerID {
		return ErrNotOwner
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing post delete: %w", err)
	}

	return nil
}
