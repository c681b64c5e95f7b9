package post

import (
	"context"
	"errors"
	"unicode/utf8"

	"goblog/db"
	"goblog/models"
)

const (
	MaxTitleLength   = 100
	MaxContentLength = 500
)

var (
	// ErrForbidden is returned when the requester is not the post's owner
	ErrForbidden      = errors.New("not the owner of this post")
	ErrTitleTooLong   = errors.New("title exceeds 100 characters")
	ErrContentTooLong = errors.New("content exceeds 500 characters")
)

type Service struct {
	posts     db.PostRepository
	dbManager *db.DBManager
}

func NewService(posts db.PostRepository, dbManager *db.DBManager) *Service {
	return &Service{posts: posts, dbManager: dbManager}
}

// validate enforces the length caps in characters, not bytes
func validate(title, content string) error {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// ListAll returns every post, used for the public feed
func (s *Service) ListAll(ctx context.Context) ([]*models.Post, error) {
	return s.posts.FindAll(ctx)
}

// ListOwnedBy returns the posts owned by the given user
func (s *Service) ListOwnedBy(ctx context.Context, userID int) ([]*models.Post, error) {
	return s.posts.FindByOwner(ctx, userID)
}

// Get loads a single post by id
func (s *Service) Get(ctx context.Context, id int) (*models.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// Create persists a new post owned by userID
func (s *Service) Create(ctx context.Context, userID int, title, content string) (*models.Post, error) {
	if err := validate(title, content); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   title,
		Content: content,
		UserID:  userID,
	}

	return s.dbManager.CreatePost(s.posts, ctx, post)
}

// Edit mutates a post's title and content on behalf of requesterID.
// Returns db.ErrNotFound if the post does not exist and ErrForbidden if the
// requester is not the owner. The ownership check runs in the same
// transaction as the mutation.
func (s *Service) Edit(ctx context.Context, requesterID, postID int, title, content string) (*models.Post, error) {
	if err := validate(title, content); err != nil {
		return nil, err
	}

	updated, err := s.dbManager.UpdatePost(s.posts, ctx, postID, requesterID, title, content)
	if err != nil {
		if errors.Is(err, db.ErrNotOwner) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	return updated, nil
}

// Delete removes a post permanently under the same ownership contract as Edit
func (s *Service) Delete(ctx context.Context, requesterID, postID int) error {
	err := s.dbManager.DeletePost(s.posts, ctx, postID, requesterID)
	if errors.Is(err, db.ErrNotOwner) {
		return ErrForbidden
	}
	return err
}
