package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

// PostService provides post business logic.
type PostService struct {
	postRepo repository.PostRepository
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost creates a post for the user.
func (s *PostService) CreatePost(ctx context.Context, userID uint, content string) (*models.Post, error) {
	if err := validation.ValidateContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post := &models.Post{Content: content, UserID: userID}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, userID)
}

// GetPost returns a post with its author, likes, computed like count and
// whether the viewing user has liked it.
func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

// ListPosts returns a newest-first page of posts annotated for the viewer.
func (s *PostService) ListPosts(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset, viewerID)
}

// UpdatePost edits a post; only its author may do so.
func (s *PostService) UpdatePost(ctx context.Context, id, userID uint, content string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	if err := validation.ValidateContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post.Content = content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id, userID)
}

// DeletePost removes a post and its likes; only its author may do so.
func (s *PostService) DeletePost(ctx context.Context, id, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, id)
}
