package service

import (
	"context"
	"errors"
	"testing"

	"ripple/internal/models"
)

type likeRepoStub struct {
	createFn           func(context.Context, *models.Like) error
	getByPostAndUserFn func(context.Context, uint, uint) (*models.Like, error)
	deleteFn           func(context.Context, uint) error
	countByPostFn      func(context.Context, uint) (int64, error)
}

func (s *likeRepoStub) Create(ctx context.Context, like *models.Like) error {
	return s.createFn(ctx, like)
}
func (s *likeRepoStub) GetByPostAndUser(ctx context.Context, postID, userID uint) (*models.Like, error) {
	return s.getByPostAndUserFn(ctx, postID, userID)
}
func (s *likeRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *likeRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

type postRepoStub struct {
	createFn      func(context.Context, *models.Post) error
	getByIDFn     func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listFn        func(context.Context, int, int, uint) ([]*models.Post, error)
	updateFn      func(context.Context, *models.Post) error
	deleteFn      func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, currentUserID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func existingPost(id uint) *postRepoStub {
	return &postRepoStub{
		getByIDFn: func(_ context.Context, gotID, _ uint) (*models.Post, error) {
			if gotID != id {
				return nil, models.NewNotFoundError("Post", gotID)
			}
			return &models.Post{ID: id, UserID: 42}, nil
		},
	}
}

func TestLikeService_LikePost(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the like", func(t *testing.T) {
		var created *models.Like
		likes := &likeRepoStub{
			createFn: func(_ context.Context, like *models.Like) error {
				created = like
				return nil
			},
		}
		svc := NewLikeService(likes, existingPost(10))

		like, err := svc.LikePost(ctx, 10, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil || like.PostID != 10 || like.UserID != 3 {
			t.Fatalf("like not created with expected pair: %+v", like)
		}
	})

	t.Run("missing post is a not-found error", func(t *testing.T) {
		svc := NewLikeService(&likeRepoStub{}, existingPost(10))

		_, err := svc.LikePost(ctx, 99, 3)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("duplicate like surfaces the validation error", func(t *testing.T) {
		likes := &likeRepoStub{
			createFn: func(context.Context, *models.Like) error {
				return models.NewValidationError("Post is already liked")
			},
		}
		svc := NewLikeService(likes, existingPost(10))

		_, err := svc.LikePost(ctx, 10, 3)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
			t.Fatalf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}

func TestLikeService_UnlikePost(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the caller's like", func(t *testing.T) {
		deleted := uint(0)
		likes := &likeRepoStub{
			getByPostAndUserFn: func(_ context.Context, postID, userID uint) (*models.Like, error) {
				return &models.Like{ID: 77, PostID: postID, UserID: userID}, nil
			},
			deleteFn: func(_ context.Context, id uint) error {
				deleted = id
				return nil
			},
		}
		svc := NewLikeService(likes, existingPost(10))

		if err := svc.UnlikePost(ctx, 10, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 77 {
			t.Fatalf("expected like row 77 deleted, got %d", deleted)
		}
	})

	t.Run("absent like is a not-found error", func(t *testing.T) {
		likes := &likeRepoStub{
			getByPostAndUserFn: func(context.Context, uint, uint) (*models.Like, error) {
				return nil, nil
			},
		}
		svc := NewLikeService(likes, existingPost(10))

		err := svc.UnlikePost(ctx, 10, 3)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})
}
