package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ripple/internal/models"
)

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and reloads the post", func(t *testing.T) {
		posts := &postRepoStub{
			createFn: func(_ context.Context, post *models.Post) error {
				post.ID = 8
				return nil
			},
			getByIDFn: func(_ context.Context, id, viewerID uint) (*models.Post, error) {
				return &models.Post{ID: id, UserID: viewerID, Content: "hello", LikesCount: 0}, nil
			},
		}
		svc := NewPostService(posts)

		post, err := svc.CreatePost(ctx, 1, "hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if post.ID != 8 {
			t.Fatalf("unexpected post: %+v", post)
		}
	})

	t.Run("blank or oversized content is a validation error", func(t *testing.T) {
		svc := NewPostService(&postRepoStub{})

		for _, content := range []string{"", "   ", strings.Repeat("x", 10001)} {
			_, err := svc.CreatePost(ctx, 1, content)
			var appErr *models.AppError
			if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		}
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	ctx := context.Background()

	ownedBy := func(ownerID uint) *postRepoStub {
		return &postRepoStub{
			getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
				return &models.Post{ID: id, UserID: ownerID, Content: "before"}, nil
			},
			updateFn: func(context.Context, *models.Post) error { return nil },
		}
	}

	t.Run("author can edit", func(t *testing.T) {
		svc := NewPostService(ownedBy(1))

		post, err := svc.UpdatePost(ctx, 5, 1, "after")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if post == nil {
			t.Fatal("expected the updated post back")
		}
	})

	t.Run("non-author is refused", func(t *testing.T) {
		svc := NewPostService(ownedBy(1))

		_, err := svc.UpdatePost(ctx, 5, 2, "after")
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
			t.Fatalf("expected FORBIDDEN, got %v", err)
		}
	})
}

func TestPostService_DeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("author can delete", func(t *testing.T) {
		deleted := uint(0)
		posts := &postRepoStub{
			getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
				return &models.Post{ID: id, UserID: 1}, nil
			},
			deleteFn: func(_ context.Context, id uint) error {
				deleted = id
				return nil
			},
		}
		svc := NewPostService(posts)

		if err := svc.DeletePost(ctx, 5, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 5 {
			t.Fatalf("expected post 5 deleted, got %d", deleted)
		}
	})

	t.Run("non-author is refused", func(t *testing.T) {
		posts := &postRepoStub{
			getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
				return &models.Post{ID: id, UserID: 1}, nil
			},
		}
		svc := NewPostService(posts)

		err := svc.DeletePost(ctx, 5, 2)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
			t.Fatalf("expected FORBIDDEN, got %v", err)
		}
	})

	t.Run("missing post is a not-found error", func(t *testing.T) {
		posts := &postRepoStub{
			getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
				return nil, models.NewNotFoundError("Post", id)
			},
		}
		svc := NewPostService(posts)

		err := svc.DeletePost(ctx, 5, 1)
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
			t.Fatalf("expected NOT_FOUND, got %v", err)
		}
	})
}
