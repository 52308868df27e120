package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ripple/internal/models"
)

func TestPostRepository_LikeCountsAndViewerFlag(t *testing.T) {
	t.Parallel()
	db := setupRepoTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Author", "author@example.com")
	fanOne := createTestUser(t, db, "Fan One", "fan1@example.com")
	fanTwo := createTestUser(t, db, "Fan Two", "fan2@example.com")

	post := createTestPost(t, db, author.ID, "popular")
	mustCreate(t, db, &models.Like{PostID: post.ID, UserID: fanOne.ID})
	mustCreate(t, db, &models.Like{PostID: post.ID, UserID: fanTwo.ID})

	t.Run("viewer who liked", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID, fanOne.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.LikesCount != 2 {
			t.Fatalf("expected likes_count 2, got %d", got.LikesCount)
		}
		if !got.Liked {
			t.Fatal("expected liked=true for the liking viewer")
		}
	})

	t.Run("viewer who did not like", func(t *testing.T) {
		got, err := repo.GetByID(ctx, post.ID, author.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.LikesCount != 2 || got.Liked {
			t.Fatalf("expected likes_count 2 and liked=false, got %d/%v", got.LikesCount, got.Liked)
		}
	})
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	t.Parallel()
	db := setupRepoTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Author", "list-author@example.com")

	base := time.Now().Add(-time.Hour)
	for i, content := range []string{"first", "second", "third"} {
		post := &models.Post{UserID: author.ID, Content: content, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		mustCreate(t, db, post)
	}

	posts, err := repo.List(ctx, 10, 0, author.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	if posts[0].Content != "third" || posts[2].Content != "first" {
		t.Fatalf("expected newest first, got %q..%q", posts[0].Content, posts[2].Content)
	}
	if posts[0].User.ID != author.ID {
		t.Fatal("expected the author preloaded on each post")
	}

	page, err := repo.List(ctx, 1, 1, author.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 1 || page[0].Content != "second" {
		t.Fatalf("expected the middle post on page 2, got %+v", page)
	}
}

func TestPostRepository_DeleteRemovesLikes(t *testing.T) {
	t.Parallel()
	db := setupRepoTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "Author", "del-author@example.com")
	fan := createTestUser(t, db, "Fan", "del-fan@example.com")
	post := createTestPost(t, db, author.ID, "ephemeral")
	mustCreate(t, db, &models.Like{PostID: post.ID, UserID: fan.ID})

	if err := repo.Delete(ctx, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := repo.GetByID(ctx, post.ID, 0)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}

	var likes int64
	db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes)
	if likes != 0 {
		t.Fatalf("expected likes gone with the post, got %d", likes)
	}
}
