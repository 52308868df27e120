package service

import (
	"context"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"
)

// LikeService provides like/unlike business logic.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
}

// NewLikeService returns a new LikeService.
func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo}
}

// LikePost records a like on the post by the user. Liking an already-liked
// post is a validation error; a race between duplicates is settled by the
// database and the loser gets the same error.
func (s *LikeService) LikePost(ctx context.Context, postID, userID uint) (*models.Like, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	like := &models.Like{PostID: postID, UserID: userID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		middleware.ToggleOps.WithLabelValues("like", "rejected").Inc()
		return nil, err
	}
	middleware.ToggleOps.WithLabelValues("like", "created").Inc()
	return like, nil
}

// UnlikePost removes the user's like from the post. The route carries the
// post id, so the like row is looked up by (post, user); if the user never
// liked the post the result is a not-found error.
func (s *LikeService) UnlikePost(ctx context.Context, postID, userID uint) error {
	like, err := s.likeRepo.GetByPostAndUser(ctx, postID, userID)
	if err != nil {
		return err
	}
	if like == nil {
		middleware.ToggleOps.WithLabelValues("unlike", "absent").Inc()
		return models.NewNotFoundError("Like", postID)
	}
	if err := s.likeRepo.Delete(ctx, like.ID); err != nil {
		return err
	}
	middleware.ToggleOps.WithLabelValues("unlike", "deleted").Inc()
	return nil
}
