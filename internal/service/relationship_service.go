package service

import (
	"context"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"
)

// RelationshipService provides follow/unfollow business logic.
type RelationshipService struct {
	relRepo  repository.RelationshipRepository
	userRepo repository.UserRepository
}

// SocialGraph is the acting user's view of who they follow and who follows
// them, with the outbound edge rows included so the client can unfollow.
type SocialGraph struct {
	Followings    []models.User         `json:"followings"`
	Followers     []models.User         `json:"followers"`
	Relationships []models.Relationship `json:"relationships"`
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(relRepo repository.RelationshipRepository, userRepo repository.UserRepository) *RelationshipService {
	return &RelationshipService{relRepo: relRepo, userRepo: userRepo}
}

// Follow creates a follow edge from the user to the target. Following
// yourself or an already-followed user is a validation error.
func (s *RelationshipService) Follow(ctx context.Context, userID, targetID uint) (*models.Relationship, error) {
	if userID == targetID {
		return nil, models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	rel := &models.Relationship{UserID: userID, FollowID: targetID}
	if err := s.relRepo.Create(ctx, rel); err != nil {
		middleware.ToggleOps.WithLabelValues("follow", "rejected").Inc()
		return nil, err
	}
	middleware.ToggleOps.WithLabelValues("follow", "created").Inc()
	return s.relRepo.GetByID(ctx, rel.ID)
}

// Unfollow deletes the follow edge by its id. Only the follower who owns
// the edge may delete it; an absent edge is a not-found error.
func (s *RelationshipService) Unfollow(ctx context.Context, edgeID, userID uint) error {
	rel, err := s.relRepo.GetByID(ctx, edgeID)
	if err != nil {
		if models.IsNotFound(err) {
			middleware.ToggleOps.WithLabelValues("unfollow", "absent").Inc()
		}
		return err
	}
	if rel.UserID != userID {
		return models.NewForbiddenError("You can only remove your own follows")
	}
	if err := s.relRepo.Delete(ctx, edgeID); err != nil {
		return err
	}
	middleware.ToggleOps.WithLabelValues("unfollow", "deleted").Inc()
	return nil
}

// GetSocialGraph returns the user's followings, followers and outbound
// edges.
func (s *RelationshipService) GetSocialGraph(ctx context.Context, userID uint) (*SocialGraph, error) {
	followings, err := s.relRepo.GetFollowings(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.relRepo.GetFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	edges, err := s.relRepo.ListByFollower(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SocialGraph{
		Followings:    followings,
		Followers:     followers,
		Relationships: edges,
	}, nil
}
