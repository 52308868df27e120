package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// RelationshipRepository defines the interface for follow-edge data operations
type RelationshipRepository interface {
	Create(ctx context.Context, rel *models.Relationship) error
	GetByID(ctx context.Context, id uint) (*models.Relationship, error)
	GetByPair(ctx context.Context, userID, followID uint) (*models.Relationship, error)
	Delete(ctx context.Context, id uint) error
	GetFollowings(ctx context.Context, userID uint) ([]models.User, error)
	GetFollowers(ctx context.Context, userID uint) ([]models.User, error)
	ListByFollower(ctx context.Context, userID uint) ([]models.Relationship, error)
}

// relationshipRepository implements RelationshipRepository
type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

// Create inserts the follow edge. The composite unique index on
// (user_id, follow_id) is the sole guard against double-follow races.
func (r *relationshipRepository) Create(ctx context.Context, rel *models.Relationship) error {
	if err := r.db.WithContext(ctx).Create(rel).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewValidationError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationshipRepository) GetByID(ctx context.Context, id uint) (*models.Relationship, error) {
	var rel models.Relationship
	if err := r.db.WithContext(ctx).First(&rel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Relationship", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &rel, nil
}

// GetByPair returns (nil, nil) when no edge exists for the ordered pair.
func (r *relationshipRepository) GetByPair(ctx context.Context, userID, followID uint) (*models.Relationship, error) {
	var rel models.Relationship
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND follow_id = ?", userID, followID).
		First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &rel, nil
}

func (r *relationshipRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Relationship{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetFollowings returns the users this user follows (outbound edges).
func (r *relationshipRepository) GetFollowings(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN relationships rel ON users.id = rel.follow_id").
		Where("rel.user_id = ?", userID).
		Order("rel.id ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// GetFollowers returns the users following this user (inbound edges).
func (r *relationshipRepository) GetFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN relationships rel ON users.id = rel.user_id").
		Where("rel.follow_id = ?", userID).
		Order("rel.id ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// ListByFollower returns the raw outbound edges, preloaded with the followee.
// Clients need the edge ids to unfollow, so the rows themselves are exposed.
func (r *relationshipRepository) ListByFollower(ctx context.Context, userID uint) ([]models.Relationship, error) {
	var rels []models.Relationship
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Follow").
		Order("id ASC").
		Find(&rels).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rels, nil
}
