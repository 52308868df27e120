package repository

import (
	"context"
	"errors"

	"ripple/internal/cache"
	"ripple/internal/models"

	"gorm.io/gorm"
)

// RoomRepository defines the interface for direct-message data operations
type RoomRepository interface {
	CreateRoomWithEntries(ctx context.Context, userID, otherUserID uint) (*models.Room, error)
	FindDirectRoom(ctx context.Context, userID, otherUserID uint) (*models.Room, error)
	GetUserRooms(ctx context.Context, userID uint) ([]models.Room, error)
	GetRoom(ctx context.Context, id uint) (*models.Room, error)
	IsMember(ctx context.Context, roomID, userID uint) (bool, error)
	LastMessages(ctx context.Context, roomIDs []uint) (map[uint]*models.Message, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
}

// roomRepository implements RoomRepository
type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// CreateRoomWithEntries creates the room and both membership entries in one
// transaction so a crash can never leave a one-sided room behind.
func (r *roomRepository) CreateRoomWithEntries(ctx context.Context, userID, otherUserID uint) (*models.Room, error) {
	room := &models.Room{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		entries := []models.Entry{
			{RoomID: room.ID, UserID: userID},
			{RoomID: room.ID, UserID: otherUserID},
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return room, nil
}

// FindDirectRoom returns the existing two-party room between the users, or
// (nil, nil) when none exists. Two entry joins pin both memberships.
func (r *roomRepository) FindDirectRoom(ctx context.Context, userID, otherUserID uint) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN entries e1 ON e1.room_id = rooms.id AND e1.user_id = ?", userID).
		Joins("JOIN entries e2 ON e2.room_id = rooms.id AND e2.user_id = ?", otherUserID).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &room, nil
}

// GetUserRooms returns every room the user belongs to, with all entries and
// their users preloaded so callers can pick out the counterpart.
func (r *roomRepository) GetUserRooms(ctx context.Context, userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN entries ON entries.room_id = rooms.id").
		Where("entries.user_id = ?", userID).
		Preload("Entries").
		Preload("Entries.User").
		Find(&rooms).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rooms, nil
}

// GetRoom loads a room with its entries and full message history in
// chronological order. The assembled room is cached briefly; message appends
// invalidate it.
func (r *roomRepository) GetRoom(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	key := cache.MessageHistoryKey(id)

	err := cache.Aside(ctx, key, &room, cache.MessageHistoryTTL, func() error {
		err := r.db.WithContext(ctx).
			Preload("Entries").
			Preload("Entries.User").
			Preload("Messages", func(db *gorm.DB) *gorm.DB {
				return db.Order("messages.id ASC")
			}).
			Preload("Messages.User").
			First(&room, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Room", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// LastMessages returns the newest message per room, keyed by room id.
// Rooms with no messages are absent from the map.
func (r *roomRepository) LastMessages(ctx context.Context, roomIDs []uint) (map[uint]*models.Message, error) {
	result := make(map[uint]*models.Message)
	if len(roomIDs) == 0 {
		return result, nil
	}
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("id IN (?)",
			r.db.Model(&models.Message{}).
				Select("MAX(id)").
				Where("room_id IN ?", roomIDs).
				Group("room_id"),
		).
		Preload("User").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range messages {
		msg := messages[i]
		result[msg.RoomID] = &msg
	}
	return result, nil
}

func (r *roomRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).
		Preload("User").
		First(msg, msg.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateRoom(ctx, msg.RoomID)
	return nil
}
