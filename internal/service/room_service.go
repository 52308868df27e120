package service

import (
	"context"
	"sort"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

// RoomService provides direct-message business logic.
type RoomService struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
}

// NewRoomService returns a new RoomService.
func NewRoomService(roomRepo repository.RoomRepository, userRepo repository.UserRepository) *RoomService {
	return &RoomService{roomRepo: roomRepo, userRepo: userRepo}
}

// OpenRoom returns the two-party room between the user and the target,
// creating it if none exists yet. Opening a room with yourself is a
// validation error.
func (s *RoomService) OpenRoom(ctx context.Context, userID, targetID uint) (*models.Room, error) {
	if userID == targetID {
		return nil, models.NewValidationError("Cannot open a room with yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	existing, err := s.roomRepo.FindDirectRoom(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.roomRepo.CreateRoomWithEntries(ctx, userID, targetID)
}

// ListRooms returns the user's rooms as summaries, newest conversation
// first. Rooms that have messages sort by descending last-message id; rooms
// without any messages come after them.
func (s *RoomService) ListRooms(ctx context.Context, userID uint) ([]models.RoomSummary, error) {
	rooms, err := s.roomRepo.GetUserRooms(ctx, userID)
	if err != nil {
		return nil, err
	}

	roomIDs := make([]uint, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}
	lasts, err := s.roomRepo.LastMessages(ctx, roomIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, models.RoomSummary{
			ID:          room.ID,
			OtherUser:   otherEntrant(room.Entries, userID),
			LastMessage: lasts[room.ID],
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.ID > b.ID
		}
	})
	return summaries, nil
}

// GetRoom returns the room with its counterpart user and full message
// history in chronological order. Non-members are refused.
func (s *RoomService) GetRoom(ctx context.Context, roomID, userID uint) (*models.RoomDetail, error) {
	member, err := s.roomRepo.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, models.NewForbiddenError("You are not a member of this room")
	}

	room, err := s.roomRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &models.RoomDetail{
		ID:        room.ID,
		OtherUser: otherEntrant(room.Entries, userID),
		Messages:  room.Messages,
	}, nil
}

// SendMessage appends a message to the room as the acting user. Non-members
// are refused.
func (s *RoomService) SendMessage(ctx context.Context, roomID, userID uint, content string) (*models.Message, error) {
	if err := validation.ValidateContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	member, err := s.roomRepo.IsMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, models.NewForbiddenError("You are not a member of this room")
	}

	msg := &models.Message{RoomID: roomID, UserID: userID, Content: content}
	if err := s.roomRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// otherEntrant picks the counterpart of viewerID from a room's entries.
func otherEntrant(entries []models.Entry, viewerID uint) models.User {
	for _, entry := range entries {
		if entry.UserID != viewerID {
			return entry.User
		}
	}
	return models.User{}
}
