package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	RoomKeyPrefix        = "room:%d"
	MessageHistoryPrefix = "room:%d:messages"
)

const (
	UserTTL           = 5 * time.Minute
	MessageHistoryTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func RoomKey(roomID uint) string {
	return fmt.Sprintf(RoomKeyPrefix, roomID)
}

func MessageHistoryKey(roomID uint) string {
	return fmt.Sprintf(MessageHistoryPrefix, roomID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateRoom(ctx context.Context, roomID uint) {
	Invalidate(ctx, RoomKey(roomID))
	Invalidate(ctx, MessageHistoryKey(roomID))
}
