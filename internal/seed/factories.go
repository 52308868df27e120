// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// backdate spreads created_at over the configured day range so feeds look
// lived-in instead of minted in one batch.
func (f *Factory) backdate() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Name:  gofakeit.Name(),
		Email: fmt.Sprintf("%d.%s", gofakeit.Number(100, 999), gofakeit.Email()),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for the user but does not persist it.
// Useful for batching.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Content:   gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:    user.ID,
		CreatedAt: f.backdate(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateLike persists a like, ignoring duplicate pairs.
func (f *Factory) CreateLike(postID, userID uint) error {
	like := &models.Like{PostID: postID, UserID: userID}
	err := f.db.Create(like).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

// CreateRelationship persists a follow edge, ignoring duplicate pairs.
func (f *Factory) CreateRelationship(userID, followID uint) error {
	if userID == followID {
		return nil
	}
	rel := &models.Relationship{UserID: userID, FollowID: followID}
	err := f.db.Create(rel).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

// CreateRoom persists a room with entries for both users and a short
// back-and-forth message history.
func (f *Factory) CreateRoom(userA, userB *models.User, numMessages int) (*models.Room, error) {
	room := &models.Room{}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		entries := []models.Entry{
			{RoomID: room.ID, UserID: userA.ID},
			{RoomID: room.ID, UserID: userB.ID},
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}
		for i := 0; i < numMessages; i++ {
			sender := userA.ID
			if i%2 == 1 {
				sender = userB.ID
			}
			msg := &models.Message{
				RoomID:  room.ID,
				UserID:  sender,
				Content: gofakeit.Sentence(f.rng.Intn(10) + 3),
			}
			if err := tx.Create(msg).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "23505")
}
