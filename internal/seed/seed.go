// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"log"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxDays     int
	SkipBcrypt  bool
	ShouldClean bool
}

// Seed populates the database with test data: a mesh of users that follow
// each other, posts with likes, and a handful of DM rooms with history.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	// Clear existing data to avoid conflicts if requested
	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	if opts.NumUsers < 2 {
		opts.NumUsers = 2
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]
		posts = append(posts, f.BuildPost(author))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return err
	}
	log.Printf("Created %d posts", len(posts))

	// Roughly a third of user/post pairs like each other's posts.
	likes := 0
	for _, post := range posts {
		for _, user := range users {
			if user.ID == post.UserID || f.rng.Intn(3) != 0 {
				continue
			}
			if err := f.CreateLike(post.ID, user.ID); err != nil {
				return err
			}
			likes++
		}
	}
	log.Printf("Created %d likes", likes)

	follows := 0
	for _, follower := range users {
		for _, followee := range users {
			if follower.ID == followee.ID || f.rng.Intn(4) != 0 {
				continue
			}
			if err := f.CreateRelationship(follower.ID, followee.ID); err != nil {
				return err
			}
			follows++
		}
	}
	log.Printf("Created %d follow edges", follows)

	rooms := 0
	for i := 0; i+1 < len(users); i += 2 {
		if _, err := f.CreateRoom(users[i], users[i+1], f.rng.Intn(8)+2); err != nil {
			return err
		}
		rooms++
	}
	log.Printf("Created %d rooms", rooms)

	log.Println("✅ Seeding complete")
	return nil
}

// clearData removes seeded rows child-first so foreign keys never trip.
func clearData(db *gorm.DB) error {
	tables := []string{"messages", "entries", "rooms", "likes", "relationships", "posts", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
