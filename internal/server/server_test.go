package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestServer wires a Server against sqlite and miniredis with a zero
// batch window so every authenticated request visibly rotates the session.
func setupTestServer(t *testing.T) (*fiber.App, *Server) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTSecret:          "handler-test-secret",
		Env:                "test",
		TokenLifetimeHours: 24,
		TokenBatchSeconds:  0,
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	relRepo := repository.NewRelationshipRepository(db)
	roomRepo := repository.NewRoomRepository(db)

	srv := &Server{
		config:   cfg,
		db:       db,
		redis:    rdb,
		userRepo: userRepo,
		postRepo: postRepo,
		likeRepo: likeRepo,
		relRepo:  relRepo,
		roomRepo: roomRepo,
	}
	srv.tokenService = service.NewTokenService(rdb, cfg.JWTSecret, 24*time.Hour, 0)
	srv.userService = service.NewUserService(userRepo, relRepo)
	srv.postService = service.NewPostService(postRepo)
	srv.likeService = service.NewLikeService(likeRepo, postRepo)
	srv.relService = service.NewRelationshipService(relRepo, userRepo)
	srv.roomService = service.NewRoomService(roomRepo, userRepo)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv
}

// session drives authenticated requests for one signed-up user, picking up
// the rotated triple from every response it sees.
type session struct {
	t      *testing.T
	app    *fiber.App
	UserID uint
	Token  string
	Client string
	UID    string
}

func (s *session) do(method, path string, body interface{}) *http.Response {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set(HeaderAccessToken, s.Token)
		req.Header.Set(HeaderClient, s.Client)
		req.Header.Set(HeaderUID, s.UID)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	if tok := resp.Header.Get(HeaderAccessToken); tok != "" {
		s.Token = tok
		s.Client = resp.Header.Get(HeaderClient)
		s.UID = resp.Header.Get(HeaderUID)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// signUp registers a fresh account and returns an authenticated session.
func signUp(t *testing.T, app *fiber.App, name string) *session {
	t.Helper()

	s := &session{t: t, app: app}
	resp := s.do(http.MethodPost, "/api/v1/auth", fiber.Map{
		"name":                  name,
		"email":                 fmt.Sprintf("%s@example.com", name),
		"password":              "password1",
		"password_confirmation": "password1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("sign up %s: status %d", name, resp.StatusCode)
	}

	var body struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	decodeBody(t, resp, &body)
	s.UserID = body.Data.ID
	return s
}
