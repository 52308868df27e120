package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ripple/internal/middleware"
	"ripple/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenService implements the rotating session-token triple. Each device
// holds (access-token, client, uid); the access token is an HS256 JWT whose
// jti changes on every authenticated request, and Redis keeps the hash of
// the current and immediately previous token per (user, client) session.
type TokenService struct {
	redis       *redis.Client
	secret      []byte
	lifetime    time.Duration
	batchWindow time.Duration
}

// sessionState is the per-(user, client) record stored in Redis.
type sessionState struct {
	CurrentHash  string    `json:"current_hash"`
	PreviousHash string    `json:"previous_hash,omitempty"`
	RotatedAt    time.Time `json:"rotated_at"`
}

type sessionClaims struct {
	UID    string `json:"uid"`
	Client string `json:"client"`
	jwt.RegisteredClaims
}

// NewTokenService returns a new TokenService.
func NewTokenService(rdb *redis.Client, secret string, lifetime, batchWindow time.Duration) *TokenService {
	return &TokenService{
		redis:       rdb,
		secret:      []byte(secret),
		lifetime:    lifetime,
		batchWindow: batchWindow,
	}
}

func sessionKey(userID uint, client string) string {
	return fmt.Sprintf("session:%d:%s", userID, client)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *TokenService) sign(userID uint, email, client string, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		UID:    email,
		Client: client,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired session")
	}
	return claims, nil
}

// Issue opens a new session for the user on a fresh client id and returns
// the full token triple.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (*models.SessionToken, error) {
	client := uuid.NewString()
	expiresAt := time.Now().Add(s.lifetime)

	token, err := s.sign(user.ID, user.Email, client, expiresAt)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	state := sessionState{CurrentHash: hashToken(token), RotatedAt: time.Now()}
	if err := s.saveState(ctx, user.ID, client, state); err != nil {
		return nil, err
	}

	return &models.SessionToken{
		AccessToken: token,
		Client:      client,
		UID:         user.Email,
		ExpiresAt:   expiresAt,
	}, nil
}

// Validate checks a presented triple against the stored session. The token
// must be a valid signed JWT whose embedded uid and client match the headers,
// and its hash must equal the session's current or previous hash. It returns
// the authenticated user id.
func (s *TokenService) Validate(ctx context.Context, token, client, uid string) (uint, error) {
	if token == "" || client == "" || uid == "" {
		return 0, models.NewUnauthorizedError("Missing session headers")
	}

	claims, err := s.parse(token)
	if err != nil {
		return 0, err
	}
	if subtle.ConstantTimeCompare([]byte(claims.UID), []byte(uid)) != 1 ||
		subtle.ConstantTimeCompare([]byte(claims.Client), []byte(client)) != 1 {
		return 0, models.NewUnauthorizedError("Invalid or expired session")
	}

	var userID uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil || userID == 0 {
		return 0, models.NewUnauthorizedError("Invalid or expired session")
	}

	state, err := s.loadState(ctx, userID, client)
	if err != nil {
		return 0, err
	}

	hash := hashToken(token)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(state.CurrentHash)) != 1 &&
		subtle.ConstantTimeCompare([]byte(hash), []byte(state.PreviousHash)) != 1 {
		return 0, models.NewUnauthorizedError("Invalid or expired session")
	}
	return userID, nil
}

// Rotate advances the session to a fresh token and returns the triple to
// re-emit. Within the batch window after the previous rotation it returns
// the presented token unchanged, so a burst of concurrent requests all
// receive the same still-valid credentials.
func (s *TokenService) Rotate(ctx context.Context, userID uint, email, client, presented string) (*models.SessionToken, error) {
	state, err := s.loadState(ctx, userID, client)
	if err != nil {
		return nil, err
	}

	if time.Since(state.RotatedAt) < s.batchWindow {
		claims, err := s.parse(presented)
		if err != nil {
			return nil, err
		}
		return &models.SessionToken{
			AccessToken: presented,
			Client:      client,
			UID:         email,
			ExpiresAt:   claims.ExpiresAt.Time,
		}, nil
	}

	expiresAt := time.Now().Add(s.lifetime)
	token, err := s.sign(userID, email, client, expiresAt)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	state.PreviousHash = state.CurrentHash
	state.CurrentHash = hashToken(token)
	state.RotatedAt = time.Now()
	if err := s.saveState(ctx, userID, client, state); err != nil {
		return nil, err
	}
	middleware.SessionRotations.Inc()

	return &models.SessionToken{
		AccessToken: token,
		Client:      client,
		UID:         email,
		ExpiresAt:   expiresAt,
	}, nil
}

// Revoke deletes the session for the given client.
func (s *TokenService) Revoke(ctx context.Context, userID uint, client string) error {
	if err := s.redis.Del(ctx, sessionKey(userID, client)).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("del").Inc()
		return models.NewInternalError(err)
	}
	return nil
}

// RevokeAll deletes every session the user holds, across all clients. Used
// when the account itself goes away.
func (s *TokenService) RevokeAll(ctx context.Context, userID uint) error {
	pattern := fmt.Sprintf("session:%d:*", userID)
	iter := s.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			middleware.RedisErrors.WithLabelValues("del").Inc()
			return models.NewInternalError(err)
		}
	}
	if err := iter.Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("scan").Inc()
		return models.NewInternalError(err)
	}
	return nil
}

func (s *TokenService) loadState(ctx context.Context, userID uint, client string) (sessionState, error) {
	var state sessionState
	raw, err := s.redis.Get(ctx, sessionKey(userID, client)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return state, models.NewUnauthorizedError("Invalid or expired session")
		}
		middleware.RedisErrors.WithLabelValues("get").Inc()
		return state, models.NewInternalError(err)
	}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return state, models.NewUnauthorizedError("Invalid or expired session")
	}
	return state, nil
}

func (s *TokenService) saveState(ctx context.Context, userID uint, client string, state sessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.redis.Set(ctx, sessionKey(userID, client), raw, s.lifetime).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("set").Inc()
		return models.NewInternalError(err)
	}
	return nil
}
