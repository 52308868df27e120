package service

import (
	"context"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T, batchWindow time.Duration) *TokenService {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewTokenService(rdb, "test-secret", time.Hour, batchWindow)
}

func testUser() *models.User {
	return &models.User{ID: 1, Name: "Token Holder", Email: "holder@example.com"}
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTokenService(t, 0)
	ctx := context.Background()
	user := testUser()

	token, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.NotEmpty(t, token.Client)
	assert.Equal(t, user.Email, token.UID)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	userID, err := svc.Validate(ctx, token.AccessToken, token.Client, token.UID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestTokenService_ValidateRejects(t *testing.T) {
	svc := newTokenService(t, 0)
	ctx := context.Background()
	user := testUser()

	token, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		client string
		uid    string
	}{
		{"Missing token", "", token.Client, token.UID},
		{"Missing client", token.AccessToken, "", token.UID},
		{"Missing uid", token.AccessToken, token.Client, ""},
		{"Garbage token", "not.a.jwt", token.Client, token.UID},
		{"Wrong uid", token.AccessToken, token.Client, "other@example.com"},
		{"Wrong client", token.AccessToken, "other-client", token.UID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(ctx, tt.token, tt.client, tt.uid)
			assert.Error(t, err)
		})
	}
}

func TestTokenService_RotationInvalidatesOlderTokens(t *testing.T) {
	svc := newTokenService(t, 0)
	ctx := context.Background()
	user := testUser()

	first, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	second, err := svc.Rotate(ctx, user.ID, user.Email, first.Client, first.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	// Immediately after rotation both the new and previous token work, so
	// in-flight requests holding the old credentials are not cut off.
	_, err = svc.Validate(ctx, second.AccessToken, first.Client, user.Email)
	assert.NoError(t, err)
	_, err = svc.Validate(ctx, first.AccessToken, first.Client, user.Email)
	assert.NoError(t, err)

	// One more rotation pushes the first token out of the window entirely.
	third, err := svc.Rotate(ctx, user.ID, user.Email, first.Client, second.AccessToken)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, third.AccessToken, first.Client, user.Email)
	assert.NoError(t, err)
	_, err = svc.Validate(ctx, second.AccessToken, first.Client, user.Email)
	assert.NoError(t, err)
	_, err = svc.Validate(ctx, first.AccessToken, first.Client, user.Email)
	assert.Error(t, err)
}

func TestTokenService_BatchWindowReturnsPresentedToken(t *testing.T) {
	svc := newTokenService(t, time.Minute)
	ctx := context.Background()
	user := testUser()

	issued, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	// Within the batch window a burst of requests all keep the same token.
	for i := 0; i < 3; i++ {
		rotated, err := svc.Rotate(ctx, user.ID, user.Email, issued.Client, issued.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, issued.AccessToken, rotated.AccessToken)
	}

	_, err = svc.Validate(ctx, issued.AccessToken, issued.Client, issued.UID)
	assert.NoError(t, err)
}

func TestTokenService_Revoke(t *testing.T) {
	svc := newTokenService(t, 0)
	ctx := context.Background()
	user := testUser()

	token, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, user.ID, token.Client))

	_, err = svc.Validate(ctx, token.AccessToken, token.Client, token.UID)
	assert.Error(t, err)
}

func TestTokenService_RevokeAll(t *testing.T) {
	svc := newTokenService(t, 0)
	ctx := context.Background()
	user := testUser()

	laptop, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	phone, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	other := &models.User{ID: 2, Name: "Bystander", Email: "bystander@example.com"}
	bystander, err := svc.Issue(ctx, other)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAll(ctx, user.ID))

	// Every one of the user's sessions is gone, whichever client held it.
	_, err = svc.Validate(ctx, laptop.AccessToken, laptop.Client, laptop.UID)
	assert.Error(t, err)
	_, err = svc.Validate(ctx, phone.AccessToken, phone.Client, phone.UID)
	assert.Error(t, err)

	// Other users' sessions are untouched.
	_, err = svc.Validate(ctx, bystander.AccessToken, bystander.Client, bystander.UID)
	assert.NoError(t, err)
}

func TestTokenService_SessionsAreScopedToClient(t *testing.T) {
	svc := newTokenService(t, 0)
	ctx := context.Background()
	user := testUser()

	laptop, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	phone, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	require.NotEqual(t, laptop.Client, phone.Client)

	// Revoking one device leaves the other signed in.
	require.NoError(t, svc.Revoke(ctx, user.ID, laptop.Client))

	_, err = svc.Validate(ctx, laptop.AccessToken, laptop.Client, laptop.UID)
	assert.Error(t, err)
	_, err = svc.Validate(ctx, phone.AccessToken, phone.Client, phone.UID)
	assert.NoError(t, err)
}
