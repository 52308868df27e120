package models

import "time"

// SessionToken is the rotating credential triple identifying an authenticated
// session. Every authenticated response re-emits a fresh triple and the
// client must overwrite its stored copy on receipt.
type SessionToken struct {
	AccessToken string    `json:"access_token"`
	Client      string    `json:"client"`
	UID         string    `json:"uid"`
	ExpiresAt   time.Time `json:"expires_at"`
}
