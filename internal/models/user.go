package models

import (
	"encoding/json"
	"time"
)

// User represents a user account in the system. Accounts are provisioned
// out of band (startup seeding or operator tooling); there is no
// registration endpoint.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"created_at"`
}

// userRecord is the stored form of a User. The password hash must survive
// the round trip through storage, so the stored form carries it explicitly
// while the API form never does.
type userRecord struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// MarshalRecord encodes the user for storage, including the password hash.
func (u User) MarshalRecord() ([]byte, error) {
	return json.Marshal(userRecord(u))
}

// UnmarshalUserRecord decodes a stored user record.
func UnmarshalUserRecord(data []byte) (User, error) {
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return User{}, err
	}
	return User(rec), nil
}
