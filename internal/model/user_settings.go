package model

import "time"

// UserSettings holds per-user admin state. One row per user.
type UserSettings struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"userId"`
	LastAdminLoginTime time.Time `db:"last_admin_login_time" json:"lastAdminLoginTime"`
}

type AdminSession struct {
	ID        string    `db:"id" json:"id"`
	TokenHash string    `db:"token_hash" json:"-"`
	UserID    string    `db:"user_id" json:"userId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateAdminSessionParams struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
}
