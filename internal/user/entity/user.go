package entity

import "time"

// UserAccount is a row of the `user_accounts` table. Status holds whatever the
// column definition permits; the application never enumerates it.
type UserAccount struct {
	UserID       int64     `db:"user_id"`
	CreatedAtUTC time.Time `db:"created_at"`
	UpdatedAtUTC time.Time `db:"updated_at"`
	Status       string    `db:"status"`
}
