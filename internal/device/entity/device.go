package entity

import "time"

// Device is a row of the `devices` table. CreatedAtUTC doubles as the
// "last used" timestamp until a usage column exists.
type Device struct {
	DeviceID     int64     `db:"device_id"`
	DeviceGUID   string    `db:"device_guid"`
	DisplayName  string    `db:"display_name"`
	DeviceTypeID int64     `db:"device_type_id"`
	OwnerUserID  int64     `db:"owner_user_id"`
	CreatedAtUTC time.Time `db:"created_at_utc"`
}
