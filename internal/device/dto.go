package device

import "time"

// DeviceSummary is the transport shape of a device.
type DeviceSummary struct {
	ID             int64     `json:"id"`
	PublicDeviceID string    `json:"public_device_id"`
	Name           string    `json:"name"`
	CreatedAtUTC   time.Time `json:"created_at_utc"`
}

// LastUsedDevice answers "which device did this user use last".
type LastUsedDevice struct {
	UserID        int64     `json:"user_id"`
	DeviceID      int64     `json:"device_id"`
	DeviceName    string    `json:"device_name"`
	LastUsedAtUTC time.Time `json:"last_used_at_utc"`
}

// UserAccountDates exposes a user's timestamps and status.
type UserAccountDates struct {
	UserID       int64     `json:"user_id"`
	CreatedAtUTC time.Time `json:"created_at_utc"`
	UpdatedAtUTC time.Time `json:"updated_at_utc"`
	Status       string    `json:"status"`
}

type CreateDeviceRequest struct {
	PublicDeviceID string `json:"public_device_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	DeviceTypeID   int64  `json:"device_type_id" validate:"gt=0"`
	OwnerUserID    int64  `json:"owner_user_id" validate:"gt=0"`
}

// UpdateDeviceRequest renames the device currently known as TargetPublicDeviceID.
type UpdateDeviceRequest struct {
	TargetPublicDeviceID string `json:"target_public_device_id,omitempty" validate:"required"`
	PublicDeviceID       string `json:"public_device_id" validate:"required"`
	Name                 string `json:"name" validate:"required"`
}
