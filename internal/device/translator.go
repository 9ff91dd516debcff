package device

import (
	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/entity"
	userentity "github.com/ovaphlow/pitchfork/service-edge-admin/internal/user/entity"
)

// Translators keep callers away from table and column names. When the schema
// changes, adapt these first.

func ToSummary(d entity.Device) DeviceSummary {
	return DeviceSummary{
		ID:             d.DeviceID,
		PublicDeviceID: d.DeviceGUID,
		Name:           d.DisplayName,
		CreatedAtUTC:   d.CreatedAtUTC,
	}
}

// ToLastUsed uses the device creation time as the last-used time. There is no
// usage column yet; once one exists only this function and the repository
// query need to change.
func ToLastUsed(userID int64, d entity.Device) LastUsedDevice {
	return LastUsedDevice{
		UserID:        userID,
		DeviceID:      d.DeviceID,
		DeviceName:    d.DisplayName,
		LastUsedAtUTC: d.CreatedAtUTC,
	}
}

func ToDates(u userentity.UserAccount) UserAccountDates {
	return UserAccountDates{
		UserID:       u.UserID,
		CreatedAtUTC: u.CreatedAtUTC,
		UpdatedAtUTC: u.UpdatedAtUTC,
		Status:       u.Status,
	}
}
