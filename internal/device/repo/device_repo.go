package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/entity"
	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/database"
)

// columns maps the devices table onto entity.Device field names.
const columns = `device_id,
	device_uid AS device_guid,
	nickname AS display_name,
	device_type_id,
	owner_user_id,
	created_at AS created_at_utc`

// DeviceRepo provides data access for the devices table using sqlx.
type DeviceRepo struct {
	db *sqlx.DB
}

func NewDeviceRepo(db *sqlx.DB) *DeviceRepo { return &DeviceRepo{db: db} }

// EnsureTable creates the devices table if not exists (idempotent).
// user_accounts must exist first because of the owner foreign key.
func (r *DeviceRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS devices (
  device_id BIGSERIAL PRIMARY KEY,
  device_uid VARCHAR(64) NOT NULL UNIQUE,
  nickname TEXT NOT NULL,
  device_type_id BIGINT NOT NULL,
  owner_user_id BIGINT NOT NULL REFERENCES user_accounts(user_id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_devices_owner_created ON devices(owner_user_id, created_at DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return database.Wrap("ensure devices", err)
}

// List returns every device, newest id first.
func (r *DeviceRepo) List(ctx context.Context) ([]entity.Device, error) {
	q := `SELECT ` + columns + ` FROM devices ORDER BY device_id DESC`
	rows := []entity.Device{}
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, database.Wrap("list devices", err)
	}
	return rows, nil
}

// GetByID returns the device, or nil when it does not exist.
func (r *DeviceRepo) GetByID(ctx context.Context, id int64) (*entity.Device, error) {
	q := `SELECT ` + columns + ` FROM devices WHERE device_id = $1`
	var d entity.Device
	if err := r.db.GetContext(ctx, &d, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, database.Wrap("get device", err)
	}
	return &d, nil
}

// Create inserts a device and returns its new id.
func (r *DeviceRepo) Create(ctx context.Context, d entity.Device) (int64, error) {
	const q = `INSERT INTO devices (device_uid, nickname, device_type_id, owner_user_id, created_at)
		VALUES (:device_guid, :display_name, :device_type_id, :owner_user_id, :created_at_utc)
		RETURNING device_id`
	rows, err := r.db.NamedQueryContext(ctx, q, d)
	if err != nil {
		return 0, database.Wrap("create device", err)
	}
	defer rows.Close()
	if rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, database.Wrap("create device", err)
		}
		return id, nil
	}
	if err := rows.Err(); err != nil {
		return 0, database.Wrap("create device", err)
	}
	return 0, errors.New("create device: no id returned")
}

// Update rewrites the external id and name of the device with d.DeviceID.
func (r *DeviceRepo) Update(ctx context.Context, d entity.Device) (bool, error) {
	const q = `UPDATE devices SET device_uid = $2, nickname = $3 WHERE device_id = $1`
	return r.exec(ctx, "update device", q, d.DeviceID, d.DeviceGUID, d.DisplayName)
}

// Delete removes the device with the given id.
func (r *DeviceRepo) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM devices WHERE device_id = $1`
	return r.exec(ctx, "delete device", q, id)
}

// UpdateByPublicID rewrites the device currently identified by targetPublicID.
func (r *DeviceRepo) UpdateByPublicID(ctx context.Context, targetPublicID, newPublicID, name string) (bool, error) {
	const q = `UPDATE devices SET device_uid = $2, nickname = $3 WHERE device_uid = $1`
	return r.exec(ctx, "update device by public id", q, targetPublicID, newPublicID, name)
}

func (r *DeviceRepo) CountDevices(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM devices`); err != nil {
		return 0, database.Wrap("count devices", err)
	}
	return n, nil
}

func (r *DeviceRepo) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM user_accounts`); err != nil {
		return 0, database.Wrap("count users", err)
	}
	return n, nil
}

// MostRecentByOwner returns the newest device owned by userID, or nil.
func (r *DeviceRepo) MostRecentByOwner(ctx context.Context, userID int64) (*entity.Device, error) {
	q := `SELECT ` + columns + ` FROM devices
		WHERE owner_user_id = $1
		ORDER BY created_at DESC, device_id DESC
		LIMIT 1`
	var d entity.Device
	if err := r.db.GetContext(ctx, &d, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, database.Wrap("most recent device", err)
	}
	return &d, nil
}

func (r *DeviceRepo) exec(ctx context.Context, op, q string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, database.Wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, database.Wrap(op, err)
	}
	return n > 0, nil
}
