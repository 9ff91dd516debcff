package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/entity"
	"github.com/ovaphlow/pitchfork/service-edge-admin/pkg/database"
)

var deviceColumns = []string{"device_id", "device_guid", "display_name", "device_type_id", "owner_user_id", "created_at_utc"}

func newRepoSQLMock(t *testing.T) (*DeviceRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return NewDeviceRepo(sqlx.NewDb(db, "postgres")), mock, cleanup
}

func TestDeviceRepoList(t *testing.T) {
	repo, mock, cleanup := newRepoSQLMock(t)
	defer cleanup()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM devices ORDER BY device_id DESC`).
		WillReturnRows(sqlmock.NewRows(deviceColumns).
			AddRow(int64(2), "guid-2", "Kitchen", int64(1), int64(7), now).
			AddRow(int64(1), "guid-1", "Hallway", int64(1), int64(7), now.Add(-time.Hour)))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].DeviceID != 2 || got[1].DisplayName != "Hallway" {
		t.Fatalf("List() = %+v", got)
	}
}

func TestDeviceRepoListEmpty(t *testing.T) {
	repo, mock, cleanup := newRepoSQLMock(t)
	defer cleanup()

	mock.ExpectQuery(`FROM devices`).WillReturnRows(sqlmock.NewRows(deviceColumns))

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("List() = %#v, want empty non-nil slice", got)
	}
}

func TestDeviceRepoGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := newRepoSQLMock(t)
		defer cleanup()

		now := time.Now().UTC()
		mock.ExpectQuery(`FROM devices WHERE device_id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(deviceColumns).AddRow(int64(5), "g", "n", int64(2), int64(3), now))

		d, err := repo.GetByID(ctx, 5)
		if err != nil || d == nil || d.DeviceGUID != "g" || d.OwnerUserID != 3 {
			t.Fatalf("GetByID() = %+v, %v", d, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock, cleanup := newRepoSQLMock(t)
		defer cleanup()

		mock.ExpectQuery(`FROM devices WHERE device_id`).
			WithArgs(int64(6)).
			WillReturnRows(sqlmock.NewRows(deviceColumns))

		d, err := repo.GetByID(ctx, 6)
		if err != nil || d != nil {
			t.Fatalf("GetByID() = %+v, %v; want nil, nil", d, err)
		}
	})
}

func TestDeviceRepoCreate(t *testing.T) {
	repo, mock, cleanup := newRepoSQLMock(t)
	defer cleanup()

	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	d := entity.Device{DeviceGUID: "abc", DisplayName: "Sensor", DeviceTypeID: 4, OwnerUserID: 8, CreatedAtUTC: created}
	mock.ExpectQuery(`INSERT INTO devices \(device_uid, nickname, device_type_id, owner_user_id, created_at\)`).
		WithArgs("abc", "Sensor", int64(4), int64(8), created).
		WillReturnRows(sqlmock.NewRows([]string{"device_id"}).AddRow(int64(31)))

	id, err := repo.Create(context.Background(), d)
	if err != nil || id != 31 {
		t.Fatalf("Create() = %d, %v", id, err)
	}
}

func TestDeviceRepoMutations(t *testing.T) {
	ctx := context.Background()
	repo, mock, cleanup := newRepoSQLMock(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE devices SET device_uid = \$2, nickname = \$3 WHERE device_id = \$1`).
		WithArgs(int64(1), "new", "Name").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE devices SET device_uid = \$2, nickname = \$3 WHERE device_uid = \$1`).
		WithArgs("old", "new", "Name").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM devices WHERE device_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if ok, err := repo.Update(ctx, entity.Device{DeviceID: 1, DeviceGUID: "new", DisplayName: "Name"}); err != nil || !ok {
		t.Fatalf("Update() = %v, %v", ok, err)
	}
	if ok, err := repo.UpdateByPublicID(ctx, "old", "new", "Name"); err != nil || ok {
		t.Fatalf("UpdateByPublicID() = %v, %v; want false", ok, err)
	}
	if ok, err := repo.Delete(ctx, 1); err != nil || !ok {
		t.Fatalf("Delete() = %v, %v", ok, err)
	}
}

func TestDeviceRepoCounts(t *testing.T) {
	repo, mock, cleanup := newRepoSQLMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM devices`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_accounts`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	devices, err := repo.CountDevices(context.Background())
	if err != nil || devices != 12 {
		t.Fatalf("CountDevices() = %d, %v", devices, err)
	}
	users, err := repo.CountUsers(context.Background())
	if err != nil || users != 4 {
		t.Fatalf("CountUsers() = %d, %v", users, err)
	}
}

func TestDeviceRepoMostRecentByOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo, mock, cleanup := newRepoSQLMock(t)
		defer cleanup()

		now := time.Now().UTC()
		mock.ExpectQuery(`WHERE owner_user_id = \$1\s+ORDER BY created_at DESC, device_id DESC\s+LIMIT 1`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(deviceColumns).AddRow(int64(9), "g9", "Latest", int64(1), int64(7), now))

		d, err := repo.MostRecentByOwner(ctx, 7)
		if err != nil || d == nil || d.DeviceID != 9 {
			t.Fatalf("MostRecentByOwner() = %+v, %v", d, err)
		}
	})

	t.Run("none", func(t *testing.T) {
		repo, mock, cleanup := newRepoSQLMock(t)
		defer cleanup()

		mock.ExpectQuery(`WHERE owner_user_id`).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows(deviceColumns))

		d, err := repo.MostRecentByOwner(ctx, 8)
		if err != nil || d != nil {
			t.Fatalf("MostRecentByOwner() = %+v, %v; want nil, nil", d, err)
		}
	})

	t.Run("missing column", func(t *testing.T) {
		repo, mock, cleanup := newRepoSQLMock(t)
		defer cleanup()

		mock.ExpectQuery(`WHERE owner_user_id`).
			WithArgs(int64(9)).
			WillReturnError(&pq.Error{Code: "42703", Message: `column "owner_user_id" does not exist`})

		_, err := repo.MostRecentByOwner(ctx, 9)
		var se *database.SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("expected *database.SchemaError, got %v", err)
		}
	})
}
