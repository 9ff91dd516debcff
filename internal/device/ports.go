package device

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/entity"
	userentity "github.com/ovaphlow/pitchfork/service-edge-admin/internal/user/entity"
)

// CrudRepository is the generic create/read/update/delete contract for an
// entity T keyed by K. Lookups return nil when no row matches; Update and
// Delete report whether a row matched.
type CrudRepository[T any, K comparable] interface {
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id K) (*T, error)
	Create(ctx context.Context, e T) (K, error)
	Update(ctx context.Context, e T) (bool, error)
	Delete(ctx context.Context, id K) (bool, error)
}

// QueryRepository holds the device queries that do not fit the CRUD contract.
type QueryRepository interface {
	List(ctx context.Context) ([]entity.Device, error)
	UpdateByPublicID(ctx context.Context, targetPublicID, newPublicID, name string) (bool, error)
	CountDevices(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
	MostRecentByOwner(ctx context.Context, userID int64) (*entity.Device, error)
}

// UserAccountRepository is what the service needs from user_accounts.
type UserAccountRepository interface {
	Exists(ctx context.Context, userID int64) (bool, error)
	GetByID(ctx context.Context, userID int64) (*userentity.UserAccount, error)
	// UpdateStatus also refreshes the row's updated_at.
	UpdateStatus(ctx context.Context, userID int64, status string) (bool, error)
	ResolveInactiveStatusValue(ctx context.Context) (string, error)
}
