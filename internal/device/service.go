package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/entity"
	devicerepo "github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/repo"
	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/result"
	userrepo "github.com/ovaphlow/pitchfork/service-edge-admin/internal/user/repo"
)

const (
	msgDeviceID     = "Device id must be a positive integer."
	msgUserID       = "User id must be a positive integer."
	msgCreateFields = "PublicDeviceId, Name, DeviceTypeId, and OwnerUserId are required."
	msgUpdateFields = "TargetPublicDeviceId, PublicDeviceId, and Name are required."
)

// QueryService validates input, calls the repositories, applies the business
// rules and wraps every outcome in a result.Result.
//
// Each method returns a non-nil error only when ctx was cancelled or timed
// out; the Result must then be ignored. Every other failure, storage faults
// included, comes back as a Failure with a nil error.
type QueryService struct {
	devices  QueryRepository
	crud     CrudRepository[entity.Device, int64]
	users    UserAccountRepository
	logger   *zap.SugaredLogger
	validate *validator.Validate
	now      func() time.Time
}

var (
	_ CrudRepository[entity.Device, int64] = (*devicerepo.DeviceRepo)(nil)
	_ QueryRepository                      = (*devicerepo.DeviceRepo)(nil)
	_ UserAccountRepository                = (*userrepo.UserRepo)(nil)
)

// Option customizes a QueryService.
type Option func(*QueryService)

// WithClock replaces time.Now, which the staleness rule and device creation read.
func WithClock(now func() time.Time) Option {
	return func(s *QueryService) { s.now = now }
}

func NewQueryService(devices QueryRepository, crud CrudRepository[entity.Device, int64], users UserAccountRepository, logger *zap.SugaredLogger, opts ...Option) *QueryService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &QueryService{
		devices:  devices,
		crud:     crud,
		users:    users,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewQueryServiceDB wires the service to the Postgres repositories.
func NewQueryServiceDB(db *sqlx.DB, logger *zap.SugaredLogger, opts ...Option) *QueryService {
	d := devicerepo.NewDeviceRepo(db)
	return NewQueryService(d, d, userrepo.NewUserRepo(db), logger, opts...)
}

func (s *QueryService) ListDevices(ctx context.Context) (result.Result[[]DeviceSummary], error) {
	rows, err := s.devices.List(ctx)
	if err != nil {
		return storageFailure[[]DeviceSummary](ctx, s.logger, "list devices", err)
	}
	out := make([]DeviceSummary, 0, len(rows))
	for _, d := range rows {
		out = append(out, ToSummary(d))
	}
	return result.Success(out), nil
}

func (s *QueryService) GetDeviceByID(ctx context.Context, id int64) (result.Result[DeviceSummary], error) {
	if id <= 0 {
		return result.Failure[DeviceSummary](result.CodeValidation, msgDeviceID), nil
	}
	row, err := s.crud.GetByID(ctx, id)
	if err != nil {
		return storageFailure[DeviceSummary](ctx, s.logger, "get device", err)
	}
	if row == nil {
		return result.Failure[DeviceSummary](result.CodeNotFound, fmt.Sprintf("Device %d does not exist.", id)), nil
	}
	return result.Success(ToSummary(*row)), nil
}

// CreateDevice stores a new device owned by an existing user and returns its id.
func (s *QueryService) CreateDevice(ctx context.Context, req CreateDeviceRequest) (result.Result[int64], error) {
	req.PublicDeviceID = strings.TrimSpace(req.PublicDeviceID)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return result.Failure[int64](result.CodeValidation, msgCreateFields), nil
	}

	exists, err := s.users.Exists(ctx, req.OwnerUserID)
	if err != nil {
		return storageFailure[int64](ctx, s.logger, "create device", err)
	}
	if !exists {
		return result.Failure[int64](result.CodeNotFound, fmt.Sprintf("Owner user %d does not exist.", req.OwnerUserID)), nil
	}

	id, err := s.crud.Create(ctx, entity.Device{
		DeviceGUID:   req.PublicDeviceID,
		DisplayName:  req.Name,
		DeviceTypeID: req.DeviceTypeID,
		OwnerUserID:  req.OwnerUserID,
		CreatedAtUTC: s.now().UTC(),
	})
	if err != nil {
		return storageFailure[int64](ctx, s.logger, "create device", err)
	}
	return result.Success(id), nil
}

// UpdateDevice matches the device by its current public id, not its primary key.
func (s *QueryService) UpdateDevice(ctx context.Context, req UpdateDeviceRequest) (result.Result[bool], error) {
	target := req.TargetPublicDeviceID
	req.TargetPublicDeviceID = strings.TrimSpace(req.TargetPublicDeviceID)
	req.PublicDeviceID = strings.TrimSpace(req.PublicDeviceID)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return result.Failure[bool](result.CodeValidation, msgUpdateFields), nil
	}

	updated, err := s.devices.UpdateByPublicID(ctx, req.TargetPublicDeviceID, req.PublicDeviceID, req.Name)
	if err != nil {
		return storageFailure[bool](ctx, s.logger, "update device", err)
	}
	if !updated {
		return result.Failure[bool](result.CodeNotFound, fmt.Sprintf("Device '%s' does not exist.", target)), nil
	}
	return result.Success(true), nil
}

func (s *QueryService) DeleteDevice(ctx context.Context, id int64) (result.Result[bool], error) {
	if id <= 0 {
		return result.Failure[bool](result.CodeValidation, msgDeviceID), nil
	}
	deleted, err := s.crud.Delete(ctx, id)
	if err != nil {
		return storageFailure[bool](ctx, s.logger, "delete device", err)
	}
	if !deleted {
		return result.Failure[bool](result.CodeNotFound, fmt.Sprintf("Device %d does not exist.", id)), nil
	}
	return result.Success(true), nil
}

func (s *QueryService) TotalDevices(ctx context.Context) (result.Result[int], error) {
	n, err := s.devices.CountDevices(ctx)
	if err != nil {
		return storageFailure[int](ctx, s.logger, "total devices", err)
	}
	return result.Success(n), nil
}

func (s *QueryService) TotalUsers(ctx context.Context) (result.Result[int], error) {
	n, err := s.devices.CountUsers(ctx)
	if err != nil {
		return storageFailure[int](ctx, s.logger, "total users", err)
	}
	return result.Success(n), nil
}

// LastUsedDeviceForUser returns the user's newest device. Storage faults that
// look like a missing column or table are reported as schema_mismatch.
func (s *QueryService) LastUsedDeviceForUser(ctx context.Context, userID int64) (result.Result[LastUsedDevice], error) {
	if userID <= 0 {
		return result.Failure[LastUsedDevice](result.CodeValidation, msgUserID), nil
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return s.lastUsedFailure(ctx, err)
	}
	if !exists {
		return result.Failure[LastUsedDevice](result.CodeNotFound, fmt.Sprintf("User %d does not exist.", userID)), nil
	}

	d, err := s.devices.MostRecentByOwner(ctx, userID)
	if err != nil {
		return s.lastUsedFailure(ctx, err)
	}
	if d == nil {
		return result.Failure[LastUsedDevice](result.CodeNotFound, fmt.Sprintf("No device usage found for user %d.", userID)), nil
	}
	return result.Success(ToLastUsed(userID, *d)), nil
}

func (s *QueryService) lastUsedFailure(ctx context.Context, err error) (result.Result[LastUsedDevice], error) {
	if ctx.Err() == nil && IsSchemaMismatch(err) {
		s.logger.Warnw("schema mismatch", "op", "last used device", "err", err)
		return result.Failure[LastUsedDevice](result.CodeSchemaMismatch, schemaGuidance), nil
	}
	return storageFailure[LastUsedDevice](ctx, s.logger, "last used device", err)
}

func (s *QueryService) UserAccountDates(ctx context.Context, userID int64) (result.Result[UserAccountDates], error) {
	if userID <= 0 {
		return result.Failure[UserAccountDates](result.CodeValidation, msgUserID), nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storageFailure[UserAccountDates](ctx, s.logger, "user account dates", err)
	}
	if u == nil {
		return result.Failure[UserAccountDates](result.CodeNotFound, fmt.Sprintf("User %d does not exist.", userID)), nil
	}
	return result.Success(ToDates(*u)), nil
}

// MarkUserInactiveIfStale flips the user's status to the schema's inactive
// value when the account was last updated in an earlier calendar month, then
// returns the row as stored. Concurrent calls for the same user are not
// serialized.
func (s *QueryService) MarkUserInactiveIfStale(ctx context.Context, userID int64) (result.Result[UserAccountDates], error) {
	const op = "mark user inactive"
	if userID <= 0 {
		return result.Failure[UserAccountDates](result.CodeValidation, msgUserID), nil
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storageFailure[UserAccountDates](ctx, s.logger, op, err)
	}
	if u == nil {
		return result.Failure[UserAccountDates](result.CodeNotFound, fmt.Sprintf("User %d does not exist.", userID)), nil
	}

	inactive, err := s.users.ResolveInactiveStatusValue(ctx)
	if err != nil {
		return storageFailure[UserAccountDates](ctx, s.logger, op, err)
	}

	if IsStale(u.UpdatedAtUTC.UTC(), s.now()) && !strings.EqualFold(u.Status, inactive) {
		updated, err := s.users.UpdateStatus(ctx, userID, inactive)
		if err != nil {
			return storageFailure[UserAccountDates](ctx, s.logger, op, err)
		}
		s.logger.Infow("user marked inactive", "user_id", userID, "previous_status", u.Status, "status", inactive, "matched", updated)
	}

	refreshed, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return storageFailure[UserAccountDates](ctx, s.logger, op, err)
	}
	if refreshed == nil {
		s.logger.Warnw("user vanished after status check", "user_id", userID)
		return result.Failure[UserAccountDates](result.CodeInfrastructure, fmt.Sprintf("User %d could not be reloaded after status check.", userID)), nil
	}
	return result.Success(ToDates(*refreshed)), nil
}

// storageFailure surfaces cancellation as an error and turns any other fault
// into an infrastructure_error Failure.
func storageFailure[T any](ctx context.Context, logger *zap.SugaredLogger, op string, err error) (result.Result[T], error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result.Result[T]{}, ctxErr
	}
	logger.Warnw("storage failure", "op", op, "err", err)
	return result.Failure[T](result.CodeInfrastructure, "Data access failed: "+err.Error()), nil
}
