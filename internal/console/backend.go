// Package console is the interactive admin menu. It drives either an
// in-process QueryService or the HTTP API through the same Backend.
package console

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device"
	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/result"
)

// Backend is the operation set of device.QueryService.
type Backend interface {
	ListDevices(ctx context.Context) (result.Result[[]device.DeviceSummary], error)
	GetDeviceByID(ctx context.Context, id int64) (result.Result[device.DeviceSummary], error)
	CreateDevice(ctx context.Context, req device.CreateDeviceRequest) (result.Result[int64], error)
	UpdateDevice(ctx context.Context, req device.UpdateDeviceRequest) (result.Result[bool], error)
	DeleteDevice(ctx context.Context, id int64) (result.Result[bool], error)
	TotalDevices(ctx context.Context) (result.Result[int], error)
	TotalUsers(ctx context.Context) (result.Result[int], error)
	LastUsedDeviceForUser(ctx context.Context, userID int64) (result.Result[device.LastUsedDevice], error)
	UserAccountDates(ctx context.Context, userID int64) (result.Result[device.UserAccountDates], error)
	MarkUserInactiveIfStale(ctx context.Context, userID int64) (result.Result[device.UserAccountDates], error)
}

var (
	_ Backend = (*device.QueryService)(nil)
	_ Backend = (*Client)(nil)
)
