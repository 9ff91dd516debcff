package device

import (
	"context"
	"sort"
	"time"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/entity"
	userentity "github.com/ovaphlow/pitchfork/service-edge-admin/internal/user/entity"
)

// fakeStore implements all three repository contracts in memory and counts
// every call so tests can assert that validation short-circuits storage.
type fakeStore struct {
	devices  map[int64]entity.Device
	users    map[int64]userentity.UserAccount
	nextID   int64
	inactive string

	calls         int
	statusWrites  int
	err           error
	mostRecentErr error
	resolveErr    error
	vanishOnWrite bool
	// writeTime stamps updated_at on status writes; zero means time.Now.
	writeTime time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		devices:  make(map[int64]entity.Device),
		users:    make(map[int64]userentity.UserAccount),
		nextID:   100,
		inactive: "inactive",
	}
}

func (f *fakeStore) addUser(u userentity.UserAccount) { f.users[u.UserID] = u }

func (f *fakeStore) addDevice(d entity.Device) { f.devices[d.DeviceID] = d }

func (f *fakeStore) List(_ context.Context) ([]entity.Device, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID > out[j].DeviceID })
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*entity.Device, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.devices[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeStore) Create(_ context.Context, d entity.Device) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	d.DeviceID = f.nextID
	f.devices[d.DeviceID] = d
	return d.DeviceID, nil
}

func (f *fakeStore) Update(_ context.Context, d entity.Device) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	cur, ok := f.devices[d.DeviceID]
	if !ok {
		return false, nil
	}
	cur.DeviceGUID, cur.DisplayName = d.DeviceGUID, d.DisplayName
	f.devices[d.DeviceID] = cur
	return true, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.devices[id]; !ok {
		return false, nil
	}
	delete(f.devices, id)
	return true, nil
}

func (f *fakeStore) UpdateByPublicID(_ context.Context, target, newID, name string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	matched := false
	for id, d := range f.devices {
		if d.DeviceGUID == target {
			d.DeviceGUID, d.DisplayName = newID, name
			f.devices[id] = d
			matched = true
		}
	}
	return matched, nil
}

func (f *fakeStore) CountDevices(_ context.Context) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return len(f.devices), nil
}

func (f *fakeStore) CountUsers(_ context.Context) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return len(f.users), nil
}

func (f *fakeStore) MostRecentByOwner(_ context.Context, userID int64) (*entity.Device, error) {
	f.calls++
	if f.mostRecentErr != nil {
		return nil, f.mostRecentErr
	}
	if f.err != nil {
		return nil, f.err
	}
	var best *entity.Device
	for _, d := range f.devices {
		if d.OwnerUserID != userID {
			continue
		}
		if best == nil || d.CreatedAtUTC.After(best.CreatedAtUTC) {
			d := d
			best = &d
		}
	}
	return best, nil
}

// fakeUsers adapts fakeStore to UserAccountRepository, whose GetByID
// signature clashes with the device one.
type fakeUsers struct{ *fakeStore }

func (f fakeUsers) Exists(_ context.Context, userID int64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.users[userID]
	return ok, nil
}

func (f fakeUsers) GetByID(_ context.Context, userID int64) (*userentity.UserAccount, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f fakeUsers) UpdateStatus(_ context.Context, userID int64, status string) (bool, error) {
	f.calls++
	f.statusWrites++
	if f.err != nil {
		return false, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	if f.vanishOnWrite {
		delete(f.users, userID)
		return true, nil
	}
	u.Status = status
	u.UpdatedAtUTC = f.writeTime
	if u.UpdatedAtUTC.IsZero() {
		u.UpdatedAtUTC = time.Now().UTC()
	}
	f.users[userID] = u
	return true, nil
}

func (f fakeUsers) ResolveInactiveStatusValue(_ context.Context) (string, error) {
	f.calls++
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.inactive, nil
}
