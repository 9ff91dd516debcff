package device

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/device/entity"
	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/result"
	userentity "github.com/ovaphlow/pitchfork/service-edge-admin/internal/user/entity"
)

func newTestMux(store *fakeStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(newTestService(store, time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)), nil).Register(mux)
	return mux
}

func serve(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) result.Result[T] {
	t.Helper()
	var res result.Result[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return res
}

func TestHandlerGetDevice(t *testing.T) {
	store := newFakeStore()
	store.addDevice(entity.Device{DeviceID: 3, DeviceGUID: "g3", DisplayName: "Three"})
	mux := newTestMux(store)

	rec := serve(t, mux, http.MethodGet, "/api/devices/3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	got, ok := decode[DeviceSummary](t, rec).Value()
	if !ok || got.PublicDeviceID != "g3" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = serve(t, mux, http.MethodGet, "/api/devices/4", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandlerMalformedInputSkipsService(t *testing.T) {
	store := newFakeStore()
	mux := newTestMux(store)

	tests := []struct{ method, path, body string }{
		{http.MethodGet, "/api/devices/abc", ""},
		{http.MethodDelete, "/api/devices/1.5", ""},
		{http.MethodGet, "/api/users/x/dates", ""},
		{http.MethodGet, "/api/users/x/last-device", ""},
		{http.MethodPost, "/api/users/-/mark-inactive-if-stale", ""},
		{http.MethodPost, "/api/devices", "{not json"},
		{http.MethodPut, "/api/devices/by-public-id/g1", "["},
		{http.MethodGet, "/api/devices/0", ""},
	}
	for _, tt := range tests {
		rec := serve(t, mux, tt.method, tt.path, tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: status = %d", tt.method, tt.path, rec.Code)
		}
		if e := decode[json.RawMessage](t, rec).Err(); e == nil || e.Code != result.CodeValidation {
			t.Fatalf("%s %s: body %s", tt.method, tt.path, rec.Body.String())
		}
	}
	if store.calls != 0 {
		t.Fatalf("storage was called %d times", store.calls)
	}
}

func TestHandlerCreateAndUpdate(t *testing.T) {
	store := newFakeStore()
	store.addUser(userentity.UserAccount{UserID: 1})
	mux := newTestMux(store)

	rec := serve(t, mux, http.MethodPost, "/api/devices",
		`{"public_device_id":"g1","name":"Lamp","device_type_id":2,"owner_user_id":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	id, ok := decode[int64](t, rec).Value()
	if !ok || id <= 0 {
		t.Fatalf("create body %s", rec.Body.String())
	}

	rec = serve(t, mux, http.MethodPut, "/api/devices/by-public-id/g1",
		`{"target_public_device_id":"ignored","public_device_id":"g2","name":"Desk lamp"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body %s", rec.Code, rec.Body.String())
	}
	if d := store.devices[id]; d.DeviceGUID != "g2" || d.DisplayName != "Desk lamp" {
		t.Fatalf("device = %+v", d)
	}

	rec = serve(t, mux, http.MethodPut, "/api/devices/by-public-id/g1", `{"public_device_id":"g3","name":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("stale target status = %d", rec.Code)
	}
}

func TestHandlerStatusMapping(t *testing.T) {
	store := newFakeStore()
	store.addUser(userentity.UserAccount{UserID: 1})
	store.mostRecentErr = errorString("Unknown column 'owner_user_id' in 'where clause'")
	mux := newTestMux(store)

	rec := serve(t, mux, http.MethodGet, "/api/users/1/last-device", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("schema mismatch status = %d body %s", rec.Code, rec.Body.String())
	}

	store.err = errorString("connection refused")
	rec = serve(t, mux, http.MethodGet, "/api/devices/total", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("infrastructure status = %d", rec.Code)
	}
	if e := decode[int](t, rec).Err(); e == nil || e.Code != result.CodeInfrastructure {
		t.Fatalf("body %s", rec.Body.String())
	}
}

func TestHandlerCancelledRequest(t *testing.T) {
	store := newFakeStore()
	store.err = context.DeadlineExceeded
	mux := newTestMux(store)

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/devices", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandlerMarkInactive(t *testing.T) {
	store := newFakeStore()
	store.addUser(userentity.UserAccount{UserID: 5, UpdatedAtUTC: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Status: "active"})
	mux := newTestMux(store)

	rec := serve(t, mux, http.MethodPost, "/api/users/5/mark-inactive-if-stale", "")
	got, ok := decode[UserAccountDates](t, rec).Value()
	if rec.Code != http.StatusOK || !ok || got.Status != "inactive" {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }
