package device

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-edge-admin/internal/result"
)

// Handler exposes the QueryService over HTTP. Every response body is a
// result envelope.
type Handler struct {
	svc    *QueryService
	logger *zap.SugaredLogger
}

func NewHandler(svc *QueryService, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the device and user routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/devices", h.ListDevices)
	mux.HandleFunc("GET /api/devices/total", h.TotalDevices)
	mux.HandleFunc("GET /api/devices/{id}", h.GetDevice)
	mux.HandleFunc("POST /api/devices", h.CreateDevice)
	mux.HandleFunc("PUT /api/devices/by-public-id/{publicDeviceId}", h.UpdateDevice)
	mux.HandleFunc("DELETE /api/devices/{id}", h.DeleteDevice)
	mux.HandleFunc("GET /api/users/total", h.TotalUsers)
	mux.HandleFunc("GET /api/users/{userId}/last-device", h.LastUsedDevice)
	mux.HandleFunc("GET /api/users/{userId}/dates", h.UserDates)
	mux.HandleFunc("POST /api/users/{userId}/mark-inactive-if-stale", h.MarkInactiveIfStale)
}

func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListDevices(r.Context())
	respond(w, h.logger, res, err)
}

func (h *Handler) TotalDevices(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.TotalDevices(r.Context())
	respond(w, h.logger, res, err)
}

func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[DeviceSummary](w, r, "id", msgDeviceID)
	if !ok {
		return
	}
	res, err := h.svc.GetDeviceByID(r.Context(), id)
	respond(w, h.logger, res, err)
}

func (h *Handler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	var req CreateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid create device payload", "err", err)
		writeJSON(w, http.StatusBadRequest, result.Failure[int64](result.CodeValidation, msgCreateFields))
		return
	}
	res, err := h.svc.CreateDevice(r.Context(), req)
	respond(w, h.logger, res, err)
}

// UpdateDevice takes the target public id from the path; a target in the body
// is ignored.
func (h *Handler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var req UpdateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid update device payload", "err", err)
		writeJSON(w, http.StatusBadRequest, result.Failure[bool](result.CodeValidation, msgUpdateFields))
		return
	}
	req.TargetPublicDeviceID = r.PathValue("publicDeviceId")
	res, err := h.svc.UpdateDevice(r.Context(), req)
	respond(w, h.logger, res, err)
}

func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[bool](w, r, "id", msgDeviceID)
	if !ok {
		return
	}
	res, err := h.svc.DeleteDevice(r.Context(), id)
	respond(w, h.logger, res, err)
}

func (h *Handler) TotalUsers(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.TotalUsers(r.Context())
	respond(w, h.logger, res, err)
}

func (h *Handler) LastUsedDevice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[LastUsedDevice](w, r, "userId", msgUserID)
	if !ok {
		return
	}
	res, err := h.svc.LastUsedDeviceForUser(r.Context(), id)
	respond(w, h.logger, res, err)
}

func (h *Handler) UserDates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[UserAccountDates](w, r, "userId", msgUserID)
	if !ok {
		return
	}
	res, err := h.svc.UserAccountDates(r.Context(), id)
	respond(w, h.logger, res, err)
}

func (h *Handler) MarkInactiveIfStale(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID[UserAccountDates](w, r, "userId", msgUserID)
	if !ok {
		return
	}
	res, err := h.svc.MarkUserInactiveIfStale(r.Context(), id)
	respond(w, h.logger, res, err)
}

// pathID parses a path segment as an int64. On failure it writes a
// validation envelope typed like the route's success value.
func pathID[T any](w http.ResponseWriter, r *http.Request, name, msg string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, result.Failure[T](result.CodeValidation, msg))
		return 0, false
	}
	return id, true
}

// respond answers 200 with the envelope on success and maps failures through StatusFor.
func respond[T any](w http.ResponseWriter, logger *zap.SugaredLogger, res result.Result[T], err error) {
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		logger.Debugw("request abandoned", "err", err)
		writeJSON(w, status, result.Failure[T](result.CodeInfrastructure, "Request cancelled: "+err.Error()))
		return
	}
	if res.IsSuccess() {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeJSON(w, StatusFor(res.Err().Code), res)
}

// StatusFor maps a failure code to its HTTP status.
func StatusFor(code result.Code) int {
	switch code {
	case result.CodeValidation:
		return http.StatusBadRequest
	case result.CodeNotFound:
		return http.StatusNotFound
	case result.CodeSchemaMismatch:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
