package handler

import (
	"encoding/json"
	"net/http"

	"github.com/motorbid/auction-alerts/internal/api/respond"
	"github.com/motorbid/auction-alerts/internal/vehicle"
)

// --------------------------------------------------------------------------
// Request / response shapes
// --------------------------------------------------------------------------

type favoriteRequest struct {
	Vehicle    vehicle.Vehicle `json:"vehicle"`
	IsFavorite bool            `json:"isFavorite"`
}

type scheduleAllRequest struct {
	Vehicles []vehicle.Vehicle `json:"vehicles"`
}

type testRequest struct {
	Vehicle vehicle.Vehicle `json:"vehicle"`
}

// --------------------------------------------------------------------------
// Notification endpoints
// --------------------------------------------------------------------------

// UpdateFavorite schedules or cancels an auction-end notification for one vehicle.
// @Summary Update favorite status
// @Description Schedules a notification when a vehicle is favorited, cancels it when unfavorited. Always succeeds; delivery problems are logged, not surfaced.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body favoriteRequest true "Vehicle and new favorite state"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /notifications/favorites [post]
func (h *Handler) UpdateFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with vehicle and isFavorite")
		return
	}
	if req.Vehicle.ID == 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_VEHICLE", "Vehicle id is required")
		return
	}

	h.svc.UpdateFavoriteStatus(r.Context(), req.Vehicle, req.IsFavorite)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"vehicleId":  req.Vehicle.ID,
		"isFavorite": req.IsFavorite,
	})
}

// ScheduleAll reconciles scheduled notifications against a full vehicle list.
// @Summary Schedule all favorites
// @Description Schedules notifications for every favorited vehicle in the list. Entries whose auction end time is unchanged are kept as-is.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body scheduleAllRequest true "Current vehicle list"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /notifications/schedule-all [post]
func (h *Handler) ScheduleAll(w http.ResponseWriter, r *http.Request) {
	var req scheduleAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a vehicles array")
		return
	}

	scheduled := h.svc.ScheduleAllFavoriteNotifications(r.Context(), req.Vehicles)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"scheduled": scheduled,
	})
}

// GetStats returns counts of scheduled notifications.
// @Summary Notification stats
// @Description Returns total, upcoming, and expired scheduled-notification counts.
// @Tags notifications
// @Produce json
// @Success 200 {object} scheduler.Stats
// @Router /notifications/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.svc.GetNotificationStats())
}

// GetScheduled lists all scheduled notifications.
// @Summary List scheduled notifications
// @Description Returns every ledger entry, sorted by vehicle id.
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /notifications/scheduled [get]
func (h *Handler) GetScheduled(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.GetScheduledNotifications()
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"count":         len(entries),
		"notifications": entries,
	})
}

// SendTest sends an immediate test notification.
// @Summary Send test notification
// @Description Sends a test notification for the given vehicle through the active backend. Always returns 202; delivery problems are logged.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body testRequest true "Vehicle to reference in the test"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /notifications/test [post]
func (h *Handler) SendTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a vehicle")
		return
	}

	h.svc.SendTestNotification(r.Context(), req.Vehicle)
	respond.WriteJSONObject(w, http.StatusAccepted, map[string]interface{}{
		"accepted": true,
	})
}

// ClearAll cancels every scheduled notification and clears the ledger.
// @Summary Clear all notifications
// @Description Cancels all scheduled notifications, clears the badge, and empties the ledger.
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /notifications [delete]
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearAllNotifications(r.Context())
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"cleared": true,
	})
}

// GetServiceInfo reports the active backend and its capabilities.
// @Summary Service info
// @Description Returns the selected notification backend, why it was selected, and its capability set.
// @Tags notifications
// @Produce json
// @Success 200 {object} service.Info
// @Router /notifications/service-info [get]
func (h *Handler) GetServiceInfo(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, h.svc.GetServiceInfo())
}
