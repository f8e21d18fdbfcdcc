package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"karabook/internal/bookings/repository"
	"karabook/internal/bookings/service"
	apperrors "karabook/pkg/errors"
	httputil "karabook/pkg/http"
	"karabook/pkg/logger"
	"karabook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &booking); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	filter, err := extractFilter(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if r.URL.Query().Get("expand") == "true" {
		views, total, err := h.service.GetAllExpanded(r.Context(), filter, limit, offset)
		if err != nil {
			h.writeError(w, "GetAll", err)
			return
		}
		if err := httputil.WritePaginated(w, views, total, limit, offset); err != nil {
			h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
		}
		return
	}

	bookings, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), ps.ByName("id"), body.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "error", err)
	}
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Reschedule", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Reschedule(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Reschedule", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Reschedule", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	roomID := query.Get("room_id")
	dateStr := query.Get("date")

	if roomID == "" || dateStr == "" {
		h.writeError(w, "Slots", apperrors.InvalidInput("Both 'room_id' and 'date' query parameters are required"))
		return
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		h.writeError(w, "Slots", apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD"))
		return
	}

	slots, err := h.service.AvailableSlots(r.Context(), roomID, date)
	if err != nil {
		h.writeError(w, "Slots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func extractFilter(r *http.Request) (repository.Filter, error) {
	query := r.URL.Query()
	filter := repository.Filter{
		RoomID: query.Get("room_id"),
	}

	if dateStr := query.Get("date"); dateStr != "" {
		date, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			return repository.Filter{}, apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD")
		}
		filter.Date = &date
	}

	return filter, nil
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/slots", h.Slots)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/id/:id", h.Reschedule)
	router.PATCH("/api/v1/bookings/id/:id/status", h.UpdateStatus)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
}
