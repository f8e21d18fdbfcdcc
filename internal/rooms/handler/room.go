package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"karabook/internal/rooms/service"
	apperrors "karabook/pkg/errors"
	httputil "karabook/pkg/http"
	"karabook/pkg/logger"
	"karabook/pkg/model"
)

type RoomHandler struct {
	service service.RoomService
	log     *logger.Logger
}

func NewRoomHandler(service service.RoomService, log *logger.Logger) *RoomHandler {
	return &RoomHandler{
		service: service,
		log:     log,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var room model.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &room); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, room); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *RoomHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.RoomUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	room, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RoomHandler) Init(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	seeded, err := h.service.Seed(r.Context(), true)
	if err != nil {
		h.writeError(w, "Init", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"seeded": seeded}); err != nil {
		h.log.Error("failed to write success response", "handler", "Init", "error", err)
	}
}

func (h *RoomHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rooms", h.Create)
	router.GET("/api/v1/rooms", h.GetAll)
	router.POST("/api/v1/rooms/init", h.Init)
	router.GET("/api/v1/rooms/id/:id", h.GetByID)
	router.PUT("/api/v1/rooms/id/:id", h.Update)
	router.DELETE("/api/v1/rooms/id/:id", h.Delete)
}
