package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"karabook/internal/customers/service"
	apperrors "karabook/pkg/errors"
	httputil "karabook/pkg/http"
	"karabook/pkg/logger"
	"karabook/pkg/model"
)

type CustomerHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

func NewCustomerHandler(service service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		log:     log,
	}
}

func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	customers, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, customers); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	customer, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, customer); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var customer model.User
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &customer); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, customer); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *CustomerHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *CustomerHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/customers", h.GetAll)
	router.POST("/api/v1/customers", h.Create)
	router.GET("/api/v1/customers/id/:id", h.GetByID)
}
