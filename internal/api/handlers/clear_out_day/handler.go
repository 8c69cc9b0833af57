package clear_out_day

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StaffAllocator/internal/api/handlers"
	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/daystate"
)

const (
	msgInvalidStaffID   = "некорректный ID сотрудника"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput     = "некорректные входные данные"
	msgDayHasBookings   = "у сотрудника есть записи на этот день"
	msgDayBlockedOut    = "день уже заблокирован сотрудником по другой причине"
	msgConflict         = "запись сотрудника сейчас изменяется другим запросом, повторите позже"
	msgStoreUnavailable = "хранилище временно недоступно"
)

const retryAfter = 2 * time.Second

type Handler struct {
	service DayStateService
	logger  Logger
}

func NewHandler(service DayStateService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleClearOut PUT /api/v1/staff/{staffId}/days/{date}/clear-out
func (h *Handler) HandleClearOut(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "PUT", h.service.ClearOut)
}

// HandleRestore DELETE /api/v1/staff/{staffId}/days/{date}/clear-out
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "DELETE", h.service.Restore)
}

type dayOperation func(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error)

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, method string, op dayOperation) {
	vars := mux.Vars(r)

	staffID, err := strconv.ParseInt(vars["staffId"], 10, 64)
	if err != nil {
		h.logger.Warn("%s /staff/{id}/days/{date}/clear-out - Invalid staff ID: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidStaffID)
		return
	}

	date, err := time.Parse(domain.DateFormat, vars["date"])
	if err != nil {
		h.logger.Warn("%s /staff/{id}/days/{date}/clear-out - Invalid date: %v", method, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	rec, err := op(r.Context(), staffID, date)
	if err != nil {
		switch {
		case errors.Is(err, daystate.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, daystate.ErrDayHasBookings):
			handlers.RespondConflict(w, msgDayHasBookings)
		case errors.Is(err, daystate.ErrDayBlockedOut):
			handlers.RespondConflict(w, msgDayBlockedOut)
		case errors.Is(err, daystate.ErrAllocationConflict):
			handlers.RespondServiceUnavailable(w, retryAfter, msgConflict)
		case errors.Is(err, daystate.ErrStoreUnavailable):
			handlers.RespondError(w, http.StatusInternalServerError, msgStoreUnavailable)
		default:
			h.logger.Error("%s /staff/{id}/days/{date}/clear-out - staff_id=%d, date=%s, error=%v",
				method, staffID, vars["date"], err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := &DayStateResponse{
		StaffID: staffID,
		Date:    date.Format(domain.DateFormat),
	}
	if rec != nil {
		response.ClearedOut = rec.IsClearedOut()
		response.Version = rec.Version
	}

	h.logger.Info("%s /staff/{id}/days/{date}/clear-out - staff_id=%d, date=%s, cleared_out=%t",
		method, staffID, response.Date, response.ClearedOut)
	handlers.RespondJSON(w, http.StatusOK, response)
}
