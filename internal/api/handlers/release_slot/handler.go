package release_slot

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/api/handlers"
	releaseSlot "github.com/m04kA/SMC-StaffAllocator/internal/usecase/release_slot"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные входные данные"
	msgInvalidDuration    = "длительность должна быть положительной и не больше 24 часов"
	msgInvalidTimeSlot    = "время начала должно быть слотом рабочей сетки (HH:MM, шаг 15 минут)"
	msgConflict           = "запись сотрудника сейчас изменяется другим запросом, повторите позже"
	msgStoreUnavailable   = "хранилище временно недоступно"
)

const retryAfter = 2 * time.Second

type Handler struct {
	useCase ReleaseSlotUseCase
	logger  Logger
}

func NewHandler(useCase ReleaseSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/allocations/release
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ReleaseRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /allocations/release - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /allocations/release - Failed to parse date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, releaseSlot.ErrInvalidDuration):
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, releaseSlot.ErrInvalidTimeSlot):
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, releaseSlot.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, releaseSlot.ErrAllocationConflict):
			h.logger.Error("POST /allocations/release - Conflict: staff_id=%d, date=%s, error=%v", req.StaffID, req.Date, err)
			handlers.RespondServiceUnavailable(w, retryAfter, msgConflict)

		case errors.Is(err, releaseSlot.ErrStoreUnavailable):
			h.logger.Error("POST /allocations/release - Store unavailable: %v", err)
			handlers.RespondError(w, http.StatusInternalServerError, msgStoreUnavailable)

		default:
			h.logger.Error("POST /allocations/release - Failed to release: staff_id=%d, date=%s, error=%v", req.StaffID, req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /allocations/release - staff_id=%d, date=%s, released=%t, freed=%d",
		req.StaffID, req.Date, result.Released, len(result.FreedSlots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
