package allocate_slot

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/api/handlers"
	allocateSlot "github.com/m04kA/SMC-StaffAllocator/internal/usecase/allocate_slot"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidInput       = "некорректные входные данные"
	msgInvalidDuration    = "длительность должна быть положительной и не больше 24 часов"
	msgInvalidTimeSlot    = "время начала должно быть слотом рабочей сетки (HH:MM, шаг 15 минут)"
	msgNoEligibleStaff    = "не удалось определить сотрудников на дату"
	msgNoAvailability     = "на выбранную дату нет свободного времени для такой длительности"
	msgSlotTaken          = "выбранное время занято"
	msgConflict           = "слот сейчас бронируется другим запросом, повторите позже"
	msgStoreUnavailable   = "хранилище временно недоступно"
)

// retryAfter подсказка клиенту при исчерпании попыток записи
const retryAfter = 2 * time.Second

type Handler struct {
	useCase AllocateSlotUseCase
	logger  Logger
}

func NewHandler(useCase AllocateSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/allocations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req AllocateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /allocations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /allocations - Failed to parse date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, allocateSlot.ErrInvalidDuration):
			h.logger.Warn("POST /allocations - Invalid duration: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, allocateSlot.ErrInvalidTimeSlot):
			h.logger.Warn("POST /allocations - Invalid time slot: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTimeSlot)

		case errors.Is(err, allocateSlot.ErrInvalidInput):
			h.logger.Warn("POST /allocations - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, allocateSlot.ErrNoEligibleStaff):
			h.logger.Warn("POST /allocations - No eligible staff: %v", err)
			handlers.RespondBadRequest(w, msgNoEligibleStaff)

		case errors.Is(err, allocateSlot.ErrNoAvailability):
			h.logger.Warn("POST /allocations - No availability: date=%s", req.Date)
			handlers.RespondConflict(w, msgNoAvailability)

		case errors.Is(err, allocateSlot.ErrSlotTaken):
			h.logger.Warn("POST /allocations - Slot taken: date=%s, start=%s", req.Date, req.StartTime)
			handlers.RespondConflict(w, msgSlotTaken)

		case errors.Is(err, allocateSlot.ErrAllocationConflict):
			h.logger.Error("POST /allocations - Allocation conflict: date=%s, start=%s, error=%v", req.Date, req.StartTime, err)
			handlers.RespondServiceUnavailable(w, retryAfter, msgConflict)

		case errors.Is(err, allocateSlot.ErrStoreUnavailable):
			h.logger.Error("POST /allocations - Store unavailable: %v", err)
			handlers.RespondError(w, http.StatusInternalServerError, msgStoreUnavailable)

		default:
			h.logger.Error("POST /allocations - Failed to allocate: date=%s, start=%s, error=%v", req.Date, req.StartTime, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /allocations - Allocated staff_id=%d, date=%s, %s-%s",
		result.StaffID, req.Date, result.StartTime, result.EndTime)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
