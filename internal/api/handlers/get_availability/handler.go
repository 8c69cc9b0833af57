package get_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-StaffAllocator/internal/api/handlers"
	computeAvailability "github.com/m04kA/SMC-StaffAllocator/internal/usecase/compute_availability"
)

const (
	msgMissingParams    = "параметры date и durationHours обязательны"
	msgInvalidParams    = "некорректные параметры: date YYYY-MM-DD, durationHours число, staffIds список id через запятую"
	msgInvalidInput     = "некорректные входные данные"
	msgInvalidDuration  = "длительность должна быть положительной и не больше 24 часов"
	msgNoEligibleStaff  = "не удалось определить сотрудников на дату"
	msgStoreUnavailable = "хранилище временно недоступно"
)

type Handler struct {
	useCase ComputeAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase ComputeAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: date (required), durationHours (required), staffIds (optional, "1,2,3")
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dateStr := query.Get("date")
	durationStr := query.Get("durationHours")
	if dateStr == "" || durationStr == "" {
		h.logger.Warn("GET /availability - Missing params: date=%q, durationHours=%q", dateStr, durationStr)
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	useCaseReq, err := ToUseCaseRequest(dateStr, durationStr, query.Get("staffIds"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, computeAvailability.ErrInvalidDuration):
			h.logger.Warn("GET /availability - Invalid duration: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, computeAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, computeAvailability.ErrNoEligibleStaff):
			h.logger.Warn("GET /availability - No eligible staff: %v", err)
			handlers.RespondBadRequest(w, msgNoEligibleStaff)

		case errors.Is(err, computeAvailability.ErrStoreUnavailable):
			h.logger.Error("GET /availability - Store unavailable: %v", err)
			handlers.RespondError(w, http.StatusInternalServerError, msgStoreUnavailable)

		default:
			h.logger.Error("GET /availability - Failed to compute availability: date=%s, error=%v", dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability - date=%s, duration=%d min, blocked=%d, fully_booked=%t",
		dateStr, result.DurationMinutes, len(result.BlockedSlots), result.FullyBooked)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
