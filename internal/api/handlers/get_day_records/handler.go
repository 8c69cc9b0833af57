package get_day_records

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StaffAllocator/internal/api/handlers"
	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/daystate"
)

const (
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgStoreUnavailable = "хранилище временно недоступно"
)

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

// Handle GET /api/v1/days/{date}/records
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	dateStr := mux.Vars(r)["date"]
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /days/{date}/records - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	records, err := h.service.GetDay(r.Context(), date)
	if err != nil {
		switch {
		case errors.Is(err, daystate.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidDate)
		case errors.Is(err, daystate.ErrStoreUnavailable):
			h.logger.Error("GET /days/{date}/records - Store unavailable: %v", err)
			handlers.RespondError(w, http.StatusInternalServerError, msgStoreUnavailable)
		default:
			h.logger.Error("GET /days/{date}/records - Failed to get records: date=%s, error=%v", dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := &DayRecordsResponse{
		Date:    dateStr,
		Records: make([]*RecordResponse, 0, len(records)),
	}
	for _, rec := range records {
		response.Records = append(response.Records, FromDomainRecord(rec))
	}

	handlers.RespondJSON(w, http.StatusOK, response)
}
