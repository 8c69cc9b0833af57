package release_slot

import (
	"fmt"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

// validateRequest валидирует запрос и возвращает длительность в минутах
func validateRequest(req *Request, grid domain.TimeGrid) (int, error) {
	if req.StaffID <= 0 {
		return 0, fmt.Errorf("%w: staff id must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return 0, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	minutes, err := domain.MinutesFromHours(req.DurationHours)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, err)
	}

	if err := req.StartTime.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}
	if !grid.Contains(req.StartTime) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeSlot, req.StartTime)
	}

	return minutes, nil
}
