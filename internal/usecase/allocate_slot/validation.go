package allocate_slot

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

// validateRequest валидирует запрос и возвращает длительность в минутах
func validateRequest(req *Request, grid domain.TimeGrid) (int, error) {
	if req.Date.IsZero() {
		return 0, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	for _, id := range req.StaffIDs {
		if id <= 0 {
			return 0, fmt.Errorf("%w: staff id must be positive, got %d", ErrInvalidInput, id)
		}
	}

	minutes, err := domain.MinutesFromHours(req.DurationHours)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, err)
	}

	if err := req.StartTime.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeSlot, err)
	}
	if !grid.Contains(req.StartTime) {
		return 0, fmt.Errorf("%w: %s is outside %s-%s or not aligned to %d minutes",
			ErrInvalidTimeSlot, req.StartTime, grid.Opening(), grid.Closing(), grid.GranularityMinutes())
	}

	return minutes, nil
}

// resolveStaff возвращает сотрудников из запроса или из справочника
func resolveStaff(ctx context.Context, directory StaffDirectory, staffIDs []int64, date time.Time) ([]int64, error) {
	if len(staffIDs) > 0 {
		return staffIDs, nil
	}
	if directory == nil {
		return nil, fmt.Errorf("%w: staff ids are required", ErrNoEligibleStaff)
	}

	ids, err := directory.ListEligibleStaff(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: staff directory: %v", ErrNoEligibleStaff, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: directory returned no staff for %s", ErrNoEligibleStaff, date.Format(domain.DateFormat))
	}

	return ids, nil
}
