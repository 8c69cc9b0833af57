package compute_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

// validateRequest валидирует запрос и возвращает длительность в минутах
func validateRequest(req *Request) (int, error) {
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
