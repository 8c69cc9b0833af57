package clear_out_day

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

type DayStateService interface {
	ClearOut(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error)
	Restore(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
