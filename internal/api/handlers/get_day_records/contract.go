package get_day_records

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

type DayStateService interface {
	GetDay(ctx context.Context, date time.Time) ([]*domain.AvailabilityRecord, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
