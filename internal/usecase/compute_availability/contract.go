package compute_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

// AvailabilityStore интерфейс хранилища записей доступности
type AvailabilityStore interface {
	GetAllForDate(ctx context.Context, date time.Time) ([]*domain.AvailabilityRecord, error)
}

// StaffDirectory интерфейс справочника сотрудников
// Используется, когда в запросе не передан список сотрудников
type StaffDirectory interface {
	ListEligibleStaff(ctx context.Context, date time.Time) ([]int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
