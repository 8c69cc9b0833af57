package daystate

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
)

// AvailabilityStore интерфейс чтения записей доступности
type AvailabilityStore interface {
	GetAllForDate(ctx context.Context, date time.Time) ([]*domain.AvailabilityRecord, error)
}

// Ledger интерфейс условной записи (staff, date)
type Ledger interface {
	Update(ctx context.Context, staffID int64, date time.Time, mutate slotledger.MutateFunc) (*domain.AvailabilityRecord, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
