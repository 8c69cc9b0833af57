package slotledger

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

// Store хранилище записей доступности с условной записью
type Store interface {
	Get(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error)
	CreateIfAbsent(ctx context.Context, record *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error)
	CompareAndSwap(ctx context.Context, record *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error)
}

// Metrics метрики конфликтов записи
type Metrics interface {
	RecordStoreConflict(operation string)
	ObserveWriteAttempts(attempts int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
