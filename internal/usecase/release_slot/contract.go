package release_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/integrations/notifier"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
)

// Ledger интерфейс условной записи (staff, date)
type Ledger interface {
	Update(ctx context.Context, staffID int64, date time.Time, mutate slotledger.MutateFunc) (*domain.AvailabilityRecord, error)
}

// Notifier интерфейс публикации событий
type Notifier interface {
	Publish(ctx context.Context, event notifier.Event) error
}

// Metrics интерфейс метрик освобождения слотов
type Metrics interface {
	RecordRelease(result string)
	RecordNotification(event, result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
