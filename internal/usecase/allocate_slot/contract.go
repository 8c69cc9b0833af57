package allocate_slot

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/integrations/notifier"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
)

// AvailabilityStore интерфейс хранилища записей доступности
type AvailabilityStore interface {
	GetAllForDate(ctx context.Context, date time.Time) ([]*domain.AvailabilityRecord, error)
}

// Ledger интерфейс условной записи (staff, date)
type Ledger interface {
	Update(ctx context.Context, staffID int64, date time.Time, mutate slotledger.MutateFunc) (*domain.AvailabilityRecord, error)
}

// StaffDirectory интерфейс справочника сотрудников
type StaffDirectory interface {
	ListEligibleStaff(ctx context.Context, date time.Time) ([]int64, error)
}

// Notifier интерфейс публикации событий после успешной аллокации
type Notifier interface {
	Publish(ctx context.Context, event notifier.Event) error
}

// RandomSource источник случайности для выбора сотрудника (для тестирования)
// *rand.Rand из math/rand/v2 удовлетворяет интерфейсу
type RandomSource interface {
	IntN(n int) int
}

// Metrics интерфейс метрик аллокаций
type Metrics interface {
	RecordAllocation(result string)
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

// globalRandom общий генератор math/rand/v2, безопасен для конкурентного использования
type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}
