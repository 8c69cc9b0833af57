package compute_availability

import (
	"context"
	"fmt"
	"slices"

	"github.com/m04kA/SMC-StaffAllocator/internal/availability"
	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

// UseCase use case для расчета доступных слотов на дату
type UseCase struct {
	store     AvailabilityStore
	computer  *availability.Computer
	directory StaffDirectory
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
// directory может быть nil, тогда список сотрудников обязателен в запросе
func NewUseCase(
	store AvailabilityStore,
	computer *availability.Computer,
	directory StaffDirectory,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:     store,
		computer:  computer,
		directory: directory,
		logger:    logger,
	}
}

// Execute выполняет use case расчета доступности
// Полностью занятый день не является ошибкой: возвращается FullyBooked = true
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ComputeAvailability: date=%s, duration=%.2fh, staff=%v",
		req.Date.Format(domain.DateFormat), req.DurationHours, req.StaffIDs)

	// 1. Валидация входных данных
	minutes, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("ComputeAvailability: validation failed: %v", err)
		return nil, err
	}
	date := domain.NormalizeDate(req.Date)

	// 2. Определяем сотрудников
	staffIDs, err := resolveStaff(ctx, uc.directory, req.StaffIDs, date)
	if err != nil {
		uc.logger.Warn("ComputeAvailability: %v", err)
		return nil, err
	}

	// 3. Получаем записи всех сотрудников на дату
	records, err := uc.store.GetAllForDate(ctx, date)
	if err != nil {
		uc.logger.Error("ComputeAvailability: failed to get records for %s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// 4. Считаем картину дня
	day := uc.computer.Compute(records, staffIDs, minutes)

	uc.logger.Info("ComputeAvailability: date=%s, %d records, %d blocked slots, fully_booked=%t",
		date.Format(domain.DateFormat), len(records), len(day.BlockedSlots), day.FullyBooked)

	return &Response{
		Date:                date,
		DurationMinutes:     minutes,
		StaffIDs:            uniqueStaff(staffIDs),
		BlockedSlots:        day.BlockedSlots,
		PerStaffUnavailable: day.PerStaffUnavailable,
		PerStaffFree:        day.PerStaffFree(),
		FullyBooked:         day.FullyBooked,
		ClearedOut:          day.ClearedOut,
	}, nil
}

func uniqueStaff(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
