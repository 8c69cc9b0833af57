package allocate_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-StaffAllocator/internal/availability"
	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/integrations/notifier"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// UseCase use case для аллокации слота сотруднику
type UseCase struct {
	store        AvailabilityStore
	ledger       Ledger
	computer     *availability.Computer
	directory    StaffDirectory
	notifier     Notifier
	random       RandomSource
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// directory, notifier и metrics могут быть nil
func NewUseCase(
	store AvailabilityStore,
	ledger Ledger,
	computer *availability.Computer,
	directory StaffDirectory,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		store:        store,
		ledger:       ledger,
		computer:     computer,
		directory:    directory,
		notifier:     notifier,
		random:       globalRandom{},
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithRandomSource подменяет источник случайности (детерминированные тесты)
func (uc *UseCase) WithRandomSource(r RandomSource) *UseCase {
	uc.random = r
	return uc
}

// Execute выполняет use case аллокации
// До шага записи отмена контекста ничего не оставляет в хранилище;
// запись выполняется до конца даже при отмене запроса.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AllocateSlot: date=%s, duration=%.2fh, start=%s, staff=%v",
		req.Date.Format(domain.DateFormat), req.DurationHours, req.StartTime, req.StaffIDs)

	ctx, span := otel.Tracer("allocate_slot").Start(ctx, "allocate_slot.execute",
		trace.WithAttributes(
			attribute.String("date", req.Date.Format(domain.DateFormat)),
			attribute.String("start_time", req.StartTime.String()),
			attribute.Float64("duration_hours", req.DurationHours),
		),
	)
	defer span.End()

	resp, result, err := uc.execute(ctx, req)
	uc.recordAllocation(result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("staff.id", resp.StaffID))
	return resp, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, string, error) {
	grid := uc.computer.Grid()

	// 1. Валидация входных данных
	minutes, err := validateRequest(req, grid)
	if err != nil {
		uc.logger.Warn("AllocateSlot: validation failed: %v", err)
		return nil, resultInvalid, err
	}
	date := domain.NormalizeDate(req.Date)
	dateStr := date.Format(domain.DateFormat)

	// 2. Определяем сотрудников
	staffIDs, err := resolveStaff(ctx, uc.directory, req.StaffIDs, date)
	if err != nil {
		uc.logger.Warn("AllocateSlot: %v", err)
		return nil, resultInvalid, err
	}

	// 3. Получаем записи всех сотрудников на дату
	records, err := uc.store.GetAllForDate(ctx, date)
	if err != nil {
		uc.logger.Error("AllocateSlot: failed to get records for %s: %v", dateStr, err)
		return nil, resultError, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// 4. Считаем картину дня
	day := uc.computer.Compute(records, staffIDs, minutes)
	if day.FullyBooked {
		uc.logger.Warn("AllocateSlot: no availability on %s for %d minutes", dateStr, minutes)
		return nil, resultNoAvailability, fmt.Errorf("%w: %s, %d minutes", ErrNoAvailability, dateStr, minutes)
	}

	// 5. Проверяем запрошенный слот
	if day.IsBlocked(req.StartTime) {
		uc.logger.Warn("AllocateSlot: slot %s on %s is blocked", req.StartTime, dateStr)
		return nil, resultSlotTaken, fmt.Errorf("%w: %s %s", ErrSlotTaken, dateStr, req.StartTime)
	}

	// 6. Выбираем сотрудника случайно среди свободных
	free := day.FreeStaffAt(req.StartTime)
	if len(free) == 0 {
		uc.logger.Warn("AllocateSlot: no free staff at %s on %s", req.StartTime, dateStr)
		return nil, resultSlotTaken, fmt.Errorf("%w: %s %s", ErrSlotTaken, dateStr, req.StartTime)
	}
	staffID := free[uc.random.IntN(len(free))]
	consumed := grid.Expand(req.StartTime, minutes)

	uc.logger.Info("AllocateSlot: picked staff=%d of %d free at %s on %s", staffID, len(free), req.StartTime, dateStr)

	// 7. Сохраняем; с этого шага отмена запроса не прерывает запись
	persistCtx := context.WithoutCancel(ctx)
	_, err = uc.ledger.Update(persistCtx, staffID, date, func(current *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
		if current == nil {
			return domain.NewBookingRecord(staffID, date, consumed), nil
		}
		// запись могла измениться после шага 3
		if uc.computer.Conflicts(current, req.StartTime, minutes) {
			return nil, fmt.Errorf("%w: staff=%d %s %s", ErrSlotTaken, staffID, dateStr, req.StartTime)
		}
		return current.WithConsumed(consumed), nil
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrSlotTaken):
		uc.logger.Warn("AllocateSlot: %v", err)
		return nil, resultSlotTaken, err
	case errors.Is(err, slotledger.ErrAllocationConflict):
		uc.logger.Error("AllocateSlot: write contention for staff=%d date=%s start=%s: %v", staffID, dateStr, req.StartTime, err)
		return nil, resultConflict, fmt.Errorf("%w: %v", ErrAllocationConflict, err)
	default:
		uc.logger.Error("AllocateSlot: failed to persist staff=%d date=%s start=%s: %v", staffID, dateStr, req.StartTime, err)
		return nil, resultError, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	endTime, err := req.StartTime.AddMinutes(minutes)
	if err != nil {
		endTime = grid.Closing()
	}

	// 8. Уведомляем (ошибка не отменяет аллокацию)
	uc.publish(persistCtx, notifier.Event{
		ID:              uuid.NewString(),
		Type:            notifier.EventAllocationCreated,
		StaffID:         staffID,
		Date:            dateStr,
		StartTime:       req.StartTime.String(),
		EndTime:         endTime.String(),
		DurationMinutes: minutes,
		Slots:           slotStrings(consumed),
		OccurredAt:      uc.timeProvider.Now().UTC(),
	})

	uc.logger.Info("AllocateSlot: allocated staff=%d date=%s %s-%s", staffID, dateStr, req.StartTime, endTime)

	return &Response{
		StaffID:         staffID,
		Date:            date,
		StartTime:       req.StartTime,
		EndTime:         endTime,
		DurationMinutes: minutes,
		ConsumedSlots:   consumed,
	}, resultSuccess, nil
}

func (uc *UseCase) publish(ctx context.Context, event notifier.Event) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Publish(ctx, event); err != nil {
		uc.logger.Error("AllocateSlot: failed to publish %s for staff=%d: %v", event.Type, event.StaffID, err)
		uc.recordNotification(string(event.Type), "error")
		return
	}
	uc.recordNotification(string(event.Type), "success")
}

func (uc *UseCase) recordAllocation(result string) {
	if uc.metrics != nil {
		uc.metrics.RecordAllocation(result)
	}
}

func (uc *UseCase) recordNotification(event, result string) {
	if uc.metrics != nil {
		uc.metrics.RecordNotification(event, result)
	}
}

func slotStrings(slots []types.TimeString) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
