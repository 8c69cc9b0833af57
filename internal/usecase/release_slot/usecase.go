package release_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/integrations/notifier"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

// UseCase use case для освобождения слотов при отмене или переносе записи
type UseCase struct {
	ledger       Ledger
	grid         domain.TimeGrid
	notifier     Notifier
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	ledger Ledger,
	grid domain.TimeGrid,
	notifier Notifier,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		ledger:       ledger,
		grid:         grid,
		notifier:     notifier,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case освобождения.
// Отсутствие записи или уже освобожденные слоты не являются ошибкой.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReleaseSlot: staff=%d, date=%s, duration=%.2fh, start=%s",
		req.StaffID, req.Date.Format(domain.DateFormat), req.DurationHours, req.StartTime)

	ctx, span := otel.Tracer("release_slot").Start(ctx, "release_slot.execute",
		trace.WithAttributes(
			attribute.Int64("staff.id", req.StaffID),
			attribute.String("date", req.Date.Format(domain.DateFormat)),
			attribute.String("start_time", req.StartTime.String()),
		),
	)
	defer span.End()

	resp, result, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.RecordRelease(result)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		return nil, err
	}
	return resp, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, string, error) {
	// 1. Валидация входных данных
	minutes, err := validateRequest(req, uc.grid)
	if err != nil {
		uc.logger.Warn("ReleaseSlot: validation failed: %v", err)
		return nil, resultInvalid, err
	}
	date := domain.NormalizeDate(req.Date)
	dateStr := date.Format(domain.DateFormat)

	// 2. Восстанавливаем слоты, занятые при аллокации
	slots := uc.grid.Expand(req.StartTime, minutes)

	// 3. Удаляем их из записи сотрудника
	var freed []types.TimeString
	_, err = uc.ledger.Update(context.WithoutCancel(ctx), req.StaffID, date, func(current *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
		freed = nil
		if current == nil || current.IsBlockOut() {
			return nil, slotledger.ErrNoChange
		}
		consumed := current.ConsumedSet()
		for _, s := range slots {
			if _, ok := consumed[s]; ok {
				freed = append(freed, s)
			}
		}
		next, changed := current.WithoutSlots(slots)
		if !changed {
			return nil, slotledger.ErrNoChange
		}
		return next, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, slotledger.ErrAllocationConflict):
		uc.logger.Error("ReleaseSlot: write contention for staff=%d date=%s start=%s: %v", req.StaffID, dateStr, req.StartTime, err)
		return nil, resultConflict, fmt.Errorf("%w: %v", ErrAllocationConflict, err)
	default:
		uc.logger.Error("ReleaseSlot: failed to persist staff=%d date=%s start=%s: %v", req.StaffID, dateStr, req.StartTime, err)
		return nil, resultError, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if len(freed) == 0 {
		uc.logger.Info("ReleaseSlot: nothing to release for staff=%d date=%s start=%s", req.StaffID, dateStr, req.StartTime)
		return &Response{Released: false, FreedSlots: []types.TimeString{}}, resultNoop, nil
	}

	// 4. Уведомляем (ошибка не откатывает освобождение)
	endTime, err := req.StartTime.AddMinutes(minutes)
	if err != nil {
		endTime = uc.grid.Closing()
	}
	uc.publish(context.WithoutCancel(ctx), notifier.Event{
		ID:              uuid.NewString(),
		Type:            notifier.EventAllocationReleased,
		StaffID:         req.StaffID,
		Date:            dateStr,
		StartTime:       req.StartTime.String(),
		EndTime:         endTime.String(),
		DurationMinutes: minutes,
		Slots:           slotStrings(freed),
		OccurredAt:      uc.timeProvider.Now().UTC(),
	})

	uc.logger.Info("ReleaseSlot: released %d slots for staff=%d date=%s", len(freed), req.StaffID, dateStr)
	return &Response{Released: true, FreedSlots: freed}, resultReleased, nil
}

func (uc *UseCase) publish(ctx context.Context, event notifier.Event) {
	if uc.notifier == nil {
		return
	}
	result := "success"
	if err := uc.notifier.Publish(ctx, event); err != nil {
		uc.logger.Error("ReleaseSlot: failed to publish %s for staff=%d: %v", event.Type, event.StaffID, err)
		result = "error"
	}
	if uc.metrics != nil {
		uc.metrics.RecordNotification(string(event.Type), result)
	}
}

func slotStrings(slots []types.TimeString) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
