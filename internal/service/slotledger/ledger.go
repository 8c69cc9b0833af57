// Package slotledger выполняет условное обновление записи (staff, date)
// в цикле чтение-изменение-запись с ограниченным числом попыток.
package slotledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage"
)

const (
	opCreate = "create"
	opCAS    = "compare_and_swap"
)

// MutateFunc получает актуальную запись (nil, если ее еще нет) и возвращает запись для сохранения.
// Вызывается заново на каждой попытке, поэтому все проверки должны выполняться внутри.
// ErrNoChange завершает обновление без записи.
type MutateFunc func(current *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error)

// Ledger сервис условной записи
type Ledger struct {
	store       Store
	maxAttempts int
	metrics     Metrics
	logger      Logger
}

// NewLedger создает новый экземпляр сервиса
// maxAttempts <= 0 заменяется на domain.DefaultMaxWriteAttempts
func NewLedger(store Store, maxAttempts int, metrics Metrics, logger Logger) *Ledger {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxWriteAttempts
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Ledger{
		store:       store,
		maxAttempts: maxAttempts,
		metrics:     metrics,
		logger:      logger,
	}
}

// MaxAttempts возвращает ограничение на число попыток записи
func (l *Ledger) MaxAttempts() int {
	return l.maxAttempts
}

// Update читает запись (staff, date), применяет mutate и сохраняет результат.
// Проигранная гонка (запись создана или изменена другим запросом) тратит попытку,
// после чего запись перечитывается и mutate вызывается снова.
// Когда попытки исчерпаны, возвращается ErrAllocationConflict.
func (l *Ledger) Update(ctx context.Context, staffID int64, date time.Time, mutate MutateFunc) (*domain.AvailabilityRecord, error) {
	ctx, span := otel.Tracer("slotledger").Start(ctx, "slotledger.update",
		trace.WithAttributes(
			attribute.Int64("staff.id", staffID),
			attribute.String("date", date.Format(domain.DateFormat)),
		),
	)
	defer span.End()

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		span.SetAttributes(attribute.Int("attempts", attempt))

		// 1. Читаем актуальную запись
		current, err := l.store.Get(ctx, staffID, date)
		if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "get record")
			return nil, fmt.Errorf("%w: get staff=%d: %v", ErrStore, staffID, err)
		}
		if errors.Is(err, storage.ErrRecordNotFound) {
			current = nil
		}

		// 2. Применяем изменение
		next, err := mutate(current)
		if errors.Is(err, ErrNoChange) {
			l.metrics.ObserveWriteAttempts(attempt)
			return current, nil
		}
		if err != nil {
			return nil, err
		}

		// 3. Условная запись
		var saved *domain.AvailabilityRecord
		var op string
		if current == nil {
			op = opCreate
			saved, err = l.store.CreateIfAbsent(ctx, next)
		} else {
			op = opCAS
			next.Version = current.Version
			saved, err = l.store.CompareAndSwap(ctx, next)
		}

		if err == nil {
			l.metrics.ObserveWriteAttempts(attempt)
			return saved, nil
		}

		if isConflict(err) {
			l.metrics.RecordStoreConflict(op)
			l.logger.Warn("Update: %s conflict for staff=%d date=%s, attempt %d/%d: %v",
				op, staffID, date.Format(domain.DateFormat), attempt, l.maxAttempts, err)
			continue
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		return nil, fmt.Errorf("%w: %s staff=%d: %v", ErrStore, op, staffID, err)
	}

	l.metrics.ObserveWriteAttempts(l.maxAttempts)
	l.logger.Error("Update: attempts exhausted for staff=%d date=%s", staffID, date.Format(domain.DateFormat))
	span.SetStatus(codes.Error, "attempts exhausted")
	return nil, fmt.Errorf("%w: staff=%d date=%s after %d attempts",
		ErrAllocationConflict, staffID, date.Format(domain.DateFormat), l.maxAttempts)
}

// isConflict ошибки, означающие проигранную гонку.
// ErrRecordNotFound на CAS возможен только если запись удалили между чтением и записью.
func isConflict(err error) bool {
	return errors.Is(err, storage.ErrAlreadyExists) ||
		errors.Is(err, storage.ErrVersionConflict) ||
		errors.Is(err, storage.ErrRecordNotFound)
}

type noopMetrics struct{}

func (noopMetrics) RecordStoreConflict(string) {}
func (noopMetrics) ObserveWriteAttempts(int)   {}
