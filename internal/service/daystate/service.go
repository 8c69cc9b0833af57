// Package daystate управляет административным закрытием дня.
// Закрытие хранится как запись-маркер (staff, date) с вариантом KindDayBlockOut
// и причиной cleared_out; такая запись делает недоступным весь день для всех сотрудников.
package daystate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
)

// Service сервис закрытия и открытия дней
type Service struct {
	store  AvailabilityStore
	ledger Ledger
	logger Logger
}

// NewService создает новый экземпляр сервиса
func NewService(store AvailabilityStore, ledger Ledger, logger Logger) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		logger: logger,
	}
}

// ClearOut закрывает день через запись-маркер сотрудника staffID.
// Повторное закрытие ничего не меняет.
func (s *Service) ClearOut(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error) {
	if err := validate(staffID, date); err != nil {
		return nil, err
	}
	date = domain.NormalizeDate(date)
	s.logger.Info("ClearOut: staff=%d, date=%s", staffID, date.Format(domain.DateFormat))

	rec, err := s.ledger.Update(context.WithoutCancel(ctx), staffID, date, func(current *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
		switch {
		case current == nil:
			return domain.NewClearOutRecord(staffID, date), nil
		case current.IsClearedOut():
			return nil, slotledger.ErrNoChange
		case current.IsBlockOut():
			return nil, ErrDayBlockedOut
		case len(current.ConsumedSlots) > 0:
			return nil, fmt.Errorf("%w: %d consumed slots", ErrDayHasBookings, len(current.ConsumedSlots))
		default:
			return current.AsClearedOut(), nil
		}
	})
	if err != nil {
		return nil, s.mapError("ClearOut", staffID, date, err)
	}

	s.logger.Info("ClearOut: day %s cleared out by staff=%d record", date.Format(domain.DateFormat), staffID)
	return rec, nil
}

// Restore снимает закрытие дня, превращая маркер в пустую запись бронирований.
// Если маркера нет, ничего не делает.
func (s *Service) Restore(ctx context.Context, staffID int64, date time.Time) (*domain.AvailabilityRecord, error) {
	if err := validate(staffID, date); err != nil {
		return nil, err
	}
	date = domain.NormalizeDate(date)
	s.logger.Info("Restore: staff=%d, date=%s", staffID, date.Format(domain.DateFormat))

	rec, err := s.ledger.Update(context.WithoutCancel(ctx), staffID, date, func(current *domain.AvailabilityRecord) (*domain.AvailabilityRecord, error) {
		if current == nil || !current.IsClearedOut() {
			return nil, slotledger.ErrNoChange
		}
		return current.AsBooking(), nil
	})
	if err != nil {
		return nil, s.mapError("Restore", staffID, date, err)
	}

	return rec, nil
}

// GetDay возвращает все записи на дату
func (s *Service) GetDay(ctx context.Context, date time.Time) ([]*domain.AvailabilityRecord, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	records, err := s.store.GetAllForDate(ctx, domain.NormalizeDate(date))
	if err != nil {
		s.logger.Error("GetDay: failed to get records for %s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return records, nil
}

func (s *Service) mapError(op string, staffID int64, date time.Time, err error) error {
	switch {
	case errors.Is(err, ErrDayHasBookings), errors.Is(err, ErrDayBlockedOut):
		s.logger.Warn("%s: staff=%d date=%s: %v", op, staffID, date.Format(domain.DateFormat), err)
		return err
	case errors.Is(err, slotledger.ErrAllocationConflict):
		s.logger.Error("%s: write contention for staff=%d date=%s: %v", op, staffID, date.Format(domain.DateFormat), err)
		return fmt.Errorf("%w: %v", ErrAllocationConflict, err)
	default:
		s.logger.Error("%s: failed to persist staff=%d date=%s: %v", op, staffID, date.Format(domain.DateFormat), err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

func validate(staffID int64, date time.Time) error {
	if staffID <= 0 {
		return fmt.Errorf("%w: staff id must be positive", ErrInvalidInput)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}
