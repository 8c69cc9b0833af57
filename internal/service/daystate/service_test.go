package daystate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage/availabilitymem"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
	"github.com/m04kA/SMC-StaffAllocator/pkg/logger"
	"github.com/m04kA/SMC-StaffAllocator/pkg/types"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func newService() (*Service, *availabilitymem.Repository) {
	store := availabilitymem.NewRepository()
	log := logger.NewNop()
	return NewService(store, slotledger.NewLedger(store, 3, nil, log), log), store
}

func TestClearOutAndRestore(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	rec, err := svc.ClearOut(ctx, 1, testDate)
	require.NoError(t, err)
	assert.True(t, rec.IsClearedOut())

	// повторно: без изменений
	again, err := svc.ClearOut(ctx, 1, testDate)
	require.NoError(t, err)
	assert.Equal(t, rec.Version, again.Version)

	restored, err := svc.Restore(ctx, 1, testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.KindBooking, restored.Kind)
	assert.Nil(t, restored.BlockOut)

	got, err := store.Get(ctx, 1, testDate)
	require.NoError(t, err)
	assert.False(t, got.IsBlockOut())
	assert.Empty(t, got.ConsumedSlots)
}

func TestClearOut_EmptyBookingRecordBecomesSentinel(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	_, err := store.CreateIfAbsent(ctx, domain.NewBookingRecord(1, testDate, nil))
	require.NoError(t, err)

	rec, err := svc.ClearOut(ctx, 1, testDate)
	require.NoError(t, err)
	assert.True(t, rec.IsClearedOut())
	assert.Equal(t, int64(2), rec.Version)
}

func TestClearOut_RejectsDayWithBookings(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	_, err := store.CreateIfAbsent(ctx, domain.NewBookingRecord(1, testDate, []types.TimeString{"10:00"}))
	require.NoError(t, err)

	_, err = svc.ClearOut(ctx, 1, testDate)
	assert.ErrorIs(t, err, ErrDayHasBookings)
}

func TestClearOut_RejectsDealershipBlockOut(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	_, err := store.CreateIfAbsent(ctx, &domain.AvailabilityRecord{
		StaffID:  1,
		Date:     testDate,
		Kind:     domain.KindDayBlockOut,
		BlockOut: &domain.DayBlockOut{Reason: domain.BlockOutDealership},
	})
	require.NoError(t, err)

	_, err = svc.ClearOut(ctx, 1, testDate)
	assert.ErrorIs(t, err, ErrDayBlockedOut)

	// Restore не трогает чужую блокировку
	rec, err := svc.Restore(ctx, 1, testDate)
	require.NoError(t, err)
	assert.Equal(t, domain.BlockOutDealership, rec.BlockOut.Reason)
}

func TestRestore_MissingRecordIsNoop(t *testing.T) {
	svc, _ := newService()

	rec, err := svc.Restore(context.Background(), 1, testDate)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestGetDay(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.ClearOut(ctx, 2, testDate)
	require.NoError(t, err)

	records, err := svc.GetDay(ctx, testDate.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].StaffID)

	_, err = svc.GetDay(ctx, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidation(t *testing.T) {
	svc, _ := newService()

	_, err := svc.ClearOut(context.Background(), 0, testDate)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Restore(context.Background(), 1, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
